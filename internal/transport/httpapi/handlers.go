package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"FormatConverter/internal/auth"
	"FormatConverter/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type convertRequest struct {
	ArticleID int64  `json:"article_id" form:"article_id"`
	PostID    int64  `json:"post_id" form:"post_id"`
	Format    string `json:"format" form:"format"`
	Token     string `json:"token" form:"token"`
}

type convertResponse struct {
	Content string        `json:"content"`
	Format  domain.Format `json:"format"`
}

type clearResponse struct {
	Cleared int `json:"cleared"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleToken(c echo.Context) error {
	if s.tokens == nil {
		return s.fail(c, domain.ConfigurationError("Request tokens are not configured"))
	}
	token, err := s.tokens.Issue(auth.ConvertAction)
	if err != nil {
		return s.fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.JSON(http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleConvert(c echo.Context) error {
	var req convertRequest
	bindErr := c.Bind(&req)

	token := c.Request().Header.Get(tokenHeader)
	if token == "" {
		token = req.Token
	}
	if err := s.verifyToken(token); err != nil {
		return s.fail(c, err)
	}
	if bindErr != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request"})
	}

	format, err := domain.ParseFormat(req.Format)
	if err != nil {
		return s.fail(c, err)
	}

	articleID := req.ArticleID
	if articleID == 0 {
		articleID = req.PostID
	}

	conv, err := s.service.Convert(c.Request().Context(), articleID, format)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, convertResponse{Content: conv.Content, Format: conv.Format})
}

func (s *Server) handleCacheClear(c echo.Context) error {
	token := c.Request().Header.Get(tokenHeader)
	if token == "" {
		token = strings.TrimSpace(c.FormValue("token"))
	}
	if err := s.verifyToken(token); err != nil {
		return s.fail(c, err)
	}

	removed, err := s.service.ClearCache(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	s.logger.Info("cache cleared via admin endpoint", "removed", removed)
	return c.JSON(http.StatusOK, clearResponse{Cleared: removed})
}
