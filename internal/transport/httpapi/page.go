package httpapi

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"FormatConverter/internal/auth"
	"FormatConverter/internal/domain"
)

var articlePage = template.Must(template.New("article").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<article class="entry-content">{{.Content}}</article>
<div id="format-converter-widget" class="format-converter-container">
<button id="format-toggle-btn" class="format-toggle-btn" data-format="ap" data-post-id="{{.ID}}" data-token="{{.Token}}" title="Click to convert this article to Associated Press news format">
<span class="toggle-icon">📰</span>
<span class="toggle-text">Convert to AP Format</span>
</button>
<div id="format-loading" class="format-loading" hidden>
<div class="loading-spinner"></div>
<p>Converting to AP format... <span id="loading-text">Please wait</span></p>
</div>
<div id="format-error" class="format-error" hidden>
<p></p>
</div>
</div>
<script type="application/json" id="original-content">{{.Snapshot}}</script>
</body>
</html>
`))

type articleView struct {
	ID       int64
	Title    string
	Token    string
	Content  template.HTML
	Snapshot template.JS
}

func (s *Server) handleArticlePage(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 || s.articles == nil {
		return c.String(http.StatusNotFound, "Article not found")
	}

	ctx := c.Request().Context()
	article, err := s.articles.Get(ctx, id)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return c.String(http.StatusNotFound, domain.PublicMessage(err))
		}
		s.logger.Error("load article page", "article_id", id, "error", err)
		return c.String(http.StatusInternalServerError, "Internal error")
	}

	conv, err := s.service.Convert(ctx, id, domain.FormatOriginal)
	if err != nil {
		s.logger.Error("render article page", "article_id", id, "error", err)
		return c.String(statusFor(err), domain.PublicMessage(err))
	}

	var token string
	if s.tokens != nil {
		token, err = s.tokens.Issue(auth.ConvertAction)
		if err != nil {
			s.logger.Error("issue page token", "error", err)
			return c.String(http.StatusInternalServerError, "Internal error")
		}
	}

	// json.Marshal escapes <, > and & so the snapshot cannot close its script element.
	snapshot, err := json.Marshal(conv.Content)
	if err != nil {
		return c.String(http.StatusInternalServerError, "Internal error")
	}

	var buf bytes.Buffer
	err = articlePage.Execute(&buf, articleView{
		ID:       article.ID,
		Title:    article.Title,
		Token:    token,
		Content:  template.HTML(conv.Content),
		Snapshot: template.JS(snapshot),
	})
	if err != nil {
		s.logger.Error("execute article template", "article_id", id, "error", err)
		return c.String(http.StatusInternalServerError, "Internal error")
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
