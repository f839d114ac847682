package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"FormatConverter/internal/auth"
	"FormatConverter/internal/domain"
	"FormatConverter/internal/ports"
)

const (
	tokenHeader          = "X-Request-Token"
	defaultRateLimit     = 1
	defaultRateBurst     = 5
	rateLimiterExpiresIn = 3 * time.Minute
)

// ConversionService is the use case surface exposed over HTTP.
type ConversionService interface {
	Convert(ctx context.Context, articleID int64, format domain.Format) (domain.Conversion, error)
	ClearCache(ctx context.Context) (int, error)
}

// Deps wires the server to the use case and its guards.
type Deps struct {
	Service  ConversionService
	Articles ports.ArticleRepository
	Tokens   *auth.Tokens
	Admin    *auth.Admin
	Metrics  http.Handler
	Logger   *slog.Logger

	// RateLimit is the sustained number of convert requests per second per client IP.
	RateLimit float64
	RateBurst int
}

// Server exposes conversions, the article page and operational endpoints.
type Server struct {
	echo     *echo.Echo
	service  ConversionService
	articles ports.ArticleRepository
	tokens   *auth.Tokens
	admin    *auth.Admin
	logger   *slog.Logger
}

// NewServer builds the router; Handler and Run expose it.
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		echo:     echo.New(),
		service:  deps.Service,
		articles: deps.Articles,
		tokens:   deps.Tokens,
		admin:    deps.Admin,
		logger:   logger,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	s.routes(deps)
	return s
}

func (s *Server) routes(deps Deps) {
	limit := deps.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	burst := deps.RateBurst
	if burst <= 0 {
		burst = defaultRateBurst
	}
	limiter := middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(limit),
			Burst:     burst,
			ExpiresIn: rateLimiterExpiresIn,
		}),
		ErrorHandler: func(c echo.Context, _ error) error {
			return c.JSON(http.StatusForbidden, errorResponse{Error: "Security check failed"})
		},
		DenyHandler: func(c echo.Context, identifier string, _ error) error {
			s.logger.Warn("rate limited", "client", identifier)
			return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "Too many requests. Please slow down."})
		},
	})

	s.echo.GET("/healthz", s.handleHealth)
	if deps.Metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(deps.Metrics))
	}

	s.echo.GET("/articles/:id", s.handleArticlePage)

	api := s.echo.Group("/api")
	api.GET("/token", s.handleToken)
	api.POST("/convert", s.handleConvert, limiter)

	admin := api.Group("/admin", middleware.BasicAuth(func(user, password string, _ echo.Context) (bool, error) {
		return s.admin.Check(user, password) == nil, nil
	}))
	admin.POST("/cache/clear", s.handleCacheClear)
}

// Handler returns the router for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is cancelled, then drains within shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) verifyToken(token string) error {
	if s.tokens == nil {
		return domain.AuthError("Security check failed")
	}
	return s.tokens.Verify(token, auth.ConvertAction)
}

// statusFor maps conversion error kinds to HTTP status codes.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindAuth:
		return http.StatusForbidden
	case domain.KindInvalidFormat:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c echo.Context, err error) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", c.Path(), "status", status, "error", err)
	}
	return c.JSON(status, errorResponse{Error: domain.PublicMessage(err)})
}
