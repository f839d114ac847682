package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"FormatConverter/internal/converter"
	"FormatConverter/internal/domain"
	"FormatConverter/internal/ports"
)

// ServiceDeps wires all driven adapters into the conversion service.
type ServiceDeps struct {
	Articles  ports.ArticleRepository
	Renderer  ports.ContentRenderer
	Cache     ports.TTLCache
	Generator ports.TextGenerator
	Formatter ports.HTMLFormatter
	Metrics   ports.Metrics
	Logger    *slog.Logger
}

// Service implements the convert-on-demand workflow.
type Service struct {
	articles ports.ArticleRepository
	cache    ports.TTLCache
	registry *converter.Registry
	metrics  ports.Metrics
	logger   *slog.Logger
}

// NewService registers the original and AP converters.
func NewService(cfg APConfig, deps ServiceDeps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}

	registry := converter.NewRegistry(
		NewOriginalConverter(deps.Renderer),
		NewAPConverter(cfg, APDeps{
			Cache:     deps.Cache,
			Generator: deps.Generator,
			Formatter: deps.Formatter,
			Metrics:   metrics,
			Logger:    logger,
		}),
	)

	return &Service{
		articles: deps.Articles,
		cache:    deps.Cache,
		registry: registry,
		metrics:  metrics,
		logger:   logger,
	}
}

// Formats lists the formats the service can produce.
func (s *Service) Formats() []domain.Format {
	return s.registry.Formats()
}

// Convert returns the article rendered in the requested format.
func (s *Service) Convert(ctx context.Context, articleID int64, format domain.Format) (domain.Conversion, error) {
	strategy, err := s.registry.Resolve(format)
	if err != nil {
		s.metrics.ObserveConversion(format, outcomeOf(err))
		return domain.Conversion{}, err
	}

	if s.articles == nil {
		return domain.Conversion{}, errors.New("article repository is not configured")
	}

	article, err := s.articles.Get(ctx, articleID)
	if err != nil {
		s.metrics.ObserveConversion(format, outcomeOf(err))
		if domain.KindOf(err) != "" {
			return domain.Conversion{}, err
		}
		return domain.Conversion{}, fmt.Errorf("load article %d: %w", articleID, err)
	}

	s.logger.Debug("convert", "article_id", articleID, "format", format)

	result, err := strategy.Convert(ctx, article)
	if err != nil {
		s.metrics.ObserveConversion(format, outcomeOf(err))
		return domain.Conversion{}, err
	}

	outcome := "generated"
	if result.Cached {
		outcome = "cached"
	}
	if format == domain.FormatOriginal {
		outcome = "rendered"
	}
	s.metrics.ObserveConversion(format, outcome)

	return domain.Conversion{
		ArticleID: article.ID,
		Format:    format,
		Content:   result.Content,
		Cached:    result.Cached,
	}, nil
}

// ClearCache removes every cached AP conversion together with its expiry marker.
func (s *Service) ClearCache(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	removed, err := s.cache.Clear(ctx, domain.CachePattern(domain.FormatAP))
	if err != nil {
		return 0, fmt.Errorf("clear conversion cache: %w", err)
	}
	s.metrics.ObserveCacheClear(removed)
	s.logger.Info("conversion cache cleared", "removed", removed)
	return removed, nil
}

func outcomeOf(err error) string {
	if kind := domain.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
