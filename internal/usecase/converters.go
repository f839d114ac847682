package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"FormatConverter/internal/converter"
	"FormatConverter/internal/domain"
	"FormatConverter/internal/ports"
)

const (
	DefaultCacheTTL        = 24 * time.Hour
	DefaultUpstreamTimeout = 60 * time.Second
	DefaultModel           = "gpt-4o-mini"

	upstreamFailureMessage = "Conversion failed. Please try again."
)

// OriginalConverter renders the stored body through the content pipeline.
type OriginalConverter struct {
	renderer ports.ContentRenderer
}

var _ converter.Converter = (*OriginalConverter)(nil)

// NewOriginalConverter wires the content renderer.
func NewOriginalConverter(renderer ports.ContentRenderer) *OriginalConverter {
	return &OriginalConverter{renderer: renderer}
}

func (o *OriginalConverter) Format() domain.Format {
	return domain.FormatOriginal
}

// Convert never consults the conversion cache.
func (o *OriginalConverter) Convert(ctx context.Context, article domain.Article) (converter.Result, error) {
	if o.renderer == nil {
		return converter.Result{Content: article.Body}, nil
	}
	content, err := o.renderer.Render(ctx, article.Body)
	if err != nil {
		return converter.Result{}, fmt.Errorf("render article %d: %w", article.ID, err)
	}
	return converter.Result{Content: content}, nil
}

// APConfig is the explicit configuration of the AP rewrite.
type APConfig struct {
	APIKey       string
	Model        string
	TTL          time.Duration
	Timeout      time.Duration
	SingleFlight bool
}

// APConverter rewrites articles in AP style, caching successful results per article.
//
// Without SingleFlight, concurrent misses on the same article each call the
// generator and the last write wins in the cache.
type APConverter struct {
	cfg       APConfig
	cache     ports.TTLCache
	generator ports.TextGenerator
	formatter ports.HTMLFormatter
	metrics   ports.Metrics
	logger    *slog.Logger
	group     *singleflight.Group
}

var _ converter.Converter = (*APConverter)(nil)

// APDeps wires the driven adapters used by the AP rewrite.
type APDeps struct {
	Cache     ports.TTLCache
	Generator ports.TextGenerator
	Formatter ports.HTMLFormatter
	Metrics   ports.Metrics
	Logger    *slog.Logger
}

// NewAPConverter applies defaults for model, TTL and timeout.
func NewAPConverter(cfg APConfig, deps APDeps) *APConverter {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultUpstreamTimeout
	}

	a := &APConverter{
		cfg:       cfg,
		cache:     deps.Cache,
		generator: deps.Generator,
		formatter: deps.Formatter,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
	if a.metrics == nil {
		a.metrics = noopMetrics{}
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.SingleFlight {
		a.group = &singleflight.Group{}
	}
	return a
}

func (a *APConverter) Format() domain.Format {
	return domain.FormatAP
}

// Convert returns the cached rewrite when present, otherwise generates and caches a new one.
func (a *APConverter) Convert(ctx context.Context, article domain.Article) (converter.Result, error) {
	key := domain.CacheKey(article.ID, domain.FormatAP)

	if content, ok := a.lookup(ctx, key); ok {
		return converter.Result{Content: content, Cached: true}, nil
	}

	if strings.TrimSpace(a.cfg.APIKey) == "" || a.generator == nil {
		return converter.Result{}, domain.ConfigurationError("API key not configured")
	}

	prompt := BuildAPPrompt(article.Title, article.Body)

	if a.group == nil {
		content, err := a.generate(ctx, key, prompt)
		if err != nil {
			return converter.Result{}, err
		}
		return converter.Result{Content: content}, nil
	}

	v, err, shared := a.group.Do(key, func() (any, error) {
		return a.generate(ctx, key, prompt)
	})
	if err != nil {
		return converter.Result{}, err
	}
	if shared {
		a.logger.Debug("joined in-flight generation", "key", key)
	}
	return converter.Result{Content: v.(string)}, nil
}

func (a *APConverter) lookup(ctx context.Context, key string) (string, bool) {
	if a.cache == nil {
		return "", false
	}
	content, ok, err := a.cache.Get(ctx, key)
	if err != nil {
		a.logger.Warn("cache lookup failed, treating as miss", "key", key, "error", err)
		ok = false
	}
	a.metrics.ObserveCacheLookup(ok)
	if ok {
		a.logger.Debug("cache hit", "key", key)
	}
	return content, ok
}

// generate is bounded by the configured timeout, not by cancellation of ctx.
func (a *APConverter) generate(ctx context.Context, key, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Timeout)
	defer cancel()

	start := time.Now()
	text, err := a.generator.Generate(callCtx, prompt, a.cfg.Model)
	a.metrics.ObserveUpstream(time.Since(start), err)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			a.logger.Warn("generation timed out", "key", key, "timeout", a.cfg.Timeout)
		} else {
			a.logger.Warn("generation failed", "key", key, "error", err)
		}
		return "", domain.UpstreamError(upstreamFailureMessage, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.UpstreamError(upstreamFailureMessage, errors.New("empty completion"))
	}

	content := text
	if a.formatter != nil {
		content, err = a.formatter.EnsureHTML(text)
		if err != nil {
			return "", domain.UpstreamError(upstreamFailureMessage, fmt.Errorf("format completion: %w", err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Set(callCtx, key, content, a.cfg.TTL); err != nil {
			a.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}

	return content, nil
}

type noopMetrics struct{}

func (noopMetrics) ObserveConversion(domain.Format, string) {}
func (noopMetrics) ObserveCacheLookup(bool) {}
func (noopMetrics) ObserveUpstream(time.Duration, error) {}
func (noopMetrics) ObserveCacheClear(int) {}
