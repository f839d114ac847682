package ports

import (
	"context"
	"time"

	"FormatConverter/internal/domain"
)

// ArticleRepository is the content store keyed by article id.
// Get returns a NotFound domain error when the article does not exist.
type ArticleRepository interface {
	Get(ctx context.Context, id int64) (domain.Article, error)
}

// ArticleWriter stores articles; used by administrative tooling only.
type ArticleWriter interface {
	Save(ctx context.Context, article domain.Article) error
}

// ContentRenderer turns a stored article body into display HTML.
type ContentRenderer interface {
	Render(ctx context.Context, body string) (string, error)
}

// TTLCache is a key-value store whose entries expire after a fixed duration.
// Expired entries are reported as absent regardless of physical purging.
type TTLCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, content string, ttl time.Duration) error
	Clear(ctx context.Context, pattern string) (int, error)
}

// ExpiringStore physically removes expired entries.
type ExpiringStore interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// TextGenerator is the upstream LLM call-out.
type TextGenerator interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
}

// Metrics receives conversion telemetry; implementations must be concurrency safe.
type Metrics interface {
	ObserveConversion(format domain.Format, outcome string)
	ObserveCacheLookup(hit bool)
	ObserveUpstream(duration time.Duration, err error)
	ObserveCacheClear(removed int)
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// HTMLFormatter wraps generated text in paragraph markup unless it already is block HTML.
type HTMLFormatter interface {
	EnsureHTML(text string) (string, error)
}
