package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"FormatConverter/internal/domain"
)

type fakeArticles struct {
	mu       sync.Mutex
	articles map[int64]domain.Article
	calls    int
}

func newFakeArticles(articles ...domain.Article) *fakeArticles {
	f := &fakeArticles{articles: map[int64]domain.Article{}}
	for _, a := range articles {
		f.articles[a.ID] = a
	}
	return f
}

func (f *fakeArticles) Get(_ context.Context, id int64) (domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	a, ok := f.articles[id]
	if !ok {
		return domain.Article{}, domain.NotFound("Article not found")
	}
	return a, nil
}

type cacheItem struct {
	value     string
	expiresAt time.Time
}

type fakeCache struct {
	mu       sync.Mutex
	items    map[string]cacheItem
	now      time.Time
	gets     int
	sets     int
	cleared  []string
	getErr   error
	lastTTL  time.Duration
	lastSetK string
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string]cacheItem{}, now: time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return "", false, c.getErr
	}
	item, ok := c.items[key]
	if !ok || !c.now.Before(item.expiresAt) {
		return "", false, nil
	}
	return item.value, true, nil
}

func (c *fakeCache) Set(_ context.Context, key, content string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.lastTTL = ttl
	c.lastSetK = key
	c.items[key] = cacheItem{value: content, expiresAt: c.now.Add(ttl)}
	return nil
}

func (c *fakeCache) Clear(_ context.Context, pattern string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared = append(c.cleared, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	removed := 0
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
			removed++
		}
	}
	return removed, nil
}

func (c *fakeCache) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeCache) stats() (gets, sets int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gets, c.sets
}

type fakeGenerator struct {
	mu       sync.Mutex
	calls    int
	prompts  []string
	models   []string
	response string
	err      error
	started  chan struct{}
	release  chan struct{}
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt, model string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	g.models = append(g.models, model)
	resp, err, started, release := g.response, g.err, g.started, g.release
	g.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return resp, err
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type blockingGenerator struct{}

func (blockingGenerator) Generate(ctx context.Context, _, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type bodyRenderer struct{}

func (bodyRenderer) Render(_ context.Context, body string) (string, error) {
	return body + "\n", nil
}

type paragraphFormatter struct{}

func (paragraphFormatter) EnsureHTML(text string) (string, error) {
	if strings.HasPrefix(text, "<") {
		return text, nil
	}
	return "<p>" + text + "</p>", nil
}
