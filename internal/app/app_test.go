package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FormatConverter/internal/config"
	"FormatConverter/internal/domain"
)

func testConfig(t *testing.T, backend string) config.Config {
	t.Helper()
	t.Setenv("FORMAT_CONVERTER_CONFIG", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("CACHE_BACKEND", "")

	cfg := config.Load()
	cfg.Database.DSN = filepath.Join(t.TempDir(), "app.db")
	cfg.Cache.Backend = backend
	return cfg
}

func TestApplicationWiresOriginalAndAP(t *testing.T) {
	for _, backend := range []string{config.CacheBackendSQL, config.CacheBackendMemory} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))

			a, err := New(ctx, testConfig(t, backend), logger)
			require.NoError(t, err)
			t.Cleanup(func() { _ = a.Close() })

			require.NoError(t, a.Articles().Save(ctx, domain.Article{
				ID:    42,
				Title: "Shop Opens",
				Body:  "A new shop opened today in the city.",
			}))

			conv, err := a.Service().Convert(ctx, 42, domain.FormatOriginal)
			require.NoError(t, err)
			assert.Equal(t, "<p>A new shop opened today in the city.</p>\n", conv.Content)

			_, err = a.Service().Convert(ctx, 42, domain.FormatAP)
			require.ErrorIs(t, err, domain.ErrConfiguration)
			assert.Equal(t, "API key not configured", domain.PublicMessage(err))

			_, err = a.Service().Convert(ctx, 99, domain.FormatAP)
			require.ErrorIs(t, err, domain.ErrNotFound)

			removed, err := a.Service().ClearCache(ctx)
			require.NoError(t, err)
			assert.Zero(t, removed)
		})
	}
}

func TestApplicationConvertsAPThroughOpenAIAndSQLCache(t *testing.T) {
	ctx := context.Background()

	var upstream atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstream.Add(1)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"KARACHI, Pakistan - A new shop opened Tuesday in the city.\n\nThe owner said sales were strong."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	cfg := testConfig(t, config.CacheBackendSQL)
	cfg.OpenAI.APIKey = "sk-test"
	cfg.OpenAI.BaseURL = srv.URL + "/v1"

	a, err := New(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NoError(t, a.Articles().Save(ctx, domain.Article{
		ID:    42,
		Title: "Shop Opens",
		Body:  "A new shop opened today in the city.",
	}))

	want := "<p>KARACHI, Pakistan - A new shop opened Tuesday in the city.</p>\n<p>The owner said sales were strong.</p>"

	first, err := a.Service().Convert(ctx, 42, domain.FormatAP)
	require.NoError(t, err)
	assert.Equal(t, want, first.Content)
	assert.False(t, first.Cached)

	var stored string
	require.NoError(t, a.db.QueryRowContext(ctx,
		"SELECT content FROM conversion_cache WHERE cache_key = ?", "ap_conversion_42").Scan(&stored))
	assert.Equal(t, want, stored)

	second, err := a.Service().Convert(ctx, 42, domain.FormatAP)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, want, second.Content)
	assert.Equal(t, int32(1), upstream.Load(), "cached conversion must not reach the API")
}

func TestApplicationRejectsUnknownCacheBackend(t *testing.T) {
	_, err := New(context.Background(), testConfig(t, "redis"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}
