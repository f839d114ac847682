package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FormatConverter/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "articles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "user@/db")
	require.Error(t, err)

	_, err = Open(DriverSQLite, "")
	require.Error(t, err)
}

func TestArticleRepositorySaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository(openTestDB(t))

	updated := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, domain.Article{
		ID:        42,
		Title:     "Shop Opens",
		Body:      "<p>A new shop opened today in the city.</p>",
		UpdatedAt: updated,
	}))

	got, err := repo.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.ID)
	assert.Equal(t, "Shop Opens", got.Title)
	assert.Equal(t, "<p>A new shop opened today in the city.</p>", got.Body)
	assert.True(t, updated.Equal(got.UpdatedAt))

	require.NoError(t, repo.Save(ctx, domain.Article{ID: 42, Title: "Shop Opens", Body: "<p>Edited.</p>"}))
	got, err = repo.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "<p>Edited.</p>", got.Body)
}

func TestArticleRepositoryMissing(t *testing.T) {
	repo := NewArticleRepository(openTestDB(t))

	_, err := repo.Get(context.Background(), 99)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Article not found", domain.PublicMessage(err))
}

func TestBuilderPlaceholders(t *testing.T) {
	pg := &DB{Driver: DriverPostgres}
	query, _, err := pg.Builder().Select("id").From("articles").Where("id = ?", 1).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM articles WHERE id = $1", query)

	lite := &DB{Driver: DriverSQLite}
	query, _, err = lite.Builder().Select("id").From("articles").Where("id = ?", 1).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM articles WHERE id = ?", query)
}
