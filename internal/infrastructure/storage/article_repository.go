package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"FormatConverter/internal/domain"
	"FormatConverter/internal/ports"
)

// ArticleRepository reads and writes articles in the SQL content store.
type ArticleRepository struct {
	db *DB
}

var _ ports.ArticleRepository = (*ArticleRepository)(nil)
var _ ports.ArticleWriter = (*ArticleRepository)(nil)

// NewArticleRepository wires a DB implementation.
func NewArticleRepository(db *DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Get loads a single article; a missing row is reported as domain.NotFound.
func (r *ArticleRepository) Get(ctx context.Context, id int64) (domain.Article, error) {
	query, args, err := r.db.Builder().
		Select("id", "title", "body", "updated_at").
		From("articles").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return domain.Article{}, errors.Wrap(err, "build article query")
	}

	var (
		article domain.Article
		updated int64
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&article.ID, &article.Title, &article.Body, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Article{}, domain.NotFound("Article not found")
	}
	if err != nil {
		return domain.Article{}, errors.Wrapf(err, "query article %d", id)
	}
	article.UpdatedAt = time.Unix(updated, 0).UTC()

	return article, nil
}

// Save upserts the article snapshot.
func (r *ArticleRepository) Save(ctx context.Context, article domain.Article) error {
	if article.UpdatedAt.IsZero() {
		article.UpdatedAt = time.Now()
	}

	query, args, err := r.db.Builder().
		Insert("articles").
		Columns("id", "title", "body", "updated_at").
		Values(article.ID, article.Title, article.Body, article.UpdatedAt.Unix()).
		Suffix(`ON CONFLICT (id) DO UPDATE
			SET title = EXCLUDED.title,
				body = EXCLUDED.body,
				updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build article upsert")
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "upsert article %d", article.ID)
	}

	return nil
}
