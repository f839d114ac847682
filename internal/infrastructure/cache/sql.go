package cache

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"FormatConverter/internal/infrastructure/storage"
	"FormatConverter/internal/ports"
)

const cacheTable = "conversion_cache"

// SQL persists conversions in the conversion_cache table so they survive restarts.
// Expiry is checked on read; PurgeExpired reclaims the rows.
type SQL struct {
	db         *storage.DB
	defaultTTL time.Duration
	now        func() time.Time
}

var _ ports.TTLCache = (*SQL)(nil)
var _ ports.ExpiringStore = (*SQL)(nil)

// NewSQL wires a migrated database handle.
func NewSQL(db *storage.DB, ttl time.Duration) *SQL {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &SQL{db: db, defaultTTL: ttl, now: time.Now}
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := s.db.Builder().
		Select("content").
		From(cacheTable).
		Where(sq.Eq{"cache_key": key}).
		Where(sq.Gt{"expires_at": s.now().Unix()}).
		ToSql()
	if err != nil {
		return "", false, errors.Wrap(err, "build cache lookup")
	}

	var content string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "read cache entry %s", key)
	}
	return content, true, nil
}

func (s *SQL) Set(ctx context.Context, key, content string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	query, args, err := s.db.Builder().
		Insert(cacheTable).
		Columns("cache_key", "content", "expires_at").
		Values(key, content, s.now().Add(ttl).Unix()).
		Suffix("ON CONFLICT (cache_key) DO UPDATE SET content = EXCLUDED.content, expires_at = EXCLUDED.expires_at").
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build cache upsert")
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "write cache entry %s", key)
	}
	return nil
}

// Clear deletes an exact key, or every key sharing the prefix before a trailing "*".
func (s *SQL) Clear(ctx context.Context, pattern string) (int, error) {
	var cond sq.Sqlizer = sq.Eq{"cache_key": pattern}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		cond = sq.Expr("substr(cache_key, 1, ?) = ?", len(prefix), prefix)
	}
	return s.delete(ctx, cond)
}

func (s *SQL) PurgeExpired(ctx context.Context) (int, error) {
	return s.delete(ctx, sq.LtOrEq{"expires_at": s.now().Unix()})
}

func (s *SQL) delete(ctx context.Context, cond sq.Sqlizer) (int, error) {
	query, args, err := s.db.Builder().Delete(cacheTable).Where(cond).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "build cache delete")
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "delete cache entries")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "count deleted cache entries")
	}
	return int(n), nil
}
