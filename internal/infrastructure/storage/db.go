package storage

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	// Database drivers selected by DB.Driver.
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// sqlitePragmas follow the modernc.org/sqlite convention of one _pragma per setting.
const sqlitePragmas = "_pragma=foreign_keys(0)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS articles (
		id BIGINT PRIMARY KEY,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS conversion_cache (
		cache_key TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		expires_at BIGINT NOT NULL
	)`,
}

// DB couples a connection pool with the SQL dialect it speaks.
type DB struct {
	*sql.DB
	Driver string
}

// Open connects to the configured database; sqlite DSNs get WAL pragmas appended.
func Open(driver, dsn string) (*DB, error) {
	if dsn == "" {
		return nil, errors.New("dsn required")
	}

	switch driver {
	case DriverPostgres:
	case DriverSQLite:
		if !strings.Contains(dsn, "_pragma=") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + sqlitePragmas
		}
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", driver)
	}
	if driver == DriverSQLite {
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
	}

	return &DB{DB: conn, Driver: driver}, nil
}

// Migrate creates the articles and conversion_cache tables when missing.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "apply schema")
		}
	}
	return nil
}

// Builder returns a statement builder using the dialect's placeholders.
func (d *DB) Builder() sq.StatementBuilderType {
	if d.Driver == DriverPostgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}
