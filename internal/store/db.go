package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Dialect names the SQL backend behind a DB.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "pgx"
)

// DB wraps the classroom database: a local sqlite file by default, postgres
// through pgx when given a postgres:// URL.
type DB struct {
	Client  *sqlx.DB
	Dialect Dialect
}

// NewDB opens the database, pings it and applies migrations.
func NewDB(ctx context.Context, dsn string) (*DB, error) {
	dialect := SQLite
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialect = Postgres
	}

	var (
		db  *sqlx.DB
		err error
	)
	switch dialect {
	case Postgres:
		db, err = sqlx.Open(string(Postgres), dsn)
		if err != nil {
			return nil, errors.Wrap(err, "open postgres")
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	default:
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Wrap(err, "create db dir")
			}
		}
		db, err = sqlx.Open(string(SQLite), dsn+"?_journal_mode=WAL&_busy_timeout=5000")
		if err != nil {
			return nil, errors.Wrap(err, "open sqlite")
		}
		// one writer; the service handles one action at a time
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping db")
	}
	d := &DB{Client: db, Dialect: dialect}
	if err := d.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

// Healthy verifies the database answers.
func (d *DB) Healthy(ctx context.Context) bool {
	if d == nil || d.Client == nil {
		return false
	}
	return d.Client.PingContext(ctx) == nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
