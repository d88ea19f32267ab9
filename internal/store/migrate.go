package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role     TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		username   TEXT NOT NULL,
		timestamp  DATETIME NOT NULL,
		photo_path TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		username  TEXT NOT NULL,
		feedback  TEXT NOT NULL,
		timestamp DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS curriculum (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		title     TEXT NOT NULL,
		content   TEXT NOT NULL,
		timestamp DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_username ON attendance(username)`,
	`CREATE TABLE IF NOT EXISTS revoked_sessions (
		id         TEXT PRIMARY KEY,
		expires_at DATETIME
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id       BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role     TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id         BIGSERIAL PRIMARY KEY,
		username   TEXT NOT NULL,
		timestamp  TIMESTAMPTZ NOT NULL,
		photo_path TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id        BIGSERIAL PRIMARY KEY,
		username  TEXT NOT NULL,
		feedback  TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS curriculum (
		id        BIGSERIAL PRIMARY KEY,
		title     TEXT NOT NULL,
		content   TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_username ON attendance(username)`,
	`CREATE TABLE IF NOT EXISTS revoked_sessions (
		id         TEXT PRIMARY KEY,
		expires_at TIMESTAMPTZ
	)`,
}

// Migrate creates the four collections and the session revocation list if
// missing, and upgrades user tables created before face registration existed.
func (d *DB) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if d.Dialect == Postgres {
		schema = postgresSchema
	}
	for _, stmt := range schema {
		if _, err := d.Client.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "migrate")
		}
	}
	return d.addFaceRegistered(ctx)
}

func (d *DB) addFaceRegistered(ctx context.Context) error {
	if d.Dialect == Postgres {
		_, err := d.Client.ExecContext(ctx,
			`ALTER TABLE users ADD COLUMN IF NOT EXISTS face_registered BOOLEAN NOT NULL DEFAULT FALSE`)
		return errors.Wrap(err, "migrate face_registered")
	}
	_, err := d.Client.ExecContext(ctx,
		`ALTER TABLE users ADD COLUMN face_registered BOOLEAN NOT NULL DEFAULT 0`)
	if err != nil && !strings.Contains(err.Error(), "duplicate column") {
		return errors.Wrap(err, "migrate face_registered")
	}
	return nil
}
