package attendance

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Record is one attendance mark. Records are written once and never updated.
type Record struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	PhotoRef  *string   `db:"photo_path" json:"photo_ref,omitempty"`
}

// Repository persists attendance records.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a repo.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends a record and returns it with its id.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO attendance (username, timestamp, photo_path)
		VALUES (?, ?, ?)
		RETURNING id
	`), rec.Username, rec.Timestamp, rec.PhotoRef).Scan(&rec.ID)
	if err != nil {
		return Record{}, errors.Wrap(err, "insert attendance")
	}
	return rec, nil
}

// Get returns a single record, or nil when absent.
func (r *Repository) Get(ctx context.Context, id int64) (*Record, error) {
	var rec Record
	err := r.db.GetContext(ctx, &rec, r.db.Rebind(`
		SELECT id, username, timestamp, photo_path FROM attendance WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get attendance")
	}
	return &rec, nil
}

// List returns records newest first, optionally for one user.
func (r *Repository) List(ctx context.Context, username string, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT id, username, timestamp, photo_path FROM attendance`
	args := []any{}
	if username != "" {
		query += ` WHERE username = ?`
		args = append(args, username)
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	records := []Record{}
	if err := r.db.SelectContext(ctx, &records, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "list attendance")
	}
	return records, nil
}

// Count returns the number of records for a user, or all records when
// username is empty.
func (r *Repository) Count(ctx context.Context, username string) (int, error) {
	query := `SELECT COUNT(*) FROM attendance`
	args := []any{}
	if username != "" {
		query += ` WHERE username = ?`
		args = append(args, username)
	}
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(query), args...); err != nil {
		return 0, errors.Wrap(err, "count attendance")
	}
	return n, nil
}
