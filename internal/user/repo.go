package user

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Repository persists users.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a repo.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// InsertOrIgnore adds a user unless the username is taken. An existing
// record is left untouched.
func (r *Repository) InsertOrIgnore(ctx context.Context, username, password string, role Role) (InsertResult, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO users (username, password, role, face_registered)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (username) DO NOTHING
	`), username, password, string(role), false)
	if err != nil {
		return 0, errors.Wrap(err, "insert user")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "insert user")
	}
	if n == 0 {
		return AlreadyExists, nil
	}
	return Inserted, nil
}

// Get returns a user by username, or nil when absent.
func (r *Repository) Get(ctx context.Context, username string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, r.db.Rebind(`
		SELECT id, username, password, role, face_registered
		FROM users WHERE username = ?
	`), username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	return &u, nil
}

// MarkFaceRegistered sets the face flag. There is no path back to false.
func (r *Repository) MarkFaceRegistered(ctx context.Context, username string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET face_registered = ? WHERE username = ?`), true, username)
	return errors.Wrap(err, "mark face registered")
}

// ListStudents returns every student projected to username and face flag.
func (r *Repository) ListStudents(ctx context.Context) ([]StudentSummary, error) {
	students := []StudentSummary{}
	err := r.db.SelectContext(ctx, &students, r.db.Rebind(`
		SELECT username, face_registered FROM users WHERE role = ? ORDER BY id
	`), string(RoleStudent))
	if err != nil {
		return nil, errors.Wrap(err, "list students")
	}
	return students, nil
}
