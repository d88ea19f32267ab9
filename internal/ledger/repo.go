package ledger

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// CurriculumPost is a notice-board entry.
type CurriculumPost struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// FeedbackEntry is what a student wrote after class.
type FeedbackEntry struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Content   string    `db:"feedback" json:"content"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// Repository is insert-and-list only; there is no update or delete.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a repo.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) InsertCurriculum(ctx context.Context, p CurriculumPost) (CurriculumPost, error) {
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO curriculum (title, content, timestamp) VALUES (?, ?, ?) RETURNING id
	`), p.Title, p.Content, p.Timestamp).Scan(&p.ID)
	if err != nil {
		return CurriculumPost{}, errors.Wrap(err, "insert curriculum")
	}
	return p, nil
}

// ListCurriculum returns posts newest first.
func (r *Repository) ListCurriculum(ctx context.Context) ([]CurriculumPost, error) {
	posts := []CurriculumPost{}
	err := r.db.SelectContext(ctx, &posts, `SELECT id, title, content, timestamp FROM curriculum ORDER BY id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "list curriculum")
	}
	return posts, nil
}

func (r *Repository) InsertFeedback(ctx context.Context, f FeedbackEntry) (FeedbackEntry, error) {
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO feedback (username, feedback, timestamp) VALUES (?, ?, ?) RETURNING id
	`), f.Username, f.Content, f.Timestamp).Scan(&f.ID)
	if err != nil {
		return FeedbackEntry{}, errors.Wrap(err, "insert feedback")
	}
	return f, nil
}

// ListFeedback returns entries in submission order.
func (r *Repository) ListFeedback(ctx context.Context) ([]FeedbackEntry, error) {
	entries := []FeedbackEntry{}
	err := r.db.SelectContext(ctx, &entries, `SELECT id, username, feedback, timestamp FROM feedback ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list feedback")
	}
	return entries, nil
}
