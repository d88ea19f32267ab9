package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"digikul/internal/apperr"
	"digikul/internal/metrics"
)

type newPost struct {
	Title   string `validate:"required"`
	Content string `validate:"required"`
}

type newFeedback struct {
	Username string `validate:"required"`
	Content  string `validate:"required"`
}

// Service writes and lists the notice board and the feedback ledger.
type Service struct {
	repo     *Repository
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, validate: validator.New(), log: log, now: time.Now}
}

// PostCurriculum publishes a notice. Title and content must both be non-blank.
func (s *Service) PostCurriculum(ctx context.Context, title, content string) (CurriculumPost, error) {
	in := newPost{Title: strings.TrimSpace(title), Content: strings.TrimSpace(content)}
	if err := s.validate.Struct(in); err != nil {
		return CurriculumPost{}, apperr.Validation("fill both fields")
	}
	p, err := s.repo.InsertCurriculum(ctx, CurriculumPost{Title: in.Title, Content: in.Content, Timestamp: s.now().UTC()})
	if err != nil {
		return CurriculumPost{}, err
	}
	metrics.LedgerEntries.WithLabelValues("curriculum").Inc()
	s.log.Info("curriculum posted", zap.Int64("id", p.ID), zap.String("title", p.Title))
	return p, nil
}

// SubmitFeedback records a student's feedback. Blank text is rejected.
func (s *Service) SubmitFeedback(ctx context.Context, username, text string) (FeedbackEntry, error) {
	in := newFeedback{Username: username, Content: text}
	if strings.TrimSpace(text) == "" {
		in.Content = ""
	}
	if err := s.validate.Struct(in); err != nil {
		return FeedbackEntry{}, apperr.Validation("feedback cannot be empty")
	}
	f, err := s.repo.InsertFeedback(ctx, FeedbackEntry{Username: in.Username, Content: in.Content, Timestamp: s.now().UTC()})
	if err != nil {
		return FeedbackEntry{}, err
	}
	metrics.LedgerEntries.WithLabelValues("feedback").Inc()
	s.log.Info("feedback submitted", zap.Int64("id", f.ID), zap.String("username", f.Username))
	return f, nil
}

// ListCurriculum returns posts newest first.
func (s *Service) ListCurriculum(ctx context.Context) ([]CurriculumPost, error) {
	return s.repo.ListCurriculum(ctx)
}

// ListFeedback returns every feedback entry.
func (s *Service) ListFeedback(ctx context.Context) ([]FeedbackEntry, error) {
	return s.repo.ListFeedback(ctx)
}
