package user

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"digikul/internal/apperr"
)

type newAccount struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
	Role     Role   `validate:"oneof=student admin"`
}

// Service handles account registration.
type Service struct {
	repo     *Repository
	validate *validator.Validate
	log      *zap.Logger
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, validate: validator.New(), log: log}
}

// Register adds a student account. A taken username is not an error; the
// result says AlreadyExists and the stored record is unchanged.
func (s *Service) Register(ctx context.Context, username, password string) (InsertResult, error) {
	return s.AddUser(ctx, username, password, RoleStudent)
}

// AddUser adds an account with an explicit role.
func (s *Service) AddUser(ctx context.Context, username, password string, role Role) (InsertResult, error) {
	in := newAccount{Username: strings.TrimSpace(username), Password: password, Role: role}
	if err := s.validate.Struct(in); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && errs[0].Field() == "Role" {
			return 0, apperr.Validation("unknown role " + string(role))
		}
		return 0, apperr.Validation("please fill all fields")
	}
	username = in.Username
	res, err := s.repo.InsertOrIgnore(ctx, username, password, role)
	if err != nil {
		return 0, err
	}
	s.log.Info("user registration",
		zap.String("username", username),
		zap.String("role", string(role)),
		zap.Stringer("result", res),
	)
	return res, nil
}

// Seed inserts a default account when both fields are configured.
func (s *Service) Seed(ctx context.Context, username, password string, role Role) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := s.AddUser(ctx, username, password, role)
	return err
}

// Get looks a user up.
func (s *Service) Get(ctx context.Context, username string) (*User, error) {
	return s.repo.Get(ctx, username)
}

// ListStudents returns the student roster.
func (s *Service) ListStudents(ctx context.Context) ([]StudentSummary, error) {
	return s.repo.ListStudents(ctx)
}
