package user

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"digikul/internal/apperr"
	"digikul/internal/store"
)

func newTestService(t *testing.T) (*Service, *Repository) {
	t.Helper()
	db, err := store.NewDB(context.Background(), filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := NewRepository(db.Client)
	return NewService(repo, zaptest.NewLogger(t)), repo
}

func TestRegisterDuplicateKeepsOneRecord(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	res, err := svc.Register(ctx, "asha", "pw1")
	require.NoError(t, err)
	assert.Equal(t, Inserted, res)

	res, err = svc.Register(ctx, "asha", "other")
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, res)

	students, err := repo.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)

	u, err := repo.Get(ctx, "asha")
	require.NoError(t, err)
	assert.Equal(t, "pw1", u.Password)
}

func TestFaceRegisteredStartsFalse(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	_, err := svc.Register(ctx, "ravi", "pw")
	require.NoError(t, err)

	u, err := repo.Get(ctx, "ravi")
	require.NoError(t, err)
	assert.False(t, u.FaceRegistered)
	assert.Equal(t, RoleStudent, u.Role)

	require.NoError(t, repo.MarkFaceRegistered(ctx, "ravi"))
	u, err = repo.Get(ctx, "ravi")
	require.NoError(t, err)
	assert.True(t, u.FaceRegistered)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	for _, tc := range []struct{ username, password string }{
		{"", "pw"},
		{"   ", "pw"},
		{"name", ""},
	} {
		_, err := svc.Register(ctx, tc.username, tc.password)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "%q/%q", tc.username, tc.password)
		assert.EqualError(t, err, "please fill all fields")
	}
	_, err := svc.AddUser(ctx, "x", "y", Role("teacher"))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.EqualError(t, err, "unknown role teacher")

	students, err := repo.ListStudents(ctx)
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestListStudentsOmitsAdmins(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	require.NoError(t, svc.Seed(ctx, "root", "pw", RoleAdmin))
	require.NoError(t, svc.Seed(ctx, "", "", RoleStudent))
	_, err := svc.Register(ctx, "s1", "pw")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "s2", "pw")
	require.NoError(t, err)

	students, err := repo.ListStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []StudentSummary{{Username: "s1"}, {Username: "s2"}}, students)

	missing, err := repo.Get(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
