package attendance

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"digikul/internal/apperr"
	"digikul/internal/camera"
	"digikul/internal/store"
	"digikul/internal/user"
)

type memPhotos struct {
	saved map[string][]byte
	err   error
}

func (m *memPhotos) Save(_ context.Context, key string, f camera.Frame) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[key] = f.Data
	return key, nil
}

type fixture struct {
	db       *store.DB
	recorder *Recorder
	repo     *Repository
	users    *user.Repository
	photos   *memPhotos
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := store.NewDB(ctx, filepath.Join(t.TempDir(), "attendance.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := user.NewRepository(db.Client)
	_, err = users.InsertOrIgnore(ctx, "asha", "pw", user.RoleStudent)
	require.NoError(t, err)

	repo := NewRepository(db.Client)
	ph := &memPhotos{}
	return &fixture{
		db:       db,
		recorder: NewRecorder(users, repo, ph, &faceIf{}, 0, zaptest.NewLogger(t)),
		repo:     repo,
		users:    users,
		photos:   ph,
	}
}

func TestMarkAttendanceFaceAtFrameK(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seq := camera.NewSequence(frames("wall", "face", "face", "face")...)

	res, err := f.recorder.MarkAttendance(ctx, "asha", seq, 4)
	require.NoError(t, err)
	assert.True(t, res.Detected)
	assert.Equal(t, 2, seq.Consumed())
	require.NotNil(t, res.Record)
	require.NotNil(t, res.Record.PhotoRef)
	assert.Equal(t, "face", string(f.photos.saved[*res.Record.PhotoRef]))

	n, err := f.repo.Count(ctx, "asha")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.repo.Get(ctx, res.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, "asha", got.Username)
	assert.Equal(t, res.PhotoRef, *got.PhotoRef)
}

func TestMarkAttendanceNoFace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seq := camera.NewSequence(frames("wall", "wall", "wall")...)

	res, err := f.recorder.MarkAttendance(ctx, "asha", seq, 3)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindCapture))
	assert.False(t, res.Detected)
	assert.Nil(t, res.Record)
	assert.Empty(t, f.photos.saved)

	n, err := f.repo.Count(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMarkAttendanceDefaultBudget(t *testing.T) {
	f := newFixture(t)
	walls := make([]string, 30)
	for i := range walls {
		walls[i] = "wall"
	}
	seq := camera.NewSequence(frames(walls...)...)

	_, err := f.recorder.MarkAttendance(context.Background(), "asha", seq, 0)
	require.Error(t, err)
	assert.Equal(t, DefaultMaxFrames, seq.Consumed())
}

func TestMarkAttendanceKeepsRecordWhenPhotoFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.photos.err = errors.New("disk full")

	res, err := f.recorder.MarkAttendance(ctx, "asha", camera.NewSequence(frames("face")...), 1)
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	assert.Nil(t, res.Record.PhotoRef)

	got, err := f.repo.Get(ctx, res.Record.ID)
	require.NoError(t, err)
	assert.Nil(t, got.PhotoRef)
}

func TestMarkAttendanceLogsPhotoWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zapcore.WarnLevel)
	rec := NewRecorder(f.users, f.repo, f.photos, &faceIf{}, 0, zap.New(core))
	require.NoError(t, f.db.Close())

	res, err := rec.MarkAttendance(context.Background(), "asha", camera.NewSequence(frames("face")...), 1)
	require.Error(t, err)
	assert.Nil(t, res.Record)
	require.Len(t, f.photos.saved, 1)

	orphaned := logs.FilterMessage("attendance photo orphaned").All()
	require.Len(t, orphaned, 1)
	assert.Equal(t, res.PhotoRef, orphaned[0].ContextMap()["photo"])
	assert.Contains(t, f.photos.saved, res.PhotoRef)
}

func TestRegisterFace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// no face: flag untouched, nothing written
	res, err := f.recorder.RegisterFace(ctx, "asha", camera.NewSequence(frames("wall", "face")...))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindCapture))
	assert.Equal(t, "wall", string(res.Frame.Data))
	assert.Empty(t, f.photos.saved)
	u, err := f.users.Get(ctx, "asha")
	require.NoError(t, err)
	assert.False(t, u.FaceRegistered)

	// face: one photo, flag set
	seq := camera.NewSequence(frames("face", "face")...)
	res, err = f.recorder.RegisterFace(ctx, "asha", seq)
	require.NoError(t, err)
	assert.True(t, res.Detected)
	assert.Equal(t, "registered_faces/asha.jpg", res.PhotoRef)
	assert.Equal(t, 1, seq.Consumed())
	assert.Len(t, f.photos.saved, 1)
	u, err = f.users.Get(ctx, "asha")
	require.NoError(t, err)
	assert.True(t, u.FaceRegistered)

	n, err := f.repo.Count(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n, "registering a face does not mark attendance")
}

func TestRegisterFaceErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.recorder.RegisterFace(ctx, " ", camera.NewSequence(frames("face")...))
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.recorder.RegisterFace(ctx, "ghost", camera.NewSequence(frames("face")...))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	f.photos.err = errors.New("disk full")
	_, err = f.recorder.RegisterFace(ctx, "asha", camera.NewSequence(frames("face")...))
	require.Error(t, err)
	u, err := f.users.Get(ctx, "asha")
	require.NoError(t, err)
	assert.False(t, u.FaceRegistered)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, name := range []string{"asha", "ravi", "asha"} {
		_, err := f.repo.Insert(ctx, Record{Username: name})
		require.NoError(t, err)
	}

	all, err := f.repo.List(ctx, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Greater(t, all[0].ID, all[1].ID)
	assert.Greater(t, all[1].ID, all[2].ID)

	mine, err := f.repo.List(ctx, "asha", 1, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, all[0].ID, mine[0].ID)

	missing, err := f.repo.Get(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
