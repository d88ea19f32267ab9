package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"digikul/internal/apperr"
	"digikul/internal/camera"
	"digikul/internal/metrics"
	"digikul/internal/photos"
	"digikul/internal/user"
)

// DefaultMaxFrames bounds an attendance scan when the caller gives no limit.
const DefaultMaxFrames = 20

// Users is the part of the user store the recorder touches.
type Users interface {
	Get(ctx context.Context, username string) (*user.User, error)
	MarkFaceRegistered(ctx context.Context, username string) error
}

// PhotoStore keeps captured frames and returns a reference to them.
type PhotoStore interface {
	Save(ctx context.Context, key string, f camera.Frame) (string, error)
}

// Result is what a capture operation hands back for display.
type Result struct {
	Detected bool
	Frame    camera.Frame
	Attempts int
	PhotoRef string
	Record   *Record
}

// Recorder runs capture → detect → persist as one operation.
type Recorder struct {
	users     Users
	repo      *Repository
	photos    PhotoStore
	face      Detector
	maxFrames int
	log       *zap.Logger
	now       func() time.Time
}

// NewRecorder creates a recorder. maxFrames <= 0 uses DefaultMaxFrames.
func NewRecorder(users Users, repo *Repository, store PhotoStore, face Detector, maxFrames int, log *zap.Logger) *Recorder {
	if maxFrames <= 0 {
		maxFrames = DefaultMaxFrames
	}
	return &Recorder{
		users:     users,
		repo:      repo,
		photos:    store,
		face:      face,
		maxFrames: maxFrames,
		log:       log,
		now:       time.Now,
	}
}

// MaxFrames is the default scan bound.
func (r *Recorder) MaxFrames() int { return r.maxFrames }

// RegisterFace captures a single frame. When it shows a face the frame is
// kept as the user's registered face and the user's face flag is set.
// Otherwise nothing is written.
func (r *Recorder) RegisterFace(ctx context.Context, username string, src camera.Source) (Result, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Result{}, apperr.Validation("enter username first")
	}
	u, err := r.users.Get(ctx, username)
	if err != nil {
		return Result{}, err
	}
	if u == nil {
		return Result{}, apperr.NotFound("user not found")
	}

	scan, err := ScanFrames(ctx, src, r.face, 1)
	metrics.FramesScanned.Add(float64(scan.Attempts))
	res := Result{Detected: scan.Detected, Frame: scan.Frame, Attempts: scan.Attempts}
	if err != nil {
		metrics.FaceCaptures.WithLabelValues("register", "error").Inc()
		return res, err
	}
	if !scan.Detected {
		metrics.FaceCaptures.WithLabelValues("register", "not_detected").Inc()
		return res, apperr.Capture("no face detected, try again")
	}

	ref, err := r.photos.Save(ctx, photos.RegisteredFaceKey(u.Username), scan.Frame)
	if err != nil {
		metrics.FaceCaptures.WithLabelValues("register", "error").Inc()
		return res, err
	}
	if err := r.users.MarkFaceRegistered(ctx, u.Username); err != nil {
		metrics.FaceCaptures.WithLabelValues("register", "error").Inc()
		return res, err
	}
	res.PhotoRef = ref
	metrics.FaceCaptures.WithLabelValues("register", "detected").Inc()
	r.log.Info("face registered", zap.String("username", u.Username), zap.String("photo", ref))
	return res, nil
}

// MarkAttendance polls src for up to maxAttempts frames. The first frame
// with a face is stored and exactly one attendance record is written; if no
// frame shows a face nothing is written and a capture error is returned.
func (r *Recorder) MarkAttendance(ctx context.Context, username string, src camera.Source, maxAttempts int) (Result, error) {
	if username == "" {
		return Result{}, apperr.Validation("username required")
	}
	if maxAttempts <= 0 {
		maxAttempts = r.maxFrames
	}

	scan, err := ScanFrames(ctx, src, r.face, maxAttempts)
	metrics.FramesScanned.Add(float64(scan.Attempts))
	res := Result{Detected: scan.Detected, Frame: scan.Frame, Attempts: scan.Attempts}
	if err != nil {
		metrics.FaceCaptures.WithLabelValues("attendance", "error").Inc()
		return res, err
	}
	if !scan.Detected {
		metrics.FaceCaptures.WithLabelValues("attendance", "not_detected").Inc()
		r.log.Info("attendance not marked", zap.String("username", username), zap.Int("attempts", scan.Attempts))
		return res, apperr.Capture("no face detected, try again")
	}

	now := r.now().UTC()
	rec := Record{Username: username, Timestamp: now}
	key := photos.AttendanceKey(username, fmt.Sprintf("%d_%s", now.Unix(), uuid.NewString()[:8]))
	if ref, err := r.photos.Save(ctx, key, scan.Frame); err != nil {
		r.log.Warn("attendance photo not saved", zap.String("username", username), zap.Error(err))
	} else {
		rec.PhotoRef = &ref
		res.PhotoRef = ref
	}

	rec, err = r.repo.Insert(ctx, rec)
	if err != nil {
		metrics.FaceCaptures.WithLabelValues("attendance", "error").Inc()
		if res.PhotoRef != "" {
			r.log.Warn("attendance photo orphaned",
				zap.String("username", username),
				zap.String("photo", res.PhotoRef),
				zap.Error(err),
			)
		}
		return res, err
	}
	res.Record = &rec
	metrics.FaceCaptures.WithLabelValues("attendance", "detected").Inc()
	r.log.Info("attendance marked",
		zap.String("username", username),
		zap.Int64("record", rec.ID),
		zap.Int("attempts", scan.Attempts),
	)
	return res, nil
}
