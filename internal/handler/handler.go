// Package handler exposes the classroom actions over HTTP. Each route maps to
// one operation; the caller's session is restored from its bearer token by
// auth.Sessions and passed explicitly to the operation.
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"digikul/internal/apperr"
	"digikul/internal/attendance"
	"digikul/internal/auth"
	"digikul/internal/camera"
	"digikul/internal/faceclient"
	"digikul/internal/ledger"
	"digikul/internal/photos"
	"digikul/internal/session"
	"digikul/internal/store"
	"digikul/internal/user"
)

// Deps are the services a Handler dispatches to. Camera, Redis and Face may
// be nil.
type Deps struct {
	Users        *user.Service
	Sessions     *session.Controller
	Tokens       *auth.Tokens
	Recorder     *attendance.Recorder
	Attendance   *attendance.Repository
	Ledger       *ledger.Service
	Photos       *photos.Local
	Camera       *camera.Snapshot
	DB           *store.DB
	Redis        *store.Redis
	Face         *faceclient.Client
	ReferenceDoc string
	Log          *zap.Logger
}

type Handler struct {
	users      *user.Service
	sessions   *session.Controller
	tokens     *auth.Tokens
	recorder   *attendance.Recorder
	attendance *attendance.Repository
	ledger     *ledger.Service
	photos     *photos.Local
	camera     *camera.Snapshot
	db         *store.DB
	redis      *store.Redis
	face       *faceclient.Client
	refDoc     string
	log        *zap.Logger
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		users:      d.Users,
		sessions:   d.Sessions,
		tokens:     d.Tokens,
		recorder:   d.Recorder,
		attendance: d.Attendance,
		ledger:     d.Ledger,
		photos:     d.Photos,
		camera:     d.Camera,
		db:         d.DB,
		redis:      d.Redis,
		face:       d.Face,
		refDoc:     d.ReferenceDoc,
		log:        log,
	}
}

// fail writes err as {"error": msg} with the status its kind maps to.
func (h *Handler) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	msg := apperr.Message(err)
	if errors.Is(err, faceclient.ErrUnavailable) {
		status = http.StatusBadGateway
		msg = "face service unavailable"
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// require gates the request on the session's role.
func (h *Handler) require(c *gin.Context, roles ...user.Role) (session.Identity, bool) {
	id, err := auth.SessionFrom(c).Require(roles...)
	if err != nil {
		h.fail(c, err)
		return session.Identity{}, false
	}
	return id, true
}

// readFrames returns the files uploaded under field, at most limit of them.
// A request that is not multipart carries no frames.
func readFrames(c *gin.Context, field string, limit int) ([]camera.Frame, error) {
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Validation("invalid upload")
	}
	files := form.File[field]
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	frames := make([]camera.Frame, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		frames = append(frames, camera.Frame{Data: data, ContentType: fh.Header.Get("Content-Type")})
	}
	return frames, nil
}

// source picks the uploaded frames, or the server camera when nothing was
// uploaded. The returned func releases the camera.
func (h *Handler) source(ctx context.Context, frames []camera.Frame) (camera.Source, func(), error) {
	if len(frames) > 0 {
		return camera.NewSequence(frames...), func() {}, nil
	}
	if h.camera == nil {
		return nil, nil, apperr.Validation("no frames uploaded and no camera configured")
	}
	sess, err := h.camera.Open(ctx)
	if err != nil {
		return nil, nil, err
	}
	return sess, func() { _ = sess.Close() }, nil
}

func intParam(c *gin.Context, name string, def int) (int, error) {
	v := c.Query(name)
	if v == "" {
		v = c.PostForm(name)
	}
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperr.Validation(name + " must be a number")
	}
	return n, nil
}

type captureResponse struct {
	Detected bool               `json:"detected"`
	Attempts int                `json:"attempts"`
	PhotoRef string             `json:"photo_ref,omitempty"`
	Frame    []byte             `json:"frame,omitempty"`
	Record   *attendance.Record `json:"record,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// capture renders a recorder result. A capture error still returns the scan
// outcome so the client can show the last frame.
func (h *Handler) capture(c *gin.Context, status int, res attendance.Result, err error) {
	if err != nil && !apperr.Is(err, apperr.KindCapture) {
		h.fail(c, err)
		return
	}
	body := captureResponse{
		Detected: res.Detected,
		Attempts: res.Attempts,
		PhotoRef: res.PhotoRef,
		Frame:    res.Frame.Data,
		Record:   res.Record,
	}
	if err != nil {
		body.Error = apperr.Message(err)
		status = apperr.HTTPStatus(err)
	}
	c.JSON(status, body)
}
