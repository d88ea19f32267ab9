package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"digikul/internal/apperr"
	"digikul/internal/attendance"
	"digikul/internal/photos"
	"digikul/internal/user"
)

// MarkAttendance scans the uploaded frames (field "frames"), or the server
// camera, for the logged-in student's face.
func (h *Handler) MarkAttendance(c *gin.Context) {
	id, ok := h.require(c, user.RoleStudent)
	if !ok {
		return
	}
	maxAttempts, err := intParam(c, "max_attempts", h.recorder.MaxFrames())
	if err != nil {
		h.fail(c, err)
		return
	}
	if maxAttempts <= 0 {
		maxAttempts = h.recorder.MaxFrames()
	}
	frames, err := readFrames(c, "frames", maxAttempts)
	if err != nil {
		h.fail(c, err)
		return
	}
	src, release, err := h.source(c.Request.Context(), frames)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer release()

	res, err := h.recorder.MarkAttendance(c.Request.Context(), id.Username, src, maxAttempts)
	h.capture(c, http.StatusCreated, res, err)
}

// ListAttendance returns records newest first; admin only.
func (h *Handler) ListAttendance(c *gin.Context) {
	if _, ok := h.require(c, user.RoleAdmin); !ok {
		return
	}
	limit, err := intParam(c, "limit", 50)
	if err != nil {
		h.fail(c, err)
		return
	}
	offset, err := intParam(c, "offset", 0)
	if err != nil {
		h.fail(c, err)
		return
	}
	username := c.Query("username")

	records, err := h.attendance.List(c.Request.Context(), username, limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	total, err := h.attendance.Count(c.Request.Context(), username)
	if err != nil {
		h.fail(c, err)
		return
	}
	if records == nil {
		records = []attendance.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "total": total})
}

// AttendancePhoto serves the evidence photo of one record; admin only.
func (h *Handler) AttendancePhoto(c *gin.Context) {
	if _, ok := h.require(c, user.RoleAdmin); !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.fail(c, apperr.Validation("invalid record id"))
		return
	}
	rec, err := h.attendance.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if rec == nil {
		h.fail(c, apperr.NotFound("attendance record not found"))
		return
	}
	if rec.PhotoRef == nil || *rec.PhotoRef == "" {
		h.fail(c, apperr.NotFound("photo not found"))
		return
	}
	if photos.IsRemote(*rec.PhotoRef) {
		c.Redirect(http.StatusFound, *rec.PhotoRef)
		return
	}
	p, err := h.photos.Path(*rec.PhotoRef)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.File(p)
}
