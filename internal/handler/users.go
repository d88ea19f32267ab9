package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"digikul/internal/apperr"
	"digikul/internal/user"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a student account. A taken username answers 200 with
// created=false and leaves the stored account alone.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperr.Validation("invalid request body"))
		return
	}
	res, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	if res == user.AlreadyExists {
		c.JSON(http.StatusOK, gin.H{"created": false, "message": "username already exists"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": true, "message": "registered, now capture your face"})
}

// CaptureFace registers a face for :username from one uploaded frame (field
// "frame") or one camera snapshot.
func (h *Handler) CaptureFace(c *gin.Context) {
	frames, err := readFrames(c, "frame", 1)
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

	res, err := h.recorder.RegisterFace(c.Request.Context(), c.Param("username"), src)
	h.capture(c, http.StatusOK, res, err)
}

// ListStudents returns every student and whether their face is registered.
func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.users.ListStudents(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if students == nil {
		students = []user.StudentSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}
