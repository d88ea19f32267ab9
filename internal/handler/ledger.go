package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"digikul/internal/apperr"
	"digikul/internal/ledger"
	"digikul/internal/user"
)

type curriculumRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type feedbackRequest struct {
	Feedback string `json:"feedback"`
}

func (h *Handler) PostCurriculum(c *gin.Context) {
	if _, ok := h.require(c, user.RoleAdmin); !ok {
		return
	}
	var req curriculumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperr.Validation("invalid request body"))
		return
	}
	post, err := h.ledger.PostCurriculum(c.Request.Context(), req.Title, req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// ListCurriculum is the public notice board, newest first.
func (h *Handler) ListCurriculum(c *gin.Context) {
	posts, err := h.ledger.ListCurriculum(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if posts == nil {
		posts = []ledger.CurriculumPost{}
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *Handler) SubmitFeedback(c *gin.Context) {
	id, ok := h.require(c, user.RoleStudent)
	if !ok {
		return
	}
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperr.Validation("invalid request body"))
		return
	}
	entry, err := h.ledger.SubmitFeedback(c.Request.Context(), id.Username, req.Feedback)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) ListFeedback(c *gin.Context) {
	if _, ok := h.require(c, user.RoleAdmin); !ok {
		return
	}
	entries, err := h.ledger.ListFeedback(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if entries == nil {
		entries = []ledger.FeedbackEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"feedback": entries})
}
