package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"digikul/internal/apperr"
)

// Healthz reports the database and, when configured, redis and the face
// service.
func (h *Handler) Healthz(c *gin.Context) {
	ctx := c.Request.Context()
	healthy := h.db.Healthy(ctx)
	body := gin.H{"db": healthy}
	if h.redis != nil {
		ok := h.redis.Healthy(ctx)
		body["redis"] = ok
		healthy = healthy && ok
	}
	if h.face != nil {
		ok := h.face.Health(ctx) == nil
		body["face_service"] = ok
		healthy = healthy && ok
	}
	status := http.StatusOK
	body["status"] = "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}

// ReferenceDoc downloads the static reference PDF.
func (h *Handler) ReferenceDoc(c *gin.Context) {
	if _, err := os.Stat(h.refDoc); err != nil {
		h.fail(c, apperr.NotFound("reference document not available"))
		return
	}
	c.FileAttachment(h.refDoc, "grains_basics.pdf")
}
