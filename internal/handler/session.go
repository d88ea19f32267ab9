package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"digikul/internal/apperr"
	"digikul/internal/auth"
	"digikul/internal/metrics"
	"digikul/internal/user"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// Login checks the credentials for the claimed role and hands out a session
// token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperr.Validation("username, password and role are required"))
		return
	}
	role, err := user.ParseRole(req.Role)
	if err != nil {
		h.fail(c, apperr.Validation(err.Error()))
		return
	}

	sess, err := h.sessions.Login(c.Request.Context(), auth.SessionFrom(c), req.Username, req.Password, role)
	if err != nil {
		if apperr.Is(err, apperr.KindAuth) {
			metrics.Logins.WithLabelValues(string(role), "failure").Inc()
		}
		h.fail(c, err)
		return
	}
	id, _ := sess.Identity()
	tok, err := h.tokens.Issue(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	metrics.Logins.WithLabelValues(string(role), "success").Inc()
	h.log.Info("login", zap.String("username", id.Username), zap.String("role", string(id.Role)))

	body := gin.H{"token": tok.Value, "username": id.Username, "role": id.Role}
	if tok.ExpiresAt != nil {
		body["expires_at"] = tok.ExpiresAt.Unix()
	}
	c.JSON(http.StatusOK, body)
}

// WhoAmI reports the caller's session.
func (h *Handler) WhoAmI(c *gin.Context) {
	id, ok := auth.SessionFrom(c).Identity()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "username": id.Username, "role": id.Role})
}

// Logout always succeeds. The caller's token, if any, is revoked.
func (h *Handler) Logout(c *gin.Context) {
	h.sessions.Logout(auth.SessionFrom(c))
	if claims, ok := auth.ClaimsFrom(c); ok {
		if err := h.tokens.Revoke(c.Request.Context(), claims); err != nil {
			h.log.Warn("token revocation failed", zap.String("username", claims.Subject), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}
