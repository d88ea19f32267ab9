package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"digikul/internal/session"
)

const (
	sessionKey = "session"
	claimsKey  = "claims"
)

// Sessions restores the caller's session from a bearer token. Requests
// without a valid token continue as anonymous; handlers decide what that
// permits.
func Sessions(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.Anonymous()
		if raw, ok := bearer(c.GetHeader("Authorization")); ok {
			if claims, err := tokens.Parse(c.Request.Context(), raw); err == nil {
				sess = session.Authenticated(claims.Identity())
				c.Set(claimsKey, claims)
			} else {
				_ = c.Error(err)
			}
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// SessionFrom returns the session restored by Sessions.
func SessionFrom(c *gin.Context) session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(session.Session); ok {
			return s
		}
	}
	return session.Anonymous()
}

// ClaimsFrom returns the token claims of an authenticated request.
func ClaimsFrom(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}

func bearer(authz string) (string, bool) {
	if len(authz) < len("bearer ") || !strings.EqualFold(authz[:len("bearer ")], "bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(authz[len("bearer "):])
	return tok, tok != ""
}
