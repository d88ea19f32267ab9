package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"digikul/internal/session"
	"digikul/internal/user"
)

// Token is a signed session token handed to the client at login.
type Token struct {
	Value     string
	ID        string
	ExpiresAt *time.Time
}

// Claims represents JWT payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Identity returns the session identity the claims carry.
func (c Claims) Identity() session.Identity {
	return session.Identity{Username: c.Subject, Role: user.Role(c.Role)}
}

// Tokens issues, parses and revokes session tokens.
type Tokens struct {
	issuer  string
	key     []byte
	ttl     time.Duration
	revoked Revocations
	now     func() time.Time
}

// NewTokens creates a token service. A zero ttl issues tokens that never
// expire; they end only through logout.
func NewTokens(issuer, key string, ttl time.Duration, revoked Revocations) *Tokens {
	return &Tokens{issuer: issuer, key: []byte(key), ttl: ttl, revoked: revoked, now: time.Now}
}

// Issue signs a token for an authenticated identity.
func (t *Tokens) Issue(id session.Identity) (Token, error) {
	now := t.now()
	claims := Claims{
		Role: string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Issuer:   t.issuer,
			Subject:  id.Username,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	tok := Token{ID: claims.ID}
	if t.ttl > 0 {
		exp := now.Add(t.ttl)
		claims.ExpiresAt = jwt.NewNumericDate(exp)
		tok.ExpiresAt = &exp
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return Token{}, err
	}
	tok.Value = signed
	return tok, nil
}

// Parse validates a token, including revocation, and returns claims.
func (t *Tokens) Parse(ctx context.Context, tokenStr string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return t.key, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if t.issuer != "" && claims.Issuer != t.issuer {
		return Claims{}, errors.New("issuer mismatch")
	}
	if _, err := user.ParseRole(claims.Role); err != nil || claims.Subject == "" {
		return Claims{}, errors.New("invalid identity")
	}
	revoked, err := t.revoked.Revoked(ctx, claims.ID)
	if err != nil {
		return Claims{}, err
	}
	if revoked {
		return Claims{}, errors.New("token revoked")
	}
	return *claims, nil
}

// Revoke ends the session a token represents.
func (t *Tokens) Revoke(ctx context.Context, claims Claims) error {
	var until time.Time
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return t.revoked.Revoke(ctx, claims.ID, until)
}
