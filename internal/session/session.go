// Package session holds the access state machine. A Session is either
// anonymous or authenticated as one (username, role) identity; it moves
// between the two only through Login and Logout and is passed explicitly to
// every operation that needs it.
package session

import (
	"context"
	"slices"

	"digikul/internal/apperr"
	"digikul/internal/user"
)

// Identity is established at login and lives only as long as the session.
type Identity struct {
	Username string    `json:"username"`
	Role     user.Role `json:"role"`
}

// Session is a value; the zero Session is anonymous.
type Session struct {
	identity *Identity
}

// Anonymous returns the logged-out session.
func Anonymous() Session { return Session{} }

// Authenticated builds a session for an identity that was already verified,
// e.g. one restored from a signed token.
func Authenticated(id Identity) Session { return Session{identity: &id} }

// Identity returns the current identity, if any.
func (s Session) Identity() (Identity, bool) {
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// Authenticated reports whether someone is logged in.
func (s Session) Authenticated() bool { return s.identity != nil }

// Require gates an operation on the session's role.
func (s Session) Require(roles ...user.Role) (Identity, error) {
	if s.identity == nil {
		return Identity{}, apperr.Auth("login required")
	}
	if len(roles) > 0 && !slices.Contains(roles, s.identity.Role) {
		return Identity{}, apperr.Forbidden("not permitted for role " + string(s.identity.Role))
	}
	return *s.identity, nil
}

// Credentials looks users up by username.
type Credentials interface {
	Get(ctx context.Context, username string) (*user.User, error)
}

// Controller performs the two session transitions.
type Controller struct {
	users Credentials
}

// NewController creates a controller over a credential store.
func NewController(users Credentials) *Controller {
	return &Controller{users: users}
}

// Login authenticates when username, password and role all equal a stored
// user's values. On any mismatch the given session is returned unchanged
// with an auth error; a wrong role is not told apart from a wrong password.
func (c *Controller) Login(ctx context.Context, s Session, username, password string, role user.Role) (Session, error) {
	u, err := c.users.Get(ctx, username)
	if err != nil {
		return s, err
	}
	if u == nil || u.Password != password || u.Role != role {
		return s, apperr.Auth("invalid credentials")
	}
	return Authenticated(Identity{Username: u.Username, Role: u.Role}), nil
}

// Logout always succeeds.
func (c *Controller) Logout(Session) Session {
	return Anonymous()
}
