// Package session keeps the authenticated principal of a browser session in a
// store keyed by an HttpOnly cookie, and exposes it to handlers through the
// request context.
package session

import (
	"context"

	"github.com/tuanvumaihuynh/digital-store/internal/model"
)

// Principal is the user a session is logged in as.
type Principal struct {
	UserID    int64      `json:"user_id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
}

func PrincipalFromUser(u model.User) Principal {
	return Principal{
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// Session is the per-request view of a session. A session without a
// principal is anonymous.
type Session struct {
	ID        string
	Principal *Principal
}

func (s *Session) IsLoggedIn() bool {
	return s != nil && s.Principal != nil
}

func (s *Session) Role() model.Role {
	if !s.IsLoggedIn() {
		return ""
	}
	return s.Principal.Role
}

func (s *Session) IsAdmin() bool {
	return s.Role() == model.RoleAdmin
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying sess.
func NewContext(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

// FromContext returns the session of the request. It never returns nil; a
// request without a session gets an anonymous one.
func FromContext(ctx context.Context) *Session {
	if sess, ok := ctx.Value(ctxKey{}).(*Session); ok && sess != nil {
		return sess
	}
	return &Session{}
}
