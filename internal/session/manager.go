package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/digital-store/internal/config"
)

type Manager struct {
	cfg    config.Session
	store  Store
	logger *slog.Logger
}

func NewManager(cfg config.Session, store Store, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		store:  store,
		logger: logger.With(slog.String("component", "session")),
	}
}

// Middleware loads the session named by the request cookie into the request
// context. Unknown or expired ids yield an anonymous session.
func (m *Manager) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := &Session{}

			if cookie, err := r.Cookie(m.cfg.CookieName); err == nil && cookie.Value != "" {
				p, ok, err := m.store.Load(r.Context(), cookie.Value)
				switch {
				case err != nil:
					m.logger.WarnContext(r.Context(), "error loading session", slog.Any("error", err))
				case ok:
					sess.ID = cookie.Value
					sess.Principal = p
				}
			}

			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))
		})
	}
}

// Login stores p under a freshly issued session id, drops the previous
// session of the request and sets the cookie.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, p Principal) (*Session, error) {
	if old := FromContext(ctx); old.ID != "" {
		if err := m.store.Delete(ctx, old.ID); err != nil {
			return nil, fmt.Errorf("delete previous session: %w", err)
		}
	}

	id := uuid.NewString()
	if err := m.store.Save(ctx, id, p, m.cfg.TTL); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	http.SetCookie(w, m.cookie(id, int(m.cfg.TTL.Seconds())))

	return &Session{ID: id, Principal: &p}, nil
}

// Logout destroys the request session and expires the cookie.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter) error {
	if sess := FromContext(ctx); sess.ID != "" {
		if err := m.store.Delete(ctx, sess.ID); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}

	http.SetCookie(w, m.cookie("", -1))
	return nil
}

// Refresh replaces the principal of the request session, e.g. after a profile update.
func (m *Manager) Refresh(ctx context.Context, p Principal) error {
	sess := FromContext(ctx)
	if sess.ID == "" {
		return nil
	}

	if err := m.store.Save(ctx, sess.ID, p, m.cfg.TTL); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	sess.Principal = &p

	return nil
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
