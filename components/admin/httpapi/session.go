package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
)

const (
	workspaceKey = "workspace_id"
	flashKey     = "flash"
)

// Sessions resolves the workspace identity of a request and carries flash messages.
type Sessions interface {
	ID(ctx context.Context) string
	Flash(ctx context.Context, msg string)
	PopFlash(ctx context.Context) string
}

// SessionConfig configures the scs session manager.
type SessionConfig struct {
	CookieName string
	Lifetime   time.Duration
	Secure     bool
}

// SCSSessions keeps the workspace id in an scs session.
type SCSSessions struct {
	Manager *scs.SessionManager
}

// NewSCSSessions builds an in-memory scs session manager.
func NewSCSSessions(cfg SessionConfig) *SCSSessions {
	manager := scs.New()
	if cfg.CookieName != "" {
		manager.Cookie.Name = cfg.CookieName
	}
	if cfg.Lifetime > 0 {
		manager.Lifetime = cfg.Lifetime
	}
	manager.Cookie.HttpOnly = true
	manager.Cookie.Secure = cfg.Secure
	manager.Cookie.SameSite = http.SameSiteLaxMode
	return &SCSSessions{Manager: manager}
}

// ID returns the session's workspace id, minting one on first use.
func (s *SCSSessions) ID(ctx context.Context) string {
	if id := s.Manager.GetString(ctx, workspaceKey); id != "" {
		return id
	}
	id := uuid.NewString()
	s.Manager.Put(ctx, workspaceKey, id)
	return id
}

// Flash stores a message for the next page render.
func (s *SCSSessions) Flash(ctx context.Context, msg string) {
	s.Manager.Put(ctx, flashKey, msg)
}

// PopFlash returns and clears the pending message.
func (s *SCSSessions) PopFlash(ctx context.Context) string {
	return s.Manager.PopString(ctx, flashKey)
}

// LoadAndSave wraps handlers that read or write session data.
func (s *SCSSessions) LoadAndSave(next http.Handler) http.Handler {
	return s.Manager.LoadAndSave(next)
}

// LoadReadOnly loads the session for long-lived streams. Nothing is written
// back, so the response writer is left untouched.
func (s *SCSSessions) LoadReadOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if cookie, err := r.Cookie(s.Manager.Cookie.Name); err == nil {
			token = cookie.Value
		}
		ctx, err := s.Manager.Load(r.Context(), token)
		if err != nil {
			respondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
