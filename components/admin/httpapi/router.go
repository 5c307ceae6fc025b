package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goliatone/go-library-admin/components/admin"
	"github.com/justinas/nosurf"
)

// RouterConfig wires the net/http transport.
type RouterConfig struct {
	BasePath    string
	Handlers    *Handlers
	Sessions    *SCSSessions
	Logger      *slog.Logger
	RateLimiter *RateLimiter
	// Metrics is mounted at /metrics when set.
	Metrics       http.Handler
	Observer      RequestObserver
	SecureCookies bool
	DisableCSRF   bool
}

// NewRouter builds the chi router serving the dashboard.
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	if cfg.Handlers == nil {
		return nil, errors.New("httpapi: handlers are required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("httpapi: sessions are required")
	}
	if cfg.Handlers.Page == nil {
		return nil, errors.New("httpapi: page renderer is required")
	}
	if cfg.Handlers.Sessions == nil {
		cfg.Handlers.Sessions = cfg.Sessions
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	base := strings.TrimRight(cfg.BasePath, "/")
	if base == "" {
		base = admin.DefaultBasePath
	}
	h := cfg.Handlers

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logger(cfg.Logger))
	if cfg.Observer != nil {
		r.Use(Observe(cfg.Observer))
	}
	r.Use(chimiddleware.Recoverer)

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, base+"/dashboard", http.StatusFound)
	})

	r.Route(base, func(r chi.Router) {
		if h.Events != nil {
			r.Group(func(r chi.Router) {
				r.Use(cfg.Sessions.LoadReadOnly)
				r.Get("/dashboard/ws", h.HandleWebSocket)
				r.Get("/dashboard/events", h.HandleEvents)
			})
		}

		r.Group(func(r chi.Router) {
			r.Use(cfg.Sessions.LoadAndSave)
			if !cfg.DisableCSRF {
				r.Use(CSRF(cfg.SecureCookies, cfg.Logger))
			}
			r.Get("/", func(w http.ResponseWriter, req *http.Request) {
				http.Redirect(w, req, base+"/dashboard", http.StatusFound)
			})
			r.Get("/dashboard", h.HandleDashboard)
			r.Get("/dashboard/_state", h.HandleState)

			r.Group(func(r chi.Router) {
				if cfg.RateLimiter != nil {
					r.Use(cfg.RateLimiter.Middleware)
				}
				r.Post("/panels/{key}", func(w http.ResponseWriter, req *http.Request) {
					h.HandleSelectPanel(w, req, chi.URLParam(req, "key"))
				})
				r.Post("/books", h.HandleSubmitBook)
				r.Post("/books/draft", h.HandleUpdateDraft)
				r.Post("/books/cancel", h.HandleCancelEdit)
				r.Post("/books/{id}/edit", func(w http.ResponseWriter, req *http.Request) {
					h.HandleBeginEdit(w, req, chi.URLParam(req, "id"))
				})
				r.Post("/books/{id}/delete", func(w http.ResponseWriter, req *http.Request) {
					h.HandleDeleteForm(w, req, chi.URLParam(req, "id"))
				})
				r.Delete("/books/{id}", func(w http.ResponseWriter, req *http.Request) {
					h.HandleDeleteBook(w, req, chi.URLParam(req, "id"))
				})
			})
		})
	})
	return r, nil
}

// CSRF protects form posts with nosurf. JSON and DELETE requests are exempt
// since browsers cannot send them cross-origin without a preflight.
func CSRF(secure bool, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		handler := nosurf.New(next)
		handler.SetBaseCookie(http.Cookie{
			HttpOnly: true,
			Path:     "/",
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
		handler.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("csrf check failed", "path", r.URL.Path, "method", r.Method, "reason", nosurf.Reason(r))
			writeJSON(w, http.StatusForbidden, ErrorBody{Error: "invalid or missing csrf token"})
		}))
		handler.ExemptFunc(func(r *http.Request) bool {
			return isJSON(r) || r.Method == http.MethodDelete
		})
		return handler
	}
}
