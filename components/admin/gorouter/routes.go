package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	gocommand "github.com/goliatone/go-command"
	router "github.com/goliatone/go-router"
	"github.com/google/uuid"

	"github.com/goliatone/go-library-admin/components/admin"
	"github.com/goliatone/go-library-admin/components/admin/commands"
	"github.com/goliatone/go-library-admin/components/admin/httpapi"
	"github.com/goliatone/go-library-admin/components/admin/queries"
)

// DefaultCookieName carries the workspace id.
const DefaultCookieName = "libadmin_workspace"

// Commands groups the commanders the routes execute.
type Commands struct {
	SelectPanel gocommand.Commander[commands.SelectPanelInput]
	Submit      gocommand.Commander[commands.SubmitBookInput]
	Draft       gocommand.Commander[commands.UpdateDraftInput]
	Edit        gocommand.Commander[commands.BeginEditInput]
	Cancel      gocommand.Commander[commands.CancelEditInput]
	Delete      gocommand.Commander[commands.DeleteBookInput]
}

func (c Commands) complete() bool {
	return c.SelectPanel != nil && c.Submit != nil && c.Draft != nil &&
		c.Edit != nil && c.Cancel != nil && c.Delete != nil
}

// Config wires go-router with the library admin controller, commands and hooks.
type Config[T any] struct {
	Router       router.Router[T]
	Controller   *admin.Controller
	Commands     Commands
	State        gocommand.Querier[queries.StateInput, queries.State]
	Broadcast    *admin.BroadcastHook
	BasePath     string
	Routes       RouteConfig
	CookieName   string
	SecureCookie bool
}

// RouteConfig customizes the relative paths used for admin endpoints.
type RouteConfig struct {
	HTML       string
	State      string
	Panel      string
	Books      string
	Draft      string
	Cancel     string
	Edit       string
	DeleteForm string
	BookID     string
	WebSocket  string
}

// Register mounts the admin routes (HTML, JSON, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	if !cfg.Commands.complete() {
		return errors.New("gorouter: every command is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := strings.TrimRight(cfg.BasePath, "/")
	if base == "" {
		base = cfg.Controller.BasePath()
	}
	sessions := cookieSessions{name: cfg.CookieName, secure: cfg.SecureCookie}
	if sessions.name == "" {
		sessions.name = DefaultCookieName
	}
	pages := pageResponder{controller: cfg.Controller}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		viewer := sessions.viewer(ctx)
		if raw := ctx.Query("panel"); raw != "" {
			err := cfg.Commands.SelectPanel.Execute(ctx.Context(), commands.SelectPanelInput{SessionID: viewer.SessionID, Panel: raw})
			if err != nil {
				return respondError(ctx, err)
			}
		}
		return pages.render(ctx, viewer, admin.PageOptions{})
	}))

	if cfg.State != nil {
		group.Get(routes.State, router.WrapHandler(func(ctx router.Context) error {
			viewer := sessions.viewer(ctx)
			state, err := cfg.State.Query(ctx.Context(), queries.StateInput{SessionID: viewer.SessionID})
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, state)
		}))
	}

	group.Post(routes.Panel, router.WrapHandler(func(ctx router.Context) error {
		viewer := sessions.viewer(ctx)
		key := ctx.Param("key")
		if err := cfg.Commands.SelectPanel.Execute(ctx.Context(), commands.SelectPanelInput{SessionID: viewer.SessionID, Panel: key}); err != nil {
			return respondError(ctx, err)
		}
		if isJSON(ctx) {
			return ctx.JSON(http.StatusOK, map[string]string{"active_panel": strings.ToLower(strings.TrimSpace(key))})
		}
		return pages.render(ctx, viewer, admin.PageOptions{})
	}))

	group.Post(routes.Books, router.WrapHandler(func(ctx router.Context) error {
		viewer := sessions.viewer(ctx)
		var input commands.SubmitBookInput
		if err := decodeBody(ctx, &input, func(form url.Values) {
			input.Title = form.Get("title")
			input.Author = form.Get("author")
			input.Category = form.Get("category")
			input.Image = form.Get("image")
		}); err != nil {
			return respondError(ctx, err)
		}
		input.SessionID = viewer.SessionID
		var book admin.Book
		input.Result = &book
		if err := cfg.Commands.Submit.Execute(ctx.Context(), input); err != nil {
			alert, fields := httpapi.AlertFor(err)
			if isJSON(ctx) || alert == "" {
				return respondError(ctx, err)
			}
			draft := input.Draft()
			ctx.Status(httpapi.StatusFor(err))
			return pages.render(ctx, viewer, admin.PageOptions{Alert: alert, AlertFields: fields, Form: &draft})
		}
		if isJSON(ctx) {
			return ctx.JSON(http.StatusOK, map[string]any{"book": book})
		}
		return pages.render(ctx, viewer, admin.PageOptions{Notice: "Book saved."})
	}))

	group.Post(routes.Draft, router.WrapHandler(func(ctx router.Context) error {
		viewer := sessions.viewer(ctx)
		var input commands.UpdateDraftInput
		if err := decodeBody(ctx, &input, func(form url.Values) {
			input.Title = form.Get("title")
			input.Author = form.Get("author")
			input.Category = form.Get("category")
			input.Image = form.Get("image")
		}); err != nil {
			return respondError(ctx, err)
		}
		input.SessionID = viewer.SessionID
		if err := cfg.Commands.Draft.Execute(ctx.Context(), input); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
	}))

	group.Post(routes.Cancel, router.WrapHandler(func(ctx router.Context) error {
		viewer := sessions.viewer(ctx)
		if err := cfg.Commands.Cancel.Execute(ctx.Context(), commands.CancelEditInput{SessionID: viewer.SessionID}); err != nil {
			return respondError(ctx, err)
		}
		if isJSON(ctx) {
			return ctx.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
		}
		return pages.render(ctx, viewer, admin.PageOptions{})
	}))

	group.Post(routes.Edit, router.WrapHandler(func(ctx router.Context) error {
		viewer := sessions.viewer(ctx)
		id, err := parseBookID(ctx.Param("id"))
		if err != nil {
			return respondError(ctx, err)
		}
		var book admin.Book
		if err := cfg.Commands.Edit.Execute(ctx.Context(), commands.BeginEditInput{SessionID: viewer.SessionID, BookID: id, Result: &book}); err != nil {
			return respondError(ctx, err)
		}
		if isJSON(ctx) {
			return ctx.JSON(http.StatusOK, map[string]any{"book": book})
		}
		return pages.render(ctx, viewer, admin.PageOptions{})
	}))

	group.Post(routes.DeleteForm, router.WrapHandler(func(ctx router.Context) error {
		viewer := sessions.viewer(ctx)
		id, err := parseBookID(ctx.Param("id"))
		if err != nil {
			return respondError(ctx, err)
		}
		form, err := url.ParseQuery(string(ctx.Body()))
		if err != nil {
			return respondError(ctx, fmt.Errorf("%w: %v", httpapi.ErrBadRequest, err))
		}
		var removed bool
		input := commands.DeleteBookInput{
			SessionID: viewer.SessionID,
			BookID:    id,
			Confirmed: form.Get("confirmed") == "yes",
			Removed:   &removed,
		}
		if err := cfg.Commands.Delete.Execute(ctx.Context(), input); err != nil {
			return respondError(ctx, err)
		}
		page := admin.PageOptions{}
		if removed {
			page.Notice = "Book deleted."
		}
		return pages.render(ctx, viewer, page)
	}))

	group.Delete(routes.BookID, router.WrapHandler(func(ctx router.Context) error {
		viewer := sessions.viewer(ctx)
		id, err := parseBookID(ctx.Param("id"))
		if err != nil {
			return respondError(ctx, err)
		}
		confirmed, _ := strconv.ParseBool(ctx.Query("confirmed"))
		var removed bool
		input := commands.DeleteBookInput{SessionID: viewer.SessionID, BookID: id, Confirmed: confirmed, Removed: &removed}
		if err := cfg.Commands.Delete.Execute(ctx.Context(), input); err != nil {
			return respondError(ctx, err)
		}
		if confirmed && !removed {
			return respondError(ctx, fmt.Errorf("%w: %d", admin.ErrBookNotFound, id))
		}
		return ctx.JSON(http.StatusOK, map[string]any{"removed": removed, "confirmed": confirmed})
	}))

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, sessions, routes.WebSocket)
	}
	return nil
}

const upgradeSessionKey = "session_id"

// registerWebSocket streams the caller's own workspace changes. The workspace
// cookie is resolved before the upgrade and connections without one are
// rejected.
func registerWebSocket[T any](r router.Router[T], hook *admin.BroadcastHook, sessions cookieSessions, path string) {
	wsCfg := router.DefaultWebSocketConfig()
	wsCfg.OnPreUpgrade = sessions.preUpgrade
	r.WebSocket(path, wsCfg, func(ws router.WebSocketContext) error {
		sessionID, ok := upgradeSession(ws.UpgradeData)
		if !ok {
			return ws.Close()
		}
		filter := admin.SessionFilter(sessionID)
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case <-ws.Context().Done():
				return ws.Close()
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if !filter(event) {
					continue
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			}
		}
	})
}

func upgradeSession(lookup func(key string) (any, bool)) (string, bool) {
	raw, ok := lookup(upgradeSessionKey)
	if !ok {
		return "", false
	}
	id, ok := raw.(string)
	return id, ok && id != ""
}

type pageResponder struct {
	controller *admin.Controller
}

func (p pageResponder) render(ctx router.Context, viewer admin.ViewerContext, page admin.PageOptions) error {
	var buf bytes.Buffer
	if err := p.controller.RenderTemplate(ctx.Context(), viewer, page, &buf); err != nil {
		return respondError(ctx, err)
	}
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(buf.Bytes())
}

type cookieSessions struct {
	name   string
	secure bool
}

// viewer resolves the workspace id from the cookie, minting and setting a new
// one when missing or malformed.
func (s cookieSessions) viewer(ctx router.Context) admin.ViewerContext {
	id, ok := parseSessionID(ctx.Cookies(s.name))
	if !ok {
		id = uuid.NewString()
		ctx.Cookie(s.cookie(id))
	}
	return admin.ViewerContext{SessionID: id, Locale: inferLocale(ctx)}
}

// preUpgrade only admits WebSocket clients that already hold a workspace.
func (s cookieSessions) preUpgrade(ctx router.Context) (router.UpgradeData, error) {
	id, ok := parseSessionID(ctx.Cookies(s.name))
	if !ok {
		return nil, errors.New("gorouter: workspace cookie required")
	}
	return router.UpgradeData{upgradeSessionKey: id}, nil
}

func (s cookieSessions) cookie(id string) *router.Cookie {
	return &router.Cookie{
		Name:     s.name,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: router.CookieSameSiteLaxMode,
	}
}

func parseSessionID(raw string) (string, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	return parseAcceptLanguage(ctx.Header("Accept-Language"))
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func decodeBody(ctx router.Context, target any, fromForm func(url.Values)) error {
	if isJSON(ctx) {
		if err := json.Unmarshal(ctx.Body(), target); err != nil {
			return fmt.Errorf("%w: %v", httpapi.ErrBadRequest, err)
		}
		return nil
	}
	form, err := url.ParseQuery(string(ctx.Body()))
	if err != nil {
		return fmt.Errorf("%w: %v", httpapi.ErrBadRequest, err)
	}
	fromForm(form)
	return nil
}

func isJSON(ctx router.Context) bool {
	return strings.HasPrefix(strings.ToLower(ctx.Header("Content-Type")), "application/json") ||
		strings.Contains(strings.ToLower(ctx.Header("Accept")), "application/json")
}

func parseBookID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid book id %q", httpapi.ErrBadRequest, raw)
	}
	return id, nil
}

func respondError(ctx router.Context, err error) error {
	return ctx.JSON(httpapi.StatusFor(err), httpapi.NewErrorBody(err))
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.State == "" {
		routes.State = "/dashboard/_state"
	}
	if routes.Panel == "" {
		routes.Panel = "/panels/:key"
	}
	if routes.Books == "" {
		routes.Books = "/books"
	}
	if routes.Draft == "" {
		routes.Draft = "/books/draft"
	}
	if routes.Cancel == "" {
		routes.Cancel = "/books/cancel"
	}
	if routes.Edit == "" {
		routes.Edit = "/books/:id/edit"
	}
	if routes.DeleteForm == "" {
		routes.DeleteForm = "/books/:id/delete"
	}
	if routes.BookID == "" {
		routes.BookID = "/books/:id"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	return routes
}
