package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-library-admin/components/admin"
	"github.com/goliatone/go-library-admin/components/admin/commands"
	"github.com/goliatone/go-library-admin/components/admin/queries"
	"github.com/justinas/nosurf"
	"golang.org/x/text/language"
)

const (
	noticeSaved   = "Book saved."
	noticeDeleted = "Book deleted."
	maxBodyBytes  = 1 << 20
)

// PageRenderer renders the dashboard page for a viewer.
type PageRenderer interface {
	BasePath() string
	RenderTemplate(ctx context.Context, viewer admin.ViewerContext, page admin.PageOptions, out io.Writer) error
}

// EventStream serves catalog events over long-lived connections.
type EventStream interface {
	ServeWebSocket(w http.ResponseWriter, r *http.Request, filter func(admin.CatalogEvent) bool)
	ServeSSE(w http.ResponseWriter, r *http.Request, filter func(admin.CatalogEvent) bool)
}

// Handlers exposes HTTP endpoints backed by shared commands.
type Handlers struct {
	SelectPanel gocommand.Commander[commands.SelectPanelInput]
	Submit      gocommand.Commander[commands.SubmitBookInput]
	Draft       gocommand.Commander[commands.UpdateDraftInput]
	Edit        gocommand.Commander[commands.BeginEditInput]
	Cancel      gocommand.Commander[commands.CancelEditInput]
	Delete      gocommand.Commander[commands.DeleteBookInput]
	State       gocommand.Querier[queries.StateInput, queries.State]
	Page        PageRenderer
	Events      EventStream
	Sessions    Sessions
	// CSRFToken defaults to nosurf.Token.
	CSRFToken func(*http.Request) string
}

// HandleDashboard renders the page, switching panels first when ?panel= is set.
func (h *Handlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sessionID := h.Sessions.ID(r.Context())
	if raw := r.URL.Query().Get("panel"); raw != "" {
		if err := h.SelectPanel.Execute(r.Context(), commands.SelectPanelInput{SessionID: sessionID, Panel: raw}); err != nil {
			respondError(w, err)
			return
		}
	}
	h.renderPage(w, r, http.StatusOK, admin.PageOptions{Notice: h.Sessions.PopFlash(r.Context())})
}

// HandleState returns the workspace as JSON.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	state, err := h.State.Query(r.Context(), queries.StateInput{SessionID: h.Sessions.ID(r.Context())})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// HandleSelectPanel switches the visible panel.
func (h *Handlers) HandleSelectPanel(w http.ResponseWriter, r *http.Request, panel string) {
	input := commands.SelectPanelInput{SessionID: h.Sessions.ID(r.Context()), Panel: panel}
	if err := h.SelectPanel.Execute(r.Context(), input); err != nil {
		respondError(w, err)
		return
	}
	h.respondDone(w, r, http.StatusOK, map[string]any{"active_panel": strings.ToLower(strings.TrimSpace(panel))})
}

// HandleSubmitBook creates or updates a book from form or JSON input.
func (h *Handlers) HandleSubmitBook(w http.ResponseWriter, r *http.Request) {
	var input commands.SubmitBookInput
	if err := decodeInput(r, &input, func(form formValues) {
		input.Title = form.Get("title")
		input.Author = form.Get("author")
		input.Category = form.Get("category")
		input.Image = form.Get("image")
	}); err != nil {
		respondError(w, err)
		return
	}
	input.SessionID = h.Sessions.ID(r.Context())
	var book admin.Book
	input.Result = &book
	if err := h.Submit.Execute(r.Context(), input); err != nil {
		h.respondMutationError(w, r, err, input.Draft())
		return
	}
	h.Sessions.Flash(r.Context(), noticeSaved)
	h.respondDone(w, r, http.StatusOK, map[string]any{"book": book})
}

// HandleUpdateDraft stores the form values without validating them.
func (h *Handlers) HandleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var input commands.UpdateDraftInput
	if err := decodeInput(r, &input, func(form formValues) {
		input.Title = form.Get("title")
		input.Author = form.Get("author")
		input.Category = form.Get("category")
		input.Image = form.Get("image")
	}); err != nil {
		respondError(w, err)
		return
	}
	input.SessionID = h.Sessions.ID(r.Context())
	if err := h.Draft.Execute(r.Context(), input); err != nil {
		respondError(w, err)
		return
	}
	h.respondDone(w, r, http.StatusNoContent, nil)
}

// HandleBeginEdit loads a book into the form.
func (h *Handlers) HandleBeginEdit(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := parseBookID(rawID)
	if err != nil {
		respondError(w, err)
		return
	}
	var book admin.Book
	input := commands.BeginEditInput{SessionID: h.Sessions.ID(r.Context()), BookID: id, Result: &book}
	if err := h.Edit.Execute(r.Context(), input); err != nil {
		respondError(w, err)
		return
	}
	h.respondDone(w, r, http.StatusOK, map[string]any{"book": book})
}

// HandleCancelEdit resets the form.
func (h *Handlers) HandleCancelEdit(w http.ResponseWriter, r *http.Request) {
	if err := h.Cancel.Execute(r.Context(), commands.CancelEditInput{SessionID: h.Sessions.ID(r.Context())}); err != nil {
		respondError(w, err)
		return
	}
	h.respondDone(w, r, http.StatusNoContent, nil)
}

// HandleDeleteForm deletes a book from the page. The form must post confirmed=yes.
func (h *Handlers) HandleDeleteForm(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := parseBookID(rawID)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	var removed bool
	input := commands.DeleteBookInput{
		SessionID: h.Sessions.ID(r.Context()),
		BookID:    id,
		Confirmed: r.PostForm.Get("confirmed") == "yes",
		Removed:   &removed,
	}
	if err := h.Delete.Execute(r.Context(), input); err != nil {
		respondError(w, err)
		return
	}
	if removed {
		h.Sessions.Flash(r.Context(), noticeDeleted)
	}
	h.redirect(w, r)
}

// HandleDeleteBook is the JSON delete endpoint. It requires ?confirmed=true.
func (h *Handlers) HandleDeleteBook(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := parseBookID(rawID)
	if err != nil {
		respondError(w, err)
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirmed"))
	var removed bool
	input := commands.DeleteBookInput{
		SessionID: h.Sessions.ID(r.Context()),
		BookID:    id,
		Confirmed: confirmed,
		Removed:   &removed,
	}
	if err := h.Delete.Execute(r.Context(), input); err != nil {
		respondError(w, err)
		return
	}
	if confirmed && !removed {
		respondError(w, fmt.Errorf("%w: %d", admin.ErrBookNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": removed, "confirmed": confirmed})
}

// HandleWebSocket streams the session's catalog events over a WebSocket.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.Events.ServeWebSocket(w, r, admin.SessionFilter(h.Sessions.ID(r.Context())))
}

// HandleEvents streams the session's catalog events as server-sent events.
func (h *Handlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	h.Events.ServeSSE(w, r, admin.SessionFilter(h.Sessions.ID(r.Context())))
}

func (h *Handlers) respondMutationError(w http.ResponseWriter, r *http.Request, err error, draft admin.Draft) {
	alert, fields := AlertFor(err)
	if wantsJSON(r) || alert == "" {
		respondError(w, err)
		return
	}
	h.renderPage(w, r, StatusFor(err), admin.PageOptions{
		Alert:       alert,
		AlertFields: fields,
		Form:        &draft,
	})
}

func (h *Handlers) respondDone(w http.ResponseWriter, r *http.Request, status int, body any) {
	if !wantsJSON(r) {
		h.redirect(w, r)
		return
	}
	if body == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, body)
}

func (h *Handlers) redirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.Page.BasePath()+"/dashboard", http.StatusSeeOther)
}

func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, status int, page admin.PageOptions) {
	page.CSRFToken = h.csrfToken(r)
	page.CSRFField = nosurf.FormFieldName
	viewer := admin.ViewerContext{
		SessionID: h.Sessions.ID(r.Context()),
		Locale:    requestLocale(r),
	}
	var buf bytes.Buffer
	if err := h.Page.RenderTemplate(r.Context(), viewer, page, &buf); err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handlers) csrfToken(r *http.Request) string {
	if h.CSRFToken != nil {
		return h.CSRFToken(r)
	}
	return nosurf.Token(r)
}

type formValues interface {
	Get(key string) string
}

func decodeInput(r *http.Request, target any, fromForm func(formValues)) error {
	if isJSON(r) {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(target); err != nil {
			return fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	fromForm(r.PostForm)
	return nil
}

func parseBookID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid book id %q", ErrBadRequest, raw)
	}
	return id, nil
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "application/json")
}

func wantsJSON(r *http.Request) bool {
	return isJSON(r) || strings.Contains(strings.ToLower(r.Header.Get("Accept")), "application/json")
}

func requestLocale(r *http.Request) string {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return ""
	}
	return tags[0].String()
}
