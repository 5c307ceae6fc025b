package admin

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/goliatone/go-library-admin/pkg/activity"
)

// Options configures the admin Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Store            WorkspaceStore
	Seed             *Seed
	IDs              IDSource
	Validator        DraftValidator
	Providers        PanelRegistry
	RefreshHook      RefreshHook
	Telemetry        Telemetry
	Translator       TranslationService
	PlaceholderImage string
	ActivityHooks    activity.Hooks
	ActivityConfig   activity.Config
	Now              func() time.Time
}

// Service orchestrates workspace transitions and panel resolution.
type Service struct {
	opts     Options
	seed     Seed
	activity *activity.Emitter
}

// NewService builds a Service instance with safe defaults. The default id
// source starts after the largest seeded book id.
func NewService(opts Options) *Service {
	seed := DefaultSeed()
	if opts.Seed != nil {
		seed = opts.Seed.Clone()
	}
	if opts.Store == nil {
		opts.Store = NewInMemoryWorkspaceStore(WithWorkspaceSeed(seed))
	}
	if opts.IDs == nil {
		opts.IDs = NewSequenceIDs(seed.MaxBookID())
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.Providers == nil {
		opts.Providers = NewRegistry()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.PlaceholderImage == "" {
		opts.PlaceholderImage = DefaultPlaceholderImage
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{
		opts:     opts,
		seed:     seed,
		activity: activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
	}
}

// Seed returns a copy of the data workspaces start from.
func (s *Service) Seed() Seed {
	return s.seed.Clone()
}

func (s *Service) rules() CatalogRules {
	return CatalogRules{
		IDs:              s.opts.IDs,
		Validator:        s.opts.Validator,
		PlaceholderImage: s.opts.PlaceholderImage,
	}
}

// Workspace returns the session's workspace, creating it from the seed if needed.
func (s *Service) Workspace(ctx context.Context, sessionID string) (Workspace, error) {
	return s.opts.Store.Load(ctx, sessionID)
}

// SelectPanel switches the visible panel of the session.
func (s *Service) SelectPanel(ctx context.Context, sessionID string, panel Panel) error {
	if !panel.Valid() {
		return ErrUnknownPanel
	}
	var changed bool
	_, err := s.opts.Store.Update(ctx, sessionID, func(ws *Workspace) error {
		var err error
		changed, err = ws.SelectPanel(panel)
		return err
	})
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	s.recordTelemetry(ctx, "library.panel.select", map[string]any{
		"session_id": sessionID,
		"panel":      string(panel),
	})
	return s.notify(ctx, CatalogEvent{SessionID: sessionID, Reason: "select", Panel: panel})
}

// UpdateDraft stores form values without validating them.
func (s *Service) UpdateDraft(ctx context.Context, sessionID string, draft Draft) error {
	_, err := s.opts.Store.Update(ctx, sessionID, func(ws *Workspace) error {
		ws.Catalog.UpdateDraft(draft)
		return nil
	})
	return err
}

// SubmitBook creates a book, or updates the one being edited.
func (s *Service) SubmitBook(ctx context.Context, sessionID string, input Draft) (Book, error) {
	var (
		result    SubmitResult
		submitErr error
	)
	_, err := s.opts.Store.Update(ctx, sessionID, func(ws *Workspace) error {
		result, submitErr = ws.Catalog.Submit(s.rules(), input)
		if errors.Is(submitErr, ErrEditTargetMissing) {
			// commit the fallback to creating
			return nil
		}
		return submitErr
	})
	if err != nil {
		if errors.Is(err, ErrIncompleteDraft) {
			s.recordTelemetry(ctx, "library.book.rejected", map[string]any{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
		return Book{}, err
	}
	if submitErr != nil {
		s.recordTelemetry(ctx, "library.book.edit_target_missing", map[string]any{
			"session_id": sessionID,
			"error":      submitErr.Error(),
		})
		return Book{}, submitErr
	}

	verb, reason := "library.book.update", "update"
	if result.Created {
		verb, reason = "library.book.create", "create"
	}
	s.recordTelemetry(ctx, verb, map[string]any{
		"session_id": sessionID,
		"book_id":    result.Book.ID,
	})
	s.emitActivity(ctx, verb, sessionID, result.Book)
	if err := s.notify(ctx, CatalogEvent{SessionID: sessionID, Reason: reason, BookID: result.Book.ID}); err != nil {
		return result.Book, err
	}
	return result.Book, nil
}

// BeginEdit loads a book into the session's form.
func (s *Service) BeginEdit(ctx context.Context, sessionID string, id int64) (Book, error) {
	var book Book
	_, err := s.opts.Store.Update(ctx, sessionID, func(ws *Workspace) error {
		var err error
		book, err = ws.Catalog.BeginEdit(id)
		return err
	})
	if err != nil {
		return Book{}, err
	}
	s.recordTelemetry(ctx, "library.book.edit", map[string]any{
		"session_id": sessionID,
		"book_id":    id,
	})
	return book, nil
}

// CancelEdit discards the session's draft.
func (s *Service) CancelEdit(ctx context.Context, sessionID string) error {
	_, err := s.opts.Store.Update(ctx, sessionID, func(ws *Workspace) error {
		ws.Catalog.CancelEdit()
		return nil
	})
	return err
}

// DeleteBook removes a book when confirmed. It reports whether a record was removed.
func (s *Service) DeleteBook(ctx context.Context, sessionID string, id int64, confirmed bool) (bool, error) {
	var (
		removed bool
		book    Book
	)
	_, err := s.opts.Store.Update(ctx, sessionID, func(ws *Workspace) error {
		book, _, _ = ws.Catalog.Find(id)
		removed = ws.Catalog.Delete(id, confirmed)
		return nil
	})
	if err != nil {
		return false, err
	}
	s.recordTelemetry(ctx, "library.book.delete", map[string]any{
		"session_id": sessionID,
		"book_id":    id,
		"confirmed":  confirmed,
		"removed":    removed,
	})
	if !removed {
		return false, nil
	}
	s.emitActivity(ctx, "library.book.delete", sessionID, book)
	return true, s.notify(ctx, CatalogEvent{SessionID: sessionID, Reason: "delete", BookID: id})
}

// View is the fully resolved page state for a session.
type View struct {
	SessionID   string    `json:"session_id"`
	ActivePanel Panel     `json:"active_panel"`
	Title       string    `json:"title"`
	Navigation  []NavItem `json:"navigation"`
	Catalog     Catalog   `json:"catalog"`
	Panel       PanelData `json:"panel"`
}

// ResolveView loads the viewer's workspace and fetches the active panel's data.
// Provider failures are recorded and yield an empty panel.
func (s *Service) ResolveView(ctx context.Context, viewer ViewerContext) (View, error) {
	ws, err := s.opts.Store.Load(ctx, viewer.SessionID)
	if err != nil {
		return View{}, err
	}
	active := ws.Panel()
	view := View{
		SessionID:   viewer.SessionID,
		ActivePanel: active,
		Catalog:     ws.Catalog,
		Panel:       PanelData{},
	}
	for _, def := range s.opts.Providers.Definitions() {
		label := translateOrFallback(ctx, s.opts.Translator, "library.nav."+string(def.Panel), viewer.Locale, def.NameForLocale(viewer.Locale), nil)
		view.Navigation = append(view.Navigation, NavItem{
			Panel:  def.Panel,
			Label:  label,
			Active: def.Panel == active,
		})
		if def.Panel == active {
			view.Title = label
		}
	}
	if view.Title == "" {
		view.Title = active.Label()
	}

	provider, ok := s.opts.Providers.Provider(active)
	if !ok || provider == nil {
		return view, nil
	}
	data, err := provider.Fetch(ctx, PanelContext{
		Panel:      active,
		Viewer:     viewer,
		Workspace:  ws,
		Seed:       s.seed,
		Translator: s.opts.Translator,
	})
	if err != nil {
		s.recordTelemetry(ctx, "library.panel.provider_error", map[string]any{
			"panel": string(active),
			"error": err.Error(),
		})
		return view, nil
	}
	if data != nil {
		view.Panel = data
	}
	s.recordTelemetry(ctx, "library.view.resolve", map[string]any{
		"session_id": viewer.SessionID,
		"panel":      string(active),
	})
	return view, nil
}

// NotifyCatalogUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyCatalogUpdated(ctx context.Context, event CatalogEvent) error {
	if err := s.notify(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "library.catalog.event", map[string]any{
		"session_id": event.SessionID,
		"reason":     event.Reason,
		"book_id":    event.BookID,
	})
	return nil
}

func (s *Service) notify(ctx context.Context, event CatalogEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.opts.Now().UTC()
	}
	return s.opts.RefreshHook.CatalogUpdated(ctx, event)
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func (s *Service) emitActivity(ctx context.Context, verb, sessionID string, book Book) {
	if !s.activity.Enabled() {
		return
	}
	actor := ActivityFromContext(ctx)
	metadata := map[string]any{
		"session_id": sessionID,
		"title":      book.Title,
		"author":     book.Author,
		"category":   book.Category,
	}
	err := s.activity.Emit(ctx, activity.Event{
		Verb:       verb,
		ActorID:    actor.ActorID,
		UserID:     actor.UserID,
		ObjectType: "book",
		Panel:      string(PanelBooks),
		ObjectID:   strconv.FormatInt(book.ID, 10),
		Metadata:   metadata,
		OccurredAt: s.opts.Now().UTC(),
	})
	if err != nil {
		s.recordTelemetry(ctx, "library.activity.error", map[string]any{
			"verb":  verb,
			"error": err.Error(),
		})
	}
}

type noopRefreshHook struct{}

func (noopRefreshHook) CatalogUpdated(context.Context, CatalogEvent) error {
	return nil
}
