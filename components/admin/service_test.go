package admin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRefreshHook struct {
	mu     sync.Mutex
	events []CatalogEvent
}

func (h *recordingRefreshHook) CatalogUpdated(_ context.Context, event CatalogEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingTelemetry) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

func newTestService(t *testing.T) (*Service, *recordingRefreshHook, *recordingTelemetry) {
	t.Helper()
	hook := &recordingRefreshHook{}
	telemetry := &recordingTelemetry{}
	svc := NewService(Options{
		RefreshHook: hook,
		Telemetry:   telemetry,
		Now:         func() time.Time { return fixedTime },
	})
	return svc, hook, telemetry
}

func TestServiceSubmitBookCreates(t *testing.T) {
	svc, hook, telemetry := newTestService(t)
	ctx := context.Background()

	book, err := svc.SubmitBook(ctx, "s1", Draft{Title: "Go Programming", Author: "Alan Donovan", Category: "Educational"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), book.ID)

	ws, err := svc.Workspace(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, ws.Catalog.Books, 4)
	assert.Equal(t, book, ws.Catalog.Books[0])

	require.Len(t, hook.events, 1)
	assert.Equal(t, "create", hook.events[0].Reason)
	assert.Equal(t, fixedTime, hook.events[0].OccurredAt)
	assert.True(t, telemetry.has("library.book.create"))
}

func TestServiceSubmitBookRejectsIncomplete(t *testing.T) {
	svc, hook, telemetry := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.UpdateDraft(ctx, "s1", Draft{Title: "half typed"}))

	_, err := svc.SubmitBook(ctx, "s1", Draft{Title: "T", Author: " "})
	require.ErrorIs(t, err, ErrIncompleteDraft)

	ws, err := svc.Workspace(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, ws.Catalog.Books, 3)
	assert.Equal(t, "half typed", ws.Catalog.Editor.Draft.Title)
	assert.Empty(t, hook.events)
	assert.True(t, telemetry.has("library.book.rejected"))
}

func TestServiceEditFlow(t *testing.T) {
	svc, hook, _ := newTestService(t)
	ctx := context.Background()

	book, err := svc.BeginEdit(ctx, "s1", 3)
	require.NoError(t, err)
	assert.Equal(t, "Next.js in Action", book.Title)

	updated, err := svc.SubmitBook(ctx, "s1", Draft{Title: "Next.js in Action, 2nd Ed.", Author: book.Author, Category: book.Category, Image: book.Image})
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated.ID)

	ws, err := svc.Workspace(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, ws.Catalog.Books, 3)
	assert.Equal(t, "Next.js in Action, 2nd Ed.", ws.Catalog.Books[2].Title)
	assert.Equal(t, EditorIdle, ws.Catalog.Editor.Mode)
	require.Len(t, hook.events, 1)
	assert.Equal(t, "update", hook.events[0].Reason)
}

func TestServiceSubmitAfterEditTargetDeletedElsewhere(t *testing.T) {
	store := NewInMemoryWorkspaceStore()
	svc := NewService(Options{Store: store})
	ctx := context.Background()

	_, err := svc.BeginEdit(ctx, "s1", 1)
	require.NoError(t, err)
	_, err = store.Update(ctx, "s1", func(ws *Workspace) error {
		ws.Catalog.Books = ws.Catalog.Books[1:]
		return nil
	})
	require.NoError(t, err)

	_, err = svc.SubmitBook(ctx, "s1", Draft{Title: "React", Author: "Alice Johnson", Category: "Fiction"})
	require.ErrorIs(t, err, ErrEditTargetMissing)

	ws, err := svc.Workspace(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, ws.Catalog.Books, 2)
	assert.Equal(t, EditorCreating, ws.Catalog.Editor.Mode)
	assert.Equal(t, "React", ws.Catalog.Editor.Draft.Title)
}

func TestServiceBeginEditUnknown(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.BeginEdit(context.Background(), "s1", 404)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestServiceDeleteBook(t *testing.T) {
	svc, hook, _ := newTestService(t)
	ctx := context.Background()

	removed, err := svc.DeleteBook(ctx, "s1", 1, false)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Empty(t, hook.events)

	removed, err = svc.DeleteBook(ctx, "s1", 1, true)
	require.NoError(t, err)
	assert.True(t, removed)
	require.Len(t, hook.events, 1)
	assert.Equal(t, "delete", hook.events[0].Reason)
	assert.Equal(t, int64(1), hook.events[0].BookID)

	removed, err = svc.DeleteBook(ctx, "s1", 1, true)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestServiceCancelEdit(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.BeginEdit(ctx, "s1", 2)
	require.NoError(t, err)
	require.NoError(t, svc.CancelEdit(ctx, "s1"))

	ws, err := svc.Workspace(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, EditorIdle, ws.Catalog.Editor.Mode)
}

func TestServiceSelectPanel(t *testing.T) {
	svc, hook, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SelectPanel(ctx, "s1", PanelUsers))
	require.NoError(t, svc.SelectPanel(ctx, "s1", PanelUsers))
	assert.Len(t, hook.events, 1, "reselecting the active panel does not notify")

	err := svc.SelectPanel(ctx, "s1", Panel("reports"))
	assert.ErrorIs(t, err, ErrUnknownPanel)

	ws, err := svc.Workspace(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, PanelUsers, ws.ActivePanel)
	assert.Len(t, ws.Catalog.Books, 3)
}

func TestServiceUsesSeedForIDs(t *testing.T) {
	seed := Seed{Books: []Book{{ID: 41, Title: "T", Author: "A", Category: "C"}}}
	svc := NewService(Options{Seed: &seed})
	book, err := svc.SubmitBook(context.Background(), "s1", Draft{Title: "New", Author: "A", Category: "C"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), book.ID)
}

func TestServiceIDsUniqueAcrossSessions(t *testing.T) {
	svc := NewService(Options{})
	ctx := context.Background()
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[int64]bool{}
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session := "s" + string(rune('a'+i%4))
			book, err := svc.SubmitBook(ctx, session, Draft{Title: "T", Author: "A", Category: "C"})
			if err != nil {
				t.Errorf("submit: %v", err)
				return
			}
			mu.Lock()
			ids[book.ID] = true
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	assert.Len(t, ids, 20)
}

func TestServiceResolveView(t *testing.T) {
	svc, _, telemetry := newTestService(t)
	ctx := context.Background()
	viewer := ViewerContext{SessionID: "s1"}

	view, err := svc.ResolveView(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, PanelDashboard, view.ActivePanel)
	assert.Equal(t, "Dashboard", view.Title)
	require.Len(t, view.Navigation, 4)
	assert.True(t, view.Navigation[0].Active)
	assert.Equal(t, "Borrow/Return", view.Navigation[3].Label)
	assert.NotNil(t, view.Panel["overview_chart"])
	assert.True(t, telemetry.has("library.view.resolve"))

	require.NoError(t, svc.SelectPanel(ctx, "s1", PanelBooks))
	view, err = svc.ResolveView(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, "Books", view.Title)
	books, ok := view.Panel["books"].([]map[string]any)
	require.True(t, ok)
	assert.Len(t, books, 3)
}

func TestServiceResolveViewRecordsProviderErrors(t *testing.T) {
	reg := NewEmptyRegistry()
	for _, def := range DefaultPanelDefinitions() {
		require.NoError(t, reg.RegisterDefinition(def))
	}
	require.NoError(t, reg.RegisterProvider(PanelDashboard, ProviderFunc(func(context.Context, PanelContext) (PanelData, error) {
		return nil, errors.New("provider down")
	})))
	telemetry := &recordingTelemetry{}
	svc := NewService(Options{Providers: reg, Telemetry: telemetry})

	view, err := svc.ResolveView(context.Background(), ViewerContext{SessionID: "s1"})
	require.NoError(t, err)
	assert.Empty(t, view.Panel)
	assert.True(t, telemetry.has("library.panel.provider_error"))
}

func TestServiceResolveViewRequiresSession(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.ResolveView(context.Background(), ViewerContext{})
	assert.ErrorIs(t, err, ErrMissingSession)
}

func TestServiceNotifyCatalogUpdated(t *testing.T) {
	svc, hook, telemetry := newTestService(t)
	require.NoError(t, svc.NotifyCatalogUpdated(context.Background(), CatalogEvent{SessionID: "s1", Reason: "refresh"}))
	require.Len(t, hook.events, 1)
	assert.False(t, hook.events[0].OccurredAt.IsZero())
	assert.True(t, telemetry.has("library.catalog.event"))
}
