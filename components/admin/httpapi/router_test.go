package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-library-admin/components/admin"
	"github.com/goliatone/go-library-admin/components/admin/commands"
	"github.com/goliatone/go-library-admin/components/admin/queries"
)

type jsonRenderer struct{}

func (jsonRenderer) Render(_ string, data any, out ...io.Writer) (string, error) {
	buf, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	for _, w := range out {
		if _, err := w.Write(buf); err != nil {
			return "", err
		}
	}
	return string(buf), nil
}

func newTestServer(t *testing.T, disableCSRF bool, limiter *RateLimiter) (*httptest.Server, *admin.BroadcastHook) {
	t.Helper()
	broadcast := admin.NewBroadcastHook()
	svc := admin.NewService(admin.Options{RefreshHook: broadcast})
	sessions := NewSCSSessions(SessionConfig{CookieName: "libadmin_session"})
	handlers := &Handlers{
		SelectPanel: commands.NewSelectPanelCommand(svc, nil),
		Submit:      commands.NewSubmitBookCommand(svc, nil),
		Draft:       commands.NewUpdateDraftCommand(svc),
		Edit:        commands.NewBeginEditCommand(svc, nil),
		Cancel:      commands.NewCancelEditCommand(svc),
		Delete:      commands.NewDeleteBookCommand(svc, nil),
		State:       queries.NewStateQuery(svc),
		Page:        admin.NewController(admin.ControllerOptions{Service: svc, Renderer: jsonRenderer{}}),
		Events:      broadcast,
	}
	router, err := NewRouter(RouterConfig{
		Handlers:    handlers,
		Sessions:    sessions,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		RateLimiter: limiter,
		Metrics:     http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "metrics") }),
		DisableCSRF: disableCSRF,
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, broadcast
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func getState(t *testing.T, client *http.Client, base string) queries.State {
	t.Helper()
	resp, err := client.Get(base + "/admin/dashboard/_state")
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var state queries.State
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return state
}

func TestRouterCatalogFlow(t *testing.T) {
	server, _ := newTestServer(t, true, nil)
	client := newClient(t)

	resp, err := client.PostForm(server.URL+"/admin/books", url.Values{"title": {"Dune"}, "author": {"Frank Herbert"}, "category": {"Fiction"}})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected redirect to dashboard, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), noticeSaved) {
		t.Fatalf("expected flash on the rendered page, got %s", body)
	}

	state := getState(t, client, server.URL)
	if len(state.Books) != 4 || state.Books[0].Title != "Dune" {
		t.Fatalf("expected Dune prepended, got %+v", state.Books)
	}
	if state.Books[0].Image != admin.DefaultPlaceholderImage {
		t.Fatalf("expected placeholder image, got %q", state.Books[0].Image)
	}

	other := newClient(t)
	if got := getState(t, other, server.URL); len(got.Books) != 3 {
		t.Fatalf("sessions must be isolated, got %d books", len(got.Books))
	}

	resp, err = client.PostForm(server.URL+fmt.Sprintf("/admin/books/%d/delete", state.Books[0].ID), url.Values{"confirmed": {"yes"}})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if got := getState(t, client, server.URL); len(got.Books) != 3 {
		t.Fatalf("expected delete, got %d books", len(got.Books))
	}
}

func TestRouterRejectsIncompleteForm(t *testing.T) {
	server, _ := newTestServer(t, true, nil)
	client := newClient(t)

	resp, err := client.PostForm(server.URL+"/admin/books", url.Values{"title": {"Dune"}})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), admin.AlertIncompleteDraft) {
		t.Fatalf("expected alert in page, got %s", body)
	}
	if got := getState(t, client, server.URL); len(got.Books) != 3 {
		t.Fatalf("rejected submit must not change the catalog")
	}
}

func TestRouterSelectPanel(t *testing.T) {
	server, _ := newTestServer(t, true, nil)
	client := newClient(t)

	resp, err := client.PostForm(server.URL+"/admin/panels/transactions", url.Values{})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if got := getState(t, client, server.URL); got.ActivePanel != admin.PanelTransactions {
		t.Fatalf("expected transactions panel, got %q", got.ActivePanel)
	}

	resp, err = client.PostForm(server.URL+"/admin/panels/reports", url.Values{})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestRouterMetricsAndRootRedirect(t *testing.T) {
	server, _ := newTestServer(t, true, nil)
	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "metrics" {
		t.Fatalf("expected metrics handler, got %q", body)
	}

	noFollow := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err = noFollow.Get(server.URL + "/")
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/admin/dashboard" {
		t.Fatalf("expected redirect to dashboard, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestRouterCSRFBlocksFormsWithoutToken(t *testing.T) {
	server, _ := newTestServer(t, false, nil)
	client := newClient(t)

	resp, err := client.PostForm(server.URL+"/admin/books", url.Values{"title": {"T"}, "author": {"A"}, "category": {"C"}})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestRouterRateLimitsMutations(t *testing.T) {
	server, _ := newTestServer(t, true, NewRateLimiter(0.001, 1, slog.New(slog.NewTextHandler(io.Discard, nil))))
	client := newClient(t)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest(http.MethodDelete, server.URL+"/admin/books/1", nil)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected 200 then 429, got %v", codes)
	}
}

func TestRouterEventStream(t *testing.T) {
	server, broadcast := newTestServer(t, true, nil)
	client := newClient(t)
	// establish the session cookie
	getState(t, client, server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/admin/dashboard/events", nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected event stream, got %q", ct)
	}

	deadline := time.Now().Add(2 * time.Second)
	for broadcast.Subscribers() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	del, _ := http.NewRequest(http.MethodDelete, server.URL+"/admin/books/2?confirmed=true", nil)
	delResp, err := client.Do(del)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	delResp.Body.Close()

	buf := make([]byte, 512)
	var received strings.Builder
	for !strings.Contains(received.String(), "event: delete") {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			received.Write(buf[:n])
		}
		if err != nil {
			t.Fatalf("read stream: %v (got %q)", err, received.String())
		}
	}
}
