package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-library-admin/components/admin"
	"github.com/goliatone/go-library-admin/pkg/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSeedExportThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds", "library.yaml")

	var out bytes.Buffer
	export := &seedExportCmd{Out: path, Name: "test"}
	if err := export.run(&out); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if err := export.run(&out); err == nil {
		t.Fatalf("expected export to refuse overwriting without --overwrite")
	}

	out.Reset()
	validate := &seedValidateCmd{File: path}
	if err := validate.run(&out); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out.String(), "3 books") {
		t.Fatalf("unexpected validate output %q", out.String())
	}
}

func TestServeFlagsOverrideConfig(t *testing.T) {
	cfg := config.Defaults()
	cmd := &serveCmd{Addr: ":9999", Transport: config.TransportFiber, SeedFile: "seed.yaml"}
	cmd.apply(&cfg)
	if cfg.Server.Addr != ":9999" || cfg.Server.Transport != config.TransportFiber || cfg.Catalog.SeedFile != "seed.yaml" {
		t.Fatalf("flags not applied: %+v", cfg.Server)
	}
}

func TestAppServesJSONAPI(t *testing.T) {
	cfg := config.Defaults()
	app, err := newApp(cfg, discardLogger(), true)
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	handler, err := app.httpHandler()
	if err != nil {
		t.Fatalf("httpHandler failed: %v", err)
	}
	srv := httptest.NewServer(handler)
	defer srv.Close()

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}

	body := strings.NewReader(`{"title":"Go in Action","author":"William Kennedy","category":"Educational"}`)
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/admin/books", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, err = client.Get(srv.URL + "/admin/dashboard/_state")
	if err != nil {
		t.Fatalf("state failed: %v", err)
	}
	defer resp.Body.Close()
	var state struct {
		Books []admin.Book `json:"books"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(state.Books) != 4 || state.Books[0].Title != "Go in Action" {
		t.Fatalf("unexpected books %+v", state.Books)
	}

	metricsResp, err := client.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics failed: %v", err)
	}
	defer metricsResp.Body.Close()
	text, _ := io.ReadAll(metricsResp.Body)
	if !strings.Contains(string(text), `libadmin_events_total{event="library.book.create"} 1`) {
		t.Fatalf("expected create counter, got:\n%s", text)
	}
}

func TestSweepRefreshesSubscribers(t *testing.T) {
	cfg := config.Defaults()
	cfg.Session.Lifetime = time.Nanosecond
	app, err := newApp(cfg, discardLogger(), false)
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	ctx := context.Background()
	if _, err := app.service.Workspace(ctx, "s1"); err != nil {
		t.Fatalf("workspace: %v", err)
	}
	events, cancel := app.broadcast.Subscribe()
	defer cancel()

	time.Sleep(time.Millisecond)
	app.sweep(ctx, time.Minute)

	select {
	case event := <-events:
		if event.Reason != "expired" {
			t.Fatalf("expected expired event, got %q", event.Reason)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected a refresh event after sweeping")
	}
	if app.store.Len() != 0 {
		t.Fatalf("expected expired workspace to be dropped")
	}
}
