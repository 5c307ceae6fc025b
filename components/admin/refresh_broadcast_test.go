package admin

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	event := CatalogEvent{SessionID: "s1", Reason: "create", BookID: 4}
	if err := hook.CatalogUpdated(context.Background(), event); err != nil {
		t.Fatalf("CatalogUpdated returned error: %v", err)
	}
	select {
	case e := <-ch:
		if e.BookID != event.BookID {
			t.Fatalf("expected book %d, got %d", event.BookID, e.BookID)
		}
	default:
		t.Fatalf("expected event to be delivered")
	}
}

func TestBroadcastHookDropsWhenSubscriberIsFull(t *testing.T) {
	hook := NewBroadcastHook()
	_, cancel := hook.Subscribe()
	defer cancel()
	for i := 0; i < 32; i++ {
		if err := hook.CatalogUpdated(context.Background(), CatalogEvent{Reason: "select"}); err != nil {
			t.Fatalf("CatalogUpdated returned error: %v", err)
		}
	}
}

func TestBroadcastHookCancelUnsubscribes(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	if hook.Subscribers() != 1 {
		t.Fatalf("expected one subscriber")
	}
	cancel()
	if hook.Subscribers() != 0 {
		t.Fatalf("expected no subscribers after cancel")
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed")
	}
}

func TestSessionFilter(t *testing.T) {
	filter := SessionFilter("s1")
	if !filter(CatalogEvent{SessionID: "s1"}) {
		t.Fatalf("expected matching session to pass")
	}
	if filter(CatalogEvent{SessionID: "s2"}) {
		t.Fatalf("expected other session to be filtered")
	}
	if !SessionFilter("")(CatalogEvent{SessionID: "s2"}) {
		t.Fatalf("expected empty filter to match all")
	}
}

func TestBroadcastHookServeWebSocket(t *testing.T) {
	hook := NewBroadcastHook()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hook.ServeWebSocket(w, r, SessionFilter("s1"))
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitForSubscribers(t, hook, 1)
	_ = hook.CatalogUpdated(context.Background(), CatalogEvent{SessionID: "s2", Reason: "create", BookID: 9})
	_ = hook.CatalogUpdated(context.Background(), CatalogEvent{SessionID: "s1", Reason: "delete", BookID: 2})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got CatalogEvent
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.SessionID != "s1" || got.BookID != 2 {
		t.Fatalf("expected filtered event for s1, got %+v", got)
	}
}

func TestBroadcastHookServeSSE(t *testing.T) {
	hook := NewBroadcastHook()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hook.ServeSSE(w, r, nil)
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected event stream, got %q", ct)
	}

	waitForSubscribers(t, hook, 1)
	_ = hook.CatalogUpdated(context.Background(), CatalogEvent{SessionID: "s1", Reason: "update", BookID: 3})

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var got CatalogEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Reason != "update" || got.BookID != 3 {
			t.Fatalf("unexpected event %+v", got)
		}
		return
	}
}

func waitForSubscribers(t *testing.T, hook *BroadcastHook, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hook.Subscribers() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d subscribers", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
