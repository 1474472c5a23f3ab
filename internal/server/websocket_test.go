package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/avrkit/internal/appcommand"
	"github.com/muurk/avrkit/internal/audyssey"
)

// dialEvents connects to the monitor feed and consumes the greeting.
// Returning after the greeting guarantees the hub has registered the
// client, so later commands are guaranteed to reach it.
func dialEvents(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + EventsEndpoint
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial(%q) error = %v", wsURL, err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	var greeting Event
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&greeting); err != nil {
		t.Fatalf("reading greeting: %v", err)
	}
	if greeting.Kind != "monitor" || greeting.Name != "connected" {
		t.Fatalf("greeting = %s/%s, want monitor/connected", greeting.Kind, greeting.Name)
	}
	return conn
}

// readEvent reads the next event with a deadline
func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()

	var ev Event
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("reading event: %v", err)
	}
	return ev
}

func TestEventFeedBroadcastsWrites(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialEvents(t, ts)

	postCommand(t, ts, appcommand.NewSetAudyssey(audyssey.ParamDynamicVolume, "2"))

	ev := readEvent(t, conn)
	if ev.Kind != "appcommand" {
		t.Errorf("Kind = %q, want appcommand", ev.Kind)
	}
	if ev.Name != appcommand.CommandSetAudyssey {
		t.Errorf("Name = %q, want SetAudyssey", ev.Name)
	}
	if ev.Params[audyssey.ParamDynamicVolume] != "2" {
		t.Errorf("Params = %v, want dynamicvol=2", ev.Params)
	}
	if ev.Result != "ok" {
		t.Errorf("Result = %q, want ok", ev.Result)
	}
	if ev.RemoteAddr == "" {
		t.Error("RemoteAddr is empty")
	}
	if ev.Time.IsZero() {
		t.Error("Time is zero")
	}
}

func TestEventFeedReportsRejections(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialEvents(t, ts)

	postCommand(t, ts, appcommand.NewSetAudyssey(audyssey.ParamMultiEQ, "9"))

	ev := readEvent(t, conn)
	if ev.Result == "ok" {
		t.Error("Result = ok for a rejected write")
	}
	if !strings.Contains(ev.Result, "invalid code") {
		t.Errorf("Result = %q, want the rejection reason", ev.Result)
	}
}

func TestEventFeedQueriesIncludeValues(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialEvents(t, ts)

	postCommand(t, ts, appcommand.NewGetAudyssey(audyssey.ParamMultiEQ))

	ev := readEvent(t, conn)
	if ev.Name != appcommand.CommandGetAudyssey {
		t.Errorf("Name = %q, want GetAudyssey", ev.Name)
	}
	if ev.Params[audyssey.ParamMultiEQ] != "3" {
		t.Errorf("Params = %v, want multeq=3", ev.Params)
	}
}

func TestEventFeedMultipleMonitors(t *testing.T) {
	_, ts := newTestServer(t)
	first := dialEvents(t, ts)
	second := dialEvents(t, ts)

	postCommand(t, ts, appcommand.NewSetAudyssey(audyssey.ParamDynamicEQ, "0"))

	for i, conn := range []*websocket.Conn{first, second} {
		ev := readEvent(t, conn)
		if ev.Name != appcommand.CommandSetAudyssey {
			t.Errorf("monitor %d: Name = %q, want SetAudyssey", i, ev.Name)
		}
	}
}
