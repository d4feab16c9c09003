package overlay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"padkey/internal/input"
	"padkey/internal/protocol"
	"padkey/internal/state"

	"github.com/gorilla/websocket"
)

type fakeCommands struct {
	mu     sync.Mutex
	status state.Snapshot
	calls  chan string
	keys   chan protocol.KeyPayload
	window chan input.Window
	keyErr error
}

func newFakeCommands() *fakeCommands {
	return &fakeCommands{
		calls:  make(chan string, 16),
		keys:   make(chan protocol.KeyPayload, 16),
		window: make(chan input.Window, 4),
	}
}

func (f *fakeCommands) ToggleActive() { f.calls <- "toggle" }
func (f *fakeCommands) OpenOverlay()  { f.calls <- "open" }
func (f *fakeCommands) CloseOverlay() { f.calls <- "close" }

func (f *fakeCommands) SendKey(req protocol.KeyPayload) error {
	f.keys <- req
	return f.keyErr
}

func (f *fakeCommands) SetOverlayWindow(w input.Window) { f.window <- w }

func (f *fakeCommands) Status() state.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func startServer(t *testing.T, cmds Commands, token string) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(cmds)
	go hub.Run()
	srv := httptest.NewServer(NewServer(hub, token).Handler())
	t.Cleanup(func() {
		srv.Close()
		hub.Stop()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) protocol.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	env, err := protocol.ParseEnvelope(data)
	if err != nil {
		t.Fatalf("bad message %s: %v", data, err)
	}
	return env
}

func waitClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients, have %d", n, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGreetingReflectsState(t *testing.T) {
	cmds := newFakeCommands()
	cmds.status = state.Snapshot{Active: true, OverlayOpen: true}
	_, srv := startServer(t, cmds, "")
	conn := dial(t, srv, "")

	env := readEnvelope(t, conn)
	var active protocol.ActivePayload
	if env.Type != protocol.TypeActiveChanged || env.Decode(&active) != nil || !active.Active {
		t.Errorf("Expected active greeting, got %s", env.Type)
	}
	env = readEnvelope(t, conn)
	var vis protocol.VisibilityPayload
	if env.Type != protocol.TypeVisibilityChanged || env.Decode(&vis) != nil || !vis.Visible {
		t.Errorf("Expected visibility greeting, got %s", env.Type)
	}
}

func TestGreetingFollowsQueuedEvents(t *testing.T) {
	cmds := newFakeCommands()
	cmds.status = state.Snapshot{Active: true, OverlayOpen: true}
	hub := NewHub(cmds)
	srv := httptest.NewServer(NewServer(hub, "").Handler())
	t.Cleanup(func() {
		srv.Close()
		hub.Stop()
	})

	// queued before the state the greeting reports
	hub.Notify(ActiveChanged{Active: false})
	hub.Notify(VisibilityChanged{Visible: false})

	// the upgrade completes before the hub loop takes the registration
	conn := dial(t, srv, "")
	go hub.Run()

	env := readEnvelope(t, conn)
	var active protocol.ActivePayload
	if env.Type != protocol.TypeActiveChanged || env.Decode(&active) != nil || !active.Active {
		t.Fatalf("Expected active greeting first, got %s", env.Type)
	}
	env = readEnvelope(t, conn)
	var vis protocol.VisibilityPayload
	if env.Type != protocol.TypeVisibilityChanged || env.Decode(&vis) != nil || !vis.Visible {
		t.Fatalf("Expected visible greeting, got %s", env.Type)
	}

	waitClients(t, hub, 1)
	hub.Notify(NavShift{})
	if env := readEnvelope(t, conn); env.Type != protocol.TypeNavShift {
		t.Errorf("Expected no stale state after the greeting, got %s", env.Type)
	}
}

func TestNotifyPreservesOrder(t *testing.T) {
	cmds := newFakeCommands()
	hub, srv := startServer(t, cmds, "")
	conn := dial(t, srv, "")
	readEnvelope(t, conn)
	readEnvelope(t, conn)
	waitClients(t, hub, 1)

	at := time.UnixMilli(1700000000000)
	hub.Notify(NavMove{Dx: 1, Phase: protocol.PhaseDown, Source: "gamepad", Magnitude: 1, At: at})
	hub.Notify(NavSelect{Phase: protocol.PhaseDown, At: at})
	hub.Notify(NavShift{})

	want := []protocol.MessageType{protocol.TypeNavMove, protocol.TypeNavSelect, protocol.TypeNavShift}
	for i, w := range want {
		env := readEnvelope(t, conn)
		if env.Type != w {
			t.Fatalf("message %d: expected %s, got %s", i, w, env.Type)
		}
		if w == protocol.TypeNavMove {
			var p protocol.NavMovePayload
			if err := env.Decode(&p); err != nil {
				t.Fatal(err)
			}
			if p.Dx != 1 || p.Dy != 0 || p.Timestamp != 1700000000000 {
				t.Errorf("unexpected nav move payload %+v", p)
			}
		}
	}
}

func TestCommandsDispatched(t *testing.T) {
	cmds := newFakeCommands()
	_, srv := startServer(t, cmds, "")
	conn := dial(t, srv, "")

	send := func(raw string) {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
			t.Fatal(err)
		}
	}
	send(`{"type":"toggle_active"}`)
	send(`{"type":"open_overlay"}`)
	send(`{"type":"close_overlay"}`)

	for _, want := range []string{"toggle", "open", "close"} {
		select {
		case got := <-cmds.calls:
			if got != want {
				t.Errorf("Expected %s, got %s", want, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}

	send(`{"type":"hello","payload":{"window":4660}}`)
	select {
	case w := <-cmds.window:
		if w != 0x1234 {
			t.Errorf("Expected window 0x1234, got %#x", w)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for hello")
	}

	send(`{"type":"send_key","payload":{"phase":"down","key":"a","modifiers":["shift"]}}`)
	select {
	case k := <-cmds.keys:
		if k.Phase != protocol.PhaseDown || k.Key != "a" || len(k.Modifiers) != 1 {
			t.Errorf("unexpected key payload %+v", k)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for send_key")
	}
}

func TestSendKeyErrorReplied(t *testing.T) {
	cmds := newFakeCommands()
	cmds.keyErr = input.ErrUnsupported
	_, srv := startServer(t, cmds, "")
	conn := dial(t, srv, "")
	readEnvelope(t, conn)
	readEnvelope(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"send_key","payload":{"phase":"down","key":"{f13}"}}`)); err != nil {
		t.Fatal(err)
	}
	env := readEnvelope(t, conn)
	if env.Type != protocol.TypeError {
		t.Fatalf("Expected error reply, got %s", env.Type)
	}
	var p protocol.ErrorPayload
	if err := env.Decode(&p); err != nil {
		t.Fatal(err)
	}
	if p.Request != protocol.TypeSendKey {
		t.Errorf("Expected request send_key, got %s", p.Request)
	}
}

func TestAuthRequired(t *testing.T) {
	cmds := newFakeCommands()
	_, srv := startServer(t, cmds, "secret")

	resp, err := http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected health to skip auth, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 with token, got %d", resp.StatusCode)
	}
	var body struct {
		State   state.Snapshot `json:"state"`
		Clients int            `json:"clients"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}

	dial(t, srv, "?token=secret")
}

func TestFanoutSkipsNil(t *testing.T) {
	var got []Event
	f := Fanout{nil, NotifierFunc(func(ev Event) { got = append(got, ev) })}
	f.Notify(NavShift{})
	if len(got) != 1 {
		t.Errorf("Expected one delivery, got %d", len(got))
	}
}
