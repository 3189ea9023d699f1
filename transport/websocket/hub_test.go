package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/emiller/scrapline/game/engine"
)

func testSnapshot() *engine.LevelSnapshot {
	return &engine.LevelSnapshot{
		Name:   "Test Yard",
		Width:  7,
		Height: 4,
		Grid: []string{
			"#######",
			"#T.G.C#",
			"#.....#",
			"#######",
		},
		Train: engine.TrainSnapshot{
			Cell:    engine.Cell{X: 1, Y: 1},
			Heading: engine.East,
			State:   engine.TrainStopped,
		},
		Status: engine.StatusInProgress,
	}
}

func newTestWatcher(hub *Hub, sessionID string, buffer int) *watcher {
	return &watcher{
		hub:       hub,
		sessionID: sessionID,
		outbox:    make(chan []byte, buffer),
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.watchers == nil {
		t.Error("Hub watchers map is nil")
	}
	if hub.updates == nil {
		t.Error("Hub updates channel is nil")
	}
	if hub.joins == nil {
		t.Error("Hub joins channel is nil")
	}
	if hub.leaves == nil {
		t.Error("Hub leaves channel is nil")
	}
}

func TestHubAdmitWatcher(t *testing.T) {
	hub := NewHub()
	w := newTestWatcher(hub, "test-session", outboxSize)

	hub.admit(w)

	set, exists := hub.watchers["test-session"]
	if !exists {
		t.Fatal("Session registry was not created")
	}
	if _, ok := set[w]; !ok {
		t.Error("Watcher was not admitted to session")
	}
	if len(set) != 1 {
		t.Errorf("Expected 1 watcher in session, got %d", len(set))
	}
}

func TestHubDropWatcher(t *testing.T) {
	hub := NewHub()
	w := newTestWatcher(hub, "test-session", outboxSize)

	hub.admit(w)
	hub.drop(w)

	if _, exists := hub.watchers["test-session"]; exists {
		t.Error("Session should have been forgotten after last watcher left")
	}
	if _, ok := <-w.outbox; ok {
		t.Error("Dropped watcher's outbox should be closed")
	}
}

func TestHubMultipleWatchersInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-watcher-session"

	w1 := newTestWatcher(hub, sessionID, outboxSize)
	w2 := newTestWatcher(hub, sessionID, outboxSize)

	hub.admit(w1)
	hub.admit(w2)

	if len(hub.watchers[sessionID]) != 2 {
		t.Errorf("Expected 2 watchers in session, got %d", len(hub.watchers[sessionID]))
	}

	hub.drop(w1)

	if len(hub.watchers[sessionID]) != 1 {
		t.Errorf("Expected 1 watcher remaining in session, got %d", len(hub.watchers[sessionID]))
	}
	if _, ok := hub.watchers[sessionID][w2]; !ok {
		t.Error("w2 should still be watching")
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub()
	sessionID := "broadcast-test"
	w := newTestWatcher(hub, sessionID, outboxSize)

	hub.admit(w)
	hub.BroadcastToSession(sessionID, testSnapshot())

	select {
	case frame := <-w.outbox:
		var update Update
		if err := json.Unmarshal(frame, &update); err != nil {
			t.Fatalf("Failed to unmarshal update: %v", err)
		}
		if update.SessionID != sessionID {
			t.Errorf("Expected sessionID %s, got %s", sessionID, update.SessionID)
		}
		if update.Event != "state_update" {
			t.Errorf("Expected event 'state_update', got %s", update.Event)
		}
		if update.State.Train.Cell != (engine.Cell{X: 1, Y: 1}) {
			t.Error("Snapshot not correctly transmitted")
		}

	case <-time.After(100 * time.Millisecond):
		t.Error("No update received within timeout")
	}
}

func TestHubDropsStalledWatcher(t *testing.T) {
	hub := NewHub()
	sessionID := "stalled-test"

	// An outbox of one fills on the first snapshot; the second fanout must
	// drop the watcher instead of blocking.
	w := newTestWatcher(hub, sessionID, 1)
	hub.admit(w)

	hub.BroadcastToSession(sessionID, testSnapshot())
	hub.BroadcastToSession(sessionID, testSnapshot())

	if _, exists := hub.watchers[sessionID]; exists {
		t.Error("Stalled watcher should have been dropped")
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()
	done := make(chan bool)

	go func() {
		select {
		case update := <-hub.updates:
			if update.SessionID != "event-test" {
				t.Errorf("Expected sessionID 'event-test', got %s", update.SessionID)
			}
			if update.Event != "custom-event" {
				t.Errorf("Expected event 'custom-event', got %s", update.Event)
			}
			if update.Data != "test-data" {
				t.Errorf("Expected data 'test-data', got %v", update.Data)
			}
			done <- true
		case <-time.After(100 * time.Millisecond):
			t.Error("No queued update received within timeout")
			done <- false
		}
	}()

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	<-done
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			sessionID = "default"
		}
		hub.ServeWS(w, r, sessionID)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws-test"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	// Give some time for the join
	time.Sleep(50 * time.Millisecond)

	if len(hub.watchers["ws-test"]) != 1 {
		t.Errorf("Expected 1 watcher in session, got %d", len(hub.watchers["ws-test"]))
	}

	conn.Close()

	// Give some time for the leave
	time.Sleep(10 * time.Millisecond)

	if _, exists := hub.watchers["ws-test"]; exists {
		t.Error("Session should have been forgotten after WebSocket close")
	}
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			sessionID = "default"
		}
		hub.ServeWS(w, r, sessionID)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=msg-test"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	// Give time for connection to establish
	time.Sleep(10 * time.Millisecond)

	snap := testSnapshot()
	snap.Train.Cell = engine.Cell{X: 3, Y: 1}
	snap.Train.State = engine.TrainRunning
	hub.BroadcastToSession("msg-test", snap)

	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var update Update
	if err := json.Unmarshal(frame, &update); err != nil {
		t.Fatalf("Failed to unmarshal update: %v", err)
	}

	if update.SessionID != "msg-test" {
		t.Errorf("Expected sessionID 'msg-test', got %s", update.SessionID)
	}
	if update.State.Train.Cell != (engine.Cell{X: 3, Y: 1}) {
		t.Error("Train position not correctly received")
	}
	if update.State.Train.State != engine.TrainRunning {
		t.Error("Train state not correctly received")
	}
}
