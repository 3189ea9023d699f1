package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/emiller/scrapline/game/engine"
)

// Connection keepalive and framing limits.
const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = (pongTimeout * 9) / 10

	// Watchers never send game input; inbound frames are pong and close
	// handshakes only.
	maxInboundBytes = 512

	// Outbound queue per watcher. A watcher that falls this many snapshots
	// behind is dropped.
	outboxSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(*http.Request) bool {
		// Allow all origins in development
		return true
	},
}

// Update is the frame pushed to everyone watching a session. State carries
// the full level snapshot on "state_update" frames; Data carries the
// payload of custom events.
type Update struct {
	SessionID string                `json:"session_id"`
	State     *engine.LevelSnapshot `json:"state,omitempty"`
	Event     string                `json:"event,omitempty"`
	Data      interface{}           `json:"data,omitempty"`
}

// watcher is one spectator connection bound to a session.
type watcher struct {
	hub       *Hub
	conn      *websocket.Conn
	outbox    chan []byte
	sessionID string
}

// Hub fans level snapshots out to the watchers of each session.
type Hub struct {
	// Watchers keyed by session ID
	watchers map[string]map[*watcher]struct{}

	// Queued updates awaiting fanout
	updates chan *Update

	// Join and leave requests from connections
	joins  chan *watcher
	leaves chan *watcher
}

// NewHub creates an empty hub; call Run to start fanout.
func NewHub() *Hub {
	return &Hub{
		watchers: make(map[string]map[*watcher]struct{}),
		updates:  make(chan *Update),
		joins:    make(chan *watcher),
		leaves:   make(chan *watcher),
	}
}

// Run drives the watcher registry and queued-update fanout.
func (h *Hub) Run() {
	for {
		select {
		case w := <-h.joins:
			h.admit(w)

		case w := <-h.leaves:
			h.drop(w)

		case u := <-h.updates:
			h.publish(u)
		}
	}
}

// ServeWS upgrades the request and attaches the connection to a session
// as a watcher.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	wa := &watcher{
		hub:       h,
		conn:      conn,
		outbox:    make(chan []byte, outboxSize),
		sessionID: sessionID,
	}
	h.joins <- wa

	go wa.writeLoop()
	go wa.readLoop()
}

// BroadcastToSession pushes a fresh level snapshot to a session's watchers.
// The API layer calls this after every mutating operation.
func (h *Hub) BroadcastToSession(sessionID string, state *engine.LevelSnapshot) {
	h.publish(&Update{
		SessionID: sessionID,
		State:     state,
		Event:     "state_update",
	})
}

// BroadcastEvent queues a custom event for a session's watchers.
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.updates <- &Update{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	}
}

func (h *Hub) admit(w *watcher) {
	set := h.watchers[w.sessionID]
	if set == nil {
		set = make(map[*watcher]struct{})
		h.watchers[w.sessionID] = set
	}
	set[w] = struct{}{}

	log.Printf("Watcher joined session %s (%d watching)", w.sessionID, len(set))
}

func (h *Hub) drop(w *watcher) {
	set, ok := h.watchers[w.sessionID]
	if !ok {
		return
	}
	if _, ok := set[w]; !ok {
		return
	}
	delete(set, w)
	close(w.outbox)

	// Forget sessions nobody watches
	if len(set) == 0 {
		delete(h.watchers, w.sessionID)
	}

	log.Printf("Watcher left session %s (%d watching)", w.sessionID, len(set))
}

// publish encodes the update once and hands the frame to every watcher of
// the session. Watchers with a full outbox are dropped rather than letting
// a stalled connection back up the fanout.
func (h *Hub) publish(u *Update) {
	frame, err := json.Marshal(u)
	if err != nil {
		log.Printf("Failed to encode update for session %s: %v", u.SessionID, err)
		return
	}

	for w := range h.watchers[u.SessionID] {
		select {
		case w.outbox <- frame:
		default:
			h.drop(w)
		}
	}
}

// readLoop drains the connection to keep it alive and detect closure;
// inbound payloads are discarded.
func (w *watcher) readLoop() {
	defer func() {
		w.hub.leaves <- w
		w.conn.Close()
	}()

	w.conn.SetReadLimit(maxInboundBytes)
	w.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	w.conn.SetPongHandler(func(string) error {
		return w.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

// writeLoop writes one JSON update per frame and pings on an interval.
func (w *watcher) writeLoop() {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		w.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-w.outbox:
			w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// The hub dropped this watcher
				w.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := w.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ping.C:
			w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
