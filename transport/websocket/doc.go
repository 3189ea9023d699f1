// Package websocket provides WebSocket transport for the Scrapline game.
//
// The websocket package implements:
//   - Real-time level snapshot streaming
//   - Session-aware WebSocket connections
//   - Automatic state broadcasting after edits and ticks
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub tracks the
// watchers of each session. Each connection is handled by dedicated read
// and write goroutines that manage keepalive and cleanup; a watcher that
// stops draining its queue is dropped rather than stalling the fanout.
//
// Update Protocol:
//
// Updates are JSON-encoded, one per frame. Clients do not send commands
// over the socket; they watch. Every state change produces an update:
//
//	{
//	  "session_id": "abcd1234",
//	  "event": "state_update",
//	  "state": { ...complete level snapshot... }
//	}
//
// Session Integration:
//
// WebSocket connections are session-aware. Clients specify their session ID
// via query parameter (?session=abcd1234) when establishing the connection.
// Snapshots are broadcast only to clients watching the same session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Concurrency:
//
// The hub and connection handlers are designed for concurrent operation.
// Multiple watchers can connect, disconnect, and receive snapshots
// simultaneously without blocking each other.
package websocket
