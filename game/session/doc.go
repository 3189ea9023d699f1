// Package session provides session management for the Scrapline rail game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management
//   - File-based session persistence
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each session wraps an independent level simulation with metadata like
// creation time and last access time. FilePersistence stores sessions as
// JSON files keyed by session ID.
//
// Session Identifiers:
//
// Sessions use 8-character IDs, the first block of a v4 UUID, short enough
// to reference in URLs and chat while remaining collision-resistant.
//
// Persistence:
//
// A persisted session records its level id and the restorable simulation
// state (player track, train position, cargo, history). On load the level
// is rebuilt from its descriptor and the saved state is replayed onto it,
// so endpoints, walls, and messages always come from the current level
// files.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", levelManager)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//
//	// Create a new session
//	sess, err := manager.Create("", levelConfig)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Retrieve an existing session
//	sess, err = manager.Get(sessionID)
package session
