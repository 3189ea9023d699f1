// Package api provides HTTP REST API handlers for the Scrapline game.
//
// The api package implements:
//   - RESTful endpoints for track editing and simulation
//   - Session management endpoints
//   - Level listing, loading, and saving
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session (optional level_id in body)
//   - GET /api/sessions - List all sessions (sort, order, limit query params)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Track Editing:
//   - GET /api/sessions/{id}/state - Get current level snapshot
//   - POST /api/sessions/{id}/track - Place a segment {x, y, orientation}
//   - DELETE /api/sessions/{id}/track - Remove a segment {x, y}
//
// Simulation:
//   - POST /api/sessions/{id}/toggle - Start or pause the train
//   - POST /api/sessions/{id}/tick - Advance the simulation {dt}
//   - POST /api/sessions/{id}/run - Fixed-step run {duration, step}
//   - POST /api/sessions/{id}/reset - Reset the level (track survives)
//   - GET /api/sessions/{id}/history - Get edit history with pagination
//
// Levels:
//   - GET /api/levels - List available level descriptors
//   - POST /api/levels - Save a level descriptor
//   - GET /api/levels/{id} - Get a level descriptor
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Rule violations during track
// editing are not HTTP errors: the edit endpoints return 200 with
// success=false and an error field describing the rejection. Transport
// failures (unknown session, malformed body) use 4xx/5xx status codes:
//
//	{
//	  "error": "error message"
//	}
//
// Usage:
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
//
// State changes are broadcast to WebSocket clients watching the same
// session via the hub after every mutating operation.
package api
