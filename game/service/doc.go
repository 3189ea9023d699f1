// Package service provides the business logic layer for the Scrapline rail game.
//
// The service package implements:
//   - Multi-session game management
//   - Track editing and simulation operations
//   - Fixed-step simulation runs with event collection
//   - Edit history retrieval with pagination
//   - Level listing and loading
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game
// operations. SessionManager handles session creation, retrieval, and
// lifecycle. LevelManager loads and lists level descriptors.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP)
// and the game engine, providing session isolation and orchestration. Each
// session owns its own LevelState with independent track, train, and cargo
// state. All mutating operations on a session are serialized behind the
// service mutex, so simulation ticks never race with track edits.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	levelMgr, _ := config.NewManager("levels")
//	gameService := service.NewGameService(sessionMgr, levelMgr)
//
//	// Create a new session
//	info, err := gameService.CreateSession(ctx, "first-haul")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Lay track and run the train
//	gameService.PlaceTrack(ctx, info.ID, engine.Cell{X: 2, Y: 1}, "ew")
//	gameService.ToggleRunning(ctx, info.ID)
//	result, err := gameService.Run(ctx, info.ID, 10.0, 0.1)
package service
