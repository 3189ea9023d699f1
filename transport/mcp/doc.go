// Package mcp provides Model Context Protocol server implementation for the Scrapline game.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for track editing and simulation
//   - Session-aware command execution
//   - Thin proxying to the REST API
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - level_state: Get current level snapshot with grid visualization
//   - place_track: Place a track segment at a cell
//   - remove_track: Remove a player-placed segment
//   - toggle_running: Start or pause the train
//   - run_simulation: Fixed-step run until win, block, or duration exhausted
//   - reset_level: Reset the train and cargo (track survives)
//   - edit_history: Retrieve edit history with pagination
//   - create_session: Create new game session with level selection
//   - get_session: Get specific session details
//   - list_sessions: List all active sessions
//   - list_levels: List available levels
//   - game_instructions: Full rules and strategy reference
//   - describe_cell: Inspect a single grid cell
//
// Architecture:
//
// The client does not touch the game engine directly. Every tool call is
// translated into an HTTP request against the REST API, so the MCP
// process can run separately from the game server and multiple MCP
// clients can share sessions.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// AI Integration:
//
// The MCP interface enables AI agents to:
//   - Autonomously solve levels
//   - Develop and test routing strategies
//   - Analyze level snapshots and make decisions
//   - Manage multiple game sessions
//   - Learn from edit history
package mcp
