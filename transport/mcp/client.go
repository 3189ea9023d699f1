package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/emiller/scrapline/game/engine"
	"github.com/emiller/scrapline/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Scrapline",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Scrapline - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Lay track so the garbage train can collect every garbage token (G) and
deliver them to the recycling centers (C). The level is won the moment
every center has received its required count.

AVAILABLE TOOLS:
- level_state: Get the current level snapshot (grid, train, cargo)
- place_track: Place a track segment at a cell - requires intent explanation
- remove_track: Remove a player-placed segment
- toggle_running: Start or pause the train
- run_simulation: Advance the simulation in fixed steps until it stops
- reset_level: Reset the train and cargo (placed track survives)
- edit_history: View past track edits
- create_session: Create new game session
- get_session: Get session details
- list_sessions: List all active sessions
- list_levels: List available levels
- game_instructions: Get comprehensive game instructions and rules
- describe_cell: Get detailed info about a specific grid cell

NOTE: The 'intent' parameter on place_track serves as rubber duck debugging - explain your plan!`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional level selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the level to load (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Level state
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "level_state",
		Description: "Get the current level snapshot",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleLevelState)

	// Track editing
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_track",
		Description: "Place a track segment at a cell. Orientations name the connected sides in n,e,s,w order: ns, ew, ne, es, sw, nw, nes, new, nsw, esw, nesw.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column) of the cell (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row) of the cell (0-based)",
				},
				"orientation": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"ns", "ew", "ne", "es", "sw", "nw", "nes", "new", "nsw", "esw", "nesw"},
					"description": "Connection set of the segment",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the plan behind this placement (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "x", "y", "orientation"},
		},
	}, c.handlePlaceTrack)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "remove_track",
		Description: "Remove a player-placed track segment from a cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column) of the cell (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row) of the cell (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleRemoveTrack)

	// Simulation
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "toggle_running",
		Description: "Start the train if stopped, pause it if running",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleToggleRunning)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_simulation",
		Description: "Run the simulation in fixed steps until it wins, blocks, or the duration is exhausted. Starts the train automatically if stopped.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"duration": map[string]interface{}{
					"type":        "number",
					"description": "Simulated seconds to run",
				},
				"step": map[string]interface{}{
					"type":        "number",
					"description": "Step size in seconds (default 0.1)",
				},
			},
			Required: []string{"session_id", "duration"},
		},
	}, c.handleRunSimulation)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_level",
		Description: "Reset the train and cargo to the initial state. Placed track survives.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleResetLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "edit_history",
		Description: "Get track edit history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleEditHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List available levels",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about a specific cell in the grid, including its glyph, track connections, and any garbage or recycling center on it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column) of the cell to describe (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row) of the cell to describe (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	levelID, _ := args["level_id"].(string)

	body := map[string]string{}
	if levelID != "" {
		body["level_id"] = levelID
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nLevel: %s\n", session.ID, session.LevelID)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Level: %s, Created: %s)\n",
			s.ID, s.LevelID, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSessionInfo(&session)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleLevelState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state engine.LevelSnapshot
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatLevelSnapshot(&state)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handlePlaceTrack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	x := int(args["x"].(float64))
	y := int(args["y"].(float64))
	orientation, _ := args["orientation"].(string)
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{
		"x":           x,
		"y":           y,
		"orientation": orientation,
	}

	var result service.EditResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/track", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatEditResult("place", engine.Cell{X: x, Y: y}, &result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleRemoveTrack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	x := int(args["x"].(float64))
	y := int(args["y"].(float64))

	body := map[string]interface{}{
		"x": x,
		"y": y,
	}

	var result service.EditResult
	err := c.apiCall("DELETE", fmt.Sprintf("/api/sessions/%s/track", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatEditResult("remove", engine.Cell{X: x, Y: y}, &result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleToggleRunning(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var result service.ToggleResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/toggle", sessionID), nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	verb := "paused"
	if result.Running {
		verb = "running"
	}
	response := fmt.Sprintf("Train is now %s\n\n%s", verb, formatLevelSnapshot(result.State))
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleRunSimulation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	duration, _ := args["duration"].(float64)
	step, _ := args["step"].(float64)

	body := map[string]interface{}{
		"duration": duration,
	}
	if step > 0 {
		body["step"] = step
	}

	var result service.RunResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/run", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatRunResult(sessionID, &result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleResetLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		Message string                `json:"message"`
		State   *engine.LevelSnapshot `json:"state"`
	}

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatLevelSnapshot(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleEditHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	params := "?"
	if page, ok := args["page"].(float64); ok {
		params += fmt.Sprintf("page=%d&", int(page))
	}
	if limit, ok := args["limit"].(float64); ok {
		params += fmt.Sprintf("limit=%d&", int(limit))
	}

	var history service.HistoryResponse
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/history%s", sessionID, params), nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatHistory(&history)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []service.LevelInfo
	err := c.apiCall("GET", "/api/levels", nil, &levels)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Levels:\n\n"
	for _, level := range levels {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Grid: %dx%d, Speed: %.1f cells/s, Centers: %d\n\n",
			level.Name, level.LevelID, level.Description, level.Width, level.Height, level.TrainSpeed, level.Centers)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🚂 Scrapline - Complete Instructions

GAME OBJECTIVE:
Lay track so the garbage train can collect every garbage token and deliver
them to the recycling centers. The level is won the instant every center
has received its required number of deliveries.

GAME MECHANICS:
• The train moves continuously along connected track at a fixed speed
• Entering a cell with garbage picks up one token (if cargo space remains)
• Entering a recycling center unloads everything the train carries
• At junctions the train prefers to continue straight; otherwise it takes
  the first connected side in north, east, south, west order
• The train never reverses: it blocks at a dead end instead
• Track cannot be placed or removed under the moving train
• Reset puts the train and cargo back; your placed track survives

GRID LEGEND:
• T - Train (current position)
• S - Spawn (where the train starts)
• C - Recycling center (delivery endpoint)
• G - Garbage token (collect these)
• # - Wall (cannot hold track)
• . - Empty buildable cell
• - - East-west straight track
• | - North-south straight track
• L - North-east curve
• F - East-south curve
• 7 - South-west curve
• J - North-west curve
• + - Junction (tee or four-way cross)

ORIENTATIONS:
Track segments are named by their connected sides in n, e, s, w order:
  ns, ew          straights
  ne, es, sw, nw  curves
  nes, new, nsw, esw  three-way tees
  nesw            four-way cross
A segment only carries the train between sides it connects, and two
adjacent segments only join when both connect toward each other.

🤖 STRATEGY NOTES:
1. Trace the path cell by cell before starting the train: every pair of
   adjacent segments must reciprocate their connection.
2. The straight-first rule at junctions is deterministic - use it to route
   loops that visit garbage before the center.
3. Deliveries only count when the train ENTERS the center cell; a train
   sitting on the center at start delivers nothing.
4. A blocked train is not a failure: fix the track, then toggle it running
   again (or just keep ticking - reset is not required).
5. Use run_simulation with a generous duration rather than many small
   ticks; it stops early on win or block and reports why.

SESSION MANAGEMENT:
- Multiple game sessions can run simultaneously
- Each session has a unique 8-character ID
- Sessions maintain independent level state
- Sessions are persisted and survive server restarts

Good luck hauling! 🚂♻️`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	x := int(args["x"].(float64))
	y := int(args["y"].(float64))

	var state engine.LevelSnapshot
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if x < 0 || x >= state.Width || y < 0 || y >= state.Height {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) are out of bounds. Grid is %dx%d (0-%d for x, 0-%d for y)",
			x, y, state.Width, state.Height, state.Width-1, state.Height-1)), nil
	}

	glyph := string(state.Grid[y][x])
	lines := []string{
		fmt.Sprintf("Cell at position (%d, %d):", x, y),
		"━━━━━━━━━━━━━━━━━━━━━━━━",
		fmt.Sprintf("Glyph: %s", glyph),
		fmt.Sprintf("Description: %s", describeGlyph(glyph)),
	}

	if state.Train.Cell.X == x && state.Train.Cell.Y == y {
		lines = append(lines, fmt.Sprintf("Train is here (heading %s, carrying %d/%d)",
			state.Train.Heading, state.Train.Carried, state.Train.Capacity))
	}
	for _, token := range state.Tokens {
		if token.Cell.X == x && token.Cell.Y == y && !token.Collected {
			lines = append(lines, fmt.Sprintf("Garbage token %s waiting here", token.ID))
		}
	}
	for _, center := range state.Centers {
		if center.Cell.X == x && center.Cell.Y == y {
			lines = append(lines, fmt.Sprintf("Recycling center: %d/%d delivered", center.Fulfilled, center.Required))
		}
	}

	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func describeGlyph(glyph string) string {
	switch glyph {
	case "#":
		return "Wall - cannot hold track"
	case ".":
		return "Empty buildable cell"
	case "-":
		return "East-west straight track"
	case "|":
		return "North-south straight track"
	case "L":
		return "North-east curve"
	case "F":
		return "East-south curve"
	case "7":
		return "South-west curve"
	case "J":
		return "North-west curve"
	case "+":
		return "Junction (tee or cross)"
	case "G":
		return "Garbage token waiting for pickup"
	case "S":
		return "Spawn - the train starts here"
	case "C":
		return "Recycling center - delivery endpoint"
	case "T":
		return "The train"
	default:
		return "Unknown glyph"
	}
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nLevel: %s\nCreated: %s\n\n%s",
		session.ID, session.LevelID,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatLevelSnapshot(session.State))
}

func formatLevelSnapshot(state *engine.LevelSnapshot) string {
	if state == nil {
		return "No level state available"
	}

	var result strings.Builder

	// Header
	result.WriteString(fmt.Sprintf("Level: %s | Train: %s %s | Cargo: %d/%d | Edits: %d\n\n",
		state.Name, state.Train.Cell, state.Train.State,
		state.Train.Carried, state.Train.Capacity, state.TotalEdits))

	// Grid
	for _, row := range state.Grid {
		result.WriteString(row)
		result.WriteString("\n")
	}

	// Cargo progress
	remaining := 0
	for _, token := range state.Tokens {
		if !token.Collected {
			remaining++
		}
	}
	result.WriteString(fmt.Sprintf("\nGarbage remaining: %d\n", remaining))
	for _, center := range state.Centers {
		result.WriteString(fmt.Sprintf("Center %s: %d/%d\n", center.Cell, center.Fulfilled, center.Required))
	}

	// Status
	switch state.Status {
	case engine.StatusWon:
		result.WriteString("\n🎉 LEVEL COMPLETE!")
	case engine.StatusBlocked:
		result.WriteString("\n⛔ TRAIN BLOCKED")
	}

	if state.Message != "" {
		result.WriteString(fmt.Sprintf("\nMessage: %s", state.Message))
	}

	return result.String()
}

func formatEditResult(action string, cell engine.Cell, result *service.EditResult) string {
	response := ""
	if result.Success {
		response = fmt.Sprintf("✓ %s at %s successful\n", action, cell)
	} else {
		response = fmt.Sprintf("✗ %s at %s failed\n", action, cell)
		if result.Error != "" {
			response += fmt.Sprintf("Reason: %s\n", result.Error)
		}
	}

	response += "\n" + formatLevelSnapshot(result.State)
	return response
}

func formatRunResult(sessionID string, result *service.RunResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Session: %s\n", sessionID))
	b.WriteString(fmt.Sprintf("Executed %d/%d steps\n", result.StepsExecuted, result.RequestedSteps))
	if result.StoppedReason != "" {
		b.WriteString(fmt.Sprintf("Stopped: %s\n", result.StoppedReason))
	}
	if result.Truncated {
		b.WriteString(fmt.Sprintf("Truncated at the %d step limit\n", result.Limit))
	}
	b.WriteString(fmt.Sprintf("Route: %s → %s | Collected: %d | Delivered: %d\n",
		result.StartCell, result.EndCell, result.Collected, result.Delivered))

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			b.WriteString(fmt.Sprintf("- %s at %s: %s\n", event.Type, event.Cell, event.Message))
		}
	}

	b.WriteString("\n")
	b.WriteString(formatLevelSnapshot(result.State))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Edit History (Page %d/%d) — Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalEdits)

	if len(history.Edits) == 0 {
		return result + "(no edits on this page)"
	}

	for _, edit := range history.Edits {
		status := "✓"
		if !edit.Success {
			status = "✗"
		}
		line := fmt.Sprintf("%d. %s %s", edit.EditNumber, edit.Action, edit.Cell)
		if edit.Orientation != "" {
			line += fmt.Sprintf(" [%s]", edit.Orientation)
		}
		result += line + " " + status + "\n"
	}

	return result
}
