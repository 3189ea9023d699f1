package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/emiller/scrapline/game/engine"
	"github.com/emiller/scrapline/game/service"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	expectedResponse := map[string]interface{}{
		"id":     "test-session",
		"status": "in_progress",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expectedResponse)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	err := client.apiCall("GET", "/api/sessions/test-session", nil, &response)
	if err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if response["id"] != expectedResponse["id"] {
		t.Errorf("Expected id %v, got %v", expectedResponse["id"], response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	err := client.apiCall("GET", "/api/sessions", nil, nil)
	if err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api/sessions", nil, nil)
	if err == nil {
		t.Error("Expected error for HTTP 500 response")
	}

	if !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error' in error message, got: %v", err)
	}
}

func TestClient_createSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}

		resp := service.SessionInfo{
			ID:      "abcd1234",
			LevelID: "first-haul",
			State: &engine.LevelSnapshot{
				Name:   "First Haul",
				Status: engine.StatusInProgress,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "create_session",
			Arguments: map[string]interface{}{},
		},
	}

	result, err := client.handleCreateSession(ctx, request)
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	if result == nil {
		t.Fatal("Expected result, got nil")
	}

	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}

	if !strings.Contains(resultStr.Text, "abcd1234") {
		t.Errorf("Expected session ID in result, got: %s", resultStr.Text)
	}
}

func TestClient_placeTrack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions/abcd1234/track" {
			t.Errorf("Expected POST /api/sessions/abcd1234/track, got %s %s", r.Method, r.URL.Path)
		}

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["orientation"] != "ew" {
			t.Errorf("Expected orientation 'ew', got %v", body["orientation"])
		}

		resp := service.EditResult{
			Success: true,
			State: &engine.LevelSnapshot{
				Name:       "First Haul",
				Grid:       []string{"#####", "#S-C#", "#####"},
				TotalEdits: 1,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: "place_track",
			Arguments: map[string]interface{}{
				"session_id":  "abcd1234",
				"x":           float64(2),
				"y":           float64(1),
				"orientation": "ew",
				"intent":      "connect spawn to the center",
			},
		},
	}

	result, err := client.handlePlaceTrack(ctx, request)
	if err != nil {
		t.Fatalf("placeTrack failed: %v", err)
	}

	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}

	if !strings.Contains(resultStr.Text, "✓ place at (2,1) successful") {
		t.Errorf("Expected success marker in result, got: %s", resultStr.Text)
	}
	if !strings.Contains(resultStr.Text, "#S-C#") {
		t.Errorf("Expected grid in result, got: %s", resultStr.Text)
	}
}

func TestFormatLevelSnapshot(t *testing.T) {
	state := &engine.LevelSnapshot{
		Name:   "Test Yard",
		Width:  7,
		Height: 4,
		Grid: []string{
			"#######",
			"#T-G-C#",
			"#.....#",
			"#######",
		},
		Train: engine.TrainSnapshot{
			Cell:     engine.Cell{X: 1, Y: 1},
			State:    engine.TrainRunning,
			Carried:  1,
			Capacity: 2,
		},
		Tokens: []engine.GarbageToken{
			{ID: "g1", Cell: engine.Cell{X: 3, Y: 1}},
		},
		Centers: []engine.RecyclingCenter{
			{Cell: engine.Cell{X: 5, Y: 1}, Required: 2, Fulfilled: 1},
		},
		Status:  engine.StatusInProgress,
		Message: "All aboard.",
	}

	result := formatLevelSnapshot(state)

	expectedFields := []string{
		"Level: Test Yard",
		"Cargo: 1/2",
		"#T-G-C#",
		"Garbage remaining: 1",
		"Center (5,1): 1/2",
		"All aboard.",
	}

	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}
}

func TestFormatLevelSnapshot_Won(t *testing.T) {
	state := &engine.LevelSnapshot{
		Name:   "Test Yard",
		Status: engine.StatusWon,
		Grid:   []string{"#####"},
	}

	result := formatLevelSnapshot(state)

	if !strings.Contains(result, "🎉 LEVEL COMPLETE!") {
		t.Errorf("Expected '🎉 LEVEL COMPLETE!' in result, got: %s", result)
	}
}

func TestFormatLevelSnapshot_Blocked(t *testing.T) {
	state := &engine.LevelSnapshot{
		Name:   "Test Yard",
		Status: engine.StatusBlocked,
		Grid:   []string{"#####"},
	}

	result := formatLevelSnapshot(state)

	if !strings.Contains(result, "⛔ TRAIN BLOCKED") {
		t.Errorf("Expected '⛔ TRAIN BLOCKED' in result, got: %s", result)
	}
}

func TestFormatEditResult_Failed(t *testing.T) {
	editResult := &service.EditResult{
		Success: false,
		Error:   "cannot place track on a wall",
		State: &engine.LevelSnapshot{
			Name: "Test Yard",
			Grid: []string{"#####"},
		},
	}

	result := formatEditResult("place", engine.Cell{X: 0, Y: 0}, editResult)

	if !strings.Contains(result, "✗ place at (0,0) failed") {
		t.Errorf("Expected failure marker in result, got: %s", result)
	}
	if !strings.Contains(result, "cannot place track on a wall") {
		t.Errorf("Expected rejection reason in result, got: %s", result)
	}
}

func TestFormatRunResult(t *testing.T) {
	runResult := &service.RunResult{
		StepsExecuted:  23,
		RequestedSteps: 50,
		StoppedReason:  "won",
		StartCell:      engine.Cell{X: 1, Y: 1},
		EndCell:        engine.Cell{X: 5, Y: 1},
		Collected:      2,
		Delivered:      2,
		Events: []service.GameEvent{
			{Type: "picked_up", Cell: engine.Cell{X: 3, Y: 1}, Message: "Picked up garbage."},
			{Type: "won", Cell: engine.Cell{X: 5, Y: 1}, Message: "All deliveries complete."},
		},
		State: &engine.LevelSnapshot{
			Name:   "Test Yard",
			Status: engine.StatusWon,
			Grid:   []string{"#####"},
		},
	}

	result := formatRunResult("abcd1234", runResult)

	expectedFields := []string{
		"Executed 23/50 steps",
		"Stopped: won",
		"Route: (1,1) → (5,1)",
		"Collected: 2",
		"picked_up at (3,1)",
	}

	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}
}

func TestFormatHistory(t *testing.T) {
	history := &service.HistoryResponse{
		Edits: []engine.EditHistoryEntry{
			{Action: "place", Cell: engine.Cell{X: 2, Y: 1}, Orientation: engine.StraightEW, Success: true, EditNumber: 1},
			{Action: "place", Cell: engine.Cell{X: 0, Y: 0}, Orientation: engine.StraightEW, Success: false, EditNumber: 2},
		},
		TotalEdits: 2,
		Page:       1,
		PageSize:   20,
		TotalPages: 1,
	}

	result := formatHistory(history)

	if !strings.Contains(result, "Total (cumulative): 2") {
		t.Errorf("Expected total in result, got: %s", result)
	}
	if !strings.Contains(result, "1. place (2,1) [ew] ✓") {
		t.Errorf("Expected first edit line in result, got: %s", result)
	}
	if !strings.Contains(result, "2. place (0,0) [ew] ✗") {
		t.Errorf("Expected failed edit line in result, got: %s", result)
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")
	ctx := context.Background()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "game_instructions",
			Arguments: map[string]interface{}{},
		},
	}

	result, err := client.handleGameInstructions(ctx, request)
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	if result == nil {
		t.Fatal("Expected result, got nil")
	}

	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}

	expectedContent := []string{
		"Scrapline - Complete Instructions",
		"GAME OBJECTIVE:",
		"GAME MECHANICS:",
		"GRID LEGEND:",
		"ORIENTATIONS:",
		"STRATEGY NOTES:",
		"SESSION MANAGEMENT:",
		"Good luck hauling!",
	}

	for _, content := range expectedContent {
		if !strings.Contains(resultStr.Text, content) {
			t.Errorf("Expected '%s' in instructions, got: %s", content, resultStr.Text)
		}
	}
}

func TestClient_describeCell(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := engine.LevelSnapshot{
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
				Cell:     engine.Cell{X: 1, Y: 1},
				Heading:  engine.East,
				Capacity: 1,
			},
			Tokens: []engine.GarbageToken{
				{ID: "g1", Cell: engine.Cell{X: 3, Y: 1}},
			},
			Centers: []engine.RecyclingCenter{
				{Cell: engine.Cell{X: 5, Y: 1}, Required: 1},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	describe := func(x, y int) string {
		t.Helper()
		request := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "describe_cell",
				Arguments: map[string]interface{}{
					"session_id": "abcd1234",
					"x":          float64(x),
					"y":          float64(y),
				},
			},
		}
		result, err := client.handleDescribeCell(ctx, request)
		if err != nil {
			t.Fatalf("describeCell failed: %v", err)
		}
		text, ok := result.Content[0].(mcp.TextContent)
		if !ok {
			t.Fatal("Expected text content in result")
		}
		return text.Text
	}

	if got := describe(3, 1); !strings.Contains(got, "Garbage token g1 waiting here") {
		t.Errorf("Expected token info for (3,1), got: %s", got)
	}
	if got := describe(5, 1); !strings.Contains(got, "Recycling center: 0/1 delivered") {
		t.Errorf("Expected center info for (5,1), got: %s", got)
	}
	if got := describe(0, 0); !strings.Contains(got, "Wall") {
		t.Errorf("Expected wall description for (0,0), got: %s", got)
	}
}

func TestClient_Integration(t *testing.T) {
	client := NewClient("http://localhost:8080")

	if client == nil {
		t.Fatal("Failed to create client")
	}

	if client.mcpServer == nil {
		t.Fatal("MCP server not initialized")
	}

	if client.baseURL == "" {
		t.Error("Base URL not set")
	}

	if client.httpClient == nil {
		t.Error("HTTP client not initialized")
	}
}
