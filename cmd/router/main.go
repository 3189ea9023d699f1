// Command router is an automatic track layer. It connects to a running
// Scrapline server, plans a haul route over the level grid with BFS, lays the
// track for it through the REST API, and runs the simulation to report the
// outcome. It is a development tool for sanity-checking that shipped levels
// are solvable end to end.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"time"
)

type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Train struct {
	Cell     Cell   `json:"cell"`
	Carried  int    `json:"carried"`
	Capacity int    `json:"capacity"`
	State    string `json:"state"`
}

type Token struct {
	ID        string `json:"id"`
	Cell      Cell   `json:"cell"`
	Collected bool   `json:"collected,omitempty"`
}

type Center struct {
	Cell      Cell `json:"cell"`
	Required  int  `json:"required"`
	Fulfilled int  `json:"fulfilled"`
}

type LevelState struct {
	Name    string   `json:"name"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Grid    []string `json:"grid"`
	Train   Train    `json:"train"`
	Tokens  []Token  `json:"tokens"`
	Centers []Center `json:"centers"`
	Status  string   `json:"status"`
	Message string   `json:"message"`
}

type SessionResponse struct {
	ID    string      `json:"id"`
	State *LevelState `json:"state"`
}

type EditResponse struct {
	Success bool        `json:"success"`
	State   *LevelState `json:"state"`
	Error   string      `json:"error,omitempty"`
}

type RunResponse struct {
	StepsExecuted int         `json:"steps_executed"`
	StoppedReason string      `json:"stopped_reason"`
	Collected     int         `json:"collected"`
	Delivered     int         `json:"delivered"`
	Status        string      `json:"status"`
	State         *LevelState `json:"state"`
}

type ResetResponse struct {
	Message string      `json:"message"`
	State   *LevelState `json:"state"`
}

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) CreateSession(levelID string) (*LevelState, error) {
	var reqBody []byte
	var err error

	if levelID != "" {
		reqBody, err = json.Marshal(map[string]string{"level_id": levelID})
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	resp, err := c.client.Post(c.baseURL+"/api/sessions", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create session failed: %s - %s", resp.Status, string(body))
	}

	var session SessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("parse session response: %w", err)
	}

	c.sessionID = session.ID
	return session.State, nil
}

func (c *Client) GetState() (*LevelState, error) {
	url := fmt.Sprintf("%s/api/sessions/%s/state", c.baseURL, c.sessionID)
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	defer resp.Body.Close()

	var state LevelState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}

	return &state, nil
}

func (c *Client) PlaceTrack(cell Cell, orientation string) (*EditResponse, error) {
	body, err := json.Marshal(map[string]interface{}{
		"x":           cell.X,
		"y":           cell.Y,
		"orientation": orientation,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal placement: %w", err)
	}

	url := fmt.Sprintf("%s/api/sessions/%s/track", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("place track: %w", err)
	}
	defer resp.Body.Close()

	var editResp EditResponse
	if err := json.NewDecoder(resp.Body).Decode(&editResp); err != nil {
		return nil, fmt.Errorf("parse placement response: %w", err)
	}

	return &editResp, nil
}

func (c *Client) Run(duration, step float64) (*RunResponse, error) {
	body, err := json.Marshal(map[string]float64{
		"duration": duration,
		"step":     step,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal run: %w", err)
	}

	url := fmt.Sprintf("%s/api/sessions/%s/run", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("run simulation: %w", err)
	}
	defer resp.Body.Close()

	var runResp RunResponse
	if err := json.NewDecoder(resp.Body).Decode(&runResp); err != nil {
		return nil, fmt.Errorf("parse run response: %w", err)
	}

	return &runResp, nil
}

func (c *Client) Reset() (*LevelState, error) {
	url := fmt.Sprintf("%s/api/sessions/%s/reset", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	defer resp.Body.Close()

	var resetResp ResetResponse
	if err := json.NewDecoder(resp.Body).Decode(&resetResp); err != nil {
		return nil, fmt.Errorf("parse reset response: %w", err)
	}

	return resetResp.State, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	levelID := flag.String("level", "", "Level to solve (default server level if empty)")
	continueSession := flag.String("continue", "", "Lay track in an existing session by ID")
	duration := flag.Float64("duration", 90, "Simulated seconds to run after laying track")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	log.Printf("Connecting to game server at %s", *serverURL)
	client := NewClient(*serverURL)

	var state *LevelState
	var err error

	if *continueSession != "" {
		client.sessionID = *continueSession
		log.Printf("🔄 Resuming session: %s", client.sessionID)
		state, err = client.GetState()
		if err != nil {
			log.Fatalf("Failed to resume session: %v", err)
		}
	} else {
		state, err = client.CreateSession(*levelID)
		if err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		log.Printf("✨ Session created: %s", client.sessionID)
	}

	log.Printf("Level %q - Grid: %dx%d, Tokens: %d, Centers: %d, Capacity: %d",
		state.Name, state.Width, state.Height, len(state.Tokens), len(state.Centers), state.Train.Capacity)

	route := planRoute(state)
	if route == nil {
		log.Fatalf("❌ No route found covering all tokens and a recycling center")
	}
	log.Printf("Planned route: %d cells", len(route))

	placements := routeOrientations(state, route)
	log.Printf("Track plan: %d placements", len(placements))

	placed := 0
	for _, p := range placements {
		resp, err := client.PlaceTrack(p.Cell, p.Orientation)
		if err != nil {
			log.Fatalf("Placement request failed at (%d,%d): %v", p.Cell.X, p.Cell.Y, err)
		}
		if !resp.Success {
			log.Printf("⚠️  Placement rejected at (%d,%d) [%s]: %s", p.Cell.X, p.Cell.Y, p.Orientation, resp.Error)
			continue
		}
		placed++
		if *verbose {
			log.Printf("Placed %s at (%d,%d)", p.Orientation, p.Cell.X, p.Cell.Y)
		}
	}
	log.Printf("Placed %d/%d segments", placed, len(placements))

	runResp, err := client.Run(*duration, 0.1)
	if err != nil {
		log.Fatalf("Failed to run simulation: %v", err)
	}

	log.Printf("Simulation: %d steps, stopped=%s, collected=%d, delivered=%d",
		runResp.StepsExecuted, runResp.StoppedReason, runResp.Collected, runResp.Delivered)

	if runResp.Status == "won" {
		log.Printf("\n🎉 LEVEL SOLVED! Session: %s", client.sessionID)
		os.Exit(0)
	}

	log.Printf("\n❌ Level not solved (status=%s)", runResp.Status)
	if runResp.State != nil {
		for _, row := range runResp.State.Grid {
			log.Printf("  %s", row)
		}
	}
	log.Printf("Session: %s", client.sessionID)
	os.Exit(1)
}

// planRoute builds a cell path from the spawn through every uncollected token
// and then to a recycling center, using greedy nearest-token legs joined by
// BFS shortest paths over non-wall cells.
func planRoute(state *LevelState) []Cell {
	remaining := map[Cell]bool{}
	for _, t := range state.Tokens {
		if !t.Collected {
			remaining[t.Cell] = true
		}
	}

	route := []Cell{state.Train.Cell}
	current := state.Train.Cell

	for len(remaining) > 0 {
		leg := shortestPathToAny(state, current, remaining)
		if leg == nil {
			return nil
		}
		route = append(route, leg[1:]...)
		current = leg[len(leg)-1]
		delete(remaining, current)
	}

	// Final leg to the nearest unfulfilled center.
	targets := map[Cell]bool{}
	for _, c := range state.Centers {
		if c.Fulfilled < c.Required {
			targets[c.Cell] = true
		}
	}
	if len(targets) == 0 {
		return route
	}
	leg := shortestPathToAny(state, current, targets)
	if leg == nil {
		return nil
	}
	return append(route, leg[1:]...)
}

// shortestPathToAny returns the shortest BFS path from start to the closest
// cell in targets, inclusive of both ends. Walls are impassable.
func shortestPathToAny(state *LevelState, start Cell, targets map[Cell]bool) []Cell {
	passable := func(c Cell) bool {
		if c.X < 0 || c.Y < 0 || c.Y >= state.Height || c.X >= state.Width {
			return false
		}
		return state.Grid[c.Y][c.X] != '#'
	}

	prev := map[Cell]Cell{start: start}
	queue := []Cell{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if targets[cur] && cur != start {
			// Rebuild path
			var path []Cell
			for c := cur; ; c = prev[c] {
				path = append([]Cell{c}, path...)
				if c == start {
					return path
				}
			}
		}

		for _, n := range []Cell{
			{cur.X, cur.Y - 1},
			{cur.X + 1, cur.Y},
			{cur.X, cur.Y + 1},
			{cur.X - 1, cur.Y},
		} {
			if _, seen := prev[n]; seen || !passable(n) {
				continue
			}
			prev[n] = cur
			queue = append(queue, n)
		}
	}
	return nil
}

// Placement is one planned track placement.
type Placement struct {
	Cell        Cell
	Orientation string
}

// routeOrientations converts a cell path into track placements. Each interior
// cell connects toward its predecessor and successor; cells visited more than
// once get their connection sets merged into tees or crosses. Endpoint cells
// (spawn 'S' and centers 'C') carry fixed track and are skipped.
func routeOrientations(state *LevelState, route []Cell) []Placement {
	type dirset struct{ n, e, s, w bool }
	conns := map[Cell]*dirset{}

	connect := func(from, to Cell) {
		ds := conns[from]
		if ds == nil {
			ds = &dirset{}
			conns[from] = ds
		}
		switch {
		case to.Y < from.Y:
			ds.n = true
		case to.X > from.X:
			ds.e = true
		case to.Y > from.Y:
			ds.s = true
		case to.X < from.X:
			ds.w = true
		}
	}

	for i, c := range route {
		if i > 0 {
			connect(c, route[i-1])
		}
		if i < len(route)-1 {
			connect(c, route[i+1])
		}
	}

	var placements []Placement
	for c, ds := range conns {
		glyph := state.Grid[c.Y][c.X]
		if glyph == 'S' || glyph == 'C' {
			continue
		}

		orient := ""
		if ds.n {
			orient += "n"
		}
		if ds.e {
			orient += "e"
		}
		if ds.s {
			orient += "s"
		}
		if ds.w {
			orient += "w"
		}
		// A single connection happens only at a dangling route end; extend it
		// into a straight so the segment is a valid shape.
		switch orient {
		case "n", "s":
			orient = "ns"
		case "e", "w":
			orient = "ew"
		}

		placements = append(placements, Placement{Cell: c, Orientation: orient})
	}

	// Deterministic placement order keeps the logs stable across runs.
	sort.Slice(placements, func(i, j int) bool {
		if placements[i].Cell.Y != placements[j].Cell.Y {
			return placements[i].Cell.Y < placements[j].Cell.Y
		}
		return placements[i].Cell.X < placements[j].Cell.X
	})
	return placements
}
