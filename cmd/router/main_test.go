package main

import (
	"testing"
)

func testState() *LevelState {
	return &LevelState{
		Name:   "Test Level",
		Width:  7,
		Height: 5,
		Grid: []string{
			"#######",
			"#S..G.#",
			"#.....#",
			"#....C#",
			"#######",
		},
		Train: Train{Cell: Cell{1, 1}, Capacity: 1},
		Tokens: []Token{
			{ID: "g1", Cell: Cell{4, 1}},
		},
		Centers: []Center{
			{Cell: Cell{5, 3}, Required: 1},
		},
	}
}

func TestPlanRoute(t *testing.T) {
	state := testState()

	route := planRoute(state)
	if route == nil {
		t.Fatal("Expected a route, got nil")
	}

	if route[0] != (Cell{1, 1}) {
		t.Errorf("Route should start at spawn (1,1), got %v", route[0])
	}

	last := route[len(route)-1]
	if last != (Cell{5, 3}) {
		t.Errorf("Route should end at center (5,3), got %v", last)
	}

	foundToken := false
	for _, c := range route {
		if c == (Cell{4, 1}) {
			foundToken = true
			break
		}
	}
	if !foundToken {
		t.Error("Route should pass through the token at (4,1)")
	}

	// Shortest route: 3 east to the token, then 1 east + 2 south to the center.
	if len(route) != 7 {
		t.Errorf("Expected route length 7, got %d", len(route))
	}
}

func TestPlanRoute_Unreachable(t *testing.T) {
	state := testState()
	state.Grid = []string{
		"#######",
		"#S.#G.#",
		"#..#..#",
		"#..#.C#",
		"#######",
	}

	if route := planRoute(state); route != nil {
		t.Errorf("Expected nil route for walled-off token, got %v", route)
	}
}

func TestRouteOrientations(t *testing.T) {
	state := testState()
	route := planRoute(state)
	if route == nil {
		t.Fatal("Expected a route")
	}

	placements := routeOrientations(state, route)

	// Spawn and center are endpoint cells and must be skipped.
	for _, p := range placements {
		if p.Cell == (Cell{1, 1}) || p.Cell == (Cell{5, 3}) {
			t.Errorf("Endpoint cell %v should not be placed", p.Cell)
		}
	}

	byCell := map[Cell]string{}
	for _, p := range placements {
		byCell[p.Cell] = p.Orientation
	}

	// Straight run east out of spawn.
	for _, c := range []Cell{{2, 1}, {3, 1}, {4, 1}} {
		if byCell[c] != "ew" {
			t.Errorf("Expected ew at %v, got %q", c, byCell[c])
		}
	}

	// Turn south toward the center.
	if byCell[Cell{5, 1}] != "sw" {
		t.Errorf("Expected sw at (5,1), got %q", byCell[Cell{5, 1}])
	}
	if byCell[Cell{5, 2}] != "ns" {
		t.Errorf("Expected ns at (5,2), got %q", byCell[Cell{5, 2}])
	}
}

func TestRouteOrientations_MergesRevisits(t *testing.T) {
	state := testState()

	// A route that passes through (3,2) horizontally and vertically.
	route := []Cell{
		{2, 2}, {3, 2}, {4, 2},
		{4, 1}, {3, 1}, {3, 2}, {3, 3},
	}

	placements := routeOrientations(state, route)
	byCell := map[Cell]string{}
	for _, p := range placements {
		byCell[p.Cell] = p.Orientation
	}

	if byCell[Cell{3, 2}] != "nesw" {
		t.Errorf("Expected nesw at revisited (3,2), got %q", byCell[Cell{3, 2}])
	}
}
