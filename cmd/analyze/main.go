// Command analyze prints quick, human-readable heuristics about level
// descriptor files in the project's levels directory. It summarizes
// dimensions, simulation settings, counts of garbage tokens and recycling
// centers, and estimates the minimum number of track cells a solution needs
// based on BFS distances over non-wall cells.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// AnalysisConfig is a light struct for reading level files used by analysis.
type AnalysisConfig struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Layout        []string `json:"layout"`
	TrainSpeed    float64  `json:"train_speed"`
	CargoCapacity int      `json:"cargo_capacity"`
	Spawn         struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"spawn"`
	Centers []struct {
		X        int `json:"x"`
		Y        int `json:"y"`
		Required int `json:"required"`
	} `json:"recycling_centers"`
}

// AnalysisPoint denotes a grid coordinate used during analysis output.
type AnalysisPoint struct {
	X, Y int
}

func main() {
	files, err := filepath.Glob(filepath.Join("levels", "*.json"))
	if err != nil || len(files) == 0 {
		fmt.Println("No level files found in levels/")
		os.Exit(1)
	}

	for _, levelFile := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(levelFile))
		analyzeLevel(levelFile)
	}
}

func analyzeLevel(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	var config AnalysisConfig
	if err := json.Unmarshal(data, &config); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return
	}

	height := len(config.Layout)
	width := 0
	if height > 0 {
		width = len(config.Layout[0])
	}

	fmt.Printf("Name: %s\n", config.Name)
	fmt.Printf("Grid Size: %d x %d\n", width, height)
	fmt.Printf("Train Speed: %.1f cells/s\n", config.TrainSpeed)
	fmt.Printf("Cargo Capacity: %d\n", config.CargoCapacity)

	// Find all tokens, centers, and pre-laid track
	var tokens []AnalysisPoint
	var centers []AnalysisPoint
	prelaid := 0

	for y, row := range config.Layout {
		for x, cell := range row {
			switch cell {
			case 'G':
				tokens = append(tokens, AnalysisPoint{x, y})
			case 'C':
				centers = append(centers, AnalysisPoint{x, y})
			case '-', '|', 'L', 'F', '7', 'J', '+':
				prelaid++
			}
		}
	}

	spawn := AnalysisPoint{config.Spawn.X, config.Spawn.Y}
	fmt.Printf("Spawn Position: (%d, %d)\n", spawn.X, spawn.Y)
	fmt.Printf("Garbage Tokens: %d\n", len(tokens))
	fmt.Printf("Recycling Centers: %d\n", len(centers))
	fmt.Printf("Pre-laid Track: %d\n", prelaid)

	// Check that the tokens can cover the required deliveries
	totalRequired := 0
	for _, c := range config.Centers {
		totalRequired += c.Required
	}
	fmt.Printf("Required Deliveries: %d\n", totalRequired)

	if totalRequired > len(tokens) {
		fmt.Printf("⚠️  CRITICAL: %d deliveries required but only %d tokens available - level is unwinnable!\n", totalRequired, len(tokens))
	}

	// BFS distances from spawn over non-wall cells. A train can only travel
	// on track, so the BFS distance is a lower bound on track cells needed.
	dist := bfsDistances(config.Layout, spawn)

	unreachable := []AnalysisPoint{}
	for _, p := range append(append([]AnalysisPoint{}, tokens...), centers...) {
		if _, ok := dist[p]; !ok {
			unreachable = append(unreachable, p)
		}
	}

	if len(unreachable) > 0 {
		fmt.Printf("⚠️  CRITICAL: %d objectives are unreachable from spawn!\n", len(unreachable))
		for i, p := range unreachable {
			if i < 5 { // Show first 5 unreachable points
				fmt.Printf("   Unreachable: (%d, %d) - '%c'\n", p.X, p.Y, config.Layout[p.Y][p.X])
			}
		}
		if len(unreachable) > 5 {
			fmt.Printf("   ... and %d more\n", len(unreachable)-5)
		}
		return
	}

	fmt.Printf("✅ All objectives are reachable from spawn\n")

	// Estimate minimum track: spawn to the farthest token, then token to its
	// nearest center. Rough lower bound only; real routes share cells.
	minTrack := 0
	for _, token := range tokens {
		leg := dist[token]
		nearestCenter := 1 << 30
		centerDist := bfsDistances(config.Layout, token)
		for _, center := range centers {
			if d, ok := centerDist[center]; ok && d < nearestCenter {
				nearestCenter = d
			}
		}
		if nearestCenter == 1<<30 {
			continue
		}
		if leg+nearestCenter > minTrack {
			minTrack = leg + nearestCenter
		}
	}
	fmt.Printf("Estimated minimum route length: %d cells\n", minTrack)
}

// bfsDistances returns shortest 4-directional path lengths from start over
// non-wall cells. Cells not present in the map are unreachable.
func bfsDistances(layout []string, start AnalysisPoint) map[AnalysisPoint]int {
	dist := map[AnalysisPoint]int{}
	height := len(layout)
	if height == 0 {
		return dist
	}
	width := len(layout[0])

	passable := func(p AnalysisPoint) bool {
		if p.X < 0 || p.Y < 0 || p.Y >= height || p.X >= width || p.X >= len(layout[p.Y]) {
			return false
		}
		return layout[p.Y][p.X] != '#'
	}

	if !passable(start) {
		return dist
	}

	dist[start] = 0
	queue := []AnalysisPoint{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		neighbors := []AnalysisPoint{
			{cur.X, cur.Y - 1},
			{cur.X + 1, cur.Y},
			{cur.X, cur.Y + 1},
			{cur.X - 1, cur.Y},
		}
		for _, n := range neighbors {
			if _, seen := dist[n]; seen || !passable(n) {
				continue
			}
			dist[n] = dist[cur] + 1
			queue = append(queue, n)
		}
	}
	return dist
}
