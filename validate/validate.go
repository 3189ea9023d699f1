// Command validate provides a small CLI that validates level descriptor JSON
// files in the ../levels directory. It checks:
//   - JSON structure and required fields
//   - Grid consistency and allowed glyphs (., #, G, S, C, -, |, L, F, 7, J, +)
//   - Exactly one spawn (S) and at least one recycling center (C)
//   - Center markers matching the recycling_centers entries
//   - Train speed and cargo capacity ranges
//   - Spawn/center orientations against the orientation legend
//   - Connectivity: all garbage and centers reachable from spawn over non-wall cells
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config mirrors the JSON schema for a level descriptor.
type Config struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Layout        []string `json:"layout"`
	TrainSpeed    float64  `json:"train_speed"`
	CargoCapacity int      `json:"cargo_capacity"`
	Spawn         struct {
		X           int    `json:"x"`
		Y           int    `json:"y"`
		Heading     string `json:"heading"`
		Orientation string `json:"orientation"`
	} `json:"spawn"`
	Centers []struct {
		X           int    `json:"x"`
		Y           int    `json:"y"`
		Required    int    `json:"required"`
		Orientation string `json:"orientation"`
	} `json:"recycling_centers"`
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

var validOrientations = map[string]bool{
	"ns": true, "ew": true,
	"ne": true, "es": true, "sw": true, "nw": true,
	"nes": true, "new": true, "nsw": true, "esw": true,
	"nesw": true,
}

var validHeadings = map[string]bool{
	"north": true, "east": true, "south": true, "west": true,
}

// validateLevel loads and validates a single level descriptor JSON file.
// It performs structural checks, grid/legend validation, marker/field
// cross-checks, and reachability analysis for garbage and centers.
func validateLevel(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if config.Name == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "Missing required field: name")
	}

	// Validate grid
	if len(config.Layout) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Layout is empty")
	}

	gridWidth := -1
	spawnCount := 0
	centerCount := 0
	garbageCount := 0
	trackCount := 0
	validChars := map[rune]bool{
		'.': true, // Empty
		'#': true, // Wall
		'G': true, // Garbage token
		'S': true, // Spawn depot
		'C': true, // Recycling center
		'-': true, // Track ew
		'|': true, // Track ns
		'L': true, // Curve ne
		'F': true, // Curve es
		'7': true, // Curve sw
		'J': true, // Curve nw
		'+': true, // Junction
	}

	for i, row := range config.Layout {
		if gridWidth == -1 {
			gridWidth = len(row)
		} else if len(row) != gridWidth {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Inconsistent grid width at row %d: expected %d, got %d", i+1, gridWidth, len(row)))
		}

		for j, char := range row {
			if !validChars[char] {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("Invalid character '%c' at position [%d,%d]", char, i+1, j+1))
			}
			switch char {
			case 'S':
				spawnCount++
			case 'C':
				centerCount++
			case 'G':
				garbageCount++
			case '-', '|', 'L', 'F', '7', 'J', '+':
				trackCount++
			}
		}
	}

	// Validate game elements
	if spawnCount != 1 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Must have exactly 1 spawn (S) cell, got %d", spawnCount))
	}

	if centerCount == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Must have at least 1 recycling center (C)")
	}

	if garbageCount == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Must have at least 1 garbage token (G)")
	}

	if centerCount != len(config.Centers) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Layout has %d center cells but recycling_centers lists %d", centerCount, len(config.Centers)))
	}

	// Validate simulation settings
	if config.TrainSpeed != 0 && (config.TrainSpeed < 0.1 || config.TrainSpeed > 20.0) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("train_speed must be in [0.1, 20.0], got %.2f", config.TrainSpeed))
	}

	if config.CargoCapacity < 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("cargo_capacity cannot be negative, got %d", config.CargoCapacity))
	}

	// Validate spawn entry against the layout
	if glyphAt(config.Layout, config.Spawn.X, config.Spawn.Y) != 'S' {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Spawn (%d,%d) does not sit on an 'S' cell", config.Spawn.X, config.Spawn.Y))
	}
	if !validHeadings[strings.ToLower(config.Spawn.Heading)] {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid spawn heading: %q", config.Spawn.Heading))
	}
	if !validOrientations[strings.ToLower(config.Spawn.Orientation)] {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid spawn orientation: %q", config.Spawn.Orientation))
	}

	// Validate recycling center entries against the layout
	for i, center := range config.Centers {
		if glyphAt(config.Layout, center.X, center.Y) != 'C' {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("recycling_centers[%d] (%d,%d) does not sit on a 'C' cell", i, center.X, center.Y))
		}
		if center.Required < 1 {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("recycling_centers[%d] required must be at least 1, got %d", i, center.Required))
		}
		if !validOrientations[strings.ToLower(center.Orientation)] {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("recycling_centers[%d] invalid orientation: %q", i, center.Orientation))
		}
	}

	// Connectivity validation - check if all garbage and centers are reachable from spawn
	if result.Valid {
		reachabilityResult := validateConnectivity(config.Layout, config.Spawn.X, config.Spawn.Y)
		if !reachabilityResult.Valid {
			result.Valid = false
			result.Errors = append(result.Errors, reachabilityResult.Errors...)
		} else {
			result.Errors = append(result.Errors, reachabilityResult.Errors...)
		}
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d", len(config.Layout), gridWidth))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Garbage tokens: %d", garbageCount))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Recycling centers: %d", centerCount))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Pre-laid track: %d", trackCount))
	}

	return result
}

// glyphAt returns the layout byte at (x, y), or 0 when out of bounds.
func glyphAt(layout []string, x, y int) byte {
	if y < 0 || y >= len(layout) {
		return 0
	}
	row := layout[y]
	if x < 0 || x >= len(row) {
		return 0
	}
	return row[x]
}

// validateConnectivity ensures all garbage tokens and recycling centers are
// reachable from the spawn using 4-directional movement over non-wall cells.
// It reports any unreachable objectives and returns an aggregated
// ValidationResult.
func validateConnectivity(layout []string, spawnX, spawnY int) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	if len(layout) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Cannot validate connectivity: empty layout")
		return result
	}

	height := len(layout)
	width := len(layout[0])

	// Find all objectives (garbage and centers)
	var objectives [][]int
	for y := 0; y < height; y++ {
		for x := 0; x < width && x < len(layout[y]); x++ {
			cell := layout[y][x]
			if cell == 'G' || cell == 'C' {
				objectives = append(objectives, []int{x, y})
			}
		}
	}

	// Helper function to check if a cell is passable
	isPassable := func(x, y int) bool {
		if x < 0 || y < 0 || y >= height || x >= width || x >= len(layout[y]) {
			return false
		}
		return layout[y][x] != '#'
	}

	if !isPassable(spawnX, spawnY) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Spawn (%d,%d) is not a passable cell", spawnX, spawnY))
		return result
	}

	// Flood fill from spawn to find all reachable cells
	visited := make(map[string]bool)
	queue := [][]int{{spawnX, spawnY}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		x, y := current[0], current[1]
		key := fmt.Sprintf("%d,%d", x, y)

		if visited[key] {
			continue
		}
		visited[key] = true

		// Check all 4 directions
		directions := [][]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
		for _, dir := range directions {
			nx, ny := x+dir[0], y+dir[1]
			nkey := fmt.Sprintf("%d,%d", nx, ny)

			if !visited[nkey] && isPassable(nx, ny) {
				queue = append(queue, []int{nx, ny})
			}
		}
	}

	// Check if all objectives are reachable
	unreachable := []string{}
	for _, obj := range objectives {
		ox, oy := obj[0], obj[1]
		key := fmt.Sprintf("%d,%d", ox, oy)
		if !visited[key] {
			glyph := layout[oy][ox]
			kind := "Garbage"
			if glyph == 'C' {
				kind = "Center"
			}
			unreachable = append(unreachable, fmt.Sprintf("%s at (%d,%d)", kind, ox, oy))
		}
	}

	if len(unreachable) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Connectivity failure: %d/%d objectives unreachable from spawn", len(unreachable), len(objectives)))
		for _, obj := range unreachable {
			result.Errors = append(result.Errors, fmt.Sprintf("Unreachable: %s", obj))
		}
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Connectivity: All %d objectives reachable from spawn", len(objectives)))
	}

	return result
}

// main scans ../levels for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	levelDir := "../levels"
	files, err := filepath.Glob(filepath.Join(levelDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding level files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateLevel(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All levels are valid!")
	} else {
		fmt.Println("❌ Some levels have errors")
		os.Exit(1)
	}
}
