// Package config provides level management for the Scrapline rail game.
//
// The config package handles:
//   - Loading level descriptors from JSON files
//   - Descriptor validation and caching
//   - Default level selection
//   - Level discovery and listing
//
// Level Format:
//
// Levels are stored as JSON files in the levels directory. Each descriptor
// defines:
//   - An ASCII layout with a fixed legend (walls, buildable cells, pre-laid
//     track, garbage, spawn, and recycling centers)
//   - Train speed and cargo capacity
//   - Spawn and recycling center endpoint placement
//   - Player-facing message templates
//
// Usage:
//
//	manager, err := config.NewManager("levels")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load a specific level
//	level, err := manager.LoadLevel("first-haul")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Get the default level
//	def := manager.GetDefault()
//
//	// List available levels
//	levels, err := manager.ListLevels()
//
// Validation:
//
// All descriptors are validated at load time for layout shape, legend
// characters, marker/field consistency, value ranges, and reachability of
// every garbage and recycling center cell from the spawn.
package config
