// Package engine provides the core simulation for the Scrapline rail game.
//
// The engine package implements the game mechanics including:
//   - The track graph: segments, endpoints, walls, and junction routing
//   - Player track editing with full placement and removal validation
//   - Continuous train motion over the grid with deterministic time-slicing
//   - Garbage pickup, cargo capacity, and recycling center deliveries
//   - Win and blocked detection, level reset, and state persistence
//   - Level descriptor loading and validation
//
// Core Types:
//
// LevelState is the top-level simulation object, built from a LevelConfig
// descriptor. It composes a TrackGraph (track topology), a Train (the moving
// actor), a CargoManager (tokens and centers), and a TrackEditor (validated
// edits), and exposes ticking, editing, toggling, and snapshotting.
//
// Usage:
//
//	cfg, err := engine.LoadLevelConfig("levels/first-haul.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	level, err := cfg.NewLevelState()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	level.PlaceTrack(engine.Cell{X: 2, Y: 1}, engine.StraightEW)
//	level.ToggleRunning()
//	events := level.Tick(0.5)
//	snapshot := level.Snapshot()
//
// Game Rules:
//
// The player lays rail segments between a depot and one or more recycling
// centers, then starts the train. The train follows the track, preferring to
// continue straight at junctions, picking up garbage as it enters cells and
// unloading at centers. The level is won the moment every center has received
// its required deliveries; a train that runs out of track blocks until the
// level is reset. Resetting restores the train and cargo but keeps the
// player's track.
package engine
