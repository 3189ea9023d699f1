package engine

import (
	"errors"
	"time"
)

// ErrLevelWon rejects edits and toggles after the level is complete.
var ErrLevelWon = errors.New("level already won")

// LevelState owns one level's complete simulation state: the track graph,
// the train, the cargo, the edit history, and the win/blocked status. It
// is not safe for concurrent use; the service layer serializes access.
type LevelState struct {
	Name        string
	Description string

	graph  *TrackGraph
	editor *TrackEditor
	train  *Train
	cargo  *CargoManager

	spawn        Cell
	spawnHeading Direction

	status   LevelStatus
	message  string
	messages Messages

	// EditHistory accumulates every edit attempt across resets.
	// CurrentEdits holds only the attempts since the last reset.
	EditHistory  []EditHistoryEntry
	CurrentEdits []EditHistoryEntry

	totalTicks int
}

// newLevelState wires the simulation components together. Callers go
// through LevelConfig.NewLevelState, which validates the descriptor first.
func newLevelState(name, description string, graph *TrackGraph, train *Train, cargo *CargoManager, spawn Cell, heading Direction, msgs Messages) *LevelState {
	ls := &LevelState{
		Name:         name,
		Description:  description,
		graph:        graph,
		editor:       NewTrackEditor(graph, train),
		train:        train,
		cargo:        cargo,
		spawn:        spawn,
		spawnHeading: heading,
		status:       StatusInProgress,
		messages:     msgs,
	}
	ls.message = msgs.Welcome
	return ls
}

// Status returns the level's current status.
func (ls *LevelState) Status() LevelStatus {
	return ls.status
}

// Message returns the player-facing message for the current state.
func (ls *LevelState) Message() string {
	return ls.message
}

// Graph exposes the track graph for read-only queries.
func (ls *LevelState) Graph() *TrackGraph {
	return ls.graph
}

// Train exposes the train for read-only queries.
func (ls *LevelState) Train() *Train {
	return ls.train
}

// Cargo exposes the cargo manager for read-only queries.
func (ls *LevelState) Cargo() *CargoManager {
	return ls.cargo
}

// TotalTicks returns the number of ticks that advanced the simulation
// since the last reset.
func (ls *LevelState) TotalTicks() int {
	return ls.totalTicks
}

// PlaceTrack attempts a player placement and records the attempt in the
// edit history. Edits are rejected once the level is won.
func (ls *LevelState) PlaceTrack(c Cell, o Orientation) error {
	if ls.status == StatusWon {
		return ErrLevelWon
	}
	err := ls.editor.TryPlace(c, o)
	ls.recordEdit("place", c, o, err == nil)
	if err != nil {
		ls.message = ls.messages.InvalidPlacement
		return err
	}
	return nil
}

// RemoveTrack attempts a player removal and records the attempt in the
// edit history. Edits are rejected once the level is won.
func (ls *LevelState) RemoveTrack(c Cell) error {
	if ls.status == StatusWon {
		return ErrLevelWon
	}
	err := ls.editor.TryRemove(c)
	ls.recordEdit("remove", c, "", err == nil)
	if err != nil {
		ls.message = ls.messages.InvalidRemoval
		return err
	}
	return nil
}

func (ls *LevelState) recordEdit(action string, c Cell, o Orientation, success bool) {
	entry := EditHistoryEntry{
		Action:      action,
		Cell:        c,
		Orientation: o,
		Success:     success,
		Timestamp:   time.Now().Unix(),
		EditNumber:  len(ls.EditHistory) + 1,
	}
	ls.EditHistory = append(ls.EditHistory, entry)
	ls.CurrentEdits = append(ls.CurrentEdits, entry)
}

// ToggleRunning starts or pauses the train. It reports whether the train
// is running afterwards, and is a no-op while the level is blocked or won.
func (ls *LevelState) ToggleRunning() bool {
	if ls.status != StatusInProgress {
		return false
	}
	if !ls.train.ToggleRunning() {
		return false
	}
	if ls.train.State == TrainRunning {
		ls.message = ls.messages.Running
		return true
	}
	ls.message = ls.messages.Stopped
	return false
}

// Tick advances the simulation by dt seconds and returns the events the
// step produced, in order. Splitting a duration across multiple ticks
// yields the same trajectory and events as a single tick of the total.
// Once the level is won, further ticks are no-ops.
func (ls *LevelState) Tick(dt float64) []Event {
	if ls.status != StatusInProgress || ls.train.State != TrainRunning {
		return nil
	}
	ls.totalTicks++

	entered := ls.train.Advance(dt, ls.graph)

	var events []Event
	for _, c := range entered {
		for _, ev := range ls.cargo.OnCellEntered(c) {
			switch ev.Type {
			case EventPickedUp:
				ls.message = ls.messages.PickedUp
			case EventDelivered:
				ls.message = ls.messages.Delivered
			}
			events = append(events, ev)
		}
		if ls.cargo.AllDelivered() {
			// Victory takes effect the instant the final delivery cell is
			// entered. The train halts there and the rest of dt is dropped.
			ls.status = StatusWon
			ls.train.State = TrainStopped
			ls.train.Cell = c
			ls.train.Target = c
			ls.train.Progress = 0
			ls.message = ls.messages.Won
			events = append(events, Event{Type: EventWon, Cell: c, Message: ls.messages.Won})
			return events
		}
	}

	if ls.train.State == TrainBlocked {
		ls.status = StatusBlocked
		ls.message = ls.messages.Blocked
		events = append(events, Event{Type: EventBlocked, Cell: ls.train.Cell, Message: ls.messages.Blocked})
	}
	return events
}

// Reset restores the train and cargo to their load-time values and clears
// the blocked or won status. Player-placed track survives; the cumulative
// edit history survives while the current-attempt list is cleared.
func (ls *LevelState) Reset() {
	speed := ls.train.Speed
	capacity := ls.train.Capacity
	*ls.train = *NewTrain(ls.spawn, ls.spawnHeading, speed, capacity)
	ls.cargo.Reset()
	ls.status = StatusInProgress
	ls.message = ls.messages.Welcome
	ls.CurrentEdits = nil
	ls.totalTicks = 0
}

// Snapshot builds the read model for renderers and the websocket hub.
func (ls *LevelState) Snapshot() *LevelSnapshot {
	width, height := ls.graph.Bounds()
	grid := make([]string, height)
	for y := 0; y < height; y++ {
		row := make([]byte, width)
		for x := 0; x < width; x++ {
			row[x] = ls.glyphAt(Cell{X: x, Y: y})
		}
		grid[y] = string(row)
	}
	return &LevelSnapshot{
		Name:       ls.Name,
		Width:      width,
		Height:     height,
		Grid:       grid,
		Train:      ls.train.Snapshot(),
		Tokens:     append([]GarbageToken(nil), ls.cargo.Tokens...),
		Centers:    append([]RecyclingCenter(nil), ls.cargo.Centers...),
		Status:     ls.status,
		Message:    ls.message,
		TotalEdits: len(ls.EditHistory),
		TotalTicks: ls.totalTicks,
	}
}

// glyphAt renders one cell. Overlay order, most visible last: terrain and
// track, then garbage, then endpoints, then the train.
func (ls *LevelState) glyphAt(c Cell) byte {
	glyph := byte('.')
	if ls.graph.Wall(c) {
		glyph = '#'
	}
	if seg, ok := ls.graph.Segment(c); ok {
		glyph = GlyphForOrientation(seg.Orientation)
	}
	if tok, ok := ls.cargo.TokenAt(c); ok && !tok.Collected {
		glyph = 'G'
	}
	if ls.graph.Endpoint(c) {
		if _, ok := ls.cargo.CenterAt(c); ok {
			glyph = 'C'
		} else {
			glyph = 'S'
		}
	}
	if ls.train.Cell == c {
		glyph = 'T'
	}
	return glyph
}
