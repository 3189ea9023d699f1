package engine

import "fmt"

// PlacedSegment is one player-placed segment in a saved state.
type PlacedSegment struct {
	Cell        Cell        `json:"cell"`
	Orientation Orientation `json:"orientation"`
}

// SimState is the persistable form of a LevelState: everything needed to
// restore a session on top of a level rebuilt from its descriptor.
// Endpoints, walls, and messages come from the descriptor, not the state.
type SimState struct {
	Segments     []PlacedSegment    `json:"segments"`
	Train        TrainSnapshot      `json:"train"`
	Tokens       []GarbageToken     `json:"tokens"`
	Centers      []RecyclingCenter  `json:"centers"`
	Status       LevelStatus        `json:"status"`
	Message      string             `json:"message"`
	EditHistory  []EditHistoryEntry `json:"edit_history"`
	CurrentEdits []EditHistoryEntry `json:"current_edits"`
	TotalTicks   int                `json:"total_ticks"`
}

// State captures the level's restorable state.
func (ls *LevelState) State() SimState {
	var segs []PlacedSegment
	for c, seg := range ls.graph.segments {
		if seg.Endpoint {
			continue
		}
		segs = append(segs, PlacedSegment{Cell: c, Orientation: seg.Orientation})
	}
	return SimState{
		Segments:     segs,
		Train:        ls.train.Snapshot(),
		Tokens:       append([]GarbageToken(nil), ls.cargo.Tokens...),
		Centers:      append([]RecyclingCenter(nil), ls.cargo.Centers...),
		Status:       ls.status,
		Message:      ls.message,
		EditHistory:  append([]EditHistoryEntry(nil), ls.EditHistory...),
		CurrentEdits: append([]EditHistoryEntry(nil), ls.CurrentEdits...),
		TotalTicks:   ls.totalTicks,
	}
}

// SetState restores a previously captured state onto a level freshly built
// from the same descriptor. Player segments are replayed through the
// graph's validation, so a state saved against a different level fails
// rather than corrupting the grid.
func (ls *LevelState) SetState(s SimState) error {
	for c, seg := range ls.graph.segments {
		if !seg.Endpoint {
			delete(ls.graph.segments, c)
		}
	}
	for _, ps := range s.Segments {
		if err := ls.graph.Place(ps.Cell, TrackSegment{Orientation: ps.Orientation}); err != nil {
			return fmt.Errorf("restore segment: %w", err)
		}
	}

	if len(s.Tokens) != len(ls.cargo.Tokens) || len(s.Centers) != len(ls.cargo.Centers) {
		return fmt.Errorf("restore state: token/center counts do not match the level")
	}
	ls.cargo.Tokens = append([]GarbageToken(nil), s.Tokens...)
	ls.cargo.Centers = append([]RecyclingCenter(nil), s.Centers...)

	t := ls.train
	t.Cell = s.Train.Cell
	t.Target = s.Train.Target
	t.Heading = s.Train.Heading
	t.Progress = s.Train.Progress
	t.Speed = s.Train.Speed
	t.Carried = s.Train.Carried
	t.Capacity = s.Train.Capacity
	t.State = s.Train.State

	ls.status = s.Status
	ls.message = s.Message
	ls.EditHistory = append([]EditHistoryEntry(nil), s.EditHistory...)
	ls.CurrentEdits = append([]EditHistoryEntry(nil), s.CurrentEdits...)
	ls.totalTicks = s.TotalTicks
	return nil
}
