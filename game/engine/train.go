package engine

// Train is the single moving actor. Position is a cell plus a fractional
// progress toward the transit target, so readers interpolate smoothly while
// all correctness-critical logic stays on the grid.
type Train struct {
	Cell     Cell       `json:"cell"`
	Target   Cell       `json:"target"`
	Heading  Direction  `json:"heading"`
	Progress float64    `json:"progress"`
	Speed    float64    `json:"speed"` // cells per second
	Carried  int        `json:"carried"`
	Capacity int        `json:"capacity"`
	State    TrainState `json:"state"`
}

// NewTrain creates a stopped train at the spawn cell facing the given
// heading. The transit target is the adjacent cell along the heading.
func NewTrain(spawn Cell, heading Direction, speed float64, capacity int) *Train {
	return &Train{
		Cell:     spawn,
		Target:   spawn.Step(heading),
		Heading:  heading,
		Progress: 0,
		Speed:    speed,
		Capacity: capacity,
		State:    TrainStopped,
	}
}

// ToggleRunning flips between stopped and running. It has no effect while
// blocked; recovery from blocked requires a level reset.
func (t *Train) ToggleRunning() bool {
	switch t.State {
	case TrainStopped:
		t.State = TrainRunning
		return true
	case TrainRunning:
		t.State = TrainStopped
		return true
	default:
		return false
	}
}

// Advance moves the train along the graph for dt seconds and returns the
// cells entered, in order. Fractional progress carries across cell
// boundaries, so the outcome depends only on total elapsed time, not on how
// callers slice it into steps. On arrival at a cell the next heading is the
// first entry of TrackGraph.Neighbors; an empty result blocks the train at
// that cell with its heading held and the remaining dt discarded.
func (t *Train) Advance(dt float64, g *TrackGraph) []Cell {
	if t.State != TrainRunning || dt <= 0 {
		return nil
	}

	// At a cell boundary the outgoing edge is re-selected before departing.
	// This validates the first edge after spawn or reset, and catches track
	// that was edited away while the train sat stopped on the cell.
	if t.Progress == 0 {
		candidates := g.Neighbors(t.Cell, t.Heading)
		if len(candidates) == 0 {
			t.State = TrainBlocked
			t.Target = t.Cell
			return nil
		}
		t.Heading = candidates[0]
		t.Target = t.Cell.Step(t.Heading)
	}

	t.Progress += t.Speed * dt

	var entered []Cell
	for t.Progress >= 1 {
		t.Progress -= 1
		t.Cell = t.Target
		entered = append(entered, t.Cell)

		candidates := g.Neighbors(t.Cell, t.Heading)
		if len(candidates) == 0 {
			t.State = TrainBlocked
			t.Progress = 0
			t.Target = t.Cell
			break
		}
		t.Heading = candidates[0]
		t.Target = t.Cell.Step(t.Heading)
	}
	return entered
}

// Occupies reports whether an edit to the cell would disturb the train:
// its current cell always, and its transit target while mid-edge.
func (t *Train) Occupies(c Cell) bool {
	if c == t.Cell {
		return true
	}
	return c == t.Target && t.Progress > 0
}

// Snapshot returns the read-only view used by renderers.
func (t *Train) Snapshot() TrainSnapshot {
	return TrainSnapshot{
		Cell:     t.Cell,
		Target:   t.Target,
		Heading:  t.Heading,
		Progress: t.Progress,
		Speed:    t.Speed,
		Carried:  t.Carried,
		Capacity: t.Capacity,
		State:    t.State,
	}
}
