package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPlacement = errors.New("invalid placement")
	ErrInvalidRemoval   = errors.New("invalid removal")
)

// TrackGraph stores the placed track segments and answers adjacency and
// turn-selection queries. Cells are keys; at most one segment per cell.
// Endpoint cells (spawn, recycling centers) hold immutable segments placed
// at load time.
type TrackGraph struct {
	width  int
	height int

	segments  map[Cell]TrackSegment
	endpoints map[Cell]bool
	walls     map[Cell]bool
}

// NewTrackGraph creates an empty graph with the given bounds.
func NewTrackGraph(width, height int) *TrackGraph {
	return &TrackGraph{
		width:     width,
		height:    height,
		segments:  make(map[Cell]TrackSegment),
		endpoints: make(map[Cell]bool),
		walls:     make(map[Cell]bool),
	}
}

// Bounds returns the grid dimensions.
func (g *TrackGraph) Bounds() (width, height int) {
	return g.width, g.height
}

// InBounds reports whether the cell lies inside the level bounds.
func (g *TrackGraph) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

// Wall reports whether the cell is terrain that cannot carry track.
func (g *TrackGraph) Wall(c Cell) bool {
	return g.walls[c]
}

// SetWall marks a cell as unbuildable terrain. Load-time only.
func (g *TrackGraph) SetWall(c Cell) {
	g.walls[c] = true
}

// Endpoint reports whether the cell holds an immutable endpoint segment.
func (g *TrackGraph) Endpoint(c Cell) bool {
	return g.endpoints[c]
}

// Segment returns the segment at the cell, if any. No side effects.
func (g *TrackGraph) Segment(c Cell) (TrackSegment, bool) {
	seg, ok := g.segments[c]
	return seg, ok
}

// SegmentCount returns the number of placed segments, endpoints included.
func (g *TrackGraph) SegmentCount() int {
	return len(g.segments)
}

// PlaceEndpoint installs an immutable endpoint segment. Load-time only;
// endpoint cells reject all later edits.
func (g *TrackGraph) PlaceEndpoint(c Cell, o Orientation) error {
	if !g.InBounds(c) {
		return fmt.Errorf("endpoint %s out of bounds", c)
	}
	if !o.Valid() {
		return fmt.Errorf("endpoint %s: invalid orientation %q", c, o)
	}
	if g.walls[c] {
		return fmt.Errorf("endpoint %s placed on wall", c)
	}
	g.segments[c] = TrackSegment{Orientation: o, Endpoint: true}
	g.endpoints[c] = true
	return nil
}

// Place inserts or overwrites the segment at the cell. It fails with
// ErrInvalidPlacement for out-of-bounds, wall, or endpoint cells.
// Train-occupancy rules are enforced one level up by the TrackEditor.
func (g *TrackGraph) Place(c Cell, seg TrackSegment) error {
	if !g.InBounds(c) {
		return fmt.Errorf("%w: %s is out of bounds", ErrInvalidPlacement, c)
	}
	if g.walls[c] {
		return fmt.Errorf("%w: %s is not buildable", ErrInvalidPlacement, c)
	}
	if g.endpoints[c] {
		return fmt.Errorf("%w: %s is an endpoint", ErrInvalidPlacement, c)
	}
	if !seg.Orientation.Valid() {
		return fmt.Errorf("%w: invalid orientation %q", ErrInvalidPlacement, seg.Orientation)
	}
	seg.Endpoint = false
	g.segments[c] = seg
	return nil
}

// Remove deletes the segment at the cell. It fails with ErrInvalidRemoval
// for endpoint cells and cells without a segment.
func (g *TrackGraph) Remove(c Cell) error {
	if g.endpoints[c] {
		return fmt.Errorf("%w: %s is an endpoint", ErrInvalidRemoval, c)
	}
	if _, ok := g.segments[c]; !ok {
		return fmt.Errorf("%w: no segment at %s", ErrInvalidRemoval, c)
	}
	delete(g.segments, c)
	return nil
}

// Neighbors returns the directions the train may continue toward from the
// cell, given the heading it arrived with. The result is ordered by the
// fixed tie-break: straight-through first, then remaining directions in
// declaration order. A direction is a valid continuation only when the
// segment at the cell connects toward it, it does not reverse back over
// the entry edge, and the adjacent cell holds a segment that reciprocates.
// An empty result means dead end: the train must stop.
func (g *TrackGraph) Neighbors(c Cell, heading Direction) []Direction {
	seg, ok := g.segments[c]
	if !ok {
		return nil
	}

	conns := seg.Connections()
	entry := heading.Opposite()

	ordered := make([]Direction, 0, 4)
	ordered = append(ordered, heading)
	for _, d := range Directions {
		if d != heading && d != entry {
			ordered = append(ordered, d)
		}
	}

	var out []Direction
	for _, d := range ordered {
		if !conns.Has(d) {
			continue
		}
		next, ok := g.segments[c.Step(d)]
		if !ok || !next.Connections().Has(d.Opposite()) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Connected reports whether the segments at a and b connect to each other
// across their shared edge.
func (g *TrackGraph) Connected(a, b Cell) bool {
	for _, d := range Directions {
		if a.Step(d) != b {
			continue
		}
		sa, oka := g.segments[a]
		sb, okb := g.segments[b]
		return oka && okb && sa.Connections().Has(d) && sb.Connections().Has(d.Opposite())
	}
	return false
}
