package engine

import "fmt"

// TrackEditor applies player track edits to the graph with full
// validation. Every edit either succeeds atomically or leaves the graph
// untouched; there are no partial mutations.
type TrackEditor struct {
	graph *TrackGraph
	train *Train
}

// NewTrackEditor creates an editor over the graph and the train whose
// occupancy constrains edits.
func NewTrackEditor(graph *TrackGraph, train *Train) *TrackEditor {
	return &TrackEditor{graph: graph, train: train}
}

// TryPlace validates and places a segment with the given orientation at
// the cell. Placement fails with ErrInvalidPlacement when the cell is out
// of bounds, a wall, an endpoint, occupied by the train, when the
// orientation is not a recognized shape, or when a declared connection
// points into an occupied neighbor that does not connect back. Connections
// into empty cells may dangle. Placing over an existing non-endpoint
// segment replaces it.
func (e *TrackEditor) TryPlace(c Cell, o Orientation) error {
	if !o.Valid() {
		return fmt.Errorf("%w: invalid orientation %q", ErrInvalidPlacement, o)
	}
	if e.train.Occupies(c) {
		return fmt.Errorf("%w: train occupies %s", ErrInvalidPlacement, c)
	}
	conns := o.Connections()
	for _, d := range Directions {
		if !conns.Has(d) {
			continue
		}
		n := c.Step(d)
		next, ok := e.graph.Segment(n)
		if ok && !next.Connections().Has(d.Opposite()) {
			return fmt.Errorf("%w: segment at %s does not connect back toward %s", ErrInvalidPlacement, n, c)
		}
	}
	return e.graph.Place(c, TrackSegment{Orientation: o})
}

// TryRemove validates and removes the segment at the cell. Removal fails
// with ErrInvalidRemoval when the cell is an endpoint, has no segment, or
// is occupied by the train.
func (e *TrackEditor) TryRemove(c Cell) error {
	if e.train.Occupies(c) {
		return fmt.Errorf("%w: train occupies %s", ErrInvalidRemoval, c)
	}
	return e.graph.Remove(c)
}
