package engine

import (
	"fmt"
	"strings"
)

// Validation and simulation constants
const (
	MinGridSize  = 3
	MaxGridSize  = 64
	MinSpeed     = 0.1
	MaxSpeed     = 20.0
	MaxRunSteps  = 1000
	DefaultSpeed = 2.0
)

// Direction is one of the four cardinal rail directions. The declaration
// order (north, east, south, west) is the fixed tie-break order used
// everywhere a deterministic choice between directions is needed.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

// Directions lists all directions in tie-break order.
var Directions = [4]Direction{North, East, South, West}

// Offset returns the grid delta for the direction. Y grows downward,
// matching layout row order.
func (d Direction) Offset() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	default:
		return -1, 0
	}
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// ParseDirection parses a direction name ("north", "east", "south", "west").
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "north", "n", "up":
		return North, nil
	case "east", "e", "right":
		return East, nil
	case "south", "s", "down":
		return South, nil
	case "west", "w", "left":
		return West, nil
	default:
		return North, fmt.Errorf("invalid direction %q", s)
	}
}

// MarshalText serializes the direction as its lowercase name.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses a direction name.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DirSet is a set of connection directions, one bit per Direction.
type DirSet uint8

// Has reports whether d is in the set.
func (s DirSet) Has(d Direction) bool {
	return s&(1<<d) != 0
}

// With returns the set extended with d.
func (s DirSet) With(d Direction) DirSet {
	return s | (1 << d)
}

// Count returns the number of directions in the set.
func (s DirSet) Count() int {
	n := 0
	for _, d := range Directions {
		if s.Has(d) {
			n++
		}
	}
	return n
}

// Orientation names a segment's connection set. The canonical form is the
// connected direction letters in n, e, s, w order: straights "ns" and "ew",
// curves "ne", "es", "sw", "nw", tees "nes", "new", "nsw", "esw", and the
// four-way cross "nesw".
type Orientation string

const (
	StraightNS Orientation = "ns"
	StraightEW Orientation = "ew"
	CurveNE    Orientation = "ne"
	CurveES    Orientation = "es"
	CurveSW    Orientation = "sw"
	CurveNW    Orientation = "nw"
	TeeNES     Orientation = "nes"
	TeeNEW     Orientation = "new"
	TeeNSW     Orientation = "nsw"
	TeeESW     Orientation = "esw"
	Cross      Orientation = "nesw"
)

// orientationSets maps every valid orientation to its connection set.
var orientationSets = map[Orientation]DirSet{
	StraightNS: 1<<North | 1<<South,
	StraightEW: 1<<East | 1<<West,
	CurveNE:    1<<North | 1<<East,
	CurveES:    1<<East | 1<<South,
	CurveSW:    1<<South | 1<<West,
	CurveNW:    1<<North | 1<<West,
	TeeNES:     1<<North | 1<<East | 1<<South,
	TeeNEW:     1<<North | 1<<East | 1<<West,
	TeeNSW:     1<<North | 1<<South | 1<<West,
	TeeESW:     1<<East | 1<<South | 1<<West,
	Cross:      1<<North | 1<<East | 1<<South | 1<<West,
}

// Valid reports whether the orientation is one of the enumerated shapes.
func (o Orientation) Valid() bool {
	_, ok := orientationSets[o]
	return ok
}

// Connections returns the orientation's connection set. Invalid orientations
// return the empty set.
func (o Orientation) Connections() DirSet {
	return orientationSets[o]
}

// ParseOrientation normalizes and validates an orientation string.
func ParseOrientation(s string) (Orientation, error) {
	o := Orientation(strings.ToLower(strings.TrimSpace(s)))
	if !o.Valid() {
		return "", fmt.Errorf("invalid orientation %q", s)
	}
	return o, nil
}

// Orientations lists all valid orientations in a fixed order, useful for
// help output and validation messages.
var Orientations = []Orientation{
	StraightNS, StraightEW,
	CurveNE, CurveES, CurveSW, CurveNW,
	TeeNES, TeeNEW, TeeNSW, TeeESW,
	Cross,
}

// Cell is an integer grid coordinate. It carries identity only; all cell
// state lives in the structures keyed by it.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Step returns the adjacent cell in the given direction.
func (c Cell) Step(d Direction) Cell {
	dx, dy := d.Offset()
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// TrackSegment is the piece of rail occupying a cell. Endpoint segments
// (spawn, recycling centers) are placed at load time and cannot be edited.
type TrackSegment struct {
	Orientation Orientation `json:"orientation"`
	Endpoint    bool        `json:"endpoint,omitempty"`
}

// Connections returns the segment's connection set.
func (s TrackSegment) Connections() DirSet {
	return s.Orientation.Connections()
}

// TrainState is the train's state machine state.
type TrainState string

const (
	TrainStopped TrainState = "stopped"
	TrainRunning TrainState = "running"
	TrainBlocked TrainState = "blocked"
)

// LevelStatus is the level's overall status as reported to callers.
type LevelStatus string

const (
	StatusInProgress LevelStatus = "in_progress"
	StatusWon        LevelStatus = "won"
	StatusBlocked    LevelStatus = "blocked"
)

// GarbageToken marks a cell carrying one unit of uncollected garbage.
type GarbageToken struct {
	ID        string `json:"id"`
	Cell      Cell   `json:"cell"`
	Collected bool   `json:"collected,omitempty"`
}

// RecyclingCenter is a delivery endpoint with a required and fulfilled count.
type RecyclingCenter struct {
	Cell      Cell `json:"cell"`
	Required  int  `json:"required"`
	Fulfilled int  `json:"fulfilled"`
}

// Filled reports whether the center has received its required deliveries.
func (rc RecyclingCenter) Filled() bool {
	return rc.Fulfilled >= rc.Required
}

// EventType classifies simulation events emitted by a tick.
type EventType string

const (
	EventPickedUp  EventType = "picked_up"
	EventDelivered EventType = "delivered"
	EventWon       EventType = "won"
	EventBlocked   EventType = "blocked"
)

// Event is a discrete simulation event tied to an edge transition.
type Event struct {
	Type    EventType `json:"type"`
	Cell    Cell      `json:"cell"`
	Count   int       `json:"count,omitempty"`
	Message string    `json:"message,omitempty"`
}

// EditHistoryEntry records a single track edit attempt.
type EditHistoryEntry struct {
	Action      string      `json:"action"` // "place" or "remove"
	Cell        Cell        `json:"cell"`
	Orientation Orientation `json:"orientation,omitempty"`
	Success     bool        `json:"success"`
	Timestamp   int64       `json:"timestamp"`
	EditNumber  int         `json:"edit_number"`
}

// TrainSnapshot is the render-facing view of the train: grid position plus
// the interpolation inputs (heading, progress toward the target cell).
type TrainSnapshot struct {
	Cell     Cell       `json:"cell"`
	Target   Cell       `json:"target"`
	Heading  Direction  `json:"heading"`
	Progress float64    `json:"progress"`
	Speed    float64    `json:"speed"`
	Carried  int        `json:"carried"`
	Capacity int        `json:"capacity"`
	State    TrainState `json:"state"`
}

// LevelSnapshot is the complete read model handed to renderers and
// broadcast over the websocket hub.
type LevelSnapshot struct {
	Name    string            `json:"name"`
	Width   int               `json:"width"`
	Height  int               `json:"height"`
	Grid    []string          `json:"grid"`
	Train   TrainSnapshot     `json:"train"`
	Tokens  []GarbageToken    `json:"tokens"`
	Centers []RecyclingCenter `json:"centers"`
	Status  LevelStatus       `json:"status"`
	Message string            `json:"message"`

	TotalEdits int `json:"total_edits"`
	TotalTicks int `json:"total_ticks"`
}
