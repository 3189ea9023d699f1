package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// Layout legend. Pre-laid track uses the pipe-drawing glyphs; everything
// else is terrain or markers resolved against the descriptor fields.
const (
	GlyphEmpty   = '.'
	GlyphWall    = '#'
	GlyphGarbage = 'G'
	GlyphSpawn   = 'S'
	GlyphCenter  = 'C'
)

var glyphOrientations = map[byte]Orientation{
	'-': StraightEW,
	'|': StraightNS,
	'L': CurveNE,
	'F': CurveES,
	'7': CurveSW,
	'J': CurveNW,
	'+': Cross,
}

// GlyphForOrientation returns the layout glyph for an orientation. Tees
// have no dedicated glyph and render as the junction '+'.
func GlyphForOrientation(o Orientation) byte {
	switch o {
	case StraightEW:
		return '-'
	case StraightNS:
		return '|'
	case CurveNE:
		return 'L'
	case CurveES:
		return 'F'
	case CurveSW:
		return '7'
	case CurveNW:
		return 'J'
	default:
		return '+'
	}
}

// Messages holds the player-facing strings a level config can override.
type Messages struct {
	Welcome          string `json:"welcome"`
	Won              string `json:"won"`
	Blocked          string `json:"blocked"`
	InvalidPlacement string `json:"invalid_placement"`
	InvalidRemoval   string `json:"invalid_removal"`
	PickedUp         string `json:"picked_up"`
	Delivered        string `json:"delivered"`
	Running          string `json:"running"`
	Stopped          string `json:"stopped"`
}

func defaultMessages() Messages {
	return Messages{
		Welcome:          "Lay track from the depot to the recycling center.",
		Won:              "All garbage recycled. Line complete!",
		Blocked:          "The train hit a dead end. Reset the level to try again.",
		InvalidPlacement: "Track cannot be placed there.",
		InvalidRemoval:   "That track cannot be removed.",
		PickedUp:         "Garbage loaded.",
		Delivered:        "Garbage delivered.",
		Running:          "The train is rolling.",
		Stopped:          "The train is holding.",
	}
}

// SpawnConfig positions the train's depot endpoint.
type SpawnConfig struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Heading     string `json:"heading"`
	Orientation string `json:"orientation"`
}

// CenterConfig positions one recycling center endpoint.
type CenterConfig struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Required    int    `json:"required"`
	Orientation string `json:"orientation"`
}

// LevelConfig is the JSON level descriptor.
type LevelConfig struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Layout        []string       `json:"layout"`
	TrainSpeed    float64        `json:"train_speed"`
	CargoCapacity int            `json:"cargo_capacity"`
	Spawn         SpawnConfig    `json:"spawn"`
	Centers       []CenterConfig `json:"recycling_centers"`
	Messages      Messages       `json:"messages"`
}

// LoadLevelConfig reads and validates a level descriptor file.
func LoadLevelConfig(path string) (*LevelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level config: %w", err)
	}
	return ParseLevelConfig(data)
}

// ParseLevelConfig parses and validates a level descriptor.
func ParseLevelConfig(data []byte) (*LevelConfig, error) {
	var cfg LevelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse level config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *LevelConfig) applyDefaults() {
	if cfg.TrainSpeed == 0 {
		cfg.TrainSpeed = DefaultSpeed
	}
	if cfg.CargoCapacity == 0 {
		cfg.CargoCapacity = 1
	}
	def := defaultMessages()
	m := &cfg.Messages
	if m.Welcome == "" {
		m.Welcome = def.Welcome
	}
	if m.Won == "" {
		m.Won = def.Won
	}
	if m.Blocked == "" {
		m.Blocked = def.Blocked
	}
	if m.InvalidPlacement == "" {
		m.InvalidPlacement = def.InvalidPlacement
	}
	if m.InvalidRemoval == "" {
		m.InvalidRemoval = def.InvalidRemoval
	}
	if m.PickedUp == "" {
		m.PickedUp = def.PickedUp
	}
	if m.Delivered == "" {
		m.Delivered = def.Delivered
	}
	if m.Running == "" {
		m.Running = def.Running
	}
	if m.Stopped == "" {
		m.Stopped = def.Stopped
	}
}

// Validate checks the descriptor's internal consistency: layout shape and
// legend, spawn and center markers matching their field entries, value
// ranges, and connectivity of every garbage and center cell from spawn.
func (cfg *LevelConfig) Validate() error {
	if cfg.Name == "" {
		return fmt.Errorf("level config: name is required")
	}
	height := len(cfg.Layout)
	if height < MinGridSize || height > MaxGridSize {
		return fmt.Errorf("level config: height %d outside [%d, %d]", height, MinGridSize, MaxGridSize)
	}
	width := len(cfg.Layout[0])
	if width < MinGridSize || width > MaxGridSize {
		return fmt.Errorf("level config: width %d outside [%d, %d]", width, MinGridSize, MaxGridSize)
	}
	for y, row := range cfg.Layout {
		if len(row) != width {
			return fmt.Errorf("level config: row %d has width %d, want %d", y, len(row), width)
		}
		for x := 0; x < width; x++ {
			ch := row[x]
			if ch == GlyphEmpty || ch == GlyphWall || ch == GlyphGarbage || ch == GlyphSpawn || ch == GlyphCenter {
				continue
			}
			if _, ok := glyphOrientations[ch]; !ok {
				return fmt.Errorf("level config: unknown glyph %q at (%d,%d)", ch, x, y)
			}
		}
	}

	if cfg.TrainSpeed < MinSpeed || cfg.TrainSpeed > MaxSpeed {
		return fmt.Errorf("level config: train_speed %.2f outside [%.1f, %.1f]", cfg.TrainSpeed, MinSpeed, MaxSpeed)
	}
	if cfg.CargoCapacity < 1 {
		return fmt.Errorf("level config: cargo_capacity must be at least 1")
	}

	spawn := Cell{X: cfg.Spawn.X, Y: cfg.Spawn.Y}
	if cfg.glyphAt(spawn) != GlyphSpawn {
		return fmt.Errorf("level config: spawn %s does not sit on an %q cell", spawn, 'S')
	}
	if n := cfg.countGlyph(GlyphSpawn); n != 1 {
		return fmt.Errorf("level config: want exactly one spawn cell, layout has %d", n)
	}
	if _, err := ParseDirection(cfg.Spawn.Heading); err != nil {
		return fmt.Errorf("level config: spawn heading: %w", err)
	}
	if _, err := ParseOrientation(cfg.Spawn.Orientation); err != nil {
		return fmt.Errorf("level config: spawn orientation: %w", err)
	}

	if len(cfg.Centers) == 0 {
		return fmt.Errorf("level config: at least one recycling center is required")
	}
	if n := cfg.countGlyph(GlyphCenter); n != len(cfg.Centers) {
		return fmt.Errorf("level config: layout has %d center cells but %d recycling_centers entries", n, len(cfg.Centers))
	}
	seen := make(map[Cell]bool)
	for i, cc := range cfg.Centers {
		c := Cell{X: cc.X, Y: cc.Y}
		if cfg.glyphAt(c) != GlyphCenter {
			return fmt.Errorf("level config: recycling_centers[%d] %s does not sit on a %q cell", i, c, 'C')
		}
		if seen[c] {
			return fmt.Errorf("level config: duplicate recycling center at %s", c)
		}
		seen[c] = true
		if cc.Required < 1 {
			return fmt.Errorf("level config: recycling_centers[%d] required must be at least 1", i)
		}
		if _, err := ParseOrientation(cc.Orientation); err != nil {
			return fmt.Errorf("level config: recycling_centers[%d] orientation: %w", i, err)
		}
	}

	if cfg.countGlyph(GlyphGarbage) == 0 {
		return fmt.Errorf("level config: at least one garbage cell is required")
	}

	return cfg.validateConnectivity(spawn, width, height)
}

// validateConnectivity flood-fills from spawn over non-wall cells and
// requires every garbage and center cell to be reached. An unreachable
// objective is a level-design error, caught at load time.
func (cfg *LevelConfig) validateConnectivity(spawn Cell, width, height int) error {
	visited := make(map[Cell]bool)
	queue := []Cell{spawn}
	visited[spawn] = true
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, d := range Directions {
			n := c.Step(d)
			if n.X < 0 || n.X >= width || n.Y < 0 || n.Y >= height {
				continue
			}
			if visited[n] || cfg.glyphAt(n) == GlyphWall {
				continue
			}
			visited[n] = true
			queue = append(queue, n)
		}
	}
	for y, row := range cfg.Layout {
		for x := 0; x < len(row); x++ {
			ch := row[x]
			if (ch == GlyphGarbage || ch == GlyphCenter) && !visited[Cell{X: x, Y: y}] {
				return fmt.Errorf("level config: %q at (%d,%d) is unreachable from spawn", ch, x, y)
			}
		}
	}
	return nil
}

func (cfg *LevelConfig) glyphAt(c Cell) byte {
	if c.Y < 0 || c.Y >= len(cfg.Layout) {
		return 0
	}
	row := cfg.Layout[c.Y]
	if c.X < 0 || c.X >= len(row) {
		return 0
	}
	return row[c.X]
}

func (cfg *LevelConfig) countGlyph(ch byte) int {
	n := 0
	for _, row := range cfg.Layout {
		for x := 0; x < len(row); x++ {
			if row[x] == ch {
				n++
			}
		}
	}
	return n
}

// NewLevelState builds a fresh simulation from the descriptor: terrain and
// pre-laid track from the layout, immutable endpoints from the spawn and
// center entries, garbage tokens from the layout markers.
func (cfg *LevelConfig) NewLevelState() (*LevelState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	height := len(cfg.Layout)
	width := len(cfg.Layout[0])
	graph := NewTrackGraph(width, height)

	var tokens []GarbageToken
	for y, row := range cfg.Layout {
		for x := 0; x < width; x++ {
			c := Cell{X: x, Y: y}
			switch ch := row[x]; ch {
			case GlyphWall:
				graph.SetWall(c)
			case GlyphGarbage:
				tokens = append(tokens, GarbageToken{
					ID:   fmt.Sprintf("g%d", len(tokens)+1),
					Cell: c,
				})
			default:
				if o, ok := glyphOrientations[ch]; ok {
					if err := graph.Place(c, TrackSegment{Orientation: o}); err != nil {
						return nil, fmt.Errorf("level config: pre-laid track at %s: %w", c, err)
					}
				}
			}
		}
	}

	spawn := Cell{X: cfg.Spawn.X, Y: cfg.Spawn.Y}
	heading, _ := ParseDirection(cfg.Spawn.Heading)
	spawnOrient, _ := ParseOrientation(cfg.Spawn.Orientation)
	if err := graph.PlaceEndpoint(spawn, spawnOrient); err != nil {
		return nil, fmt.Errorf("level config: %w", err)
	}

	var centers []RecyclingCenter
	for _, cc := range cfg.Centers {
		c := Cell{X: cc.X, Y: cc.Y}
		o, _ := ParseOrientation(cc.Orientation)
		if err := graph.PlaceEndpoint(c, o); err != nil {
			return nil, fmt.Errorf("level config: %w", err)
		}
		centers = append(centers, RecyclingCenter{Cell: c, Required: cc.Required})
	}

	train := NewTrain(spawn, heading, cfg.TrainSpeed, cfg.CargoCapacity)
	cargo := NewCargoManager(train, tokens, centers)
	return newLevelState(cfg.Name, cfg.Description, graph, train, cargo, spawn, heading, cfg.Messages), nil
}
