package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/emiller/scrapline/game/engine"
	"github.com/emiller/scrapline/game/service"
)

var (
	ErrLevelNotFound = errors.New("level not found")
	ErrInvalidLevel  = errors.New("invalid level")
)

// Manager handles level descriptor loading and caching
type Manager struct {
	levelDir     string
	defaultLevel *engine.LevelConfig
	levels       map[string]*engine.LevelConfig
	mu           sync.RWMutex
}

// NewManager creates a new level manager
func NewManager(levelDir string) (*Manager, error) {
	if _, err := os.Stat(levelDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("level directory does not exist: %s", levelDir)
	}

	m := &Manager{
		levelDir: levelDir,
		levels:   make(map[string]*engine.LevelConfig),
	}

	if err := m.loadDefaultLevel(); err != nil {
		return nil, fmt.Errorf("failed to load default level: %w", err)
	}

	return m, nil
}

// LoadLevel loads a level descriptor by id
func (m *Manager) LoadLevel(id string) (*engine.LevelConfig, error) {
	m.mu.RLock()
	if cfg, exists := m.levels[id]; exists {
		m.mu.RUnlock()
		return cfg, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if cfg, exists := m.levels[id]; exists {
		return cfg, nil
	}

	filename := id
	if !strings.HasSuffix(filename, ".json") {
		filename = id + ".json"
	}
	levelPath := filepath.Join(m.levelDir, filename)

	data, err := os.ReadFile(levelPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrLevelNotFound
		}
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}

	cfg, err := engine.ParseLevelConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	if cfg.ID == "" {
		cfg.ID = id
	}

	m.levels[id] = cfg
	return cfg, nil
}

// ListLevels returns information about all available levels
func (m *Manager) ListLevels() ([]*service.LevelInfo, error) {
	entries, err := os.ReadDir(m.levelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read level directory: %w", err)
	}

	var levels []*service.LevelInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")

		cfg, err := m.LoadLevel(id)
		if err != nil {
			// Skip files that do not parse as levels
			continue
		}

		levels = append(levels, &service.LevelInfo{
			Filename:    entry.Name(),
			LevelID:     id,
			Name:        cfg.Name,
			Description: cfg.Description,
			Width:       len(cfg.Layout[0]),
			Height:      len(cfg.Layout),
			TrainSpeed:  cfg.TrainSpeed,
			Centers:     len(cfg.Centers),
		})
	}

	return levels, nil
}

// GetDefault returns the default level
func (m *Manager) GetDefault() *engine.LevelConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLevel
}

// SetDefault sets the default level by id
func (m *Manager) SetDefault(id string) error {
	cfg, err := m.LoadLevel(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultLevel = cfg
	return nil
}

// RefreshCache reloads all cached levels from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.levels = make(map[string]*engine.LevelConfig)
	m.mu.Unlock()

	return m.loadDefaultLevel()
}

func (m *Manager) loadDefaultLevel() error {
	cfg, err := m.LoadLevel("first-haul")
	if err != nil {
		levels, listErr := m.ListLevels()
		if listErr != nil || len(levels) == 0 {
			m.mu.Lock()
			m.defaultLevel = m.createMinimalLevel()
			m.mu.Unlock()
			return nil
		}
		cfg, err = m.LoadLevel(levels[0].LevelID)
		if err != nil {
			m.mu.Lock()
			m.defaultLevel = m.createMinimalLevel()
			m.mu.Unlock()
			return nil
		}
	}

	m.mu.Lock()
	m.defaultLevel = cfg
	m.mu.Unlock()
	return nil
}

// SaveLevel saves a level descriptor to disk
func (m *Manager) SaveLevel(id string, cfg *engine.LevelConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	filename := id
	if !strings.HasSuffix(filename, ".json") {
		filename = id + ".json"
	}
	levelPath := filepath.Join(m.levelDir, filename)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal level: %w", err)
	}
	if err := os.WriteFile(levelPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}

	m.mu.Lock()
	m.levels[id] = cfg
	m.mu.Unlock()

	return nil
}

// createMinimalLevel creates a minimal valid level used when the level
// directory has nothing loadable
func (m *Manager) createMinimalLevel() *engine.LevelConfig {
	cfg := &engine.LevelConfig{
		ID:          "default",
		Name:        "Default Yard",
		Description: "Built-in fallback level",
		Layout: []string{
			"#######",
			"#S.G.C#",
			"#.....#",
			"#######",
		},
		TrainSpeed:    engine.DefaultSpeed,
		CargoCapacity: 1,
		Spawn:         engine.SpawnConfig{X: 1, Y: 1, Heading: "east", Orientation: "ew"},
		Centers:       []engine.CenterConfig{{X: 5, Y: 1, Required: 1, Orientation: "ew"}},
	}
	// Round-trip through the parser to pick up default messages.
	parsed, err := engine.ParseLevelConfig(mustMarshal(cfg))
	if err != nil {
		// The fallback layout is fixed; a failure here is a programming error.
		panic(fmt.Sprintf("built-in level invalid: %v", err))
	}
	return parsed
}

func mustMarshal(cfg *engine.LevelConfig) []byte {
	data, err := json.Marshal(cfg)
	if err != nil {
		panic(err)
	}
	return data
}
