package service

import (
	"context"
	"time"

	"github.com/emiller/scrapline/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, levelID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Track Editing
	PlaceTrack(ctx context.Context, sessionID string, cell engine.Cell, orientation string) (*EditResult, error)
	RemoveTrack(ctx context.Context, sessionID string, cell engine.Cell) (*EditResult, error)

	// Simulation
	ToggleRunning(ctx context.Context, sessionID string) (*ToggleResult, error)
	Tick(ctx context.Context, sessionID string, dt float64) (*TickResult, error)
	Run(ctx context.Context, sessionID string, duration, step float64) (*RunResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.LevelSnapshot, error)

	// Level State
	GetLevelState(ctx context.Context, sessionID string) (*engine.LevelSnapshot, error)
	GetEditHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Levels
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
	LoadLevel(ctx context.Context, levelID string) (*engine.LevelConfig, error)
	SaveLevel(ctx context.Context, levelID string, cfg *engine.LevelConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, cfg *engine.LevelConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, cfg *engine.LevelConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// LevelManager handles level descriptor loading
type LevelManager interface {
	LoadLevel(id string) (*engine.LevelConfig, error)
	ListLevels() ([]*LevelInfo, error)
	GetDefault() *engine.LevelConfig
	SaveLevel(id string, cfg *engine.LevelConfig) error
}

// Session represents an active game session
type Session struct {
	ID             string
	Level          *engine.LevelState
	Config         *engine.LevelConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
