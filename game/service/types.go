package service

import (
	"time"

	"github.com/emiller/scrapline/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string                `json:"id"`
	LevelID        string                `json:"level_id"`
	CreatedAt      time.Time             `json:"created_at"`
	LastAccessedAt time.Time             `json:"last_accessed_at"`
	State          *engine.LevelSnapshot `json:"state"`
	LevelConfig    *engine.LevelConfig   `json:"level_config,omitempty"`
}

// EditResult contains the result of a track placement or removal
type EditResult struct {
	Success bool                  `json:"success"`
	State   *engine.LevelSnapshot `json:"state"`
	Message string                `json:"message"`
	Error   string                `json:"error,omitempty"`
}

// ToggleResult contains the result of a start/pause toggle
type ToggleResult struct {
	Running bool                  `json:"running"`
	State   *engine.LevelSnapshot `json:"state"`
	Message string                `json:"message"`
}

// TickResult contains the result of a single simulation tick
type TickResult struct {
	Events []GameEvent           `json:"events"`
	State  *engine.LevelSnapshot `json:"state"`
}

// RunResult contains the result of a fixed-step simulation run
type RunResult struct {
	// Summary
	StepsExecuted  int    `json:"steps_executed"`
	RequestedSteps int    `json:"requested_steps"`
	Truncated      bool   `json:"truncated,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	StoppedReason  string `json:"stopped_reason,omitempty"` // won|blocked|steps_exhausted

	// Start/end snapshot
	StartCell engine.Cell `json:"start_cell"`
	EndCell   engine.Cell `json:"end_cell"`
	Collected int         `json:"collected"` // tokens picked up during this run
	Delivered int         `json:"delivered"` // units delivered during this run

	Events []GameEvent           `json:"events"`
	Status engine.LevelStatus    `json:"status"`
	State  *engine.LevelSnapshot `json:"state"`
}

// GameEvent represents an event that occurred during simulation
type GameEvent struct {
	Type      string      `json:"type"` // "picked_up", "delivered", "won", "blocked", "reset"
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
	Cell      engine.Cell `json:"cell,omitempty"`
}

// HistoryOptions configures edit history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated edit history
type HistoryResponse struct {
	Edits       []engine.EditHistoryEntry `json:"edits"`
	TotalEdits  int                       `json:"total_edits"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// LevelInfo provides information about a level file
type LevelInfo struct {
	Filename    string  `json:"filename"`
	LevelID     string  `json:"level_id"` // The identifier to use for session creation
	Name        string  `json:"name"`     // Display name
	Description string  `json:"description"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	TrainSpeed  float64 `json:"train_speed"`
	Centers     int     `json:"centers"`
}
