package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/emiller/scrapline/game/engine"
)

// DefaultRunStep is the tick size used by Run when the caller does not
// specify one.
const DefaultRunStep = 0.1

// MaxTickSeconds bounds the simulated time a single Tick call may cover,
// matching the work Run performs at its step limit. Longer advances go
// through Run, which reports truncation explicitly.
const MaxTickSeconds = engine.MaxRunSteps * DefaultRunStep

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	levels   LevelManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, levels LevelManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		levels:   levels,
	}
}

// levelID resolves the descriptor identifier for API responses.
func (s *gameServiceImpl) levelID(cfg *engine.LevelConfig) string {
	if cfg.ID != "" {
		return cfg.ID
	}
	return "default"
}

// CreateSession creates a new game session on the named level, or on the
// default level when levelID is empty
func (s *gameServiceImpl) CreateSession(ctx context.Context, levelID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cfg *engine.LevelConfig
	var err error
	if levelID != "" {
		cfg, err = s.levels.LoadLevel(levelID)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				available, listErr := s.levels.ListLevels()
				if listErr == nil && len(available) > 0 {
					var ids []string
					for _, lvl := range available {
						ids = append(ids, lvl.LevelID)
					}
					return nil, fmt.Errorf("level '%s' not found. Available levels: %v", levelID, ids)
				}
				return nil, fmt.Errorf("level '%s' not found. Use /api/levels to list available levels", levelID)
			}
			return nil, fmt.Errorf("failed to load level %s: %w", levelID, err)
		}
	} else {
		cfg = s.levels.GetDefault()
	}

	// Let the session manager generate the ID
	sess, err := s.sessions.Create("", cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(sess), nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		LevelID:        s.levelID(sess.Config),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          sess.Level.Snapshot(),
		LevelConfig:    sess.Config,
	}
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// PlaceTrack places a track segment for a session. Rule violations are
// reported in the result, not as errors.
func (s *gameServiceImpl) PlaceTrack(ctx context.Context, sessionID string, cell engine.Cell, orientation string) (*EditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	result := &EditResult{Success: true}
	o, err := engine.ParseOrientation(orientation)
	if err != nil {
		result.Success = false
		result.Error = err.Error()
	} else if err := sess.Level.PlaceTrack(cell, o); err != nil {
		result.Success = false
		result.Error = err.Error()
	}
	result.State = sess.Level.Snapshot()
	result.Message = sess.Level.Message()

	s.autoSave(sessionID, "place")
	return result, nil
}

// RemoveTrack removes a track segment for a session
func (s *gameServiceImpl) RemoveTrack(ctx context.Context, sessionID string, cell engine.Cell) (*EditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	result := &EditResult{Success: true}
	if err := sess.Level.RemoveTrack(cell); err != nil {
		result.Success = false
		result.Error = err.Error()
	}
	result.State = sess.Level.Snapshot()
	result.Message = sess.Level.Message()

	s.autoSave(sessionID, "remove")
	return result, nil
}

// ToggleRunning starts or pauses the session's train
func (s *gameServiceImpl) ToggleRunning(ctx context.Context, sessionID string) (*ToggleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	running := sess.Level.ToggleRunning()
	s.autoSave(sessionID, "toggle")
	return &ToggleResult{
		Running: running,
		State:   sess.Level.Snapshot(),
		Message: sess.Level.Message(),
	}, nil
}

// Tick advances a session's simulation by dt seconds. dt must be
// positive and at most MaxTickSeconds
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID string, dt float64) (*TickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if dt <= 0 {
		return nil, fmt.Errorf("tick duration must be positive, got %f", dt)
	}
	if dt > MaxTickSeconds {
		return nil, fmt.Errorf("tick duration %g exceeds the %g second limit; use run for longer advances", dt, float64(MaxTickSeconds))
	}

	events := toGameEvents(sess.Level.Tick(dt))
	s.autoSave(sessionID, "tick")
	return &TickResult{
		Events: events,
		State:  sess.Level.Snapshot(),
	}, nil
}

// Run drives a session's simulation with fixed steps until the duration is
// exhausted or the level leaves in_progress. The step count is clamped to
// engine.MaxRunSteps.
func (s *gameServiceImpl) Run(ctx context.Context, sessionID string, duration, step float64) (*RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if duration <= 0 {
		return nil, fmt.Errorf("run duration must be positive, got %f", duration)
	}
	if step <= 0 {
		step = DefaultRunStep
	}

	requested := int(duration / step)
	if requested < 1 {
		requested = 1
	}
	result := &RunResult{
		RequestedSteps: requested,
		StartCell:      sess.Level.Train().Cell,
		Events:         make([]GameEvent, 0),
	}

	steps := requested
	if steps > engine.MaxRunSteps {
		result.Truncated = true
		result.Limit = engine.MaxRunSteps
		steps = engine.MaxRunSteps
	}

	// Start the train if it is parked; a blocked train stays blocked.
	if sess.Level.Train().State == engine.TrainStopped {
		sess.Level.ToggleRunning()
	}

	for i := 0; i < steps; i++ {
		if sess.Level.Status() != engine.StatusInProgress {
			break
		}
		for _, ev := range sess.Level.Tick(step) {
			switch ev.Type {
			case engine.EventPickedUp:
				result.Collected += ev.Count
			case engine.EventDelivered:
				result.Delivered += ev.Count
			}
			result.Events = append(result.Events, toGameEvent(ev))
		}
		result.StepsExecuted++
	}

	switch sess.Level.Status() {
	case engine.StatusWon:
		result.StoppedReason = "won"
	case engine.StatusBlocked:
		result.StoppedReason = "blocked"
	default:
		result.StoppedReason = "steps_exhausted"
	}
	result.Status = sess.Level.Status()
	result.EndCell = sess.Level.Train().Cell
	result.State = sess.Level.Snapshot()

	s.autoSave(sessionID, "run")
	return result, nil
}

// Reset restores a session's level to its initial state, keeping track
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.LevelSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	sess.Level.Reset()
	s.autoSave(sessionID, "reset")
	return sess.Level.Snapshot(), nil
}

// GetLevelState retrieves the current level snapshot
func (s *gameServiceImpl) GetLevelState(ctx context.Context, sessionID string) (*engine.LevelSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return sess.Level.Snapshot(), nil
}

// GetEditHistory returns paginated edit history
func (s *gameServiceImpl) GetEditHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Level.EditHistory
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var edits []engine.EditHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			edits = append(edits, history[i])
		}
	} else {
		if start < total {
			edits = history[start:end]
		}
	}
	if edits == nil {
		edits = []engine.EditHistoryEntry{}
	}

	return &HistoryResponse{
		Edits:       edits,
		TotalEdits:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListLevels returns available levels
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	return s.levels.ListLevels()
}

// LoadLevel loads a specific level descriptor
func (s *gameServiceImpl) LoadLevel(ctx context.Context, levelID string) (*engine.LevelConfig, error) {
	return s.levels.LoadLevel(levelID)
}

// SaveLevel saves a level descriptor to disk
func (s *gameServiceImpl) SaveLevel(ctx context.Context, levelID string, cfg *engine.LevelConfig) error {
	return s.levels.SaveLevel(levelID, cfg)
}

// autoSave persists the session after a mutating operation. Persistence
// failures are logged, not surfaced; the in-memory session stays valid.
func (s *gameServiceImpl) autoSave(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("warning: failed to persist session %s after %s: %v", sessionID, op, err)
	}
}

func toGameEvent(ev engine.Event) GameEvent {
	return GameEvent{
		Type:      string(ev.Type),
		Message:   ev.Message,
		Timestamp: time.Now(),
		Cell:      ev.Cell,
	}
}

func toGameEvents(events []engine.Event) []GameEvent {
	out := make([]GameEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, toGameEvent(ev))
	}
	return out
}
