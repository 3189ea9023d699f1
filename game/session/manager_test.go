package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emiller/scrapline/game/engine"
)

func createTestLevelConfig() *engine.LevelConfig {
	return &engine.LevelConfig{
		ID:          "test",
		Name:        "Test Level",
		Description: "Level for session tests",
		Layout: []string{
			"#######",
			"#S.G.C#",
			"#.....#",
			"#######",
		},
		TrainSpeed:    2.0,
		CargoCapacity: 1,
		Spawn:         engine.SpawnConfig{X: 1, Y: 1, Heading: "east", Orientation: "ew"},
		Centers:       []engine.CenterConfig{{X: 5, Y: 1, Required: 1, Orientation: "ew"}},
	}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()

	sess, err := manager.Create("", createTestLevelConfig())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sess.ID == "" {
		t.Error("generated session ID is empty")
	}
	if len(sess.ID) != 8 {
		t.Errorf("expected 8-character ID, got %q", sess.ID)
	}
	if sess.Level == nil {
		t.Fatal("session has no level")
	}
	if sess.Level.Status() != engine.StatusInProgress {
		t.Errorf("expected fresh level, got %s", sess.Level.Status())
	}
}

func TestManager_CreateWithExplicitID(t *testing.T) {
	manager := NewManager()

	sess, err := manager.Create("my-session", createTestLevelConfig())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sess.ID != "my-session" {
		t.Errorf("expected explicit ID, got %q", sess.ID)
	}

	if _, err := manager.Create("MY-SESSION", createTestLevelConfig()); !errors.Is(err, ErrSessionAlreadyExists) {
		t.Errorf("expected ErrSessionAlreadyExists for case-insensitive duplicate, got %v", err)
	}
}

func TestManager_GetCaseInsensitive(t *testing.T) {
	manager := NewManager()
	if _, err := manager.Create("AbCd1234", createTestLevelConfig()); err != nil {
		t.Fatal(err)
	}

	sess, err := manager.Get("abcd1234")
	if err != nil {
		t.Fatalf("case-insensitive Get failed: %v", err)
	}
	if sess.ID != "AbCd1234" {
		t.Errorf("expected original ID preserved, got %q", sess.ID)
	}

	if _, err := manager.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()

	first, err := manager.GetOrCreate("shared", createTestLevelConfig())
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	second, err := manager.GetOrCreate("shared", createTestLevelConfig())
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if first != second {
		t.Error("GetOrCreate created a duplicate session")
	}
	if manager.Count() != 1 {
		t.Errorf("expected 1 session, got %d", manager.Count())
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	sess, err := manager.Create("", createTestLevelConfig())
	if err != nil {
		t.Fatal(err)
	}

	if err := manager.Delete(sess.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := manager.Get(sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("deleted session still found: %v", err)
	}
	if err := manager.Delete(sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound for double delete, got %v", err)
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	sess, err := manager.Create("", createTestLevelConfig())
	if err != nil {
		t.Fatal(err)
	}

	before := sess.LastAccessedAt
	time.Sleep(5 * time.Millisecond)
	if err := manager.UpdateLastAccessed(sess.ID); err != nil {
		t.Fatalf("UpdateLastAccessed failed: %v", err)
	}
	if !sess.LastAccessedAt.After(before) {
		t.Error("last accessed time not updated")
	}
}

func TestManager_CleanupExpiredSessions(t *testing.T) {
	manager := NewManager()
	old, err := manager.Create("old", createTestLevelConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := manager.Create("fresh", createTestLevelConfig()); err != nil {
		t.Fatal(err)
	}

	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	removed := manager.CleanupExpiredSessions(time.Hour)
	if removed != 1 {
		t.Errorf("expected 1 removed session, got %d", removed)
	}
	if manager.Count() != 1 {
		t.Errorf("expected 1 remaining session, got %d", manager.Count())
	}
	if _, err := manager.Get("fresh"); err != nil {
		t.Errorf("fresh session removed: %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	cfg := createTestLevelConfig()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := manager.Create("", cfg)
			if err != nil {
				t.Errorf("concurrent Create failed: %v", err)
				return
			}
			if _, err := manager.Get(sess.ID); err != nil {
				t.Errorf("concurrent Get failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if manager.Count() != 20 {
		t.Errorf("expected 20 sessions, got %d", manager.Count())
	}
}

func TestGenerateSessionID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := generateSessionID()
		if len(id) != 8 {
			t.Fatalf("expected 8-character ID, got %q", id)
		}
		if strings.Contains(id, "-") {
			t.Fatalf("ID contains separator: %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %q", id)
		}
		seen[id] = true
	}
}
