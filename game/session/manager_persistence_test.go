package session

import (
	"testing"

	"github.com/emiller/scrapline/game/engine"
)

func TestManagerWithPersistence(t *testing.T) {
	fp, cfg := newTestPersistence(t)
	manager := NewManagerWithPersistence(fp)

	sess, err := manager.Create("", cfg)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !fp.Exists(sess.ID) {
		t.Error("created session not persisted")
	}

	// Mutate and save.
	if err := sess.Level.PlaceTrack(engine.Cell{X: 2, Y: 1}, engine.StraightEW); err != nil {
		t.Fatal(err)
	}
	if err := manager.Save(sess.ID); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// A fresh manager over the same store recovers the session on Get.
	fresh := NewManagerWithPersistence(fp)
	recovered, err := fresh.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get from persistence failed: %v", err)
	}
	if recovered.Level.Snapshot().TotalEdits != 1 {
		t.Errorf("recovered session lost edits: %d", recovered.Level.Snapshot().TotalEdits)
	}

	// Delete removes both memory and disk copies.
	if err := fresh.Delete(sess.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if fp.Exists(sess.ID) {
		t.Error("session file survives delete")
	}
}

func TestLoadPersistedSessions(t *testing.T) {
	fp, cfg := newTestPersistence(t)
	seeded := NewManagerWithPersistence(fp)
	for i := 0; i < 3; i++ {
		if _, err := seeded.Create("", cfg); err != nil {
			t.Fatal(err)
		}
	}

	fresh := NewManagerWithPersistence(fp)
	if fresh.Count() != 0 {
		t.Fatalf("fresh manager already has sessions: %d", fresh.Count())
	}
	if err := fresh.LoadPersistedSessions(); err != nil {
		t.Fatalf("LoadPersistedSessions failed: %v", err)
	}
	if fresh.Count() != 3 {
		t.Errorf("expected 3 loaded sessions, got %d", fresh.Count())
	}
}

func TestManagerWithoutPersistence(t *testing.T) {
	manager := NewManager()
	sess, err := manager.Create("", createTestLevelConfig())
	if err != nil {
		t.Fatal(err)
	}

	// Save and SaveAllSessions are no-ops without a store.
	if err := manager.Save(sess.ID); err != nil {
		t.Errorf("Save without persistence errored: %v", err)
	}
	if err := manager.SaveAllSessions(); err != nil {
		t.Errorf("SaveAllSessions without persistence errored: %v", err)
	}
	if err := manager.LoadPersistedSessions(); err != nil {
		t.Errorf("LoadPersistedSessions without persistence errored: %v", err)
	}
	if err := manager.Save("missing"); err != nil {
		t.Errorf("Save without persistence should be nil even for unknown IDs, got %v", err)
	}
}
