package engine

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStateRoundTrip(t *testing.T) {
	ls := createTestLevel(t)
	layMainLine(t, ls)
	ls.ToggleRunning()
	ls.Tick(0.75) // mid-route, mid-edge

	saved := ls.State()
	data, err := json.Marshal(saved)
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}
	var decoded SimState
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}

	restored := createTestLevel(t)
	if err := restored.SetState(decoded); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}

	if diff := cmp.Diff(ls.Snapshot(), restored.Snapshot()); diff != "" {
		t.Errorf("restored level diverged (-saved +restored):\n%s", diff)
	}
	if len(restored.EditHistory) != len(ls.EditHistory) {
		t.Errorf("edit history not restored: %d vs %d", len(restored.EditHistory), len(ls.EditHistory))
	}

	// The restored simulation continues identically.
	a := ls.Tick(5.0)
	b := restored.Tick(5.0)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("post-restore ticks diverged (-saved +restored):\n%s", diff)
	}
	if ls.Status() != StatusWon || restored.Status() != StatusWon {
		t.Errorf("expected both won, got %s and %s", ls.Status(), restored.Status())
	}
}

func TestSetStateRejectsMismatchedLevel(t *testing.T) {
	ls := createTestLevel(t)
	state := ls.State()
	state.Tokens = append(state.Tokens, GarbageToken{ID: "extra", Cell: Cell{X: 2, Y: 2}})

	fresh := createTestLevel(t)
	if err := fresh.SetState(state); err == nil {
		t.Error("expected error for mismatched token count")
	}
}

func TestSetStateRejectsInvalidSegment(t *testing.T) {
	ls := createTestLevel(t)
	state := ls.State()
	state.Segments = append(state.Segments, PlacedSegment{Cell: Cell{X: 0, Y: 0}, Orientation: StraightEW})

	fresh := createTestLevel(t)
	if err := fresh.SetState(state); err == nil {
		t.Error("expected error for segment on a wall")
	}
}
