package engine

import "testing"

func newTestCargo(capacity int, tokens []GarbageToken, centers []RecyclingCenter) (*CargoManager, *Train) {
	tr := NewTrain(Cell{X: 0, Y: 0}, East, 2.0, capacity)
	return NewCargoManager(tr, tokens, centers), tr
}

func TestPickupOncePerToken(t *testing.T) {
	tok := Cell{X: 2, Y: 0}
	cm, tr := newTestCargo(2, []GarbageToken{{ID: "g1", Cell: tok}}, nil)

	events := cm.OnCellEntered(tok)
	if len(events) != 1 || events[0].Type != EventPickedUp {
		t.Fatalf("expected one pickup event, got %v", events)
	}
	if tr.Carried != 1 {
		t.Errorf("expected carried 1, got %d", tr.Carried)
	}

	// Re-entering the same cell collects nothing.
	if events := cm.OnCellEntered(tok); events != nil {
		t.Errorf("second entry produced events: %v", events)
	}
	if tr.Carried != 1 {
		t.Errorf("carried changed on re-entry: %d", tr.Carried)
	}
}

func TestPickupRespectsCapacity(t *testing.T) {
	a := Cell{X: 1, Y: 0}
	b := Cell{X: 2, Y: 0}
	cm, tr := newTestCargo(1, []GarbageToken{{ID: "g1", Cell: a}, {ID: "g2", Cell: b}}, nil)

	cm.OnCellEntered(a)
	if events := cm.OnCellEntered(b); events != nil {
		t.Errorf("pickup over capacity produced events: %v", events)
	}
	if tr.Carried != 1 {
		t.Errorf("expected carried 1, got %d", tr.Carried)
	}
	if cm.RemainingTokens() != 1 {
		t.Errorf("expected 1 token left on the ground, got %d", cm.RemainingTokens())
	}
}

func TestDeliveryTransfersAllAndCaps(t *testing.T) {
	center := Cell{X: 4, Y: 0}
	cm, tr := newTestCargo(3, nil, []RecyclingCenter{{Cell: center, Required: 2}})
	tr.Carried = 3

	events := cm.OnCellEntered(center)
	if len(events) != 1 || events[0].Type != EventDelivered {
		t.Fatalf("expected one delivery event, got %v", events)
	}
	if events[0].Count != 3 {
		t.Errorf("expected 3 units delivered, got %d", events[0].Count)
	}
	if tr.Carried != 0 {
		t.Errorf("expected empty train after delivery, got %d", tr.Carried)
	}
	if cm.Centers[0].Fulfilled != 2 {
		t.Errorf("expected fulfilled capped at required 2, got %d", cm.Centers[0].Fulfilled)
	}
	if !cm.AllDelivered() {
		t.Error("expected AllDelivered after capped delivery")
	}
}

func TestDeliveryNoopWhenEmpty(t *testing.T) {
	center := Cell{X: 4, Y: 0}
	cm, _ := newTestCargo(1, nil, []RecyclingCenter{{Cell: center, Required: 1}})

	if events := cm.OnCellEntered(center); events != nil {
		t.Errorf("empty train delivery produced events: %v", events)
	}
	if cm.Centers[0].Fulfilled != 0 {
		t.Errorf("expected fulfilled 0, got %d", cm.Centers[0].Fulfilled)
	}
}

func TestPickupAndDeliverOnSameCell(t *testing.T) {
	// A token sitting on a center cell is picked up and delivered in one entry.
	c := Cell{X: 3, Y: 0}
	cm, tr := newTestCargo(1, []GarbageToken{{ID: "g1", Cell: c}}, []RecyclingCenter{{Cell: c, Required: 1}})

	events := cm.OnCellEntered(c)
	if len(events) != 2 || events[0].Type != EventPickedUp || events[1].Type != EventDelivered {
		t.Fatalf("expected pickup then delivery, got %v", events)
	}
	if tr.Carried != 0 || !cm.AllDelivered() {
		t.Errorf("expected delivered state, carried=%d", tr.Carried)
	}
}

func TestCargoReset(t *testing.T) {
	tok := Cell{X: 1, Y: 0}
	center := Cell{X: 2, Y: 0}
	cm, tr := newTestCargo(1, []GarbageToken{{ID: "g1", Cell: tok}}, []RecyclingCenter{{Cell: center, Required: 1}})

	cm.OnCellEntered(tok)
	cm.OnCellEntered(center)
	if !cm.AllDelivered() {
		t.Fatal("setup: delivery did not complete")
	}

	cm.Reset()
	if cm.Tokens[0].Collected {
		t.Error("token still collected after reset")
	}
	if cm.Centers[0].Fulfilled != 0 {
		t.Errorf("center still fulfilled after reset: %d", cm.Centers[0].Fulfilled)
	}
	if tr.Carried != 0 {
		t.Errorf("train still loaded after reset: %d", tr.Carried)
	}
	if cm.RemainingTokens() != 1 {
		t.Errorf("expected 1 token after reset, got %d", cm.RemainingTokens())
	}
}
