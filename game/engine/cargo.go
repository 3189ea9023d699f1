package engine

import "fmt"

// CargoManager tracks garbage tokens, the train's load, and recycling
// center fill levels. OnCellEntered must be driven by discrete edge
// transitions, never by polling the train's position: LevelState calls it
// once per cell the train enters.
type CargoManager struct {
	Tokens  []GarbageToken    `json:"tokens"`
	Centers []RecyclingCenter `json:"centers"`

	train *Train
}

// NewCargoManager creates a manager over the given tokens and centers,
// mutating the train's carried count on pickup and delivery.
func NewCargoManager(train *Train, tokens []GarbageToken, centers []RecyclingCenter) *CargoManager {
	return &CargoManager{
		Tokens:  tokens,
		Centers: centers,
		train:   train,
	}
}

// OnCellEntered applies pickup and delivery effects for a single entry of
// the cell and returns the resulting events. Pickup happens when the cell
// holds an uncollected token and the train has spare capacity. Delivery
// happens when the cell is a recycling center and the train carries cargo:
// all carried units transfer, the center's fulfilled count capped at its
// required count, and the load drops to zero either way.
func (cm *CargoManager) OnCellEntered(c Cell) []Event {
	var events []Event

	for i := range cm.Tokens {
		tok := &cm.Tokens[i]
		if tok.Cell != c || tok.Collected {
			continue
		}
		if cm.train.Carried >= cm.train.Capacity {
			break
		}
		tok.Collected = true
		cm.train.Carried++
		events = append(events, Event{
			Type:    EventPickedUp,
			Cell:    c,
			Count:   1,
			Message: fmt.Sprintf("picked up garbage at %s (carrying %d/%d)", c, cm.train.Carried, cm.train.Capacity),
		})
		break
	}

	for i := range cm.Centers {
		center := &cm.Centers[i]
		if center.Cell != c || cm.train.Carried == 0 {
			continue
		}
		delivered := cm.train.Carried
		center.Fulfilled += delivered
		if center.Fulfilled > center.Required {
			center.Fulfilled = center.Required
		}
		cm.train.Carried = 0
		events = append(events, Event{
			Type:    EventDelivered,
			Cell:    c,
			Count:   delivered,
			Message: fmt.Sprintf("delivered %d at %s (%d/%d)", delivered, c, center.Fulfilled, center.Required),
		})
		break
	}

	return events
}

// AllDelivered reports whether every recycling center has reached its
// required count.
func (cm *CargoManager) AllDelivered() bool {
	for _, center := range cm.Centers {
		if !center.Filled() {
			return false
		}
	}
	return true
}

// RemainingTokens returns the number of uncollected garbage tokens.
func (cm *CargoManager) RemainingTokens() int {
	n := 0
	for _, tok := range cm.Tokens {
		if !tok.Collected {
			n++
		}
	}
	return n
}

// TokenAt returns the token occupying the cell, if any.
func (cm *CargoManager) TokenAt(c Cell) (GarbageToken, bool) {
	for _, tok := range cm.Tokens {
		if tok.Cell == c {
			return tok, true
		}
	}
	return GarbageToken{}, false
}

// CenterAt returns the recycling center at the cell, if any.
func (cm *CargoManager) CenterAt(c Cell) (RecyclingCenter, bool) {
	for _, center := range cm.Centers {
		if center.Cell == c {
			return center, true
		}
	}
	return RecyclingCenter{}, false
}

// Reset restores all tokens to uncollected, all centers to unfulfilled,
// and drops the train's load.
func (cm *CargoManager) Reset() {
	for i := range cm.Tokens {
		cm.Tokens[i].Collected = false
	}
	for i := range cm.Centers {
		cm.Centers[i].Fulfilled = 0
	}
	cm.train.Carried = 0
}
