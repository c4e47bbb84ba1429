package notification

import (
	"fmt"
	"time"
)

// lifecycle encodes the delivery state machine:
//
//	pending → {sent → delivered, failed}
//	{sent, delivered, failed} → read
//	any non-archived state → archived
//
// Transitions are monotonic; nothing moves backward and archived is
// terminal.
var lifecycle = map[Status]map[Status]bool{
	StatusPending: {
		StatusSent:     true,
		StatusFailed:   true,
		StatusArchived: true,
	},
	StatusSent: {
		StatusDelivered: true,
		StatusRead:      true,
		StatusArchived:  true,
	},
	StatusDelivered: {
		StatusRead:     true,
		StatusArchived: true,
	},
	StatusFailed: {
		StatusRead:     true,
		StatusArchived: true,
	},
	StatusRead: {
		StatusArchived: true,
	},
	StatusArchived: {},
}

// CanTransition reports whether the lifecycle allows moving from one
// status to another. Same-status transitions are not allowed.
func CanTransition(from, to Status) bool {
	return lifecycle[from][to]
}

// Transition moves the notification to the given status, stamping the
// lifecycle timestamps as a side effect. Returns ErrInvalidTransition
// when the state machine forbids the move.
func (n *Notification) Transition(to Status) error {
	if !CanTransition(n.Status, to) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, n.Status, to)
	}

	now := time.Now()
	switch to {
	case StatusDelivered:
		if n.DeliveredAt == nil {
			n.DeliveredAt = &now
		}
	case StatusRead:
		if n.ReadAt == nil {
			n.ReadAt = &now
		}
	}

	n.Status = to
	n.UpdatedAt = now
	return nil
}
