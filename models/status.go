package models

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending         OrderStatus = "pending"
	StatusInProgress      OrderStatus = "in_progress"
	StatusAssigned        OrderStatus = "assigned"
	StatusVendorConfirmed OrderStatus = "vendor_confirmed"
	StatusCompleted       OrderStatus = "completed"
	StatusCancelled       OrderStatus = "cancelled"
)

// transitions is the single transition table every status change goes
// through. Cancellation is reachable from any non-terminal state.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:         {StatusInProgress, StatusAssigned, StatusCancelled},
	StatusInProgress:      {StatusAssigned, StatusCancelled},
	StatusAssigned:        {StatusVendorConfirmed, StatusCancelled},
	StatusVendorConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted:       {},
	StatusCancelled:       {},
}

func (s OrderStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether an order in state s may move to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Acceptable reports whether a courier may still accept the order.
func (s OrderStatus) Acceptable() bool {
	return s == StatusPending || s == StatusInProgress
}

// ActiveStatuses are the states in which an order keeps its courier busy.
// A courier may hold at most one order in these states.
var ActiveStatuses = []OrderStatus{StatusAssigned, StatusInProgress}
