package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusIsValid(t *testing.T) {
	for _, s := range []OrderStatus{StatusPending, StatusInProgress, StatusAssigned,
		StatusVendorConfirmed, StatusCompleted, StatusCancelled} {
		assert.True(t, s.IsValid(), "expected %s to be valid", s)
	}

	assert.False(t, OrderStatus("delivered").IsValid())
	assert.False(t, OrderStatus("").IsValid())
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, terminal := range []OrderStatus{StatusCompleted, StatusCancelled} {
		for next := range transitions {
			assert.False(t, terminal.CanTransition(next),
				"terminal state %s must not transition to %s", terminal, next)
		}
	}
}

func TestCancellableFromAnyNonTerminalState(t *testing.T) {
	for s := range transitions {
		if s.IsTerminal() {
			continue
		}
		assert.True(t, s.CanTransition(StatusCancelled),
			"expected %s to allow cancellation", s)
	}
}

func TestOrderLifecyclePath(t *testing.T) {
	path := []OrderStatus{StatusPending, StatusAssigned, StatusVendorConfirmed, StatusCompleted}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, path[i].CanTransition(path[i+1]),
			"%s -> %s should be allowed", path[i], path[i+1])
	}
}

func TestNoBackwardTransitions(t *testing.T) {
	assert.False(t, StatusAssigned.CanTransition(StatusPending))
	assert.False(t, StatusVendorConfirmed.CanTransition(StatusAssigned))
	assert.False(t, StatusCompleted.CanTransition(StatusPending))
	assert.False(t, StatusAssigned.CanTransition(StatusCompleted))
}

func TestAcceptable(t *testing.T) {
	assert.True(t, StatusPending.Acceptable())
	assert.True(t, StatusInProgress.Acceptable())
	assert.False(t, StatusAssigned.Acceptable())
	assert.False(t, StatusVendorConfirmed.Acceptable())
	assert.False(t, StatusCompleted.Acceptable())
	assert.False(t, StatusCancelled.Acceptable())
}
