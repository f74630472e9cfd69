package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPlaced, StatusConfirmed},
		{StatusPlaced, StatusShipped},
		{StatusPlaced, StatusCancelled},
		{StatusConfirmed, StatusShipped},
		{StatusConfirmed, StatusCancelled},
		{StatusShipped, StatusDelivered},
		{StatusShipped, StatusCancelled},
		{StatusDelivered, StatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	rejected := []struct{ from, to Status }{
		{StatusPlaced, StatusDelivered},
		{StatusConfirmed, StatusPlaced},
		{StatusConfirmed, StatusDelivered},
		{StatusShipped, StatusPlaced},
		{StatusShipped, StatusConfirmed},
		{StatusDelivered, StatusShipped},
		{StatusDelivered, StatusDelivered},
		{StatusCancelled, StatusPlaced},
		{StatusCancelled, StatusConfirmed},
		{StatusCancelled, StatusShipped},
		{StatusCancelled, StatusDelivered},
		{StatusCancelled, StatusCancelled},
	}
	for _, tc := range rejected {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestCheckTransitionCancelledIsTerminal(t *testing.T) {
	// Cancelling an already-cancelled order must fail, not no-op.
	err := CheckTransition(StatusCancelled, StatusCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusCancelled))
	assert.False(t, IsTerminal(StatusPlaced))
	assert.False(t, IsTerminal(StatusDelivered))
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusPlaced, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.True(t, ValidStatus(s))
	}
	assert.False(t, ValidStatus(Status("refunded")))
	assert.False(t, ValidStatus(Status("")))
}

func TestNewOrderID(t *testing.T) {
	at := time.UnixMilli(1735689600000)
	assert.Equal(t, "ORD-1735689600000", NewOrderID(at))
}
