package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailabilityFor(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		threshold int
		want      bool
	}{
		{"zero stock", 0, 0, false},
		{"zero stock with threshold", 0, 2, false},
		{"above threshold", 5, 2, true},
		{"at threshold counts as low stock", 2, 2, false},
		{"below threshold", 1, 2, false},
		{"zero threshold with stock", 1, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AvailabilityFor(tc.quantity, tc.threshold))
		})
	}
}

// Stock 5 with threshold 2: selling 4 leaves 1, which is at or below the
// threshold, so the product flips to unavailable.
func TestAvailabilityAfterPartialSellout(t *testing.T) {
	quantity, threshold := 5, 2
	assert.True(t, AvailabilityFor(quantity, threshold))

	quantity -= 4
	assert.Equal(t, 1, quantity)
	assert.False(t, AvailabilityFor(quantity, threshold))
}
