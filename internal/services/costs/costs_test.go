package costs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuestCharge(t *testing.T) {
	tests := []struct {
		name              string
		courtsNeeded      int
		guestPoolPerCourt float64
		guestCount        int
		want              float64
	}{
		{"even split", 1, 48, 3, 16.00},
		{"two courts", 2, 48, 4, 24.00},
		{"rounds half up", 1, 50, 3, 16.67},
		{"single guest", 1, 32.50, 1, 32.50},
		{"zero pool", 2, 0, 5, 0},
		{"repeating decimal", 1, 100, 7, 14.29},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GuestCharge(tt.courtsNeeded, tt.guestPoolPerCourt, tt.guestCount)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

// The per-guest charges must reassemble into the total pool to within one
// cent of rounding residue per guest.
func TestGuestChargeSplitInvariant(t *testing.T) {
	for courts := 1; courts <= 4; courts++ {
		for guests := 1; guests <= 12; guests++ {
			for _, pool := range []float64{0, 12.34, 48, 50, 99.99, 120} {
				charge := GuestCharge(courts, pool, guests)
				total := pool * float64(courts)
				residual := math.Abs(charge*float64(guests) - total)
				assert.LessOrEqual(t, residual, 0.01*float64(guests),
					"courts=%d pool=%.2f guests=%d charge=%.2f", courts, pool, guests, charge)
			}
		}
	}
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 16.67, RoundCents(16.666666))
	assert.Equal(t, 16.0, RoundCents(16.004))
	assert.Equal(t, 16.01, RoundCents(16.006))
	assert.Equal(t, 0.0, RoundCents(0))
}

func TestAmountsEqual(t *testing.T) {
	assert.True(t, AmountsEqual(16.00, 16.00))
	assert.True(t, AmountsEqual(16.00, 16.01)) // one-cent tolerance
	assert.True(t, AmountsEqual(16.01, 16.00))
	assert.False(t, AmountsEqual(16.00, 16.02))
	assert.False(t, AmountsEqual(16.00, 17.00))
}
