package costs

import "math"

// GuestCharge splits the session's guest pool evenly across guests.
// Total pool = guestPoolPerCourt * courtsNeeded; each guest owes an equal
// share rounded half-up to the cent. Callers must not invoke this with
// guestCount == 0; a session with no billable guests creates no
// obligations at all.
func GuestCharge(courtsNeeded int, guestPoolPerCourt float64, guestCount int) float64 {
	total := guestPoolPerCourt * float64(courtsNeeded)
	return RoundCents(total / float64(guestCount))
}

// RoundCents rounds half-up to two decimals.
func RoundCents(amount float64) float64 {
	return math.Floor(amount*100+0.5) / 100
}

// AmountsEqual compares two currency amounts with a one-cent tolerance,
// absorbing float drift and minor-unit rounding residue.
func AmountsEqual(a, b float64) bool {
	return math.Abs(a-b) <= 0.01+1e-9
}
