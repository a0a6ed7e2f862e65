package engine

import "slices"

// nextSeat returns the seat after current, wrapping around. A current seat
// that is no longer present falls back to the first seat.
func nextSeat(seats []string, current string) string {
	if len(seats) == 0 {
		return ""
	}
	idx := slices.Index(seats, current)
	if idx < 0 {
		return seats[0]
	}
	return seats[(idx+1)%len(seats)]
}
