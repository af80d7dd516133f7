package domain

import "github.com/m04kA/SMC-AppointmentService/pkg/types"

// TimeSlot is a candidate booking interval [Start, End) on the business clock
type TimeSlot struct {
	Start types.TimeString
	End   types.TimeString
}

// Overlaps reports whether two half-open intervals intersect.
// Touching intervals (one ends where the other starts) do not overlap.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	return s.Start.IsBefore(other.End) && other.Start.IsBefore(s.End)
}
