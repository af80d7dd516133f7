// Package availability computes bookable slots for one resource on one date.
// Everything here is pure: the same input always yields the same output.
package availability

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Input snapshot of everything the calculation depends on
type Input struct {
	Date            time.Time // calendar date, business-local
	Now             time.Time // current instant on the business clock
	DurationMinutes int
	StaffID         *int64 // nil = business-wide resource

	OpenIntervals []domain.WorkingInterval // intervals of Date's weekday
	Blocks        []domain.EmergencyBlock
	Bookings      []*domain.Booking
}

// ComputeSlots returns the free slots of the resource ordered by start time:
// open intervals are stepped by the service duration (a trailing remainder is dropped),
// slots overlapping an active booking of the same resource are removed,
// and on the current day slots that already started are dropped.
// Past dates, closed weekdays and blocked dates yield an empty result.
func ComputeSlots(in Input) []domain.TimeSlot {
	slots := make([]domain.TimeSlot, 0)

	if in.DurationMinutes <= 0 || len(in.OpenIntervals) == 0 {
		return slots
	}

	date := domain.DateOnly(in.Date)
	today := domain.DateOnly(in.Now)
	if date.Before(today) {
		return slots
	}

	for i := range in.Blocks {
		if in.Blocks[i].Covers(date) {
			return slots
		}
	}

	busy := busyIntervals(in.Bookings, date, domain.ResourceIDOf(in.StaffID))
	nowMinute := -1
	if date.Equal(today) {
		nowMinute = minuteOfDay(in.Now)
	}

	seen := make(map[int]struct{})
	for _, interval := range sortedIntervals(in.OpenIntervals) {
		open, err := interval.Open.Minutes()
		if err != nil {
			continue
		}
		closing, err := interval.Close.Minutes()
		if err != nil {
			continue
		}

		for start := open; start+in.DurationMinutes <= closing; start += in.DurationMinutes {
			end := start + in.DurationMinutes
			if _, dup := seen[start]; dup {
				continue
			}
			if nowMinute >= 0 && startsBefore(start, nowMinute, in.Now) {
				continue
			}
			if overlapsAny(start, end, busy) {
				continue
			}

			slot, ok := toSlot(start, end)
			if !ok {
				continue
			}
			seen[start] = struct{}{}
			slots = append(slots, slot)
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Start.IsBefore(slots[j].Start)
	})
	return slots
}

// Contains reports whether start is the beginning of one of the slots
func Contains(slots []domain.TimeSlot, start types.TimeString) bool {
	for _, s := range slots {
		if s.Start == start {
			return true
		}
	}
	return false
}

type minuteRange struct {
	start int
	end   int
}

func busyIntervals(bookings []*domain.Booking, date time.Time, resourceID int64) []minuteRange {
	busy := make([]minuteRange, 0, len(bookings))
	for _, b := range bookings {
		if b == nil || !b.IsActive() || b.ResourceID() != resourceID {
			continue
		}
		if !domain.DateOnly(b.Date).Equal(date) {
			continue
		}
		start, err := b.StartTime.Minutes()
		if err != nil {
			continue
		}
		busy = append(busy, minuteRange{start: start, end: start + b.DurationMinutes})
	}
	return busy
}

// Half-open intervals: touching ends are not an overlap.
func overlapsAny(start, end int, busy []minuteRange) bool {
	for _, b := range busy {
		if start < b.end && b.start < end {
			return true
		}
	}
	return false
}

// startsBefore compares a slot start against the current instant, seconds included
func startsBefore(start, nowMinute int, now time.Time) bool {
	if start != nowMinute {
		return start < nowMinute
	}
	return now.Second() > 0 || now.Nanosecond() > 0
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func sortedIntervals(intervals []domain.WorkingInterval) []domain.WorkingInterval {
	sorted := append([]domain.WorkingInterval(nil), intervals...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Open.IsBefore(sorted[j].Open)
	})
	return sorted
}

func toSlot(start, end int) (domain.TimeSlot, bool) {
	s, err := types.FromMinutes(start)
	if err != nil {
		return domain.TimeSlot{}, false
	}
	e, err := types.FromMinutes(end)
	if err != nil {
		return domain.TimeSlot{}, false
	}
	return domain.TimeSlot{Start: s, End: e}, true
}
