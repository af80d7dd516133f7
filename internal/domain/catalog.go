package domain

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Business is a provider with exactly one owner account
type Business struct {
	ID        int64
	OwnerID   int64
	Name      string
	CreatedAt time.Time
}

// IsOwnedBy returns true if the actor is the business owner
func (b *Business) IsOwnedBy(actor Actor) bool {
	return actor.Role == RoleBusiness && b.OwnerID == actor.ID
}

// Service is a bookable offering of a business
type Service struct {
	ID              int64
	BusinessID      int64
	Name            string
	DurationMinutes int
	PriceMinorUnits int64
	IsActive        bool
}

// Staff is a bookable resource. Staff share the business weekly hours.
type Staff struct {
	ID         int64
	BusinessID int64
	Name       string
	ServiceIDs []int64 // empty = can perform every service
	IsActive   bool
}

// CanPerform returns true if the staff member is scoped to the service
func (s *Staff) CanPerform(serviceID int64) bool {
	if len(s.ServiceIDs) == 0 {
		return true
	}
	for _, id := range s.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// WorkingInterval is one open interval [Open, Close) within a day
type WorkingInterval struct {
	Open  types.TimeString
	Close types.TimeString
}

// WeeklyHours maps a weekday to its open intervals. A missing weekday is closed.
type WeeklyHours map[time.Weekday][]WorkingInterval

// For returns the intervals of the date's weekday ordered by opening time
func (w WeeklyHours) For(date time.Time) []WorkingInterval {
	intervals := append([]WorkingInterval(nil), w[date.Weekday()]...)
	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].Open.IsBefore(intervals[j].Open)
	})
	return intervals
}

// EmergencyBlock closes a business for an inclusive range of dates
type EmergencyBlock struct {
	ID         int64
	BusinessID int64
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
	CreatedAt  time.Time
}

// Covers returns true if the calendar date falls inside the block
func (b *EmergencyBlock) Covers(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(b.StartDate)) && !d.After(DateOnly(b.EndDate))
}

// DateOnly truncates a time to its calendar date in UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
