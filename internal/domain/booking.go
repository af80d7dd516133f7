package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// ParseBookingStatus accepts a status name in any case ("CONFIRMED", "confirmed")
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return status, nil
	default:
		return "", fmt.Errorf("%w: unknown booking status %q", ErrInvalidInput, s)
	}
}

// IsTerminal returns true for statuses that admit no further transitions
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Booking represents a reservation of one resource for one service interval
type Booking struct {
	ID         int64
	BusinessID int64
	ServiceID  int64
	StaffID    *int64 // nil = business-wide resource
	ClientID   int64

	Date            time.Time // calendar date, business-local
	StartTime       types.TimeString
	DurationMinutes int

	// Snapshot of the service at creation time
	ServiceName     string
	PriceMinorUnits int64

	Status         BookingStatus
	IdempotencyKey *string

	CancelledAt *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive returns true if the booking occupies its resource
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// ResourceID returns the staff id or BusinessWideResource
func (b *Booking) ResourceID() int64 {
	return ResourceIDOf(b.StaffID)
}

// EndTime returns the end of the booked interval
func (b *Booking) EndTime() (types.TimeString, error) {
	return b.StartTime.AddMinutes(b.DurationMinutes)
}

// EndsAt returns the absolute end instant in the given location
func (b *Booking) EndsAt(loc *time.Location) (time.Time, error) {
	start, err := b.StartTime.On(b.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(b.DurationMinutes) * time.Minute), nil
}

// BelongsTo reports whether the actor is a party of the booking.
// A business actor is a party when it owns the booking's business.
func (b *Booking) BelongsTo(actor Actor, business *Business) bool {
	switch actor.Role {
	case RoleClient:
		return b.ClientID == actor.ID
	case RoleBusiness:
		return business != nil && business.ID == b.BusinessID && business.OwnerID == actor.ID
	default:
		return false
	}
}

// ResourceIDOf normalizes an optional staff id into a resource id
func ResourceIDOf(staffID *int64) int64 {
	if staffID == nil {
		return BusinessWideResource
	}
	return *staffID
}

// ResourceLockKey identifies the (business, resource, date) triple that create serializes on
func ResourceLockKey(businessID int64, staffID *int64, date time.Time) string {
	return fmt.Sprintf("booking:%d:%d:%s", businessID, ResourceIDOf(staffID), date.Format(DateFormat))
}

// BookingFilter фильтр для выборки бронирований
type BookingFilter struct {
	BusinessID *int64          // Бронирования бизнеса (опционально)
	ClientID   *int64          // Бронирования клиента (опционально)
	DateFrom   *time.Time      // Начало периода (включительно)
	DateTo     *time.Time      // Конец периода (включительно)
	Statuses   []BookingStatus // Пусто = любые статусы
}
