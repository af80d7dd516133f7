package domain

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Event types published to the notification feed
const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
	EventReviewCreated    = "review.created"
)

const (
	AggregateBooking = "booking"
	AggregateReview  = "review"
)

// OutboxEvent is a notification stored in the same transaction as the change it describes
type OutboxEvent struct {
	ID            int64
	EventID       string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

// BookingEventPayload is the public shape of booking notifications
type BookingEventPayload struct {
	BookingID       int64  `json:"bookingId"`
	BusinessID      int64  `json:"businessId"`
	ServiceID       int64  `json:"serviceId"`
	StaffID         *int64 `json:"staffId,omitempty"`
	ClientID        int64  `json:"clientId"`
	Status          string `json:"status"`
	PreviousStatus  string `json:"previousStatus,omitempty"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	PriceMinorUnits int64  `json:"priceMinorUnits"`
	ActorRole       string `json:"actorRole"`
}

// ReviewEventPayload is the public shape of review notifications
type ReviewEventPayload struct {
	ReviewID   int64 `json:"reviewId"`
	BookingID  int64 `json:"bookingId"`
	BusinessID int64 `json:"businessId"`
	ClientID   int64 `json:"clientId"`
	Rating     int   `json:"rating"`
}

// BookingEventType maps a booking status to its notification type
func BookingEventType(status BookingStatus) string {
	switch status {
	case StatusConfirmed:
		return EventBookingConfirmed
	case StatusCancelled:
		return EventBookingCancelled
	case StatusCompleted:
		return EventBookingCompleted
	default:
		return EventBookingCreated
	}
}

// NewBookingEvent builds the outbox record for a booking change.
// previous is empty for creation.
func NewBookingEvent(b *Booking, previous BookingStatus, actor Actor) (*OutboxEvent, error) {
	payload, err := json.Marshal(BookingEventPayload{
		BookingID:       b.ID,
		BusinessID:      b.BusinessID,
		ServiceID:       b.ServiceID,
		StaffID:         b.StaffID,
		ClientID:        b.ClientID,
		Status:          string(b.Status),
		PreviousStatus:  string(previous),
		Date:            b.Date.Format(DateFormat),
		StartTime:       b.StartTime.String(),
		DurationMinutes: b.DurationMinutes,
		PriceMinorUnits: b.PriceMinorUnits,
		ActorRole:       string(actor.Role),
	})
	if err != nil {
		return nil, err
	}

	eventType := EventBookingCreated
	if previous != "" {
		eventType = BookingEventType(b.Status)
	}

	return &OutboxEvent{
		EventID:       uuid.NewString(),
		AggregateType: AggregateBooking,
		AggregateID:   strconv.FormatInt(b.ID, 10),
		EventType:     eventType,
		Payload:       payload,
	}, nil
}

// NewReviewEvent builds the outbox record for a new review
func NewReviewEvent(r *Review) (*OutboxEvent, error) {
	payload, err := json.Marshal(ReviewEventPayload{
		ReviewID:   r.ID,
		BookingID:  r.BookingID,
		BusinessID: r.BusinessID,
		ClientID:   r.ClientID,
		Rating:     r.Rating,
	})
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:       uuid.NewString(),
		AggregateType: AggregateReview,
		AggregateID:   strconv.FormatInt(r.ID, 10),
		EventType:     EventReviewCreated,
		Payload:       payload,
	}, nil
}
