package domain

import "time"

// Review is a client's rating of a completed booking
type Review struct {
	ID         int64
	BookingID  int64
	BusinessID int64
	ClientID   int64
	Rating     int
	Comment    *string
	CreatedAt  time.Time
}
