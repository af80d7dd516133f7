package domain

// BusinessWideResource resource id of bookings made without a staff member
const BusinessWideResource int64 = 0

// Business validation constants
const (
	MinServiceDurationMinutes = 5
	MaxServiceDurationMinutes = 720 // 12 hours
	MaxPriceMinorUnits        = 100_000_000
	MinRating                 = 1
	MaxRating                 = 5
	MaxReviewCommentLength    = 2000
	MaxBlockReasonLength      = 500
	MaxEmergencyBlockDays     = 366
)

// DateFormat формат даты бронирования (YYYY-MM-DD)
const DateFormat = "2006-01-02"

// ActiveStatuses statuses that occupy a resource
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}
