package create_booking

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	createBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var (
	errInvalidDate = errors.New("invalid booking date")
	errInvalidTime = errors.New("invalid start time")
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	BusinessID  int64  `json:"businessId"`
	ServiceID   int64  `json:"serviceId"`
	StaffID     *int64 `json:"staffId,omitempty"`
	BookingDate string `json:"bookingDate"` // "2025-10-15"
	StartTime   string `json:"startTime"`   // "10:00"
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(actor domain.Actor, idempotencyKey string) (*createBooking.Request, error) {
	bookingDate, err := time.Parse(domain.DateFormat, r.BookingDate)
	if err != nil {
		return nil, errInvalidDate
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, errInvalidTime
	}

	req := &createBooking.Request{
		Actor:      actor,
		BusinessID: r.BusinessID,
		ServiceID:  r.ServiceID,
		StaffID:    r.StaffID,
		Date:       bookingDate,
		StartTime:  startTime,
	}
	if idempotencyKey != "" {
		req.IdempotencyKey = ptr.Ptr(idempotencyKey)
	}

	return req, nil
}
