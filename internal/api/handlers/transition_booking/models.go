package transition_booking

import (
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
	transitionBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/transition_booking"
)

// TransitionRequest HTTP request model
type TransitionRequest struct {
	TargetStatus    string `json:"targetStatus"` // confirmed | cancelled | completed
	AssertCompleted bool   `json:"assertCompleted,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *TransitionRequest) ToUseCaseRequest(actor domain.Actor, bookingID int64) *transitionBooking.Request {
	return &transitionBooking.Request{
		Actor:           actor,
		BookingID:       bookingID,
		TargetStatus:    domain.BookingStatus(r.TargetStatus),
		AssertCompleted: r.AssertCompleted,
	}
}

// TransitionResponse HTTP response model
type TransitionResponse struct {
	PreviousStatus string                   `json:"previousStatus"`
	Booking        *models.BookingResponse `json:"booking"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *transitionBooking.Response) *TransitionResponse {
	return &TransitionResponse{
		PreviousStatus: string(resp.PreviousStatus),
		Booking:        models.FromDomainBooking(resp.Booking),
	}
}
