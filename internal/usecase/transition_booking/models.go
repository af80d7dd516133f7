package transition_booking

import "github.com/m04kA/SMC-AppointmentService/internal/domain"

// Request модель запроса на смену статуса бронирования
type Request struct {
	Actor           domain.Actor
	BookingID       int64
	TargetStatus    domain.BookingStatus
	AssertCompleted bool // бизнес подтверждает, что услуга оказана, до окончания интервала
}

// Response модель ответа с обновленным бронированием
type Response struct {
	Booking        *domain.Booking
	PreviousStatus domain.BookingStatus
}
