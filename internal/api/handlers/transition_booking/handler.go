package transition_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	transitionBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/transition_booking"
)

const (
	msgMissingIdentity    = "отсутствует идентификатор пользователя"
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgRoleNotAllowed     = "роль пользователя не позволяет перевести бронирование в этот статус"
	msgNotYetEnded        = "бронирование еще не завершилось"
	msgConcurrentUpdate   = "бронирование было изменено параллельно, повторите запрос"
	msgInvalidTransition  = "переход в указанный статус невозможен"
)

type Handler struct {
	useCase TransitionBookingUseCase
	logger  Logger
}

func NewHandler(useCase TransitionBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/transitions
// Body: {"targetStatus": "confirmed" | "cancelled" | "completed", "assertCompleted": false}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/transitions - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/transitions - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req TransitionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/transitions - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(actor, bookingID))
	if err != nil {
		switch {
		case errors.Is(err, transitionBooking.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/transitions - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, transitionBooking.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/transitions - Access denied: booking_id=%d, user_id=%d",
				bookingID, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, transitionBooking.ErrNotYetEnded):
			h.logger.Warn("POST /bookings/{id}/transitions - Booking has not ended: booking_id=%d", bookingID)
			handlers.RespondUnprocessable(w, msgNotYetEnded)

		case errors.Is(err, transitionBooking.ErrConcurrentUpdate):
			h.logger.Warn("POST /bookings/{id}/transitions - Concurrent update: booking_id=%d", bookingID)
			handlers.RespondUnprocessable(w, msgConcurrentUpdate)

		case errors.Is(err, domain.ErrAuthorization):
			h.logger.Warn("POST /bookings/{id}/transitions - Role not allowed: booking_id=%d, role=%s, target=%s",
				bookingID, actor.Role, req.TargetStatus)
			handlers.RespondForbidden(w, msgRoleNotAllowed)

		case errors.Is(err, domain.ErrInvalidTransition):
			h.logger.Warn("POST /bookings/{id}/transitions - Invalid transition: booking_id=%d, target=%s",
				bookingID, req.TargetStatus)
			handlers.RespondUnprocessable(w, msgInvalidTransition)

		default:
			h.logger.Error("POST /bookings/{id}/transitions - Failed to transition booking: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondDomainError(w, err, msgInvalidRequestBody)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/transitions - Booking transitioned successfully: booking_id=%d, %s -> %s",
		bookingID, result.PreviousStatus, result.Booking.Status)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
