package create_review

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/reviews"
	"github.com/m04kA/SMC-AppointmentService/internal/service/reviews/models"
)

const (
	msgMissingIdentity    = "отсутствует идентификатор пользователя"
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidReview      = "оценка должна быть от 1 до 5, комментарий не длиннее 2000 символов"
	msgBookingNotFound    = "бронирование не найдено"
	msgOnlyClients        = "отзыв может оставить только клиент"
	msgForbidden          = "доступ запрещен"
	msgNotCompleted       = "отзыв можно оставить только на завершенное бронирование"
	msgAlreadyExists      = "отзыв на это бронирование уже оставлен"
)

type Handler struct {
	service ReviewService
	logger  Logger
}

func NewHandler(service ReviewService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/review
// Body: {"rating": 5, "comment": "..."}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/review - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/review - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req models.CreateReviewRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/review - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.Actor = actor
	req.BookingID = bookingID

	review, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, reviews.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/review - Validation failed: %v", err)
			handlers.RespondBadRequest(w, msgInvalidReview)

		case errors.Is(err, reviews.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/review - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, reviews.ErrOnlyClientsCanReview):
			h.logger.Warn("POST /bookings/{id}/review - Not a client: user_id=%d, role=%s", actor.ID, actor.Role)
			handlers.RespondForbidden(w, msgOnlyClients)

		case errors.Is(err, reviews.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/review - Access denied: booking_id=%d, user_id=%d", bookingID, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reviews.ErrBookingNotCompleted):
			h.logger.Warn("POST /bookings/{id}/review - Booking not completed: booking_id=%d", bookingID)
			handlers.RespondUnprocessable(w, msgNotCompleted)

		case errors.Is(err, reviews.ErrReviewAlreadyExists):
			h.logger.Warn("POST /bookings/{id}/review - Review already exists: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgAlreadyExists)

		default:
			h.logger.Error("POST /bookings/{id}/review - Failed to create review: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondDomainError(w, err, msgInvalidRequestBody)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/review - Review created: review_id=%d, booking_id=%d, rating=%d",
		review.ID, bookingID, review.Rating)
	handlers.RespondJSON(w, http.StatusCreated, review)
}
