package list_reviews

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/reviews"
)

const (
	msgInvalidBusinessID = "некорректный ID бизнеса"
	msgBusinessNotFound  = "бизнес не найден"
	msgInternalError     = "ошибка получения отзывов"
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

// Handle GET /api/v1/businesses/{businessId}/reviews
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	businessID, err := handlers.PathInt64(r, "businessId")
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/reviews - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	result, err := h.service.ListByBusiness(r.Context(), businessID)
	if err != nil {
		if errors.Is(err, reviews.ErrBusinessNotFound) {
			h.logger.Warn("GET /businesses/{id}/reviews - Business not found: business_id=%d", businessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)
			return
		}
		h.logger.Error("GET /businesses/{id}/reviews - Failed to list reviews: business_id=%d, error=%v", businessID, err)
		handlers.RespondDomainError(w, err, msgInternalError)
		return
	}

	h.logger.Info("GET /businesses/{id}/reviews - Reviews retrieved successfully: business_id=%d, count=%d",
		businessID, result.Count)
	handlers.RespondJSON(w, http.StatusOK, result)
}
