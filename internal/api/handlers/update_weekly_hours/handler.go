package update_weekly_hours

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog"
	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog/models"
)

const (
	msgMissingIdentity    = "отсутствует идентификатор пользователя"
	msgInvalidBusinessID  = "некорректный ID бизнеса"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidHours       = "некорректное расписание: интервалы должны быть в пределах суток и не пересекаться"
	msgBusinessNotFound   = "бизнес не найден"
	msgForbidden          = "только владелец может менять расписание"
)

type Handler struct {
	service CatalogService
	logger  Logger
}

func NewHandler(service CatalogService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/businesses/{businessId}/weekly-hours
// Полностью заменяет недельное расписание. Пустой список закрывает бизнес на все дни
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PUT /businesses/{id}/weekly-hours - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	businessID, err := handlers.PathInt64(r, "businessId")
	if err != nil {
		h.logger.Warn("PUT /businesses/{id}/weekly-hours - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	var req models.ReplaceWeeklyHoursRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /businesses/{id}/weekly-hours - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.Actor = actor
	req.BusinessID = businessID

	hours, err := h.service.ReplaceWeeklyHours(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrInvalidInput):
			h.logger.Warn("PUT /businesses/{id}/weekly-hours - Validation failed: business_id=%d, error=%v", businessID, err)
			handlers.RespondBadRequest(w, msgInvalidHours)

		case errors.Is(err, catalog.ErrBusinessNotFound):
			h.logger.Warn("PUT /businesses/{id}/weekly-hours - Business not found: business_id=%d", businessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, catalog.ErrAccessDenied):
			h.logger.Warn("PUT /businesses/{id}/weekly-hours - Access denied: business_id=%d, user_id=%d", businessID, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("PUT /businesses/{id}/weekly-hours - Failed to replace hours: business_id=%d, error=%v", businessID, err)
			handlers.RespondDomainError(w, err, msgInvalidRequestBody)
		}
		return
	}

	h.logger.Info("PUT /businesses/{id}/weekly-hours - Weekly hours replaced: business_id=%d, intervals=%d", businessID, len(hours))
	handlers.RespondJSON(w, http.StatusOK, WeeklyHoursResponse{BusinessID: businessID, WeeklyHours: hours})
}
