package create_emergency_block

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
	msgInvalidPeriod      = "некорректный период блокировки"
	msgBusinessNotFound   = "бизнес не найден"
	msgForbidden          = "только владелец может закрывать даты"
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

// Handle POST /api/v1/businesses/{businessId}/emergency-blocks
// Body: {"startDate": "2025-12-31", "endDate": "2026-01-02", "reason": "..."}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /businesses/{id}/emergency-blocks - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	businessID, err := handlers.PathInt64(r, "businessId")
	if err != nil {
		h.logger.Warn("POST /businesses/{id}/emergency-blocks - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	var req models.CreateEmergencyBlockRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /businesses/{id}/emergency-blocks - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.Actor = actor
	req.BusinessID = businessID

	block, err := h.service.CreateEmergencyBlock(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrInvalidInput):
			h.logger.Warn("POST /businesses/{id}/emergency-blocks - Validation failed: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPeriod)

		case errors.Is(err, catalog.ErrBusinessNotFound):
			h.logger.Warn("POST /businesses/{id}/emergency-blocks - Business not found: business_id=%d", businessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, catalog.ErrAccessDenied):
			h.logger.Warn("POST /businesses/{id}/emergency-blocks - Access denied: business_id=%d, user_id=%d", businessID, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("POST /businesses/{id}/emergency-blocks - Failed to create block: business_id=%d, error=%v", businessID, err)
			handlers.RespondDomainError(w, err, msgInvalidRequestBody)
		}
		return
	}

	h.logger.Info("POST /businesses/{id}/emergency-blocks - Block created: business_id=%d, block_id=%d, %s..%s",
		businessID, block.ID, block.StartDate, block.EndDate)
	handlers.RespondJSON(w, http.StatusCreated, block)
}
