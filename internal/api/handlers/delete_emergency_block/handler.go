package delete_emergency_block

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog"
)

const (
	msgMissingIdentity   = "отсутствует идентификатор пользователя"
	msgInvalidBusinessID = "некорректный ID бизнеса"
	msgInvalidBlockID    = "некорректный ID блокировки"
	msgBusinessNotFound  = "бизнес не найден"
	msgBlockNotFound     = "блокировка не найдена"
	msgForbidden         = "только владелец может снимать блокировки"
	msgInternalError     = "ошибка удаления блокировки"
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

// Handle DELETE /api/v1/businesses/{businessId}/emergency-blocks/{blockId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("DELETE /businesses/{id}/emergency-blocks/{id} - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	businessID, err := handlers.PathInt64(r, "businessId")
	if err != nil {
		h.logger.Warn("DELETE /businesses/{id}/emergency-blocks/{id} - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	blockID, err := handlers.PathInt64(r, "blockId")
	if err != nil {
		h.logger.Warn("DELETE /businesses/{id}/emergency-blocks/{id} - Invalid block ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBlockID)
		return
	}

	err = h.service.DeleteEmergencyBlock(r.Context(), actor, businessID, blockID)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrBusinessNotFound):
			h.logger.Warn("DELETE /businesses/{id}/emergency-blocks/{id} - Business not found: business_id=%d", businessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, catalog.ErrBlockNotFound):
			h.logger.Warn("DELETE /businesses/{id}/emergency-blocks/{id} - Block not found: business_id=%d, block_id=%d",
				businessID, blockID)
			handlers.RespondNotFound(w, msgBlockNotFound)

		case errors.Is(err, catalog.ErrAccessDenied):
			h.logger.Warn("DELETE /businesses/{id}/emergency-blocks/{id} - Access denied: business_id=%d, user_id=%d",
				businessID, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("DELETE /businesses/{id}/emergency-blocks/{id} - Failed to delete block: block_id=%d, error=%v",
				blockID, err)
			handlers.RespondDomainError(w, err, msgInternalError)
		}
		return
	}

	h.logger.Info("DELETE /businesses/{id}/emergency-blocks/{id} - Block deleted: business_id=%d, block_id=%d", businessID, blockID)
	w.WriteHeader(http.StatusNoContent)
}
