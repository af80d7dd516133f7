package create_emergency_block

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog/models"
)

type CatalogService interface {
	CreateEmergencyBlock(ctx context.Context, req *models.CreateEmergencyBlockRequest) (*models.EmergencyBlockResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
