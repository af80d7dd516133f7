package update_weekly_hours

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog/models"
)

type CatalogService interface {
	ReplaceWeeklyHours(ctx context.Context, req *models.ReplaceWeeklyHoursRequest) ([]models.WorkingIntervalDTO, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
