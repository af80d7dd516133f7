package list_reviews

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/reviews/models"
)

type ReviewService interface {
	ListByBusiness(ctx context.Context, businessID int64) (*models.ReviewListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
