package catalog

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// CatalogRepository интерфейс репозитория каталога
type CatalogRepository interface {
	GetBusiness(ctx context.Context, businessID int64) (*domain.Business, error)
	GetService(ctx context.Context, businessID, serviceID int64) (*domain.Service, error)
	UpdateService(ctx context.Context, service *domain.Service) (*domain.Service, error)
	GetWeeklyHours(ctx context.Context, businessID int64) (domain.WeeklyHours, error)
	ReplaceWeeklyHours(ctx context.Context, businessID int64, hours domain.WeeklyHours) error
	ListEmergencyBlocks(ctx context.Context, businessID int64, from, to *time.Time) ([]domain.EmergencyBlock, error)
	CreateEmergencyBlock(ctx context.Context, block *domain.EmergencyBlock) (*domain.EmergencyBlock, error)
	DeleteEmergencyBlock(ctx context.Context, businessID, blockID int64) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальная реализация TimeProvider
type RealTimeProvider struct{}

func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
