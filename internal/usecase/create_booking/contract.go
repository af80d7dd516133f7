package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	LockResource(ctx context.Context, key string) error
	GetActiveForResource(ctx context.Context, businessID int64, staffID *int64, date time.Time) ([]*domain.Booking, error)
	GetByIdempotencyKey(ctx context.Context, clientID int64, key string) (*domain.Booking, error)
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// CatalogRepository чтение каталога бизнеса
type CatalogRepository interface {
	GetBusiness(ctx context.Context, businessID int64) (*domain.Business, error)
	GetService(ctx context.Context, businessID, serviceID int64) (*domain.Service, error)
	GetStaff(ctx context.Context, businessID, staffID int64) (*domain.Staff, error)
	GetWorkingIntervals(ctx context.Context, businessID int64, weekday time.Weekday) ([]domain.WorkingInterval, error)
	ListEmergencyBlocks(ctx context.Context, businessID int64, from, to *time.Time) ([]domain.EmergencyBlock, error)
}

// OutboxRepository запись событий в outbox в той же транзакции
type OutboxRepository interface {
	Append(ctx context.Context, event *domain.OutboxEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчики бронирований
type Metrics interface {
	IncBookingCreated(staffBooking bool)
	IncBookingConflict()
}

type noopMetrics struct{}

func (noopMetrics) IncBookingCreated(bool) {}
func (noopMetrics) IncBookingConflict()    {}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
