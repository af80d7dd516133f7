package reviews

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// BookingRepository чтение бронирования, к которому пишется отзыв
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// ReviewRepository интерфейс репозитория отзывов
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	ListByBusiness(ctx context.Context, businessID int64) ([]*domain.Review, error)
}

// BusinessRepository проверка существования бизнеса
type BusinessRepository interface {
	GetBusiness(ctx context.Context, businessID int64) (*domain.Business, error)
}

// OutboxRepository запись событий для ленты уведомлений
type OutboxRepository interface {
	Append(ctx context.Context, event *domain.OutboxEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
