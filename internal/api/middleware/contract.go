package middleware

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ActorVerifier подтверждает личность из заголовков во внешнем сервисе
type ActorVerifier interface {
	VerifyActor(ctx context.Context, actor domain.Actor) error
}

// Limiter решает, можно ли пропустить очередной запрос с ключом key
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitRecorder учитывает отклоненные запросы
type RateLimitRecorder interface {
	IncRateLimited(backend string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
