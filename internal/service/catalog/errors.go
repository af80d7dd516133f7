package catalog

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = fmt.Errorf("catalog: business not found: %w", domain.ErrNotFound)

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = fmt.Errorf("catalog: service not found: %w", domain.ErrNotFound)

	// ErrBlockNotFound возвращается, когда блокировка дат не найдена
	ErrBlockNotFound = fmt.Errorf("catalog: emergency block not found: %w", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда актор не является владельцем бизнеса
	ErrAccessDenied = fmt.Errorf("catalog: access denied: %w", domain.ErrAuthorization)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("catalog: %w", domain.ErrInvalidInput)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = fmt.Errorf("catalog: internal error: %w", domain.ErrUnavailable)
)
