package transition_booking

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = fmt.Errorf("transition_booking: booking not found: %w", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда актор не является стороной бронирования
	ErrAccessDenied = fmt.Errorf("transition_booking: access denied: %w", domain.ErrAuthorization)

	// ErrNotYetEnded возвращается при попытке завершить бронирование до его окончания
	ErrNotYetEnded = fmt.Errorf("transition_booking: booking has not ended yet: %w", domain.ErrInvalidTransition)

	// ErrConcurrentUpdate возвращается, когда статус изменили параллельно
	ErrConcurrentUpdate = fmt.Errorf("transition_booking: booking status changed concurrently: %w", domain.ErrInvalidTransition)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("transition_booking: %w", domain.ErrInvalidInput)

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = fmt.Errorf("transition_booking: internal error: %w", domain.ErrUnavailable)
)
