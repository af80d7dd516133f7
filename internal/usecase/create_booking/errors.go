package create_booking

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = fmt.Errorf("create_booking: business not found: %w", domain.ErrNotFound)

	// ErrServiceNotFound возвращается, когда услуга не найдена или выключена
	ErrServiceNotFound = fmt.Errorf("create_booking: service not found: %w", domain.ErrNotFound)

	// ErrStaffNotFound возвращается, когда сотрудник не найден в бизнесе или неактивен
	ErrStaffNotFound = fmt.Errorf("create_booking: staff not found: %w", domain.ErrNotFound)

	// ErrStaffCannotPerform возвращается, когда сотрудник не оказывает выбранную услугу
	ErrStaffCannotPerform = fmt.Errorf("create_booking: staff does not perform this service: %w", domain.ErrInvalidInput)

	// ErrSlotNotAvailable возвращается, когда выбранный слот недоступен
	ErrSlotNotAvailable = fmt.Errorf("create_booking: slot is not available: %w", domain.ErrConflict)

	// ErrIdempotencyKeyReused возвращается, когда ключ уже использован для другого бронирования
	ErrIdempotencyKeyReused = fmt.Errorf("create_booking: idempotency key reused with different parameters: %w", domain.ErrConflict)

	// ErrOnlyClientsCanBook возвращается, когда бронирование создает не клиент
	ErrOnlyClientsCanBook = fmt.Errorf("create_booking: only clients can create bookings: %w", domain.ErrAuthorization)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("create_booking: %w", domain.ErrInvalidInput)

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = fmt.Errorf("create_booking: internal error: %w", domain.ErrUnavailable)
)
