package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = fmt.Errorf("get_available_slots: business not found: %w", domain.ErrNotFound)

	// ErrServiceNotFound возвращается, когда услуга не найдена или выключена
	ErrServiceNotFound = fmt.Errorf("get_available_slots: service not found: %w", domain.ErrNotFound)

	// ErrStaffNotFound возвращается, когда сотрудник не найден в бизнесе или неактивен
	ErrStaffNotFound = fmt.Errorf("get_available_slots: staff not found: %w", domain.ErrNotFound)

	// ErrStaffCannotPerform возвращается, когда сотрудник не оказывает выбранную услугу
	ErrStaffCannotPerform = fmt.Errorf("get_available_slots: staff does not perform this service: %w", domain.ErrInvalidInput)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("get_available_slots: %w", domain.ErrInvalidInput)

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = fmt.Errorf("get_available_slots: internal error: %w", domain.ErrUnavailable)
)
