package create_booking

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.Actor.ID <= 0 {
		return fmt.Errorf("%w: actor id must be positive", ErrInvalidInput)
	}

	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.StaffID != nil && *req.StaffID <= 0 {
		return fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	// Проверяем, что время начала указано
	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	// Валидируем формат времени
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if req.IdempotencyKey != nil {
		if _, err := uuid.Parse(*req.IdempotencyKey); err != nil {
			return fmt.Errorf("%w: idempotency key must be a UUID: %v", ErrInvalidInput, err)
		}
	}

	return nil
}

// validateStaff проверяет, что сотрудник может выполнить услугу
func validateStaff(staff *domain.Staff, serviceID int64) error {
	if !staff.IsActive {
		return ErrStaffNotFound
	}
	if !staff.CanPerform(serviceID) {
		return ErrStaffCannotPerform
	}
	return nil
}

// sameDraft проверяет, что повторный запрос с ключом идемпотентности совпадает с исходным
func sameDraft(existing *domain.Booking, req *Request) bool {
	return existing.BusinessID == req.BusinessID &&
		existing.ServiceID == req.ServiceID &&
		domain.ResourceIDOf(existing.StaffID) == domain.ResourceIDOf(req.StaffID) &&
		domain.DateOnly(existing.Date).Equal(domain.DateOnly(req.Date)) &&
		existing.StartTime == req.StartTime
}
