package transition_booking

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// validateRequest валидирует запрос и возвращает нормализованный целевой статус
func validateRequest(req *Request) (domain.BookingStatus, error) {
	if req.Actor.ID <= 0 {
		return "", fmt.Errorf("%w: actor id must be positive", ErrInvalidInput)
	}
	if _, err := domain.ParseRole(string(req.Actor.Role)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.BookingID <= 0 {
		return "", fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	target, err := domain.ParseBookingStatus(string(req.TargetStatus))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return target, nil
}
