package reviews

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = fmt.Errorf("reviews: booking not found: %w", domain.ErrNotFound)

	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = fmt.Errorf("reviews: business not found: %w", domain.ErrNotFound)

	// ErrOnlyClientsCanReview возвращается, когда отзыв пытается оставить не клиент
	ErrOnlyClientsCanReview = fmt.Errorf("reviews: only clients can leave reviews: %w", domain.ErrAuthorization)

	// ErrAccessDenied возвращается, когда бронирование принадлежит другому клиенту
	ErrAccessDenied = fmt.Errorf("reviews: access denied: %w", domain.ErrAuthorization)

	// ErrBookingNotCompleted возвращается, когда бронирование еще не завершено
	ErrBookingNotCompleted = fmt.Errorf("reviews: booking is not completed: %w", domain.ErrInvalidTransition)

	// ErrReviewAlreadyExists возвращается при повторном отзыве на бронирование
	ErrReviewAlreadyExists = fmt.Errorf("reviews: review already exists: %w", domain.ErrConflict)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("reviews: %w", domain.ErrInvalidInput)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = fmt.Errorf("reviews: internal error: %w", domain.ErrUnavailable)
)
