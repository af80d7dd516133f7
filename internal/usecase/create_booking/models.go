package create_booking

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	Actor          domain.Actor     // Кто бронирует (только клиент)
	BusinessID     int64            // ID бизнеса
	ServiceID      int64            // ID услуги
	StaffID        *int64           // ID сотрудника (nil = бронирование на весь бизнес)
	Date           time.Time        // Дата бронирования (без времени)
	StartTime      types.TimeString // Время начала слота (например, "10:00")
	IdempotencyKey *string          // Ключ идемпотентности (UUID, опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking  *domain.Booking
	Replayed bool // true, если вернули бронирование, созданное ранее с тем же ключом
}
