package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	BusinessID int64     // ID бизнеса
	ServiceID  int64     // ID услуги
	StaffID    *int64    // ID сотрудника (nil = бронирование на весь бизнес)
	Date       time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date            time.Time         // Дата, на которую запрашивались слоты
	BusinessID      int64             // ID бизнеса
	ServiceID       int64             // ID услуги
	StaffID         *int64            // ID сотрудника
	DurationMinutes int               // Длительность услуги
	Slots           []domain.TimeSlot // Свободные слоты по возрастанию времени начала
}
