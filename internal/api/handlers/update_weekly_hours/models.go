package update_weekly_hours

import "github.com/m04kA/SMC-AppointmentService/internal/service/catalog/models"

// WeeklyHoursResponse HTTP response model
type WeeklyHoursResponse struct {
	BusinessID  int64                       `json:"businessId"`
	WeeklyHours []models.WorkingIntervalDTO `json:"weeklyHours"`
}
