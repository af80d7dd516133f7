package models

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модели

// WorkingIntervalDTO рабочий интервал дня недели (0 = воскресенье)
type WorkingIntervalDTO struct {
	Weekday int    `json:"weekday"`
	Open    string `json:"open"`  // "09:00"
	Close   string `json:"close"` // "18:00", "24:00" допустимо
}

// ReplaceWeeklyHoursRequest запрос на полную замену расписания бизнеса
type ReplaceWeeklyHoursRequest struct {
	Actor      domain.Actor         `json:"-"`
	BusinessID int64                `json:"-"`
	Intervals  []WorkingIntervalDTO `json:"intervals"`
}

// CreateEmergencyBlockRequest запрос на закрытие бизнеса на период дат
type CreateEmergencyBlockRequest struct {
	Actor      domain.Actor `json:"-"`
	BusinessID int64        `json:"-"`
	StartDate  string       `json:"startDate"` // "2025-12-31"
	EndDate    string       `json:"endDate"`   // включительно
	Reason     string       `json:"reason"`
}

// UpdateServiceRequest частичное обновление услуги
type UpdateServiceRequest struct {
	Actor           domain.Actor `json:"-"`
	BusinessID      int64        `json:"-"`
	ServiceID       int64        `json:"-"`
	DurationMinutes *int         `json:"durationMinutes,omitempty"`
	PriceMinorUnits *int64       `json:"priceMinorUnits,omitempty"`
}

// IsEmpty возвращает true, если в запросе нет изменений
func (r *UpdateServiceRequest) IsEmpty() bool {
	return r.DurationMinutes == nil && r.PriceMinorUnits == nil
}

// ApplyToService применяет указанные поля к услуге
func (r *UpdateServiceRequest) ApplyToService(service *domain.Service) {
	if r.DurationMinutes != nil {
		service.DurationMinutes = *r.DurationMinutes
	}
	if r.PriceMinorUnits != nil {
		service.PriceMinorUnits = *r.PriceMinorUnits
	}
}

// Response модели

// EmergencyBlockResponse блокировка дат
type EmergencyBlockResponse struct {
	ID         int64     `json:"id"`
	BusinessID int64     `json:"businessId"`
	StartDate  string    `json:"startDate"`
	EndDate    string    `json:"endDate"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ScheduleResponse недельное расписание и предстоящие блокировки
type ScheduleResponse struct {
	BusinessID      int64                    `json:"businessId"`
	WeeklyHours     []WorkingIntervalDTO     `json:"weeklyHours"`
	EmergencyBlocks []EmergencyBlockResponse `json:"emergencyBlocks"`
}

// ServiceResponse услуга бизнеса
type ServiceResponse struct {
	ID              int64  `json:"id"`
	BusinessID      int64  `json:"businessId"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
	PriceMinorUnits int64  `json:"priceMinorUnits"`
	IsActive        bool   `json:"isActive"`
}

// Методы конвертации

// FromDomainWeeklyHours конвертирует расписание в плоский список, упорядоченный по дню и времени
func FromDomainWeeklyHours(hours domain.WeeklyHours) []WorkingIntervalDTO {
	result := make([]WorkingIntervalDTO, 0)
	for weekday, intervals := range hours {
		for _, interval := range intervals {
			result = append(result, WorkingIntervalDTO{
				Weekday: int(weekday),
				Open:    interval.Open.String(),
				Close:   interval.Close.String(),
			})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Weekday != result[j].Weekday {
			return result[i].Weekday < result[j].Weekday
		}
		return result[i].Open < result[j].Open
	})
	return result
}

// FromDomainEmergencyBlock конвертирует блокировку в DTO
func FromDomainEmergencyBlock(b *domain.EmergencyBlock) *EmergencyBlockResponse {
	if b == nil {
		return nil
	}
	return &EmergencyBlockResponse{
		ID:         b.ID,
		BusinessID: b.BusinessID,
		StartDate:  b.StartDate.Format(domain.DateFormat),
		EndDate:    b.EndDate.Format(domain.DateFormat),
		Reason:     b.Reason,
		CreatedAt:  b.CreatedAt,
	}
}

// FromDomainService конвертирует услугу в DTO
func FromDomainService(s *domain.Service) *ServiceResponse {
	if s == nil {
		return nil
	}
	return &ServiceResponse{
		ID:              s.ID,
		BusinessID:      s.BusinessID,
		Name:            s.Name,
		DurationMinutes: s.DurationMinutes,
		PriceMinorUnits: s.PriceMinorUnits,
		IsActive:        s.IsActive,
	}
}
