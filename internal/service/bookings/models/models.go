package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модели

// ListBookingsRequest запрос на получение бронирований актора.
// Клиент видит свои бронирования, бизнес - бронирования своего бизнеса.
type ListBookingsRequest struct {
	Actor      domain.Actor
	BusinessID *int64     // Для бизнеса: ID бизнеса (по умолчанию бизнес владельца); для клиента: фильтр
	DateFrom   *time.Time // Начало периода (включительно)
	DateTo     *time.Time // Конец периода (включительно)
	Statuses   []string   // Фильтр по статусам в любом регистре (опционально)
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64   `json:"id"`
	BusinessID      int64   `json:"businessId"`
	ServiceID       int64   `json:"serviceId"`
	StaffID         *int64  `json:"staffId,omitempty"`
	ClientID        int64   `json:"clientId"`
	BookingDate     string  `json:"bookingDate"` // "2025-10-15"
	StartTime       string  `json:"startTime"`   // "10:00"
	EndTime         string  `json:"endTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	IdempotencyKey  *string `json:"idempotencyKey,omitempty"`

	// Снимок услуги на момент бронирования
	ServiceName     string `json:"serviceName"`
	PriceMinorUnits int64  `json:"priceMinorUnits"`

	CancelledAt *string `json:"cancelledAt,omitempty"` // ISO 8601 format
	CompletedAt *string `json:"completedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:              b.ID,
		BusinessID:      b.BusinessID,
		ServiceID:       b.ServiceID,
		StaffID:         b.StaffID,
		ClientID:        b.ClientID,
		BookingDate:     b.Date.Format(domain.DateFormat),
		StartTime:       b.StartTime.String(),
		DurationMinutes: b.DurationMinutes,
		Status:          string(b.Status),
		IdempotencyKey:  b.IdempotencyKey,
		ServiceName:     b.ServiceName,
		PriceMinorUnits: b.PriceMinorUnits,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}

	if end, err := b.EndTime(); err == nil {
		resp.EndTime = end.String()
	}
	resp.CancelledAt = formatTime(b.CancelledAt)
	resp.CompletedAt = formatTime(b.CompletedAt)

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatuses конвертирует строки в статусы, регистр не важен
func ToDomainBookingStatuses(statuses []string) ([]domain.BookingStatus, error) {
	result := make([]domain.BookingStatus, 0, len(statuses))
	for _, s := range statuses {
		status, err := domain.ParseBookingStatus(s)
		if err != nil {
			return nil, err
		}
		result = append(result, status)
	}
	return result, nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
