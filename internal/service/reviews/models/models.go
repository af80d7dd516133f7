package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// CreateReviewRequest запрос на создание отзыва
type CreateReviewRequest struct {
	Actor     domain.Actor `json:"-"`
	BookingID int64        `json:"-"`
	Rating    int          `json:"rating"`
	Comment   *string      `json:"comment,omitempty"`
}

// ToDomainReview конвертирует запрос в domain модель
func (r *CreateReviewRequest) ToDomainReview(booking *domain.Booking) *domain.Review {
	return &domain.Review{
		BookingID:  booking.ID,
		BusinessID: booking.BusinessID,
		ClientID:   booking.ClientID,
		Rating:     r.Rating,
		Comment:    r.Comment,
	}
}

// ReviewResponse отзыв
type ReviewResponse struct {
	ID         int64     `json:"id"`
	BookingID  int64     `json:"bookingId"`
	BusinessID int64     `json:"businessId"`
	ClientID   int64     `json:"clientId"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ReviewListResponse отзывы бизнеса со средней оценкой
type ReviewListResponse struct {
	Reviews       []ReviewResponse `json:"reviews"`
	Count         int              `json:"count"`
	AverageRating float64          `json:"averageRating"`
}

// FromDomainReview конвертирует domain модель в DTO
func FromDomainReview(r *domain.Review) *ReviewResponse {
	if r == nil {
		return nil
	}
	return &ReviewResponse{
		ID:         r.ID,
		BookingID:  r.BookingID,
		BusinessID: r.BusinessID,
		ClientID:   r.ClientID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

// FromDomainReviewList конвертирует список отзывов и считает среднюю оценку
func FromDomainReviewList(reviews []*domain.Review) *ReviewListResponse {
	resp := &ReviewListResponse{
		Reviews: make([]ReviewResponse, 0, len(reviews)),
	}

	total := 0
	for _, review := range reviews {
		if r := FromDomainReview(review); r != nil {
			resp.Reviews = append(resp.Reviews, *r)
			total += r.Rating
		}
	}

	resp.Count = len(resp.Reviews)
	if resp.Count > 0 {
		resp.AverageRating = float64(total) / float64(resp.Count)
	}
	return resp
}
