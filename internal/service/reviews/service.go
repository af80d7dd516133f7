package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	reviewRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/review"
	"github.com/m04kA/SMC-AppointmentService/internal/service/reviews/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

// Service сервис отзывов о завершенных бронированиях
type Service struct {
	bookingRepo  BookingRepository
	reviewRepo   ReviewRepository
	businessRepo BusinessRepository
	outboxRepo   OutboxRepository
	txManager    TransactionManager
	logger       Logger
}

// NewService создает новый экземпляр сервиса отзывов
func NewService(
	bookingRepo BookingRepository,
	reviewRepo ReviewRepository,
	businessRepo BusinessRepository,
	outboxRepo OutboxRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		reviewRepo:   reviewRepo,
		businessRepo: businessRepo,
		outboxRepo:   outboxRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// Create создает отзыв на бронирование
// Доступно только клиенту бронирования и только после его завершения
func (s *Service) Create(ctx context.Context, req *models.CreateReviewRequest) (*models.ReviewResponse, error) {
	s.logger.Info("Create: review for booking=%d by actor=%d (%s)", req.BookingID, req.Actor.ID, req.Actor.Role)

	// 1. Валидация
	if req.Actor.Role != domain.RoleClient {
		s.logger.Warn("Create: actor=%d with role %s cannot leave reviews", req.Actor.ID, req.Actor.Role)
		return nil, ErrOnlyClientsCanReview
	}
	if err := validateReview(req); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем бронирование
	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Create: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("Create: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	// 3. Отзыв оставляет только клиент бронирования
	if !booking.BelongsTo(req.Actor, nil) {
		s.logger.Warn("Create: actor=%d is not the client of booking id=%d", req.Actor.ID, booking.ID)
		return nil, ErrAccessDenied
	}

	// 4. Только завершенные бронирования
	if booking.Status != domain.StatusCompleted {
		s.logger.Warn("Create: booking id=%d is %s, not completed", booking.ID, booking.Status)
		return nil, ErrBookingNotCompleted
	}

	// 5. Отзыв и событие в одной транзакции
	var created *domain.Review
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		review, err := s.reviewRepo.Create(txCtx, req.ToDomainReview(booking))
		if err != nil {
			return err
		}

		event, err := domain.NewReviewEvent(review)
		if err != nil {
			return err
		}
		if err := s.outboxRepo.Append(txCtx, event); err != nil {
			return err
		}

		created = review
		return nil
	})
	if err != nil {
		if errors.Is(err, reviewRepo.ErrReviewExists) {
			s.logger.Warn("Create: booking id=%d already has a review", booking.ID)
			return nil, ErrReviewAlreadyExists
		}
		s.logger.Error("Create: failed to save review for booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created review id=%d for booking id=%d", created.ID, booking.ID)
	return models.FromDomainReview(created), nil
}

// ListByBusiness возвращает отзывы бизнеса
// Публичный метод - доступен всем
func (s *Service) ListByBusiness(ctx context.Context, businessID int64) (*models.ReviewListResponse, error) {
	s.logger.Info("ListByBusiness: fetching reviews for business=%d", businessID)

	if _, err := s.businessRepo.GetBusiness(ctx, businessID); err != nil {
		if errors.Is(err, catalogRepo.ErrBusinessNotFound) {
			s.logger.Warn("ListByBusiness: business id=%d not found", businessID)
			return nil, ErrBusinessNotFound
		}
		s.logger.Error("ListByBusiness: failed to get business id=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	reviews, err := s.reviewRepo.ListByBusiness(ctx, businessID)
	if err != nil {
		s.logger.Error("ListByBusiness: repository error for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: ListByBusiness - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListByBusiness: successfully fetched %d reviews for business=%d", len(reviews), businessID)
	return models.FromDomainReviewList(reviews), nil
}

func validateReview(req *models.CreateReviewRequest) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: booking id must be positive", ErrInvalidInput)
	}
	if req.Rating < domain.MinRating || req.Rating > domain.MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidInput, domain.MinRating, domain.MaxRating)
	}
	if req.Comment != nil {
		trimmed := strings.TrimSpace(*req.Comment)
		if utf8.RuneCountInString(trimmed) > domain.MaxReviewCommentLength {
			return fmt.Errorf("%w: comment is longer than %d characters", ErrInvalidInput, domain.MaxReviewCommentLength)
		}
		if trimmed == "" {
			req.Comment = nil
		} else {
			req.Comment = ptr.Ptr(trimmed)
		}
	}
	return nil
}
