package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
)

// Service сервис чтения бронирований
type Service struct {
	bookingRepo  BookingRepository
	businessRepo BusinessRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	businessRepo BusinessRepository,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		businessRepo: businessRepo,
		logger:       logger,
	}
}

// GetByID получает бронирование по ID.
// Видеть бронирование может его клиент или владелец бизнеса.
// Чужое бронирование выглядит для актора так же, как отказ в доступе, без подробностей.
func (s *Service) GetByID(ctx context.Context, actor domain.Actor, id int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for actor=%d (%s)", id, actor.ID, actor.Role)

	if id <= 0 {
		return nil, fmt.Errorf("%w: booking id must be positive", ErrInvalidInput)
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	// Проверяем права доступа
	if err := s.checkAccess(ctx, booking, actor); err != nil {
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return models.FromDomainBooking(booking), nil
}

// List получает бронирования актора с фильтрацией по периоду и статусам
func (s *Service) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("List: fetching bookings for actor=%d (%s), statuses=%v",
		req.Actor.ID, req.Actor.Role, req.Statuses)

	statuses, err := models.ToDomainBookingStatuses(req.Statuses)
	if err != nil {
		s.logger.Warn("List: invalid status filter %v: %v", req.Statuses, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if req.DateFrom != nil && req.DateTo != nil && req.DateFrom.After(*req.DateTo) {
		return nil, fmt.Errorf("%w: dateFrom is after dateTo", ErrInvalidInput)
	}

	filter := domain.BookingFilter{
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		Statuses: statuses,
	}

	switch req.Actor.Role {
	case domain.RoleClient:
		filter.ClientID = &req.Actor.ID
		filter.BusinessID = req.BusinessID

	case domain.RoleBusiness:
		business, err := s.ownedBusiness(ctx, req.Actor, req.BusinessID)
		if err != nil {
			return nil, err
		}
		filter.BusinessID = &business.ID

	default:
		return nil, ErrAccessDenied
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error for actor=%d: %v", req.Actor.ID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: successfully fetched %d bookings for actor=%d", len(bookings), req.Actor.ID)
	return models.FromDomainBookingList(bookings), nil
}

// Вспомогательные методы

// checkAccess проверяет, что актор является стороной бронирования
func (s *Service) checkAccess(ctx context.Context, booking *domain.Booking, actor domain.Actor) error {
	var business *domain.Business

	if actor.Role == domain.RoleBusiness {
		b, err := s.businessRepo.GetBusiness(ctx, booking.BusinessID)
		if err != nil && !errors.Is(err, catalogRepo.ErrBusinessNotFound) {
			s.logger.Error("checkAccess: failed to get business id=%d: %v", booking.BusinessID, err)
			return fmt.Errorf("%w: checkAccess - failed to get business: %v", ErrInternal, err)
		}
		business = b
	}

	if !booking.BelongsTo(actor, business) {
		s.logger.Warn("checkAccess: actor=%d (%s) has no access to booking id=%d", actor.ID, actor.Role, booking.ID)
		return ErrAccessDenied
	}
	return nil
}

// ownedBusiness возвращает бизнес, которым владеет актор
func (s *Service) ownedBusiness(ctx context.Context, actor domain.Actor, businessID *int64) (*domain.Business, error) {
	var (
		business *domain.Business
		err      error
	)
	if businessID != nil {
		business, err = s.businessRepo.GetBusiness(ctx, *businessID)
	} else {
		business, err = s.businessRepo.GetBusinessByOwner(ctx, actor.ID)
	}

	if err != nil {
		if errors.Is(err, catalogRepo.ErrBusinessNotFound) {
			s.logger.Warn("ownedBusiness: no business for actor=%d", actor.ID)
			return nil, ErrBusinessNotFound
		}
		s.logger.Error("ownedBusiness: failed to get business for actor=%d: %v", actor.ID, err)
		return nil, fmt.Errorf("%w: ownedBusiness - failed to get business: %v", ErrInternal, err)
	}

	if !business.IsOwnedBy(actor) {
		s.logger.Warn("ownedBusiness: actor=%d is not the owner of business=%d", actor.ID, business.ID)
		return nil, ErrAccessDenied
	}
	return business, nil
}
