package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-AppointmentService/internal/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
)

var tracer = otel.Tracer("usecase/get_available_slots")

// UseCase use case для получения доступных слотов для бронирования
type UseCase struct {
	catalogRepo  CatalogRepository
	bookingRepo  BookingRepository
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewUseCase создает новый экземпляр use case.
// location часовой пояс бизнеса, в котором считается "сегодня" и "сейчас".
func NewUseCase(
	catalogRepo CatalogRepository,
	bookingRepo BookingRepository,
	location *time.Location,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		catalogRepo:  catalogRepo,
		bookingRepo:  bookingRepo,
		timeProvider: &RealTimeProvider{},
		location:     location,
		logger:       logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, span := tracer.Start(ctx, "GetAvailableSlots")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	uc.logger.Info("GetAvailableSlots: business=%d, service=%d, staff=%s, date=%s",
		req.BusinessID, req.ServiceID, formatStaff(req.StaffID), req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("business.id", req.BusinessID),
		attribute.Int64("service.id", req.ServiceID),
		attribute.String("booking.date", req.Date.Format(domain.DateFormat)),
	)

	// 2. Текущее время на часах бизнеса
	now := uc.timeProvider.Now().In(uc.location)
	date := domain.DateOnly(req.Date)

	// 3. Параллельно читаем каталог и журнал бронирований
	var (
		service   *domain.Service
		staff     *domain.Staff
		intervals []domain.WorkingInterval
		blocks    []domain.EmergencyBlock
		bookings  []*domain.Booking
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if _, err := uc.catalogRepo.GetBusiness(gctx, req.BusinessID); err != nil {
			return uc.mapCatalogError("business", err)
		}
		return nil
	})

	g.Go(func() error {
		s, err := uc.catalogRepo.GetService(gctx, req.BusinessID, req.ServiceID)
		if err != nil {
			return uc.mapCatalogError("service", err)
		}
		service = s
		return nil
	})

	if req.StaffID != nil {
		g.Go(func() error {
			s, err := uc.catalogRepo.GetStaff(gctx, req.BusinessID, *req.StaffID)
			if err != nil {
				return uc.mapCatalogError("staff", err)
			}
			staff = s
			return nil
		})
	}

	g.Go(func() error {
		result, err := uc.catalogRepo.GetWorkingIntervals(gctx, req.BusinessID, date.Weekday())
		if err != nil {
			return uc.mapCatalogError("working hours", err)
		}
		intervals = result
		return nil
	})

	g.Go(func() error {
		result, err := uc.catalogRepo.ListEmergencyBlocks(gctx, req.BusinessID, &date, &date)
		if err != nil {
			return uc.mapCatalogError("emergency blocks", err)
		}
		blocks = result
		return nil
	})

	g.Go(func() error {
		result, err := uc.bookingRepo.GetActiveForResource(gctx, req.BusinessID, req.StaffID, date)
		if err != nil {
			uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}
		bookings = result
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 4. Проверяем, что услугу можно забронировать
	if !service.IsActive {
		uc.logger.Warn("GetAvailableSlots: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	// 5. Проверяем сотрудника
	if staff != nil {
		if err := validateStaff(staff, req.ServiceID); err != nil {
			uc.logger.Warn("GetAvailableSlots: staff id=%d rejected: %v", staff.ID, err)
			return nil, err
		}
	}

	// 6. Вычисляем свободные слоты
	slots := availability.ComputeSlots(availability.Input{
		Date:            date,
		Now:             now,
		DurationMinutes: service.DurationMinutes,
		StaffID:         req.StaffID,
		OpenIntervals:   intervals,
		Blocks:          blocks,
		Bookings:        bookings,
	})

	uc.logger.Info("GetAvailableSlots: generated %d slots for business=%d, service=%d, date=%s",
		len(slots), req.BusinessID, req.ServiceID, date.Format(domain.DateFormat))

	return &Response{
		Date:            date,
		BusinessID:      req.BusinessID,
		ServiceID:       req.ServiceID,
		StaffID:         req.StaffID,
		DurationMinutes: service.DurationMinutes,
		Slots:           slots,
	}, nil
}

func (uc *UseCase) mapCatalogError(what string, err error) error {
	switch {
	case errors.Is(err, catalogRepo.ErrBusinessNotFound):
		return ErrBusinessNotFound
	case errors.Is(err, catalogRepo.ErrServiceNotFound):
		return ErrServiceNotFound
	case errors.Is(err, catalogRepo.ErrStaffNotFound):
		return ErrStaffNotFound
	}
	uc.logger.Error("GetAvailableSlots: failed to get %s: %v", what, err)
	return fmt.Errorf("%w: failed to get %s: %v", ErrInternal, what, err)
}

func formatStaff(staffID *int64) string {
	if staffID == nil {
		return "any"
	}
	return fmt.Sprintf("%d", *staffID)
}
