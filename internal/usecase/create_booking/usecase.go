package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/m04kA/SMC-AppointmentService/internal/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
)

var tracer = otel.Tracer("usecase/create_booking")

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	catalogRepo  CatalogRepository
	outboxRepo   OutboxRepository
	txManager    TransactionManager
	metrics      Metrics
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	catalogRepo CatalogRepository,
	outboxRepo OutboxRepository,
	txManager TransactionManager,
	metrics Metrics,
	location *time.Location,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		catalogRepo:  catalogRepo,
		outboxRepo:   outboxRepo,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		location:     location,
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования.
// Проверка слота и вставка выполняются в одной транзакции под advisory-блокировкой
// ключа (бизнес, ресурс, дата), поэтому из двух конкурентных запросов на один слот
// успешен ровно один. EXCLUDE ограничение в БД остается последней линией защиты.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, span := tracer.Start(ctx, "CreateBooking")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	uc.logger.Info("CreateBooking: client=%d, business=%d, service=%d, date=%s, time=%s",
		req.Actor.ID, req.BusinessID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Бронировать может только клиент
	if req.Actor.Role != domain.RoleClient {
		uc.logger.Warn("CreateBooking: actor id=%d with role %s tried to book", req.Actor.ID, req.Actor.Role)
		return nil, ErrOnlyClientsCanBook
	}

	span.SetAttributes(
		attribute.Int64("business.id", req.BusinessID),
		attribute.Int64("service.id", req.ServiceID),
		attribute.String("booking.date", req.Date.Format(domain.DateFormat)),
		attribute.String("booking.start", req.StartTime.String()),
	)

	// 3. Повтор запроса с тем же ключом идемпотентности
	if req.IdempotencyKey != nil {
		replayed, err := uc.findReplay(ctx, req)
		if err != nil || replayed != nil {
			return replayed, err
		}
	}

	// 4. Получаем бизнес, услугу и сотрудника
	if _, err := uc.catalogRepo.GetBusiness(ctx, req.BusinessID); err != nil {
		return nil, uc.mapCatalogError("business", err)
	}

	service, err := uc.catalogRepo.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		return nil, uc.mapCatalogError("service", err)
	}
	if !service.IsActive {
		uc.logger.Warn("CreateBooking: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	if req.StaffID != nil {
		staff, err := uc.catalogRepo.GetStaff(ctx, req.BusinessID, *req.StaffID)
		if err != nil {
			return nil, uc.mapCatalogError("staff", err)
		}
		if err := validateStaff(staff, req.ServiceID); err != nil {
			uc.logger.Warn("CreateBooking: staff id=%d rejected: %v", staff.ID, err)
			return nil, err
		}
	}

	date := domain.DateOnly(req.Date)
	var result *domain.Booking

	// 5. Проверка слота и вставка в одной транзакции
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 5.1. Сериализуем создание бронирований для ресурса на дату
		if err := uc.bookingRepo.LockResource(txCtx, domain.ResourceLockKey(req.BusinessID, req.StaffID, date)); err != nil {
			uc.logger.Error("CreateBooking: failed to lock resource: %v", err)
			return fmt.Errorf("%w: failed to lock resource: %v", ErrInternal, err)
		}

		// 5.2. Перечитываем расписание, блокировки и бронирования внутри транзакции
		intervals, err := uc.catalogRepo.GetWorkingIntervals(txCtx, req.BusinessID, date.Weekday())
		if err != nil {
			return uc.mapCatalogError("working hours", err)
		}

		blocks, err := uc.catalogRepo.ListEmergencyBlocks(txCtx, req.BusinessID, &date, &date)
		if err != nil {
			return uc.mapCatalogError("emergency blocks", err)
		}

		bookings, err := uc.bookingRepo.GetActiveForResource(txCtx, req.BusinessID, req.StaffID, date)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}

		// 5.3. Слот должен быть в текущем списке свободных
		slots := availability.ComputeSlots(availability.Input{
			Date:            date,
			Now:             uc.timeProvider.Now().In(uc.location),
			DurationMinutes: service.DurationMinutes,
			StaffID:         req.StaffID,
			OpenIntervals:   intervals,
			Blocks:          blocks,
			Bookings:        bookings,
		})
		if !availability.Contains(slots, req.StartTime) {
			uc.logger.Warn("CreateBooking: slot %s on %s is not available for business=%d",
				req.StartTime, date.Format(domain.DateFormat), req.BusinessID)
			return ErrSlotNotAvailable
		}

		// 5.4. Создаем бронирование со снимком услуги
		created, err := uc.bookingRepo.Create(txCtx, &domain.Booking{
			BusinessID:      req.BusinessID,
			ServiceID:       req.ServiceID,
			StaffID:         req.StaffID,
			ClientID:        req.Actor.ID,
			Date:            date,
			StartTime:       req.StartTime,
			DurationMinutes: service.DurationMinutes,
			ServiceName:     service.Name,
			PriceMinorUnits: service.PriceMinorUnits,
			Status:          domain.StatusPending,
			IdempotencyKey:  req.IdempotencyKey,
		})
		if err != nil {
			switch {
			case errors.Is(err, bookingRepo.ErrSlotTaken):
				uc.logger.Warn("CreateBooking: exclusion constraint rejected slot %s", req.StartTime)
				return ErrSlotNotAvailable
			case errors.Is(err, bookingRepo.ErrDuplicateIdempotencyKey):
				return err
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		// 5.5. Событие для ленты уведомлений
		event, err := domain.NewBookingEvent(created, "", req.Actor)
		if err != nil {
			return fmt.Errorf("%w: failed to build event: %v", ErrInternal, err)
		}
		if err := uc.outboxRepo.Append(txCtx, event); err != nil {
			uc.logger.Error("CreateBooking: failed to append outbox event: %v", err)
			return fmt.Errorf("%w: failed to append event: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotAvailable):
			uc.metrics.IncBookingConflict()
			return nil, err
		case errors.Is(err, bookingRepo.ErrDuplicateIdempotencyKey):
			// Параллельный запрос с тем же ключом успел раньше
			replayed, replayErr := uc.findReplay(ctx, req)
			if replayErr != nil {
				return nil, replayErr
			}
			if replayed != nil {
				return replayed, nil
			}
			return nil, fmt.Errorf("%w: idempotency key conflict without stored booking", ErrInternal)
		case errors.Is(err, domain.ErrConflict),
			errors.Is(err, domain.ErrNotFound),
			errors.Is(err, domain.ErrInvalidInput),
			errors.Is(err, domain.ErrUnavailable):
			return nil, err
		default:
			uc.logger.Error("CreateBooking: transaction failed: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
	}

	uc.metrics.IncBookingCreated(req.StaffID != nil)
	uc.logger.Info("CreateBooking: successfully created booking id=%d", result.ID)

	return &Response{Booking: result}, nil
}

// findReplay возвращает бронирование, ранее созданное клиентом с тем же ключом
func (uc *UseCase) findReplay(ctx context.Context, req *Request) (*Response, error) {
	existing, err := uc.bookingRepo.GetByIdempotencyKey(ctx, req.Actor.ID, *req.IdempotencyKey)
	if errors.Is(err, bookingRepo.ErrBookingNotFound) {
		return nil, nil
	}
	if err != nil {
		uc.logger.Error("CreateBooking: failed to look up idempotency key: %v", err)
		return nil, fmt.Errorf("%w: failed to look up idempotency key: %v", ErrInternal, err)
	}

	if !sameDraft(existing, req) {
		uc.logger.Warn("CreateBooking: idempotency key %s reused by client=%d for a different slot",
			*req.IdempotencyKey, req.Actor.ID)
		return nil, ErrIdempotencyKeyReused
	}

	uc.logger.Info("CreateBooking: replaying booking id=%d for idempotency key %s", existing.ID, *req.IdempotencyKey)
	return &Response{Booking: existing, Replayed: true}, nil
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
	uc.logger.Error("CreateBooking: failed to get %s: %v", what, err)
	return fmt.Errorf("%w: failed to get %s: %v", ErrInternal, what, err)
}
