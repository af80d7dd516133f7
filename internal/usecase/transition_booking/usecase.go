package transition_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
)

var tracer = otel.Tracer("usecase/transition_booking")

// UseCase use case смены статуса бронирования (подтверждение, отклонение, отмена, завершение)
type UseCase struct {
	bookingRepo  BookingRepository
	businessRepo BusinessRepository
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
	businessRepo BusinessRepository,
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
		businessRepo: businessRepo,
		outboxRepo:   outboxRepo,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		location:     location,
		logger:       logger,
	}
}

// Execute переводит бронирование в целевой статус.
// Решение принимается по статусу, прочитанному под блокировкой строки,
// а запись выполняется как compare-and-set по этому статусу.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, span := tracer.Start(ctx, "TransitionBooking")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	uc.logger.Info("TransitionBooking: booking=%d, target=%s, actor=%d (%s)",
		req.BookingID, req.TargetStatus, req.Actor.ID, req.Actor.Role)

	// 1. Валидация входных данных
	target, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("TransitionBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Операция определяется ролью и целевым статусом
	op, err := domain.OperationFor(req.Actor.Role, target)
	if err != nil {
		uc.logger.Warn("TransitionBooking: booking=%d, %v", req.BookingID, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("booking.id", req.BookingID),
		attribute.String("booking.operation", string(op)),
	)

	var (
		result   *domain.Booking
		previous domain.BookingStatus
	)

	// 3. Чтение с блокировкой, проверка политики и compare-and-set в одной транзакции
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 3.1. Блокируем строку бронирования
		booking, err := uc.bookingRepo.GetByIDForUpdate(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("TransitionBooking: booking id=%d not found", req.BookingID)
				return ErrBookingNotFound
			}
			uc.logger.Error("TransitionBooking: failed to get booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		// 3.2. Актор должен быть стороной бронирования
		if err := uc.checkParty(txCtx, booking, req.Actor); err != nil {
			return err
		}

		// 3.3. Политика переходов по текущему сохраненному статусу
		to, err := domain.ResolveTransition(op, req.Actor.Role, booking.Status)
		if err != nil {
			uc.logger.Warn("TransitionBooking: booking id=%d: %v", booking.ID, err)
			return err
		}

		now := uc.timeProvider.Now().In(uc.location)

		// 3.4. Завершить можно только прошедшее бронирование
		if to == domain.StatusCompleted && !req.AssertCompleted {
			endsAt, err := booking.EndsAt(uc.location)
			if err != nil {
				return fmt.Errorf("%w: invalid stored interval: %v", ErrInternal, err)
			}
			if now.Before(endsAt) {
				uc.logger.Warn("TransitionBooking: booking id=%d ends at %s, now %s",
					booking.ID, endsAt.Format(time.RFC3339), now.Format(time.RFC3339))
				return ErrNotYetEnded
			}
		}

		// 3.5. Compare-and-set по прочитанному статусу
		updated, err := uc.bookingRepo.CompareAndSetStatus(txCtx, booking.ID, booking.Status, to, now)
		if err != nil {
			switch {
			case errors.Is(err, bookingRepo.ErrStatusChanged):
				uc.logger.Warn("TransitionBooking: booking id=%d changed concurrently", booking.ID)
				return ErrConcurrentUpdate
			case errors.Is(err, bookingRepo.ErrBookingNotFound):
				return ErrBookingNotFound
			}
			uc.logger.Error("TransitionBooking: failed to update booking id=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to update booking: %v", ErrInternal, err)
		}

		// 3.6. Событие для ленты уведомлений
		event, err := domain.NewBookingEvent(updated, booking.Status, req.Actor)
		if err != nil {
			return fmt.Errorf("%w: failed to build event: %v", ErrInternal, err)
		}
		if err := uc.outboxRepo.Append(txCtx, event); err != nil {
			uc.logger.Error("TransitionBooking: failed to append outbox event: %v", err)
			return fmt.Errorf("%w: failed to append event: %v", ErrInternal, err)
		}

		result = updated
		previous = booking.Status
		return nil
	})

	if err != nil {
		if isTaxonomyError(err) {
			return nil, err
		}
		uc.logger.Error("TransitionBooking: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	uc.metrics.IncBookingTransition(string(previous), string(result.Status))
	uc.logger.Info("TransitionBooking: booking id=%d %s -> %s", result.ID, previous, result.Status)

	return &Response{Booking: result, PreviousStatus: previous}, nil
}

// checkParty проверяет, что актор является клиентом бронирования или владельцем бизнеса.
// Ошибка не раскрывает, кому принадлежит бронирование.
func (uc *UseCase) checkParty(ctx context.Context, booking *domain.Booking, actor domain.Actor) error {
	var business *domain.Business

	if actor.Role == domain.RoleBusiness {
		b, err := uc.businessRepo.GetBusiness(ctx, booking.BusinessID)
		if err != nil && !errors.Is(err, catalogRepo.ErrBusinessNotFound) {
			uc.logger.Error("TransitionBooking: failed to get business id=%d: %v", booking.BusinessID, err)
			return fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
		}
		business = b
	}

	if !booking.BelongsTo(actor, business) {
		uc.logger.Warn("TransitionBooking: actor %d (%s) is not a party of booking id=%d",
			actor.ID, actor.Role, booking.ID)
		return ErrAccessDenied
	}
	return nil
}

func isTaxonomyError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrAuthorization) ||
		errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrUnavailable)
}
