package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Service сервис управления расписанием и услугами бизнеса
type Service struct {
	catalogRepo  CatalogRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewService создает новый экземпляр сервиса каталога
func NewService(
	catalogRepo CatalogRepository,
	txManager TransactionManager,
	location *time.Location,
	logger Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		catalogRepo:  catalogRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		location:     location,
		logger:       logger,
	}
}

// GetSchedule возвращает недельное расписание и предстоящие блокировки дат
// Публичный метод - доступен всем
func (s *Service) GetSchedule(ctx context.Context, businessID int64) (*models.ScheduleResponse, error) {
	s.logger.Info("GetSchedule: fetching schedule for business=%d", businessID)

	if _, err := s.getBusiness(ctx, "GetSchedule", businessID); err != nil {
		return nil, err
	}

	today := domain.DateOnly(s.timeProvider.Now().In(s.location))

	var (
		hours  domain.WeeklyHours
		blocks []domain.EmergencyBlock
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hours, err = s.catalogRepo.GetWeeklyHours(gCtx, businessID)
		return err
	})
	g.Go(func() error {
		var err error
		blocks, err = s.catalogRepo.ListEmergencyBlocks(gCtx, businessID, &today, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("GetSchedule: repository error for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: GetSchedule - repository error: %v", ErrInternal, err)
	}

	resp := &models.ScheduleResponse{
		BusinessID:      businessID,
		WeeklyHours:     models.FromDomainWeeklyHours(hours),
		EmergencyBlocks: make([]models.EmergencyBlockResponse, 0, len(blocks)),
	}
	for i := range blocks {
		resp.EmergencyBlocks = append(resp.EmergencyBlocks, *models.FromDomainEmergencyBlock(&blocks[i]))
	}

	s.logger.Info("GetSchedule: business=%d has %d intervals and %d upcoming blocks",
		businessID, len(resp.WeeklyHours), len(resp.EmergencyBlocks))
	return resp, nil
}

// ReplaceWeeklyHours полностью заменяет недельное расписание бизнеса
// Доступно только владельцу бизнеса
// Существующие бронирования не затрагиваются
func (s *Service) ReplaceWeeklyHours(ctx context.Context, req *models.ReplaceWeeklyHoursRequest) ([]models.WorkingIntervalDTO, error) {
	s.logger.Info("ReplaceWeeklyHours: business=%d, %d intervals by actor=%d",
		req.BusinessID, len(req.Intervals), req.Actor.ID)

	// 1. Валидируем интервалы
	hours, err := buildWeeklyHours(req.Intervals)
	if err != nil {
		s.logger.Warn("ReplaceWeeklyHours: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем права доступа (только владелец бизнеса)
	if _, err := s.ownedBusiness(ctx, "ReplaceWeeklyHours", req.Actor, req.BusinessID); err != nil {
		return nil, err
	}

	// 3. Удаление и вставка в одной транзакции
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		return s.catalogRepo.ReplaceWeeklyHours(txCtx, req.BusinessID, hours)
	})
	if err != nil {
		s.logger.Error("ReplaceWeeklyHours: repository error for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: ReplaceWeeklyHours - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ReplaceWeeklyHours: successfully replaced schedule of business=%d", req.BusinessID)
	return models.FromDomainWeeklyHours(hours), nil
}

// CreateEmergencyBlock закрывает бизнес на период дат
// Доступно только владельцу бизнеса
// Блокировка не отменяет уже существующие бронирования
func (s *Service) CreateEmergencyBlock(ctx context.Context, req *models.CreateEmergencyBlockRequest) (*models.EmergencyBlockResponse, error) {
	s.logger.Info("CreateEmergencyBlock: business=%d, %s..%s by actor=%d",
		req.BusinessID, req.StartDate, req.EndDate, req.Actor.ID)

	// 1. Валидируем период
	block, err := buildEmergencyBlock(req)
	if err != nil {
		s.logger.Warn("CreateEmergencyBlock: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем права доступа
	if _, err := s.ownedBusiness(ctx, "CreateEmergencyBlock", req.Actor, req.BusinessID); err != nil {
		return nil, err
	}

	// 3. Сохраняем блокировку
	created, err := s.catalogRepo.CreateEmergencyBlock(ctx, block)
	if err != nil {
		s.logger.Error("CreateEmergencyBlock: repository error for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: CreateEmergencyBlock - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateEmergencyBlock: successfully created block id=%d", created.ID)
	return models.FromDomainEmergencyBlock(created), nil
}

// DeleteEmergencyBlock снимает блокировку дат
// Доступно только владельцу бизнеса
func (s *Service) DeleteEmergencyBlock(ctx context.Context, actor domain.Actor, businessID, blockID int64) error {
	s.logger.Info("DeleteEmergencyBlock: business=%d, block=%d by actor=%d", businessID, blockID, actor.ID)

	if _, err := s.ownedBusiness(ctx, "DeleteEmergencyBlock", actor, businessID); err != nil {
		return err
	}

	if err := s.catalogRepo.DeleteEmergencyBlock(ctx, businessID, blockID); err != nil {
		if errors.Is(err, catalogRepo.ErrBlockNotFound) {
			s.logger.Warn("DeleteEmergencyBlock: block id=%d not found in business=%d", blockID, businessID)
			return ErrBlockNotFound
		}
		s.logger.Error("DeleteEmergencyBlock: repository error for block id=%d: %v", blockID, err)
		return fmt.Errorf("%w: DeleteEmergencyBlock - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteEmergencyBlock: successfully deleted block id=%d", blockID)
	return nil
}

// UpdateService меняет длительность и/или цену услуги
// Доступно только владельцу бизнеса
// Бронирования хранят снимок услуги, поэтому изменение их не затрагивает
func (s *Service) UpdateService(ctx context.Context, req *models.UpdateServiceRequest) (*models.ServiceResponse, error) {
	s.logger.Info("UpdateService: business=%d, service=%d by actor=%d", req.BusinessID, req.ServiceID, req.Actor.ID)

	if req.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	// 1. Проверяем права доступа
	if _, err := s.ownedBusiness(ctx, "UpdateService", req.Actor, req.BusinessID); err != nil {
		return nil, err
	}

	// 2. Получаем текущую услугу
	service, err := s.catalogRepo.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			s.logger.Warn("UpdateService: service id=%d not found in business=%d", req.ServiceID, req.BusinessID)
			return nil, ErrServiceNotFound
		}
		s.logger.Error("UpdateService: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 3. Применяем изменения и валидируем результат
	req.ApplyToService(service)
	if err := validateService(service); err != nil {
		s.logger.Warn("UpdateService: validation failed for service id=%d: %v", req.ServiceID, err)
		return nil, err
	}

	// 4. Сохраняем
	updated, err := s.catalogRepo.UpdateService(ctx, service)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		s.logger.Error("UpdateService: repository error for service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: UpdateService - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateService: service id=%d now %d min, %d minor units",
		updated.ID, updated.DurationMinutes, updated.PriceMinorUnits)
	return models.FromDomainService(updated), nil
}

// Вспомогательные методы

func (s *Service) getBusiness(ctx context.Context, op string, businessID int64) (*domain.Business, error) {
	business, err := s.catalogRepo.GetBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrBusinessNotFound) {
			s.logger.Warn("%s: business id=%d not found", op, businessID)
			return nil, ErrBusinessNotFound
		}
		s.logger.Error("%s: failed to get business id=%d: %v", op, businessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}
	return business, nil
}

// ownedBusiness возвращает бизнес, если актор его владелец
func (s *Service) ownedBusiness(ctx context.Context, op string, actor domain.Actor, businessID int64) (*domain.Business, error) {
	business, err := s.getBusiness(ctx, op, businessID)
	if err != nil {
		return nil, err
	}
	if !business.IsOwnedBy(actor) {
		s.logger.Warn("%s: actor=%d (%s) is not the owner of business=%d", op, actor.ID, actor.Role, businessID)
		return nil, ErrAccessDenied
	}
	return business, nil
}

// buildWeeklyHours валидирует интервалы: open < close, без пересечений внутри дня
func buildWeeklyHours(dtos []models.WorkingIntervalDTO) (domain.WeeklyHours, error) {
	hours := make(domain.WeeklyHours)

	for _, dto := range dtos {
		if dto.Weekday < int(time.Sunday) || dto.Weekday > int(time.Saturday) {
			return nil, fmt.Errorf("%w: weekday must be between 0 and 6, got %d", ErrInvalidInput, dto.Weekday)
		}
		open, err := types.NewTimeStringFromString(dto.Open)
		if err != nil {
			return nil, fmt.Errorf("%w: open: %v", ErrInvalidInput, err)
		}
		closeAt, err := types.NewTimeStringFromString(dto.Close)
		if err != nil {
			return nil, fmt.Errorf("%w: close: %v", ErrInvalidInput, err)
		}
		if !open.IsBefore(closeAt) {
			return nil, fmt.Errorf("%w: interval %s-%s must open before it closes", ErrInvalidInput, open, closeAt)
		}

		weekday := time.Weekday(dto.Weekday)
		hours[weekday] = append(hours[weekday], domain.WorkingInterval{Open: open, Close: closeAt})
	}

	for weekday, intervals := range hours {
		sort.Slice(intervals, func(i, j int) bool {
			return intervals[i].Open.IsBefore(intervals[j].Open)
		})
		for i := 1; i < len(intervals); i++ {
			if intervals[i].Open.IsBefore(intervals[i-1].Close) {
				return nil, fmt.Errorf("%w: intervals %s-%s and %s-%s overlap on %s", ErrInvalidInput,
					intervals[i-1].Open, intervals[i-1].Close, intervals[i].Open, intervals[i].Close, weekday)
			}
		}
	}

	return hours, nil
}

func buildEmergencyBlock(req *models.CreateEmergencyBlockRequest) (*domain.EmergencyBlock, error) {
	start, err := time.Parse(domain.DateFormat, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: startDate must be YYYY-MM-DD", ErrInvalidInput)
	}
	end, err := time.Parse(domain.DateFormat, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: endDate must be YYYY-MM-DD", ErrInvalidInput)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: endDate is before startDate", ErrInvalidInput)
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > domain.MaxEmergencyBlockDays {
		return nil, fmt.Errorf("%w: block may span at most %d days", ErrInvalidInput, domain.MaxEmergencyBlockDays)
	}
	if utf8.RuneCountInString(req.Reason) > domain.MaxBlockReasonLength {
		return nil, fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidInput, domain.MaxBlockReasonLength)
	}

	return &domain.EmergencyBlock{
		BusinessID: req.BusinessID,
		StartDate:  start,
		EndDate:    end,
		Reason:     req.Reason,
	}, nil
}

func validateService(service *domain.Service) error {
	if service.DurationMinutes < domain.MinServiceDurationMinutes || service.DurationMinutes > domain.MaxServiceDurationMinutes {
		return fmt.Errorf("%w: durationMinutes must be between %d and %d", ErrInvalidInput,
			domain.MinServiceDurationMinutes, domain.MaxServiceDurationMinutes)
	}
	if service.PriceMinorUnits < 0 || service.PriceMinorUnits > domain.MaxPriceMinorUnits {
		return fmt.Errorf("%w: priceMinorUnits must be between 0 and %d", ErrInvalidInput, domain.MaxPriceMinorUnits)
	}
	return nil
}
