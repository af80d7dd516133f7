package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// Repository каталог: бизнесы, услуги, сотрудники, расписание и блокировки дат
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetBusiness получает бизнес по ID
func (r *Repository) GetBusiness(ctx context.Context, id int64) (*domain.Business, error) {
	return r.getBusiness(ctx, "GetBusiness", squirrel.Eq{"id": id})
}

// GetBusinessByOwner получает бизнес владельца (у владельца ровно один бизнес)
func (r *Repository) GetBusinessByOwner(ctx context.Context, ownerID int64) (*domain.Business, error) {
	return r.getBusiness(ctx, "GetBusinessByOwner", squirrel.Eq{"owner_id": ownerID})
}

func (r *Repository) getBusiness(ctx context.Context, op string, where squirrel.Eq) (*domain.Business, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "owner_id", "name", "created_at").
		From("businesses").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	var business domain.Business
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&business.ID,
		&business.OwnerID,
		&business.Name,
		&business.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBusinessNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan business: %v", ErrScanRow, op, err)
	}

	return &business, nil
}

// GetService получает услугу бизнеса
func (r *Repository) GetService(ctx context.Context, businessID, serviceID int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"business_id",
		"name",
		"duration_minutes",
		"price_minor_units",
		"is_active",
	).
		From("services").
		Where(squirrel.Eq{"id": serviceID, "business_id": businessID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var service domain.Service
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&service.ID,
		&service.BusinessID,
		&service.Name,
		&service.DurationMinutes,
		&service.PriceMinorUnits,
		&service.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %v", ErrScanRow, err)
	}

	return &service, nil
}

// UpdateService сохраняет длительность и цену услуги.
// Уже созданные бронирования хранят свой снимок и не меняются.
func (r *Repository) UpdateService(ctx context.Context, service *domain.Service) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("services").
		Set("duration_minutes", service.DurationMinutes).
		Set("price_minor_units", service.PriceMinorUnits).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": service.ID, "business_id": service.BusinessID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateService - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateService - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateService - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return nil, ErrServiceNotFound
	}

	return service, nil
}

// GetStaff получает сотрудника бизнеса вместе со списком услуг, которые он оказывает
func (r *Repository) GetStaff(ctx context.Context, businessID, staffID int64) (*domain.Staff, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"s.id",
		"s.business_id",
		"s.name",
		"s.is_active",
		"COALESCE(array_agg(ss.service_id) FILTER (WHERE ss.service_id IS NOT NULL), '{}')",
	).
		From("staff s").
		LeftJoin("staff_services ss ON ss.staff_id = s.id").
		Where(squirrel.Eq{"s.id": staffID, "s.business_id": businessID}).
		GroupBy("s.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaff - build select query: %v", ErrBuildQuery, err)
	}

	var (
		staff      domain.Staff
		serviceIDs pq.Int64Array
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&staff.ID,
		&staff.BusinessID,
		&staff.Name,
		&staff.IsActive,
		&serviceIDs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaff - scan staff: %v", ErrScanRow, err)
	}

	staff.ServiceIDs = []int64(serviceIDs)
	return &staff, nil
}

// GetWeeklyHours возвращает все рабочие интервалы бизнеса по дням недели
func (r *Repository) GetWeeklyHours(ctx context.Context, businessID int64) (domain.WeeklyHours, error) {
	return r.selectHours(ctx, "GetWeeklyHours", squirrel.Eq{"business_id": businessID})
}

// GetWorkingIntervals возвращает рабочие интервалы бизнеса на день недели
func (r *Repository) GetWorkingIntervals(ctx context.Context, businessID int64, weekday time.Weekday) ([]domain.WorkingInterval, error) {
	hours, err := r.selectHours(ctx, "GetWorkingIntervals", squirrel.Eq{"business_id": businessID, "weekday": int(weekday)})
	if err != nil {
		return nil, err
	}
	return hours[weekday], nil
}

// ReplaceWeeklyHours полностью заменяет расписание бизнеса.
// Должен вызываться в транзакции, иначе чтение может увидеть пустое расписание.
func (r *Repository) ReplaceWeeklyHours(ctx context.Context, businessID int64, hours domain.WeeklyHours) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("working_hours").
		Where(squirrel.Eq{"business_id": businessID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceWeeklyHours - build delete query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceWeeklyHours - execute delete: %v", ErrExecQuery, err)
	}

	insert := psqlbuilder.Insert("working_hours").Columns("business_id", "weekday", "open_time", "close_time")
	rowsCount := 0
	for weekday, intervals := range hours {
		for _, interval := range intervals {
			insert = insert.Values(businessID, int(weekday), interval.Open, interval.Close)
			rowsCount++
		}
	}
	if rowsCount == 0 {
		return nil
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceWeeklyHours - build insert query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceWeeklyHours - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// ListEmergencyBlocks возвращает блокировки, пересекающиеся с периодом [from, to].
// nil границы означают отсутствие ограничения.
func (r *Repository) ListEmergencyBlocks(ctx context.Context, businessID int64, from, to *time.Time) ([]domain.EmergencyBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "business_id", "start_date", "end_date", "reason", "created_at").
		From("emergency_blocks").
		Where(squirrel.Eq{"business_id": businessID}).
		OrderBy("start_date ASC", "id ASC")

	if from != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"end_date": from.Format(domain.DateFormat)})
	}
	if to != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"start_date": to.Format(domain.DateFormat)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListEmergencyBlocks - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListEmergencyBlocks - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	blocks := make([]domain.EmergencyBlock, 0)
	for rows.Next() {
		var block domain.EmergencyBlock
		if err := rows.Scan(
			&block.ID,
			&block.BusinessID,
			&block.StartDate,
			&block.EndDate,
			&block.Reason,
			&block.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: ListEmergencyBlocks - scan row: %v", ErrScanRow, err)
		}
		blocks = append(blocks, block)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListEmergencyBlocks - rows error: %v", ErrScanRow, err)
	}

	return blocks, nil
}

// CreateEmergencyBlock сохраняет блокировку дат
func (r *Repository) CreateEmergencyBlock(ctx context.Context, block *domain.EmergencyBlock) (*domain.EmergencyBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("emergency_blocks").
		Columns("business_id", "start_date", "end_date", "reason").
		Values(
			block.BusinessID,
			block.StartDate.Format(domain.DateFormat),
			block.EndDate.Format(domain.DateFormat),
			block.Reason,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateEmergencyBlock - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&block.ID, &block.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: CreateEmergencyBlock - execute insert: %v", ErrExecQuery, err)
	}

	return block, nil
}

// DeleteEmergencyBlock удаляет блокировку дат бизнеса
func (r *Repository) DeleteEmergencyBlock(ctx context.Context, businessID, blockID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("emergency_blocks").
		Where(squirrel.Eq{"id": blockID, "business_id": businessID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteEmergencyBlock - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteEmergencyBlock - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteEmergencyBlock - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBlockNotFound
	}

	return nil
}

func (r *Repository) selectHours(ctx context.Context, op string, where squirrel.Eq) (domain.WeeklyHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"weekday",
		"to_char(open_time, 'HH24:MI')",
		"to_char(close_time, 'HH24:MI')",
	).
		From("working_hours").
		Where(where).
		OrderBy("weekday ASC", "open_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	hours := make(domain.WeeklyHours)
	for rows.Next() {
		var (
			weekday  int
			interval domain.WorkingInterval
		)
		if err := rows.Scan(&weekday, &interval.Open, &interval.Close); err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		day := time.Weekday(weekday)
		hours[day] = append(hours[day], interval)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return hours, nil
}
