package resource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/psqlbuilder"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Repository ресурсы, их расписания и услуги. Для движка только чтение,
// кроме отметки о заселении номера.
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория ресурсов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает ресурс по ID. Внутри транзакции строка блокируется,
// так что параллельные записи на один ресурс выполняются по очереди.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Resource, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"kind",
		"name",
		"is_active",
		"capacity",
		"timezone",
		"occupied_by_booking_id",
		"created_at",
		"updated_at",
	).
		From("resources").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var res domain.Resource
	var capacity sql.NullInt64
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&res.ID,
		&res.Kind,
		&res.Name,
		&res.IsActive,
		&capacity,
		&res.Timezone,
		&res.OccupiedByBookingID,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan resource: %w", ErrScanRow, err)
	}

	res.Capacity = int(capacity.Int64)
	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return &res, nil
}

// GetSchedule недельное расписание специалиста. Дни без строки считаются выходными.
func (r *Repository) GetSchedule(ctx context.Context, resourceID int64) (*domain.Schedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"weekday",
		"is_working",
		"start_time",
		"end_time",
		"break_start",
		"break_end",
	).
		From("schedules").
		Where(squirrel.Eq{"resource_id": resourceID}).
		OrderBy("weekday ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetSchedule - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetSchedule - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	days := make([]domain.DaySchedule, 0, 7)
	for rows.Next() {
		var (
			weekday                          int
			isWorking                        bool
			start, end, breakStart, breakEnd sql.NullString
		)
		if err := rows.Scan(&weekday, &isWorking, &start, &end, &breakStart, &breakEnd); err != nil {
			return nil, fmt.Errorf("%w: GetSchedule - scan row: %w", ErrScanRow, err)
		}

		day := domain.DaySchedule{Weekday: time.Weekday(weekday), IsWorking: isWorking}
		if isWorking {
			if day.StartTime, err = parseTime(start); err != nil {
				return nil, fmt.Errorf("%w: GetSchedule - start_time: %v", ErrScanRow, err)
			}
			if day.EndTime, err = parseTime(end); err != nil {
				return nil, fmt.Errorf("%w: GetSchedule - end_time: %v", ErrScanRow, err)
			}
			if breakStart.Valid && breakEnd.Valid {
				bs, err := parseTime(breakStart)
				if err != nil {
					return nil, fmt.Errorf("%w: GetSchedule - break_start: %v", ErrScanRow, err)
				}
				be, err := parseTime(breakEnd)
				if err != nil {
					return nil, fmt.Errorf("%w: GetSchedule - break_end: %v", ErrScanRow, err)
				}
				day.BreakStart, day.BreakEnd = &bs, &be
			}
		}
		days = append(days, day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetSchedule - rows error: %w", ErrScanRow, err)
	}

	return domain.NewSchedule(resourceID, days...), nil
}

// GetService получает услугу по ID
func (r *Repository) GetService(ctx context.Context, serviceID int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"professional_id",
		"name",
		"duration_minutes",
		"is_active",
	).
		From("services").
		Where(squirrel.Eq{"id": serviceID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.Service
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.ProfessionalID,
		&s.Name,
		&s.DurationMinutes,
		&s.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %w", ErrScanRow, err)
	}

	return &s, nil
}

// Occupy заселяет номер по бронированию. Номер, занятый другим
// бронированием, не перезаписывается: возвращается ErrRoomOccupied.
func (r *Repository) Occupy(ctx context.Context, resourceID, bookingID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("resources").
		Set("occupied_by_booking_id", bookingID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": resourceID, "kind": domain.ResourceRoom}).
		Where(squirrel.Or{
			squirrel.Eq{"occupied_by_booking_id": nil},
			squirrel.Eq{"occupied_by_booking_id": bookingID},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Occupy - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Occupy - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Occupy - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return r.occupancyMiss(ctx, executor, resourceID)
	}

	return nil
}

// Release освобождает номер, только если его занимает это бронирование
func (r *Repository) Release(ctx context.Context, resourceID, bookingID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("resources").
		Set("occupied_by_booking_id", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":                     resourceID,
			"kind":                   domain.ResourceRoom,
			"occupied_by_booking_id": bookingID,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Release - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Release - execute update: %w", ErrExecQuery, err)
	}

	return nil
}

// occupancyMiss различает отсутствующий номер и номер, занятый другим гостем
func (r *Repository) occupancyMiss(ctx context.Context, executor dbmetrics.DBExecutor, resourceID int64) error {
	query, args, err := psqlbuilder.Select("1").
		From("resources").
		Where(squirrel.Eq{"id": resourceID, "kind": domain.ResourceRoom}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Occupy - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrResourceNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Occupy - scan room: %w", ErrScanRow, err)
	}

	return ErrRoomOccupied
}

func parseTime(v sql.NullString) (types.TimeString, error) {
	if !v.Valid {
		return "", types.ErrInvalidFormat
	}
	return types.NewTimeStringFromString(v.String)
}
