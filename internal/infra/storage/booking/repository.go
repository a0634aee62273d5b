package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/psqlbuilder"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

var bookingColumns = []string{
	"id",
	"kind",
	"resource_id",
	"client_id",
	"status",
	"service_id",
	"service_name",
	"booking_date",
	"start_time",
	"duration_minutes",
	"check_in_date",
	"check_out_date",
	"guest_count",
	"reminder_flags",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"checked_in_at",
	"checked_out_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Пересечение с активным бронированием того же ресурса отклоняется
// exclusion-ограничением и возвращается как ErrOverlap.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	period, err := periodLiteral(booking)
	if err != nil {
		return nil, err
	}

	insert := psqlbuilder.Insert("bookings").
		Columns(
			"kind",
			"resource_id",
			"client_id",
			"status",
			"service_id",
			"service_name",
			"booking_date",
			"start_time",
			"duration_minutes",
			"check_in_date",
			"check_out_date",
			"guest_count",
			"period",
			"reminder_flags",
			"notes",
		)

	switch {
	case booking.Appointment != nil:
		a := booking.Appointment
		insert = insert.Values(
			booking.Kind, booking.ResourceID, booking.ClientID, booking.Status,
			a.ServiceID, a.ServiceName, dateParam(a.Date), a.StartTime.String(), a.DurationMinutes,
			nil, nil, nil,
			squirrel.Expr("?::tsrange", period), booking.ReminderFlags, booking.Notes,
		)
	case booking.Reservation != nil:
		rs := booking.Reservation
		insert = insert.Values(
			booking.Kind, booking.ResourceID, booking.ClientID, booking.Status,
			nil, nil, nil, nil, nil,
			dateParam(rs.CheckInDate), dateParam(rs.CheckOutDate), rs.GuestCount,
			squirrel.Expr("?::tsrange", period), booking.ReminderFlags, booking.Notes,
		)
	}

	query, args, err := insert.Suffix("RETURNING id, created_at, updated_at").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, execError("Create - execute insert", err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID.
// Внутри транзакции строка блокируется (FOR UPDATE).
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// GetActiveByResource возвращает активные бронирования ресурса, пересекающие
// диапазон дат [from, to). Внутри транзакции строки блокируются, чтобы проверка
// конфликта и запись были одной операцией.
func (r *Repository) GetActiveByResource(ctx context.Context, resourceID int64, from, to time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"resource_id": resourceID}).
		Where(squirrel.Eq{"status": statusStrings(domain.AllActiveStatuses)}).
		Where(squirrel.Expr("period && ?::tsrange", dateRangeLiteral(from, to))).
		OrderBy("lower(period) ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByResource - build select query: %v", ErrBuildQuery, err)
	}

	return r.query(ctx, executor, "GetActiveByResource", query, args)
}

// ListByResource календарь ресурса с фильтрацией по периоду и статусу
func (r *Repository) ListByResource(ctx context.Context, filter domain.ResourceBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"resource_id": filter.ResourceID})

	// Фильтрация по периоду: бронирование попадает, если пересекает [StartDate, EndDate]
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.Expr("upper(period) > ?::timestamp", dateParam(*filter.StartDate)))
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.Expr("lower(period) < ?::timestamp", dateParam(filter.EndDate.AddDate(0, 0, 1))))
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings(domain.AllActiveStatuses)})
	}

	query, args, err := selectBuilder.OrderBy("lower(period) ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByResource - build select query: %v", ErrBuildQuery, err)
	}

	return r.query(ctx, executor, "ListByResource", query, args)
}

// ListByClient история бронирований клиента, новые первыми
func (r *Repository) ListByClient(ctx context.Context, filter domain.ClientBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"client_id": filter.ClientID}).
		OrderBy("lower(period) DESC")

	if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings(domain.AllActiveStatuses)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByClient - build select query: %v", ErrBuildQuery, err)
	}

	return r.query(ctx, executor, "ListByClient", query, args)
}

// UpdateWindow записывает новое окно и снимает устаревшие флаги напоминаний одним UPDATE.
// Статус не меняется; запись проходит, только если бронирование всё ещё активно.
func (r *Repository) UpdateWindow(ctx context.Context, booking *domain.Booking, staleFlags domain.ReminderFlags) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	period, err := periodLiteral(booking)
	if err != nil {
		return err
	}

	update := psqlbuilder.Update("bookings").
		Set("period", squirrel.Expr("?::tsrange", period)).
		Set("reminder_flags", squirrel.Expr("reminder_flags & ~?::int", int(staleFlags))).
		Set("updated_at", squirrel.Expr("NOW()"))

	switch {
	case booking.Appointment != nil:
		a := booking.Appointment
		update = update.
			Set("booking_date", dateParam(a.Date)).
			Set("start_time", a.StartTime.String()).
			Set("duration_minutes", a.DurationMinutes)
	case booking.Reservation != nil:
		rs := booking.Reservation
		update = update.
			Set("check_in_date", dateParam(rs.CheckInDate)).
			Set("check_out_date", dateParam(rs.CheckOutDate)).
			Set("guest_count", rs.GuestCount)
	}

	query, args, err := update.
		Where(squirrel.Eq{"id": booking.ID}).
		Where(squirrel.Eq{"status": statusStrings(domain.AllActiveStatuses)}).
		Suffix("RETURNING reminder_flags, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateWindow - build update query: %v", ErrBuildQuery, err)
	}

	var updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.ReminderFlags, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrStatusChanged
	}
	if err != nil {
		return execError("UpdateWindow - execute update", err)
	}
	booking.UpdatedAt = updatedAt.Time

	return nil
}

// UpdateStatus записывает статус и сопутствующие поля перехода одним UPDATE.
// Условие status = from защищает от перехода по устаревшему состоянию.
func (r *Repository) UpdateStatus(ctx context.Context, booking *domain.Booking, from domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", booking.Status).
		Set("notes", booking.Notes).
		Set("cancellation_reason", booking.CancellationReason).
		Set("cancelled_at", booking.CancelledAt).
		Set("checked_in_at", booking.CheckedInAt).
		Set("checked_out_at", booking.CheckedOutAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": booking.ID, "status": from}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	var updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrStatusChanged
	}
	if err != nil {
		return execError("UpdateStatus - execute update", err)
	}
	booking.UpdatedAt = updatedAt.Time

	return nil
}

// MarkReminderSent атомарно выставляет флаг напоминания.
// Возвращает false, если флаг уже стоял или бронирование перестало быть активным.
func (r *Repository) MarkReminderSent(ctx context.Context, id int64, flag domain.ReminderFlags) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("reminder_flags", squirrel.Expr("reminder_flags | ?::int", int(flag))).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Expr("reminder_flags & ?::int = 0", int(flag))).
		Where(squirrel.Eq{"status": statusStrings(domain.AllActiveStatuses)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: MarkReminderSent - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, execError("MarkReminderSent - execute update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: MarkReminderSent - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// ListAppointmentsByDate активные записи с датой в [from, to] без флага missing
func (r *Repository) ListAppointmentsByDate(ctx context.Context, from, to time.Time, missing domain.ReminderFlags) ([]*domain.Booking, error) {
	return r.listForSweep(ctx, "ListAppointmentsByDate",
		squirrel.Eq{"kind": domain.KindAppointment},
		squirrel.Eq{"status": statusStrings(domain.ActiveStatuses(domain.KindAppointment))},
		squirrel.Expr("booking_date BETWEEN ?::date AND ?::date", dateParam(from), dateParam(to)),
		squirrel.Expr("reminder_flags & ?::int = 0", int(missing)),
	)
}

// ListReservationsByCheckIn подтверждённые проживания с заездом в [from, to] без флага missing
func (r *Repository) ListReservationsByCheckIn(ctx context.Context, from, to time.Time, missing domain.ReminderFlags) ([]*domain.Booking, error) {
	return r.listForSweep(ctx, "ListReservationsByCheckIn",
		squirrel.Eq{"kind": domain.KindReservation},
		squirrel.Eq{"status": domain.StatusConfirmed},
		squirrel.Expr("check_in_date BETWEEN ?::date AND ?::date", dateParam(from), dateParam(to)),
		squirrel.Expr("reminder_flags & ?::int = 0", int(missing)),
	)
}

// ListCheckedInDueOut заселённые проживания с выездом не позже until без флага missing
func (r *Repository) ListCheckedInDueOut(ctx context.Context, until time.Time, missing domain.ReminderFlags) ([]*domain.Booking, error) {
	return r.listForSweep(ctx, "ListCheckedInDueOut",
		squirrel.Eq{"kind": domain.KindReservation},
		squirrel.Eq{"status": domain.StatusCheckedIn},
		squirrel.Expr("check_out_date <= ?::date", dateParam(until)),
		squirrel.Expr("reminder_flags & ?::int = 0", int(missing)),
	)
}

func (r *Repository) listForSweep(ctx context.Context, op string, conds ...squirrel.Sqlizer) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).From("bookings")
	for _, c := range conds {
		selectBuilder = selectBuilder.Where(c)
	}

	query, args, err := selectBuilder.OrderBy("lower(period) ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	return r.query(ctx, executor, op, query, args)
}

// Delete удаляет бронирование (физическое удаление)
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return execError("Delete - execute delete", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func (r *Repository) query(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) ([]*domain.Booking, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, execError(op+" - execute query", err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %w", ErrScanRow, op, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, err)
	}

	return bookings, nil
}

// scanBooking собирает вариант бронирования из nullable-колонок
func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b               domain.Booking
		serviceID       sql.NullInt64
		serviceName     sql.NullString
		bookingDate     sql.NullTime
		startTime       sql.NullString
		durationMinutes sql.NullInt64
		checkInDate     sql.NullTime
		checkOutDate    sql.NullTime
		guestCount      sql.NullInt64
		createdAt       sql.NullTime
		updatedAt       sql.NullTime
	)

	err := row.Scan(
		&b.ID,
		&b.Kind,
		&b.ResourceID,
		&b.ClientID,
		&b.Status,
		&serviceID,
		&serviceName,
		&bookingDate,
		&startTime,
		&durationMinutes,
		&checkInDate,
		&checkOutDate,
		&guestCount,
		&b.ReminderFlags,
		&b.Notes,
		&b.CancellationReason,
		&b.CancelledAt,
		&b.CheckedInAt,
		&b.CheckedOutAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	switch b.Kind {
	case domain.KindAppointment:
		start, err := types.NewTimeStringFromString(startTime.String)
		if err != nil {
			return nil, fmt.Errorf("booking %d start_time: %w", b.ID, err)
		}
		b.Appointment = &domain.AppointmentDetails{
			ServiceID:       serviceID.Int64,
			ServiceName:     serviceName.String,
			Date:            bookingDate.Time,
			StartTime:       start,
			DurationMinutes: int(durationMinutes.Int64),
		}
	case domain.KindReservation:
		b.Reservation = &domain.ReservationDetails{
			CheckInDate:  checkInDate.Time,
			CheckOutDate: checkOutDate.Time,
			GuestCount:   int(guestCount.Int64),
		}
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

// execError сохраняет цепочку *pq.Error для классификации в txmanager
func execError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeExclusion {
		return fmt.Errorf("%w: %s: %v", ErrOverlap, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrExecQuery, op, err)
}

func statusStrings(statuses []domain.BookingStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}
