package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/availability"
	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/booking"
	resourceRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/resource"
)

// UseCase use case для переноса бронирования на новое окно
type UseCase struct {
	bookingRepo   BookingRepository
	resourceRepo  ResourceRepository
	notifier      Notifier
	txManager     TransactionManager
	policy        domain.BookingPolicy
	timeProvider  TimeProvider
	notifyTimeout time.Duration
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	resourceRepo ResourceRepository,
	notifier Notifier,
	txManager TransactionManager,
	policy domain.BookingPolicy,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		resourceRepo:  resourceRepo,
		notifier:      notifier,
		txManager:     txManager,
		policy:        policy,
		timeProvider:  &RealTimeProvider{},
		notifyTimeout: domain.DefaultNotifyTimeout,
		logger:        logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// WithNotifyTimeout ограничивает ожидание уведомления после коммита
func (uc *UseCase) WithNotifyTimeout(d time.Duration) *UseCase {
	if d > 0 {
		uc.notifyTimeout = d
	}
	return uc
}

// Execute переносит активное бронирование. Статус не меняется, флаги
// напоминаний, привязанные к старому окну, сбрасываются в том же запросе.
// При конфликте бронирование остаётся как было.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: booking=%d", req.BookingID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	var result *domain.Booking

	// 3. Проверка и запись в одной сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Бронирование под блокировкой
		current, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("RescheduleBooking: booking id=%d not found", req.BookingID)
				return fmt.Errorf("%w: booking %d", domain.ErrBookingNotFound, req.BookingID)
			}
			uc.logger.Error("RescheduleBooking: failed to get booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %w", ErrInternal, err)
		}

		// 3.2. Переносить можно только активное бронирование
		if !current.CanBeRescheduled() {
			uc.logger.Warn("RescheduleBooking: booking id=%d in status %s cannot be rescheduled", current.ID, current.Status)
			return fmt.Errorf("%w: booking %d in status %s cannot be rescheduled",
				domain.ErrInvalidTransition, current.ID, current.Status)
		}

		// 3.3. Ресурс должен быть активен
		resource, err := uc.resourceRepo.GetByID(txCtx, current.ResourceID)
		if err != nil {
			if errors.Is(err, resourceRepo.ErrResourceNotFound) {
				return domain.ResourceUnavailableError(current.ResourceID)
			}
			uc.logger.Error("RescheduleBooking: failed to get resource id=%d: %v", current.ResourceID, err)
			return fmt.Errorf("%w: failed to get resource: %w", ErrInternal, err)
		}
		if !resource.IsActive {
			uc.logger.Warn("RescheduleBooking: resource id=%d is inactive", resource.ID)
			return domain.ResourceUnavailableError(resource.ID)
		}

		// 3.4. Новое окно
		updated, err := uc.moveWindow(txCtx, req, current, resource, now.In(resource.Location()))
		if err != nil {
			return err
		}
		window := updated.Window()

		// 3.5. Пересечения без учёта самого бронирования
		from, to := coveredDates(updated)
		existing, err := uc.bookingRepo.GetActiveByResource(txCtx, resource.ID, from, to)
		if err != nil {
			uc.logger.Error("RescheduleBooking: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %w", ErrInternal, err)
		}
		if conflict := availability.FindConflict(window, existing, current.ID); conflict != nil {
			uc.logger.Warn("RescheduleBooking: resource=%d window %s overlaps booking id=%d",
				resource.ID, window, conflict.ID)
			return domain.SlotUnavailableError(resource.ID, window, conflict)
		}

		// 3.6. Окно и флаги одним запросом
		stale := domain.StaleReminders(current, updated)
		if err := uc.bookingRepo.UpdateWindow(txCtx, updated, stale); err != nil {
			switch {
			case errors.Is(err, bookingRepo.ErrOverlap):
				uc.logger.Warn("RescheduleBooking: resource=%d window %s rejected by storage", resource.ID, window)
				return domain.SlotUnavailableError(resource.ID, window, nil)
			case errors.Is(err, bookingRepo.ErrStatusChanged):
				uc.logger.Warn("RescheduleBooking: booking id=%d is no longer active", current.ID)
				return fmt.Errorf("%w: booking %d is no longer active", domain.ErrInvalidTransition, current.ID)
			}
			uc.logger.Error("RescheduleBooking: failed to update booking id=%d: %v", current.ID, err)
			return fmt.Errorf("%w: failed to update booking: %w", ErrInternal, err)
		}

		uc.logger.Info("RescheduleBooking: booking id=%d moved %s -> %s, cleared reminders: %s",
			current.ID, current.Window(), window, stale)
		result = updated
		return nil
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	// 4. Уведомление после коммита
	if err := uc.notify(ctx, result, domain.TemplateBookingRescheduled); err != nil {
		uc.logger.Warn("RescheduleBooking: %v: booking id=%d: %v", domain.ErrNotifyFailure, result.ID, err)
	}

	return &Response{Booking: result}, nil
}

// moveWindow возвращает копию бронирования с новым окном
func (uc *UseCase) moveWindow(ctx context.Context, req *Request, current *domain.Booking, resource *domain.Resource, localNow time.Time) (*domain.Booking, error) {
	updated := current.Clone()

	switch current.Kind {
	case domain.KindAppointment:
		if err := validateAppointment(req); err != nil {
			uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
			return nil, err
		}
		updated.Appointment.Date = req.Date
		updated.Appointment.StartTime = req.StartTime

		if err := uc.policy.CheckDate(req.Date, localNow); err != nil {
			uc.logger.Warn("RescheduleBooking: date validation failed: %v", err)
			return nil, err
		}
		if err := uc.policy.CheckNotice(updated.Appointment.StartsAt(localNow.Location()), localNow); err != nil {
			uc.logger.Warn("RescheduleBooking: booking time validation failed: %v", err)
			return nil, err
		}

		schedule, err := uc.resourceRepo.GetSchedule(ctx, resource.ID)
		if err != nil {
			uc.logger.Error("RescheduleBooking: failed to get schedule for resource id=%d: %v", resource.ID, err)
			return nil, fmt.Errorf("%w: failed to get schedule: %w", ErrInternal, err)
		}
		if !availability.FitsSchedule(schedule, req.Date, req.StartTime, updated.Appointment.DurationMinutes) {
			uc.logger.Warn("RescheduleBooking: window %s is outside working hours of resource id=%d", updated.Window(), resource.ID)
			return nil, fmt.Errorf("%w: resource %d window %s is outside working hours",
				domain.ErrInvalidWindow, resource.ID, updated.Window())
		}

	case domain.KindReservation:
		if req.CheckOutDate.IsZero() {
			return nil, fmt.Errorf("%w: checkOutDate is required", domain.ErrInvalidInput)
		}

		if current.Status == domain.StatusCheckedIn {
			// Гость уже заехал: двигается только выезд
			if !req.CheckInDate.IsZero() && domain.DayIndex(req.CheckInDate) != domain.DayIndex(current.Reservation.CheckInDate) {
				uc.logger.Warn("RescheduleBooking: booking id=%d is checked in, check-in date is fixed", current.ID)
				return nil, fmt.Errorf("%w: booking %d is checked in, only check-out date may change",
					domain.ErrInvalidWindow, current.ID)
			}
			if domain.DayIndex(req.CheckOutDate) < domain.DayIndex(localNow) {
				return nil, fmt.Errorf("%w: check-out %s", domain.ErrDateInPast, req.CheckOutDate.Format(domain.DateFormat))
			}
		} else {
			if req.CheckInDate.IsZero() {
				return nil, fmt.Errorf("%w: checkInDate is required", domain.ErrInvalidInput)
			}
			updated.Reservation.CheckInDate = req.CheckInDate
			if err := uc.policy.CheckDate(req.CheckInDate, localNow); err != nil {
				uc.logger.Warn("RescheduleBooking: check-in date validation failed: %v", err)
				return nil, err
			}
		}
		updated.Reservation.CheckOutDate = req.CheckOutDate

		if err := validateStay(updated.Reservation); err != nil {
			uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: booking %d has unknown kind %q", ErrInternal, current.ID, current.Kind)
	}

	return updated, nil
}

// coveredDates диапазон дат [from, to), который занимает бронирование
func coveredDates(b *domain.Booking) (time.Time, time.Time) {
	if b.Reservation != nil {
		return b.Reservation.CheckInDate, b.Reservation.CheckOutDate
	}
	day := b.Appointment.Date
	return day, day.AddDate(0, 0, 1)
}

// notify отправляет уведомление вне отмены запроса, но не дольше notifyTimeout
func (uc *UseCase) notify(ctx context.Context, b *domain.Booking, template domain.TemplateKind) error {
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.notifyTimeout)
	defer cancel()
	return uc.notifier.Notify(notifyCtx, b, template)
}
