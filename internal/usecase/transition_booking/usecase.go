package transition_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/booking"
	resourceRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/resource"
)

// UseCase use case для перевода бронирования по автомату статусов
type UseCase struct {
	bookingRepo   BookingRepository
	resourceRepo  ResourceRepository
	notifier      Notifier
	txManager     TransactionManager
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
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		resourceRepo:  resourceRepo,
		notifier:      notifier,
		txManager:     txManager,
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

// Execute выполняет переход. Недопустимый переход ничего не меняет и
// возвращает ошибку с текущим и запрошенным статусом. Заезд и выезд
// обновляют занятость номера в той же транзакции.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("TransitionBooking: booking=%d, target=%s", req.BookingID, req.Target)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("TransitionBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	var result *domain.Booking

	// 3. Проверка перехода и запись в одной транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Бронирование под блокировкой
		current, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("TransitionBooking: booking id=%d not found", req.BookingID)
				return fmt.Errorf("%w: booking %d", domain.ErrBookingNotFound, req.BookingID)
			}
			uc.logger.Error("TransitionBooking: failed to get booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %w", ErrInternal, err)
		}

		// 3.2. Ребро должно быть в списке переходов
		if !current.CanTransitionTo(req.Target) {
			uc.logger.Warn("TransitionBooking: booking id=%d cannot move from %s to %s",
				current.ID, current.Status, req.Target)
			return domain.InvalidTransitionError(current.ID, current.Status, req.Target)
		}

		// 3.3. Заезд не раньше даты заезда по времени ресурса
		if req.Target == domain.StatusCheckedIn {
			if err := uc.checkArrival(txCtx, current, now); err != nil {
				return err
			}
		}

		// 3.4. Новое состояние
		updated := apply(current, req, now)

		// 3.5. Условная запись: статус не должен был измениться с момента чтения
		if err := uc.bookingRepo.UpdateStatus(txCtx, updated, current.Status); err != nil {
			if errors.Is(err, bookingRepo.ErrStatusChanged) {
				uc.logger.Warn("TransitionBooking: booking id=%d status changed concurrently", current.ID)
				return domain.InvalidTransitionError(current.ID, current.Status, req.Target)
			}
			uc.logger.Error("TransitionBooking: failed to update booking id=%d: %v", current.ID, err)
			return fmt.Errorf("%w: failed to update booking: %w", ErrInternal, err)
		}

		// 3.6. Занятость номера
		if err := uc.syncOccupancy(txCtx, updated); err != nil {
			return err
		}

		uc.logger.Info("TransitionBooking: booking id=%d moved %s -> %s", current.ID, current.Status, updated.Status)
		result = updated
		return nil
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	// 4. Уведомление после коммита
	if template := domain.TransitionTemplate(result.Status); template != "" {
		if err := uc.notify(ctx, result, template); err != nil {
			uc.logger.Warn("TransitionBooking: %v: booking id=%d: %v", domain.ErrNotifyFailure, result.ID, err)
		}
	}

	return &Response{Booking: result}, nil
}

func (uc *UseCase) checkArrival(ctx context.Context, b *domain.Booking, now time.Time) error {
	resource, err := uc.resourceRepo.GetByID(ctx, b.ResourceID)
	if err != nil {
		if errors.Is(err, resourceRepo.ErrResourceNotFound) {
			return domain.ResourceUnavailableError(b.ResourceID)
		}
		uc.logger.Error("TransitionBooking: failed to get resource id=%d: %v", b.ResourceID, err)
		return fmt.Errorf("%w: failed to get resource: %w", ErrInternal, err)
	}

	today := domain.DayIndex(now.In(resource.Location()))
	if today < domain.DayIndex(b.Reservation.CheckInDate) {
		uc.logger.Warn("TransitionBooking: booking id=%d check-in date %s has not come yet",
			b.ID, b.Reservation.CheckInDate.Format(domain.DateFormat))
		return fmt.Errorf("%w: booking %d cannot check in before %s",
			domain.ErrInvalidTransition, b.ID, b.Reservation.CheckInDate.Format(domain.DateFormat))
	}

	// Заезд в день выезда или позже: проживание уже закончилось
	if today >= domain.DayIndex(b.Reservation.CheckOutDate) {
		uc.logger.Warn("TransitionBooking: booking id=%d check-out date %s has passed",
			b.ID, b.Reservation.CheckOutDate.Format(domain.DateFormat))
		return fmt.Errorf("%w: booking %d cannot check in on or after check-out date %s",
			domain.ErrInvalidTransition, b.ID, b.Reservation.CheckOutDate.Format(domain.DateFormat))
	}

	// Предыдущий гость ещё не выехал
	if resource.IsOccupiedByOther(b.ID) {
		uc.logger.Warn("TransitionBooking: room id=%d is still occupied by booking id=%d",
			resource.ID, *resource.OccupiedByBookingID)
		return roomOccupiedError(b, *resource.OccupiedByBookingID)
	}
	return nil
}

func roomOccupiedError(b *domain.Booking, occupant int64) error {
	return fmt.Errorf("%w: booking %d cannot check in, room %d is occupied by booking %d",
		domain.ErrInvalidTransition, b.ID, b.ResourceID, occupant)
}

func (uc *UseCase) syncOccupancy(ctx context.Context, b *domain.Booking) error {
	var err error
	switch b.Status {
	case domain.StatusCheckedIn:
		err = uc.resourceRepo.Occupy(ctx, b.ResourceID, b.ID)
	case domain.StatusCheckedOut:
		err = uc.resourceRepo.Release(ctx, b.ResourceID, b.ID)
	default:
		return nil
	}
	if err == nil {
		return nil
	}

	if errors.Is(err, resourceRepo.ErrRoomOccupied) {
		uc.logger.Warn("TransitionBooking: room id=%d was taken concurrently", b.ResourceID)
		return fmt.Errorf("%w: booking %d cannot check in, room %d is occupied",
			domain.ErrInvalidTransition, b.ID, b.ResourceID)
	}
	uc.logger.Error("TransitionBooking: failed to update occupancy of resource id=%d: %v", b.ResourceID, err)
	return fmt.Errorf("%w: failed to update occupancy: %w", ErrInternal, err)
}

// apply возвращает копию бронирования в целевом статусе с отметками времени
func apply(current *domain.Booking, req *Request, now time.Time) *domain.Booking {
	updated := current.Clone()
	updated.Status = req.Target

	switch req.Target {
	case domain.StatusCancelled:
		updated.CancelledAt = &now
		if req.Reason != nil && *req.Reason != "" {
			reason := *req.Reason
			updated.CancellationReason = &reason
			updated.Notes = appendReason(current.Notes, reason)
		}
	case domain.StatusCheckedIn:
		updated.CheckedInAt = &now
	case domain.StatusCheckedOut:
		updated.CheckedOutAt = &now
	}

	return updated
}

// notify отправляет уведомление вне отмены запроса, но не дольше notifyTimeout
func (uc *UseCase) notify(ctx context.Context, b *domain.Booking, template domain.TemplateKind) error {
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.notifyTimeout)
	defer cancel()
	return uc.notifier.Notify(notifyCtx, b, template)
}
