package create_booking

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

// UseCase use case для создания бронирования
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

// Execute выполняет use case создания бронирования.
// Проверка конфликта и запись идут в одной сериализуемой транзакции,
// ресурс и его активные бронирования блокируются на время проверки.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: resource=%d, client=%d", req.ResourceID, req.ClientID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	var result *domain.Booking

	// 3. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Ресурс должен существовать и быть активным
		resource, err := uc.resourceRepo.GetByID(txCtx, req.ResourceID)
		if err != nil {
			if errors.Is(err, resourceRepo.ErrResourceNotFound) {
				uc.logger.Warn("CreateBooking: resource id=%d not found", req.ResourceID)
				return domain.ResourceUnavailableError(req.ResourceID)
			}
			uc.logger.Error("CreateBooking: failed to get resource id=%d: %v", req.ResourceID, err)
			return fmt.Errorf("%w: failed to get resource: %w", ErrInternal, err)
		}
		if !resource.IsActive {
			uc.logger.Warn("CreateBooking: resource id=%d is inactive", req.ResourceID)
			return domain.ResourceUnavailableError(req.ResourceID)
		}

		// 3.2. Собираем бронирование нужного варианта
		booking, err := uc.buildBooking(txCtx, req, resource, now)
		if err != nil {
			return err
		}
		window := booking.Window()

		// 3.3. Получаем активные бронирования ресурса на затронутые даты с блокировкой
		from, to := coveredDates(booking)
		existing, err := uc.bookingRepo.GetActiveByResource(txCtx, resource.ID, from, to)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %w", ErrInternal, err)
		}

		// 3.4. Проверяем пересечения
		if conflict := availability.FindConflict(window, existing, 0); conflict != nil {
			uc.logger.Warn("CreateBooking: resource=%d window %s overlaps booking id=%d",
				resource.ID, window, conflict.ID)
			return domain.SlotUnavailableError(resource.ID, window, conflict)
		}

		// 3.5. Сохраняем бронирование
		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrOverlap) {
				uc.logger.Warn("CreateBooking: resource=%d window %s rejected by storage", resource.ID, window)
				return domain.SlotUnavailableError(resource.ID, window, nil)
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		result = created
		return nil
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d (%s %s)",
		result.ID, result.Kind, result.Window())

	// 4. Уведомление не влияет на результат: бронирование уже сохранено
	if err := uc.notify(ctx, result, domain.TemplateBookingCreated); err != nil {
		uc.logger.Warn("CreateBooking: %v: booking id=%d: %v", domain.ErrNotifyFailure, result.ID, err)
	}

	return &Response{Booking: result}, nil
}

func (uc *UseCase) buildBooking(ctx context.Context, req *Request, resource *domain.Resource, now time.Time) (*domain.Booking, error) {
	localNow := now.In(resource.Location())

	booking := &domain.Booking{
		Kind:       resource.Kind.BookingKind(),
		ResourceID: resource.ID,
		ClientID:   req.ClientID,
		Notes:      req.Notes,
	}
	booking.Status = domain.InitialStatus(booking.Kind)

	switch resource.Kind {
	case domain.ResourceProfessional:
		details, err := uc.buildAppointment(ctx, req, resource, localNow)
		if err != nil {
			return nil, err
		}
		booking.Appointment = details

	case domain.ResourceRoom:
		if err := validateReservation(req, resource.Capacity); err != nil {
			uc.logger.Warn("CreateBooking: reservation validation failed: %v", err)
			return nil, err
		}
		if err := uc.policy.CheckDate(req.CheckInDate, localNow); err != nil {
			uc.logger.Warn("CreateBooking: check-in date validation failed: %v", err)
			return nil, err
		}
		booking.Reservation = &domain.ReservationDetails{
			CheckInDate:  req.CheckInDate,
			CheckOutDate: req.CheckOutDate,
			GuestCount:   req.GuestCount,
		}

	default:
		return nil, fmt.Errorf("%w: resource %d has unknown kind %q", ErrInternal, resource.ID, resource.Kind)
	}

	return booking, nil
}

func (uc *UseCase) buildAppointment(ctx context.Context, req *Request, resource *domain.Resource, localNow time.Time) (*domain.AppointmentDetails, error) {
	if err := validateAppointment(req); err != nil {
		uc.logger.Warn("CreateBooking: appointment validation failed: %v", err)
		return nil, err
	}

	// Услуга задаёт длительность и должна принадлежать специалисту
	service, err := uc.resourceRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, resourceRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, fmt.Errorf("%w: service %d", domain.ErrServiceNotFound, req.ServiceID)
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %w", ErrInternal, err)
	}
	if !service.IsActive || service.ProfessionalID != resource.ID {
		uc.logger.Warn("CreateBooking: service id=%d is not offered by resource id=%d", service.ID, resource.ID)
		return nil, fmt.Errorf("%w: service %d is not offered by resource %d", domain.ErrServiceNotFound, service.ID, resource.ID)
	}

	details := &domain.AppointmentDetails{
		ServiceID:       service.ID,
		ServiceName:     service.Name,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: service.DurationMinutes,
	}

	if err := uc.policy.CheckDate(req.Date, localNow); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}
	if err := uc.policy.CheckNotice(details.StartsAt(localNow.Location()), localNow); err != nil {
		uc.logger.Warn("CreateBooking: booking time validation failed: %v", err)
		return nil, err
	}

	// Окно должно целиком лежать в рабочих часах и не задевать перерыв
	schedule, err := uc.resourceRepo.GetSchedule(ctx, resource.ID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get schedule for resource id=%d: %v", resource.ID, err)
		return nil, fmt.Errorf("%w: failed to get schedule: %w", ErrInternal, err)
	}
	if !availability.FitsSchedule(schedule, req.Date, req.StartTime, service.DurationMinutes) {
		window := domain.MinuteInterval(req.Date, req.StartTime, service.DurationMinutes)
		uc.logger.Warn("CreateBooking: window %s is outside working hours of resource id=%d", window, resource.ID)
		return nil, fmt.Errorf("%w: resource %d window %s is outside working hours",
			domain.ErrInvalidWindow, resource.ID, window)
	}

	return details, nil
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
