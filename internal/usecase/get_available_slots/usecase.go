package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/availability"
	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	resourceRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/resource"
)

// UseCase use case для получения доступных слотов для бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	resourceRepo ResourceRepository
	txManager    TransactionManager
	policy       domain.BookingPolicy
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	resourceRepo ResourceRepository,
	txManager TransactionManager,
	policy domain.BookingPolicy,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		resourceRepo: resourceRepo,
		txManager:    txManager,
		policy:       policy,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case проверки доступности ресурса
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: resource=%d, service=%d", req.ResourceID, req.ServiceID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	var resp *Response

	// 3. Читаем ресурс, расписание и занятость из одного снимка
	err := uc.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		resource, err := uc.resourceRepo.GetByID(txCtx, req.ResourceID)
		if err != nil {
			if errors.Is(err, resourceRepo.ErrResourceNotFound) {
				uc.logger.Warn("GetAvailableSlots: resource id=%d not found", req.ResourceID)
				return domain.ResourceUnavailableError(req.ResourceID)
			}
			uc.logger.Error("GetAvailableSlots: failed to get resource id=%d: %v", req.ResourceID, err)
			return fmt.Errorf("%w: failed to get resource: %w", ErrInternal, err)
		}
		if !resource.IsActive {
			uc.logger.Warn("GetAvailableSlots: resource id=%d is inactive", req.ResourceID)
			return domain.ResourceUnavailableError(req.ResourceID)
		}

		localNow := now.In(resource.Location())
		if resource.Kind == domain.ResourceRoom {
			resp, err = uc.stayAvailability(txCtx, req, resource, localNow)
		} else {
			resp, err = uc.appointmentSlots(txCtx, req, resource, localNow)
		}
		return err
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	return resp, nil
}

func (uc *UseCase) appointmentSlots(ctx context.Context, req *Request, resource *domain.Resource, localNow time.Time) (*Response, error) {
	if err := validateAppointmentQuery(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	service, err := uc.resourceRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, resourceRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, fmt.Errorf("%w: service %d", domain.ErrServiceNotFound, req.ServiceID)
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %w", ErrInternal, err)
	}
	if !service.IsActive || service.ProfessionalID != resource.ID {
		uc.logger.Warn("GetAvailableSlots: service id=%d is not offered by resource id=%d", service.ID, resource.ID)
		return nil, fmt.Errorf("%w: service %d is not offered by resource %d", domain.ErrServiceNotFound, service.ID, resource.ID)
	}

	resp := &Response{
		ResourceID:      resource.ID,
		Kind:            resource.Kind,
		Date:            req.Date,
		ServiceID:       service.ID,
		DurationMinutes: service.DurationMinutes,
		Slots:           []domain.TimeSlot{},
	}

	// Прошедшая дата даёт пустой список, слишком далёкая это ошибка
	if err := uc.policy.CheckDate(req.Date, localNow); err != nil {
		if errors.Is(err, domain.ErrDateInPast) {
			uc.logger.Info("GetAvailableSlots: date %s is in the past", req.Date.Format(domain.DateFormat))
			return resp, nil
		}
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	schedule, err := uc.resourceRepo.GetSchedule(ctx, resource.ID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get schedule for resource id=%d: %v", resource.ID, err)
		return nil, fmt.Errorf("%w: failed to get schedule: %w", ErrInternal, err)
	}
	if !schedule.IsWorkingDay(req.Date) {
		uc.logger.Info("GetAvailableSlots: resource id=%d does not work on %s", resource.ID, req.Date.Format(domain.DateFormat))
		return resp, nil
	}

	bookings, err := uc.bookingRepo.GetActiveByResource(ctx, resource.ID, req.Date, req.Date.AddDate(0, 0, 1))
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %w", ErrInternal, err)
	}

	candidates := availability.GenerateSlots(schedule, req.Date, service.DurationMinutes, uc.policy.StepMinutes())
	candidates = noticeFilter(candidates, req.Date, localNow, uc.policy.MinBookingNoticeMinutes)
	resp.Slots = availability.FreeSlots(req.Date, candidates, bookings)

	uc.logger.Info("GetAvailableSlots: %d free slots for resource=%d, service=%d, date=%s",
		len(resp.Slots), resource.ID, service.ID, req.Date.Format(domain.DateFormat))

	return resp, nil
}

func (uc *UseCase) stayAvailability(ctx context.Context, req *Request, resource *domain.Resource, localNow time.Time) (*Response, error) {
	if err := validateStayQuery(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}
	if err := uc.policy.CheckDate(req.CheckInDate, localNow); err != nil {
		uc.logger.Warn("GetAvailableSlots: check-in date validation failed: %v", err)
		return nil, err
	}

	bookings, err := uc.bookingRepo.GetActiveByResource(ctx, resource.ID, req.CheckInDate, req.CheckOutDate)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %w", ErrInternal, err)
	}

	stay := domain.DayInterval(req.CheckInDate, req.CheckOutDate)
	available := !availability.HasConflict(stay, bookings, 0)

	uc.logger.Info("GetAvailableSlots: room id=%d stay %s available=%t", resource.ID, stay, available)

	return &Response{
		ResourceID:   resource.ID,
		Kind:         resource.Kind,
		CheckInDate:  req.CheckInDate,
		CheckOutDate: req.CheckOutDate,
		Available:    available,
	}, nil
}
