package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/booking"
	resourceRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/resource"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/create_booking"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/transition_booking"
)

// Операции для метрик и логов
const (
	opCheckAvailability = "check_availability"
	opCreate            = "create"
	opReschedule        = "reschedule"
	opTransition        = "transition"
	opDelete            = "delete"
)

// Service командный интерфейс движка бронирований. HTTP обработчики
// работают только через него.
type Service struct {
	createUC     CreateBookingUseCase
	slotsUC      AvailabilityUseCase
	rescheduleUC RescheduleBookingUseCase
	transitionUC TransitionBookingUseCase

	bookingRepo  BookingRepository
	resourceRepo ResourceRepository
	txManager    TransactionManager
	metrics      Metrics
	logger       Logger
	timeProvider TimeProvider
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	createUC CreateBookingUseCase,
	slotsUC AvailabilityUseCase,
	rescheduleUC RescheduleBookingUseCase,
	transitionUC TransitionBookingUseCase,
	bookingRepo BookingRepository,
	resourceRepo ResourceRepository,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		createUC:     createUC,
		slotsUC:      slotsUC,
		rescheduleUC: rescheduleUC,
		transitionUC: transitionUC,
		bookingRepo:  bookingRepo,
		resourceRepo: resourceRepo,
		txManager:    txManager,
		metrics:      metrics,
		logger:       logger,
		timeProvider: RealTimeProvider{},
	}
}

// CheckAvailability свободные слоты специалиста на дату или доступность номера на период
func (s *Service) CheckAvailability(ctx context.Context, req *models.CheckAvailabilityRequest) (resp *models.AvailabilityResponse, err error) {
	defer s.observe(opCheckAvailability, &err)

	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	checkIn, err := models.ParseDate(req.CheckInDate)
	if err != nil {
		return nil, err
	}
	checkOut, err := models.ParseDate(req.CheckOutDate)
	if err != nil {
		return nil, err
	}

	res, err := s.slotsUC.Execute(ctx, &get_available_slots.Request{
		ResourceID:   req.ResourceID,
		ServiceID:    req.ServiceID,
		Date:         date,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
	})
	if err != nil {
		return nil, err
	}

	return toAvailabilityResponse(res), nil
}

// CreateBooking создает бронирование в начальном статусе
func (s *Service) CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (resp *models.BookingResponse, err error) {
	defer s.observe(opCreate, &err)

	ucReq := &create_booking.Request{
		ResourceID: req.ResourceID,
		ClientID:   req.ClientID,
		Notes:      req.Notes,
		ServiceID:  req.ServiceID,
		GuestCount: req.GuestCount,
	}
	if ucReq.Date, err = models.ParseDate(req.Date); err != nil {
		return nil, err
	}
	if ucReq.StartTime, err = models.ParseTime(req.StartTime); err != nil {
		return nil, err
	}
	if ucReq.CheckInDate, err = models.ParseDate(req.CheckInDate); err != nil {
		return nil, err
	}
	if ucReq.CheckOutDate, err = models.ParseDate(req.CheckOutDate); err != nil {
		return nil, err
	}

	res, err := s.createUC.Execute(ctx, ucReq)
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(res.Booking), nil
}

// RescheduleBooking переносит бронирование в новое окно
func (s *Service) RescheduleBooking(ctx context.Context, bookingID int64, req *models.RescheduleBookingRequest) (resp *models.BookingResponse, err error) {
	defer s.observe(opReschedule, &err)

	ucReq := &reschedule_booking.Request{BookingID: bookingID}
	if ucReq.Date, err = models.ParseDate(req.Date); err != nil {
		return nil, err
	}
	if ucReq.StartTime, err = models.ParseTime(req.StartTime); err != nil {
		return nil, err
	}
	if ucReq.CheckInDate, err = models.ParseDate(req.CheckInDate); err != nil {
		return nil, err
	}
	if ucReq.CheckOutDate, err = models.ParseDate(req.CheckOutDate); err != nil {
		return nil, err
	}

	res, err := s.rescheduleUC.Execute(ctx, ucReq)
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(res.Booking), nil
}

// TransitionBooking переводит бронирование в новый статус
func (s *Service) TransitionBooking(ctx context.Context, bookingID int64, req *models.TransitionBookingRequest) (resp *models.BookingResponse, err error) {
	defer s.observe(opTransition, &err)

	if req.Status == "" {
		return nil, fmt.Errorf("%w: status is required", domain.ErrInvalidInput)
	}

	res, err := s.transitionUC.Execute(ctx, &transition_booking.Request{
		BookingID: bookingID,
		Target:    domain.BookingStatus(req.Status),
		Reason:    req.Reason,
	})
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(res.Booking), nil
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, bookingID int64) (*models.BookingResponse, error) {
	var booking *domain.Booking
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		booking, err = s.getBooking(txCtx, "GetByID", bookingID)
		return err
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	return models.FromDomainBooking(booking), nil
}

// ListResourceBookings календарь ресурса с фильтрами
func (s *Service) ListResourceBookings(ctx context.Context, req *models.ListResourceBookingsRequest) (*models.BookingListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListResourceBookings: invalid filter for resource=%d: %v", req.ResourceID, err)
		return nil, err
	}

	var list []*domain.Booking
	err = s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.getResource(txCtx, "ListResourceBookings", req.ResourceID); err != nil {
			return err
		}

		found, err := s.bookingRepo.ListByResource(txCtx, filter)
		if err != nil {
			s.logger.Error("ListResourceBookings: repository error for resource=%d: %v", req.ResourceID, err)
			return fmt.Errorf("%w: ListByResource: %w", ErrInternal, err)
		}
		list = found
		return nil
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	s.logger.Info("ListResourceBookings: resource=%d, found=%d", req.ResourceID, len(list))
	return models.FromDomainBookingList(list), nil
}

// ListClientBookings история бронирований клиента
func (s *Service) ListClientBookings(ctx context.Context, req *models.ListClientBookingsRequest) (*models.BookingListResponse, error) {
	if req.ClientID <= 0 {
		return nil, fmt.Errorf("%w: clientId must be positive", domain.ErrInvalidInput)
	}

	var list []*domain.Booking
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		list, err = s.bookingRepo.ListByClient(txCtx, domain.ClientBookingsFilter{
			ClientID:        req.ClientID,
			IncludeInactive: req.IncludeInactive,
		})
		if err != nil {
			s.logger.Error("ListClientBookings: repository error for client=%d: %v", req.ClientID, err)
			return fmt.Errorf("%w: ListByClient: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	return models.FromDomainBookingList(list), nil
}

// DeleteBooking физически удаляет бронирование. Будущие активные
// бронирования удалить нельзя, их нужно отменить.
func (s *Service) DeleteBooking(ctx context.Context, bookingID int64) (err error) {
	defer s.observe(opDelete, &err)

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Получаем бронирование
		booking, err := s.getBooking(txCtx, "DeleteBooking", bookingID)
		if err != nil {
			return err
		}

		// 2. "Сегодня" считается в часовом поясе ресурса
		loc := time.UTC
		if resource, err := s.getResource(txCtx, "DeleteBooking", booking.ResourceID); err == nil {
			loc = resource.Location()
		} else if !errors.Is(err, domain.ErrResourceInactiveOrNotFound) {
			return err
		}

		// 3. Проверяем, что удаление разрешено
		if !booking.CanBeDeleted(s.timeProvider.Now().In(loc)) {
			s.logger.Warn("DeleteBooking: booking id=%d is %s and starts %s",
				bookingID, booking.Status, booking.FirstDay().Format(domain.DateFormat))
			return fmt.Errorf("%w: booking %d is active and not in the past, cancel it first",
				domain.ErrCannotDelete, bookingID)
		}

		// 4. Удаляем
		if err := s.bookingRepo.Delete(txCtx, bookingID); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return fmt.Errorf("%w: booking %d", domain.ErrBookingNotFound, bookingID)
			}
			s.logger.Error("DeleteBooking: repository error for id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Delete: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return persistenceError(err)
	}

	s.logger.Info("DeleteBooking: deleted booking id=%d", bookingID)
	return nil
}

func (s *Service) getBooking(ctx context.Context, op string, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, bookingID)
			return nil, fmt.Errorf("%w: booking %d", domain.ErrBookingNotFound, bookingID)
		}
		s.logger.Error("%s: failed to get booking id=%d: %v", op, bookingID, err)
		return nil, fmt.Errorf("%w: GetByID: %w", ErrInternal, err)
	}
	return booking, nil
}

func (s *Service) getResource(ctx context.Context, op string, resourceID int64) (*domain.Resource, error) {
	resource, err := s.resourceRepo.GetByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, resourceRepo.ErrResourceNotFound) {
			return nil, domain.ResourceUnavailableError(resourceID)
		}
		s.logger.Error("%s: failed to get resource id=%d: %v", op, resourceID, err)
		return nil, fmt.Errorf("%w: GetResource: %w", ErrInternal, err)
	}
	return resource, nil
}

func (s *Service) observe(op string, err *error) {
	if s.metrics != nil {
		s.metrics.ObserveBookingOperation(op, resultOf(*err))
	}
}

func toAvailabilityResponse(res *get_available_slots.Response) *models.AvailabilityResponse {
	resp := &models.AvailabilityResponse{
		ResourceID: res.ResourceID,
		Kind:       string(res.Kind),
	}

	if res.Kind == domain.ResourceRoom {
		available := res.Available
		resp.CheckInDate = res.CheckInDate.Format(domain.DateFormat)
		resp.CheckOutDate = res.CheckOutDate.Format(domain.DateFormat)
		resp.Available = &available
		return resp
	}

	resp.Date = res.Date.Format(domain.DateFormat)
	resp.ServiceID = res.ServiceID
	resp.DurationMinutes = res.DurationMinutes
	resp.Slots = make([]models.SlotResponse, 0, len(res.Slots))
	for _, slot := range res.Slots {
		resp.Slots = append(resp.Slots, models.SlotResponse{
			StartTime: slot.StartTime.String(),
			EndTime:   slot.EndTime.String(),
		})
	}
	return resp
}
