package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/create_booking"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/transition_booking"
)

// CreateBookingUseCase создание бронирования
type CreateBookingUseCase interface {
	Execute(ctx context.Context, req *create_booking.Request) (*create_booking.Response, error)
}

// AvailabilityUseCase свободные слоты специалиста или доступность номера
type AvailabilityUseCase interface {
	Execute(ctx context.Context, req *get_available_slots.Request) (*get_available_slots.Response, error)
}

// RescheduleBookingUseCase перенос окна бронирования
type RescheduleBookingUseCase interface {
	Execute(ctx context.Context, req *reschedule_booking.Request) (*reschedule_booking.Response, error)
}

// TransitionBookingUseCase переход по автомату статусов
type TransitionBookingUseCase interface {
	Execute(ctx context.Context, req *transition_booking.Request) (*transition_booking.Response, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByResource(ctx context.Context, filter domain.ResourceBookingsFilter) ([]*domain.Booking, error)
	ListByClient(ctx context.Context, filter domain.ClientBookingsFilter) ([]*domain.Booking, error)
	Delete(ctx context.Context, id int64) error
}

// ResourceRepository нужен для часового пояса ресурса
type ResourceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Resource, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счётчик операций по результату
type Metrics interface {
	ObserveBookingOperation(operation, result string)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальная реализация TimeProvider
type RealTimeProvider struct{}

func (RealTimeProvider) Now() time.Time {
	return time.Now()
}
