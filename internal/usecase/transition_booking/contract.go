package transition_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	// UpdateStatus меняет статус, только если текущий статус равен from
	UpdateStatus(ctx context.Context, booking *domain.Booking, from domain.BookingStatus) error
}

// ResourceRepository интерфейс репозитория ресурсов
type ResourceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Resource, error)
	// Occupy не перезаписывает номер, занятый другим бронированием
	Occupy(ctx context.Context, resourceID, bookingID int64) error
	// Release освобождает номер, только если его занимает это бронирование
	Release(ctx context.Context, resourceID, bookingID int64) error
}

// Notifier отправляет уведомление по бронированию
type Notifier interface {
	Notify(ctx context.Context, booking *domain.Booking, template domain.TemplateKind) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
