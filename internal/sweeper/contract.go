package sweeper

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// BookingRepository выборки кандидатов и условная установка флагов
type BookingRepository interface {
	ListAppointmentsByDate(ctx context.Context, from, to time.Time, missing domain.ReminderFlags) ([]*domain.Booking, error)
	ListReservationsByCheckIn(ctx context.Context, from, to time.Time, missing domain.ReminderFlags) ([]*domain.Booking, error)
	ListCheckedInDueOut(ctx context.Context, until time.Time, missing domain.ReminderFlags) ([]*domain.Booking, error)
	MarkReminderSent(ctx context.Context, id int64, flag domain.ReminderFlags) (bool, error)
}

// ResourceRepository нужен для часового пояса ресурса
type ResourceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Resource, error)
}

// NotificationRepository журнал отправленных уведомлений
type NotificationRepository interface {
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// Notifier отправляет уведомление по бронированию
type Notifier interface {
	Notify(ctx context.Context, booking *domain.Booking, template domain.TemplateKind) error
}

// Metrics метрики проходов
type Metrics interface {
	ObserveSweep(pass string, started time.Time)
	ObserveReminder(trigger string, ok bool)
}

// Clock источник текущего времени
type Clock interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealClock системные часы
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}
