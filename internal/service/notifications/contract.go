package notifications

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/clientservice"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/notifier"
)

// Sink канал доставки
type Sink interface {
	Send(ctx context.Context, msg notifier.Message) error
}

// ContactDirectory справочник контактов клиентов
type ContactDirectory interface {
	GetContactWithGracefulDegradation(ctx context.Context, clientID int64) (*clientservice.Contact, error)
}

// NotificationRepository журнал попыток отправки
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByBooking(ctx context.Context, bookingID int64) ([]*domain.Notification, error)
}

// Metrics метрики уведомлений
type Metrics interface {
	ObserveNotification(template string, ok bool)
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

func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
