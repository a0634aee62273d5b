package get_booking_notifications

import (
	"context"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

type NotificationService interface {
	History(ctx context.Context, bookingID int64) ([]*domain.Notification, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
