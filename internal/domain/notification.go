package domain

import (
	"time"

	"github.com/google/uuid"
)

// TemplateKind шаблон уведомления
type TemplateKind string

const (
	TemplateBookingCreated     TemplateKind = "booking_created"
	TemplateBookingConfirmed   TemplateKind = "booking_confirmed"
	TemplateBookingCancelled   TemplateKind = "booking_cancelled"
	TemplateBookingRescheduled TemplateKind = "booking_rescheduled"
	TemplateBookingCompleted   TemplateKind = "booking_completed"
	TemplateBookingNoShow      TemplateKind = "booking_no_show"
	TemplateBookingCheckedIn   TemplateKind = "booking_checked_in"
	TemplateBookingCheckedOut  TemplateKind = "booking_checked_out"

	TemplateReminderHourBefore TemplateKind = "reminder_hour_before"
	TemplateReminderTomorrow   TemplateKind = "reminder_tomorrow"
	TemplateReminderToday      TemplateKind = "reminder_today"
	TemplateCheckInTomorrow    TemplateKind = "checkin_tomorrow"
	TemplateCheckoutPending    TemplateKind = "checkout_pending"
)

// TransitionTemplate шаблон уведомления о переходе в статус
func TransitionTemplate(target BookingStatus) TemplateKind {
	switch target {
	case StatusConfirmed:
		return TemplateBookingConfirmed
	case StatusCancelled:
		return TemplateBookingCancelled
	case StatusCompleted:
		return TemplateBookingCompleted
	case StatusNoShow:
		return TemplateBookingNoShow
	case StatusCheckedIn:
		return TemplateBookingCheckedIn
	case StatusCheckedOut:
		return TemplateBookingCheckedOut
	default:
		return ""
	}
}

// NotificationStatus результат попытки отправки
type NotificationStatus string

const (
	NotificationSent   NotificationStatus = "sent"
	NotificationFailed NotificationStatus = "failed"
)

// Notification запись журнала уведомлений
type Notification struct {
	ID        uuid.UUID
	BookingID int64
	Recipient string
	Template  TemplateKind
	Payload   map[string]string
	Status    NotificationStatus
	Error     *string
	CreatedAt time.Time
}
