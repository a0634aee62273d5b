package domain

import "time"

// Default configuration values
const (
	DefaultSlotStepMinutes         = 30
	DefaultAdvanceBookingDays      = 0  // 0 = unlimited
	DefaultMinBookingNoticeMinutes = 60 // 1 hour

	// DefaultNotifyTimeout предел ожидания отправки уведомления после записи
	DefaultNotifyTimeout = 5 * time.Second
)

// Business validation constants
const (
	MinServiceDurationMinutes   = 5
	MaxServiceDurationMinutes   = 480 // 8 hours
	MinSlotStepMinutes          = 5
	MaxSlotStepMinutes          = 240
	MaxAdvanceBookingDays       = 365 // 1 year
	MaxBookingNoticeMinutes     = 10080
	MaxStayNights               = 90
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat    = "15:04"      // HH:MM
	DateFormat    = "2006-01-02" // YYYY-MM-DD
	MinutesPerDay = 24 * 60
)
