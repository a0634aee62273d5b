package domain

import (
	"errors"
	"fmt"
)

var (
	ErrResourceInactiveOrNotFound = errors.New("resource inactive or not found")
	ErrSlotUnavailable            = errors.New("slot unavailable")
	ErrInvalidTransition          = errors.New("invalid transition")
	ErrPersistenceTimeout         = errors.New("persistence timeout, retry later")
	ErrNotifyFailure              = errors.New("notify failure")

	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidWindow      = errors.New("invalid booking window")
	ErrInvalidSchedule    = errors.New("invalid schedule")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrServiceNotFound    = errors.New("service not found")
	ErrCapacityExceeded   = errors.New("guest count exceeds room capacity")
	ErrDateInPast         = errors.New("date is in the past")
	ErrDateTooFarInFuture = errors.New("date is too far in the future")
	ErrTooLateToBook      = errors.New("too late to book this slot")
	ErrCannotDelete       = errors.New("booking cannot be deleted")
)

// SlotUnavailableError конфликт окна с существующим активным бронированием
func SlotUnavailableError(resourceID int64, window Interval, conflicting *Booking) error {
	if conflicting == nil {
		return fmt.Errorf("%w: resource %d window %s", ErrSlotUnavailable, resourceID, window)
	}
	return fmt.Errorf("%w: resource %d window %s overlaps booking %d (%s)",
		ErrSlotUnavailable, resourceID, window, conflicting.ID, conflicting.Window())
}

// InvalidTransitionError недопустимое ребро автомата
func InvalidTransitionError(bookingID int64, current, requested BookingStatus) error {
	return fmt.Errorf("%w: booking %d cannot move from %s to %s",
		ErrInvalidTransition, bookingID, current, requested)
}

// ResourceUnavailableError ресурс не найден или выключен
func ResourceUnavailableError(resourceID int64) error {
	return fmt.Errorf("%w: resource %d", ErrResourceInactiveOrNotFound, resourceID)
}
