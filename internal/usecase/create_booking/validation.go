package create_booking

import (
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// validateRequest валидирует входные данные, не зависящие от ресурса
func validateRequest(req *Request) error {
	if req.ResourceID <= 0 {
		return fmt.Errorf("%w: resourceID must be positive", domain.ErrInvalidInput)
	}

	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", domain.ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes longer than %d characters", domain.ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateAppointment поля записи к специалисту
func validateAppointment(req *Request) error {
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", domain.ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: startTime: %v", domain.ErrInvalidInput, err)
	}

	return nil
}

// validateReservation поля проживания в номере
func validateReservation(req *Request, capacity int) error {
	if req.CheckInDate.IsZero() || req.CheckOutDate.IsZero() {
		return fmt.Errorf("%w: checkInDate and checkOutDate are required", domain.ErrInvalidInput)
	}

	nights := domain.DayIndex(req.CheckOutDate) - domain.DayIndex(req.CheckInDate)
	if nights <= 0 {
		return fmt.Errorf("%w: check-out %s must be after check-in %s", domain.ErrInvalidWindow,
			req.CheckOutDate.Format(domain.DateFormat), req.CheckInDate.Format(domain.DateFormat))
	}
	if nights > domain.MaxStayNights {
		return fmt.Errorf("%w: stay of %d nights exceeds %d", domain.ErrInvalidWindow, nights, domain.MaxStayNights)
	}

	if req.GuestCount <= 0 {
		return fmt.Errorf("%w: guestCount must be positive", domain.ErrInvalidInput)
	}
	if req.GuestCount > capacity {
		return fmt.Errorf("%w: %d guests, capacity %d", domain.ErrCapacityExceeded, req.GuestCount, capacity)
	}

	return nil
}
