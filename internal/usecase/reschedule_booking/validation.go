package reschedule_booking

import (
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", domain.ErrInvalidInput)
	}
	return nil
}

func validateAppointment(req *Request) error {
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: startTime: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// validateStay проверяет новый период проживания
func validateStay(details *domain.ReservationDetails) error {
	nights := details.Nights()
	if nights <= 0 {
		return fmt.Errorf("%w: check-out %s must be after check-in %s", domain.ErrInvalidWindow,
			details.CheckOutDate.Format(domain.DateFormat), details.CheckInDate.Format(domain.DateFormat))
	}
	if nights > domain.MaxStayNights {
		return fmt.Errorf("%w: stay of %d nights exceeds %d", domain.ErrInvalidWindow, nights, domain.MaxStayNights)
	}
	return nil
}
