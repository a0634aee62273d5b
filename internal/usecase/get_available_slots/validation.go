package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ResourceID <= 0 {
		return fmt.Errorf("%w: resourceID must be positive", domain.ErrInvalidInput)
	}
	return nil
}

func validateAppointmentQuery(req *Request) error {
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", domain.ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	return nil
}

func validateStayQuery(req *Request) error {
	if req.CheckInDate.IsZero() || req.CheckOutDate.IsZero() {
		return fmt.Errorf("%w: checkInDate and checkOutDate are required", domain.ErrInvalidInput)
	}

	nights := domain.DayIndex(req.CheckOutDate) - domain.DayIndex(req.CheckInDate)
	if nights <= 0 || nights > domain.MaxStayNights {
		return fmt.Errorf("%w: stay %s..%s", domain.ErrInvalidWindow,
			req.CheckInDate.Format(domain.DateFormat), req.CheckOutDate.Format(domain.DateFormat))
	}
	return nil
}
