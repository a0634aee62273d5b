package transition_booking

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", domain.ErrInvalidInput)
	}

	if req.Target == "" {
		return fmt.Errorf("%w: target status is required", domain.ErrInvalidInput)
	}

	if req.Reason != nil && len(*req.Reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: reason longer than %d characters", domain.ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	return nil
}

// appendReason дописывает причину отмены к заметкам
func appendReason(notes *string, reason string) *string {
	line := "Cancellation reason: " + reason
	if notes == nil || strings.TrimSpace(*notes) == "" {
		return &line
	}
	joined := *notes + "\n" + line
	return &joined
}
