package notifications

import (
	"strconv"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// buildPayload плоское представление бронирования для шаблонов и журнала
func buildPayload(b *domain.Booking) map[string]string {
	p := map[string]string{
		"booking_id":  strconv.FormatInt(b.ID, 10),
		"kind":        string(b.Kind),
		"status":      string(b.Status),
		"resource_id": strconv.FormatInt(b.ResourceID, 10),
		"client_id":   strconv.FormatInt(b.ClientID, 10),
		"window":      b.Window().String(),
		"reason":      "",
	}

	if b.CancellationReason != nil {
		p["reason"] = *b.CancellationReason
	}

	if a := b.Appointment; a != nil {
		p["service"] = a.ServiceName
		p["date"] = a.Date.Format(domain.DateFormat)
		p["start_time"] = string(a.StartTime)
		p["end_time"] = string(a.EndTime())
	}

	if r := b.Reservation; r != nil {
		p["check_in"] = r.CheckInDate.Format(domain.DateFormat)
		p["check_out"] = r.CheckOutDate.Format(domain.DateFormat)
		p["nights"] = strconv.Itoa(r.Nights())
		p["guests"] = strconv.Itoa(r.GuestCount)
	}

	return p
}
