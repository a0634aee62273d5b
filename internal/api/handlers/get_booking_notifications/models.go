package get_booking_notifications

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// NotificationResponse запись журнала уведомлений
type NotificationResponse struct {
	ID        string            `json:"id"`
	BookingID int64             `json:"bookingId"`
	Recipient string            `json:"recipient"`
	Template  string            `json:"template"`
	Status    string            `json:"status"`
	Error     *string           `json:"error,omitempty"`
	Payload   map[string]string `json:"payload,omitempty"`
	CreatedAt string            `json:"createdAt"`
}

// FromDomain конвертирует журнал в HTTP ответ
func FromDomain(records []*domain.Notification) []NotificationResponse {
	resp := make([]NotificationResponse, 0, len(records))
	for _, n := range records {
		resp = append(resp, NotificationResponse{
			ID:        n.ID.String(),
			BookingID: n.BookingID,
			Recipient: n.Recipient,
			Template:  string(n.Template),
			Status:    string(n.Status),
			Error:     n.Error,
			Payload:   n.Payload,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}
