package notifier

import "time"

// Message уведомление, готовое к отправке
type Message struct {
	ID        string            `json:"id"`
	BookingID int64             `json:"booking_id"`
	Recipient string            `json:"recipient"`
	Template  string            `json:"template"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Payload   map[string]string `json:"payload,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// RoutingKey ключ маршрутизации в topic exchange
func (m Message) RoutingKey() string {
	return "booking.notification." + m.Template
}
