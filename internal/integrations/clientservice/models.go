package clientservice

// Contact контакты клиента из справочника
type Contact struct {
	ClientID   int64  `json:"client_id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	TelegramID int64  `json:"telegram_id,omitempty"`
}

// Address адрес доставки уведомления: telegram, email или телефон
func (c *Contact) Address() string {
	switch {
	case c.TelegramID != 0:
		return "tg:" + itoa(c.TelegramID)
	case c.Email != "":
		return "email:" + c.Email
	case c.Phone != "":
		return "phone:" + c.Phone
	default:
		return ""
	}
}

// ErrorResponse модель ошибки от ClientService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
