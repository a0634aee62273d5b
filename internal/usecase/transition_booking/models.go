package transition_booking

import "github.com/m04kA/SMC-BookingEngine/internal/domain"

// Request перевод бронирования в новый статус
type Request struct {
	BookingID int64
	Target    domain.BookingStatus
	Reason    *string // Причина отмены (только для cancelled)
}

// Response бронирование после перехода
type Response struct {
	Booking *domain.Booking
}
