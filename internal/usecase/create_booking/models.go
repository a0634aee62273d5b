package create_booking

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Request модель запроса на создание бронирования.
// Вариант выбирается по типу ресурса: для специалиста заполняются
// ServiceID/Date/StartTime, для номера CheckInDate/CheckOutDate/GuestCount.
type Request struct {
	ResourceID int64   // ID ресурса
	ClientID   int64   // ID клиента
	Notes      *string // Дополнительные заметки (опционально)

	ServiceID int64
	Date      time.Time        // Дата записи (без времени)
	StartTime types.TimeString // Время начала (например, "10:00")

	CheckInDate  time.Time
	CheckOutDate time.Time
	GuestCount   int
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking *domain.Booking
}
