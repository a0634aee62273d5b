package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Request новое окно бронирования. Для записи заполняются Date/StartTime,
// для проживания CheckInDate/CheckOutDate. После заезда меняется только
// дата выезда, CheckInDate можно не передавать.
type Request struct {
	BookingID int64

	Date      time.Time
	StartTime types.TimeString

	CheckInDate  time.Time
	CheckOutDate time.Time
}

// Response бронирование после переноса
type Response struct {
	Booking *domain.Booking
}
