package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Request модель запроса на проверку доступности.
// Для специалиста нужны ServiceID и Date, для номера CheckInDate и CheckOutDate.
type Request struct {
	ResourceID int64
	ServiceID  int64
	Date       time.Time // Дата для получения слотов (без времени)

	CheckInDate  time.Time
	CheckOutDate time.Time
}

// Response модель ответа
type Response struct {
	ResourceID int64
	Kind       domain.ResourceKind

	// Слоты специалиста
	Date            time.Time
	ServiceID       int64
	DurationMinutes int
	Slots           []domain.TimeSlot

	// Номер: свободен ли весь период
	CheckInDate  time.Time
	CheckOutDate time.Time
	Available    bool
}
