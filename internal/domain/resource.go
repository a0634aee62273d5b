package domain

import "time"

// ResourceKind тип бронируемого ресурса
type ResourceKind string

const (
	ResourceProfessional ResourceKind = "professional"
	ResourceRoom         ResourceKind = "room"
)

// BookingKind вариант бронирования, который принимает ресурс
func (k ResourceKind) BookingKind() BookingKind {
	if k == ResourceRoom {
		return KindReservation
	}
	return KindAppointment
}

// Resource специалист (бронируется по времени суток) или номер (по диапазону дат)
type Resource struct {
	ID       int64
	Kind     ResourceKind
	Name     string
	IsActive bool
	Capacity int // только для номеров
	Timezone string

	// OccupiedByBookingID бронирование, по которому гость сейчас заселён (только номера)
	OccupiedByBookingID *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location часовой пояс ресурса, UTC если не задан или не распознан
func (r *Resource) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsOccupied в номере сейчас проживает гость
func (r *Resource) IsOccupied() bool {
	return r.OccupiedByBookingID != nil
}

// IsOccupiedByOther в номере проживает гость по другому бронированию
func (r *Resource) IsOccupiedByOther(bookingID int64) bool {
	return r.OccupiedByBookingID != nil && *r.OccupiedByBookingID != bookingID
}

// Service услуга специалиста, задаёт длительность записи
type Service struct {
	ID              int64
	ProfessionalID  int64
	Name            string
	DurationMinutes int
	IsActive        bool
}
