package domain

import "slices"

// BookingKind вариант бронирования
type BookingKind string

const (
	KindAppointment BookingKind = "appointment"
	KindReservation BookingKind = "reservation"
)

func (k BookingKind) IsValid() bool {
	return k == KindAppointment || k == KindReservation
}

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusScheduled  BookingStatus = "scheduled"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusNoShow     BookingStatus = "no_show"
	StatusCheckedIn  BookingStatus = "checked_in"
	StatusCheckedOut BookingStatus = "checked_out"
)

// validTransitions допустимые переходы для каждого варианта.
// Всё, чего здесь нет, отклоняется с ErrInvalidTransition.
var validTransitions = map[BookingKind]map[BookingStatus][]BookingStatus{
	KindAppointment: {
		StatusScheduled: {StatusConfirmed, StatusCancelled, StatusNoShow},
		StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
	},
	KindReservation: {
		StatusConfirmed: {StatusCheckedIn, StatusCancelled},
		StatusCheckedIn: {StatusCheckedOut},
	},
}

var activeStatuses = map[BookingKind][]BookingStatus{
	KindAppointment: {StatusScheduled, StatusConfirmed},
	KindReservation: {StatusConfirmed, StatusCheckedIn},
}

var knownStatuses = map[BookingKind][]BookingStatus{
	KindAppointment: {StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow},
	KindReservation: {StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled},
}

// InitialStatus статус нового бронирования
func InitialStatus(kind BookingKind) BookingStatus {
	if kind == KindReservation {
		return StatusConfirmed
	}
	return StatusScheduled
}

// CanTransition проверяет переход по списку рёбер
func CanTransition(kind BookingKind, from, to BookingStatus) bool {
	return slices.Contains(validTransitions[kind][from], to)
}

// AllowedTransitions куда можно перейти из текущего статуса
func AllowedTransitions(kind BookingKind, from BookingStatus) []BookingStatus {
	return slices.Clone(validTransitions[kind][from])
}

// IsActiveStatus статус блокирует пересекающиеся бронирования
func IsActiveStatus(kind BookingKind, status BookingStatus) bool {
	return slices.Contains(activeStatuses[kind], status)
}

// IsTerminalStatus из статуса нет исходящих рёбер
func IsTerminalStatus(kind BookingKind, status BookingStatus) bool {
	return IsKnownStatus(kind, status) && len(validTransitions[kind][status]) == 0
}

// IsKnownStatus статус существует для этого варианта
func IsKnownStatus(kind BookingKind, status BookingStatus) bool {
	return slices.Contains(knownStatuses[kind], status)
}

// ActiveStatuses активные статусы варианта
func ActiveStatuses(kind BookingKind) []BookingStatus {
	return slices.Clone(activeStatuses[kind])
}

// KnownStatuses все статусы варианта
func KnownStatuses(kind BookingKind) []BookingStatus {
	return slices.Clone(knownStatuses[kind])
}

// AllActiveStatuses объединение активных статусов обоих вариантов.
// Используется в SQL-фильтрах и в условии exclusion-ограничения.
var AllActiveStatuses = []BookingStatus{
	StatusScheduled,
	StatusConfirmed,
	StatusCheckedIn,
}
