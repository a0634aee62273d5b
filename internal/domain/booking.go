package domain

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// AppointmentDetails запись к специалисту на время суток
type AppointmentDetails struct {
	ServiceID       int64
	ServiceName     string // денормализовано для истории
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
}

// EndTime start_time + duration
func (a *AppointmentDetails) EndTime() types.TimeString {
	end, err := a.StartTime.AddMinutes(a.DurationMinutes)
	if err != nil {
		return ""
	}
	return end
}

// StartsAt момент начала записи в часовом поясе ресурса
func (a *AppointmentDetails) StartsAt(loc *time.Location) time.Time {
	y, m, d := a.Date.Date()
	return a.StartTime.On(time.Date(y, m, d, 0, 0, 0, 0, loc))
}

// ReservationDetails проживание в номере по диапазону дат
type ReservationDetails struct {
	CheckInDate  time.Time
	CheckOutDate time.Time
	GuestCount   int
}

// Nights количество ночей
func (r *ReservationDetails) Nights() int {
	return int(DayIndex(r.CheckOutDate) - DayIndex(r.CheckInDate))
}

// Booking бронирование ресурса. Ровно одно из Appointment/Reservation
// заполнено и соответствует Kind.
type Booking struct {
	ID         int64
	Kind       BookingKind
	ResourceID int64
	ClientID   int64
	Status     BookingStatus

	Appointment *AppointmentDetails
	Reservation *ReservationDetails

	ReminderFlags ReminderFlags
	Notes         *string

	CancellationReason *string
	CancelledAt        *time.Time
	CheckedInAt        *time.Time
	CheckedOutAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Window интервал, который бронирование занимает на оси ресурса
func (b *Booking) Window() Interval {
	switch {
	case b.Kind == KindAppointment && b.Appointment != nil:
		return MinuteInterval(b.Appointment.Date, b.Appointment.StartTime, b.Appointment.DurationMinutes)
	case b.Kind == KindReservation && b.Reservation != nil:
		return DayInterval(b.Reservation.CheckInDate, b.Reservation.CheckOutDate)
	default:
		return Interval{}
	}
}

// IsActive бронирование блокирует пересекающиеся
func (b *Booking) IsActive() bool {
	return IsActiveStatus(b.Kind, b.Status)
}

// IsTerminal у бронирования больше нет переходов
func (b *Booking) IsTerminal() bool {
	return IsTerminalStatus(b.Kind, b.Status)
}

// CanTransitionTo переход разрешён списком рёбер
func (b *Booking) CanTransitionTo(target BookingStatus) bool {
	return CanTransition(b.Kind, b.Status, target)
}

// CanBeRescheduled перенос возможен только в активном статусе
func (b *Booking) CanBeRescheduled() bool {
	return b.IsActive()
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// FirstDay первый день, который занимает бронирование
func (b *Booking) FirstDay() time.Time {
	switch {
	case b.Appointment != nil:
		return b.Appointment.Date
	case b.Reservation != nil:
		return b.Reservation.CheckInDate
	default:
		return time.Time{}
	}
}

// CanBeDeleted физическое удаление разрешено для терминальных
// или уже не будущих бронирований. Проживающего гостя удалить нельзя,
// а проживание считается прошедшим только с даты выезда.
func (b *Booking) CanBeDeleted(today time.Time) bool {
	if b.IsTerminal() {
		return true
	}
	if b.Status == StatusCheckedIn {
		return false
	}
	if b.Reservation != nil {
		return DayIndex(b.Reservation.CheckOutDate) <= DayIndex(today)
	}
	return DayIndex(b.FirstDay()) < DayIndex(today)
}

// Clone глубокая копия, чтобы менять окно без порчи исходника
func (b *Booking) Clone() *Booking {
	c := *b
	if b.Appointment != nil {
		a := *b.Appointment
		c.Appointment = &a
	}
	if b.Reservation != nil {
		r := *b.Reservation
		c.Reservation = &r
	}
	return &c
}

// ResourceBookingsFilter фильтр для календаря ресурса
type ResourceBookingsFilter struct {
	ResourceID      int64          // Обязательный параметр
	StartDate       *time.Time     // Начало периода (опционально)
	EndDate         *time.Time     // Конец периода (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли отменённые и завершённые
}

// ClientBookingsFilter фильтр для истории клиента
type ClientBookingsFilter struct {
	ClientID        int64
	IncludeInactive bool
}
