package domain

import "strings"

// ReminderFlags набор уже отправленных напоминаний
type ReminderFlags int

const (
	ReminderHourBefore ReminderFlags = 1 << iota
	ReminderDayBefore
	ReminderSameDay
	ReminderCheckInTomorrow
	ReminderCheckoutPending
)

var reminderNames = []struct {
	flag ReminderFlags
	name string
}{
	{ReminderHourBefore, "hour_before"},
	{ReminderDayBefore, "day_before"},
	{ReminderSameDay, "same_day"},
	{ReminderCheckInTomorrow, "checkin_tomorrow"},
	{ReminderCheckoutPending, "checkout_pending"},
}

// AppointmentReminders флаги, привязанные ко времени записи
const AppointmentReminders = ReminderHourBefore | ReminderDayBefore | ReminderSameDay

func (f ReminderFlags) Has(flag ReminderFlags) bool {
	return f&flag == flag
}

func (f ReminderFlags) With(flag ReminderFlags) ReminderFlags {
	return f | flag
}

func (f ReminderFlags) Without(flag ReminderFlags) ReminderFlags {
	return f &^ flag
}

// Names имена установленных флагов в порядке объявления
func (f ReminderFlags) Names() []string {
	names := make([]string, 0, len(reminderNames))
	for _, r := range reminderNames {
		if f.Has(r.flag) {
			names = append(names, r.name)
		}
	}
	return names
}

func (f ReminderFlags) String() string {
	if f == 0 {
		return "none"
	}
	return strings.Join(f.Names(), "|")
}

// StaleReminders флаги, которые перестают быть верными после переноса окна
func StaleReminders(before, after *Booking) ReminderFlags {
	switch {
	case before.Appointment != nil && after.Appointment != nil:
		a, b := before.Appointment, after.Appointment
		if DayIndex(a.Date) != DayIndex(b.Date) || a.StartTime.Minutes() != b.StartTime.Minutes() {
			return before.ReminderFlags & AppointmentReminders
		}
	case before.Reservation != nil && after.Reservation != nil:
		var stale ReminderFlags
		a, b := before.Reservation, after.Reservation
		if DayIndex(a.CheckInDate) != DayIndex(b.CheckInDate) {
			stale |= ReminderCheckInTomorrow
		}
		if DayIndex(a.CheckOutDate) != DayIndex(b.CheckOutDate) {
			stale |= ReminderCheckoutPending
		}
		return before.ReminderFlags & stale
	}
	return 0
}
