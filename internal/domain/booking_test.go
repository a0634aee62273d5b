package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

func appointment(id int64, day string, start string, duration int, status BookingStatus) *Booking {
	return &Booking{
		ID:     id,
		Kind:   KindAppointment,
		Status: status,
		Appointment: &AppointmentDetails{
			Date:            date(day),
			StartTime:       types.MustFromString(start),
			DurationMinutes: duration,
		},
	}
}

func reservation(id int64, in, out string, status BookingStatus) *Booking {
	return &Booking{
		ID:     id,
		Kind:   KindReservation,
		Status: status,
		Reservation: &ReservationDetails{
			CheckInDate:  date(in),
			CheckOutDate: date(out),
			GuestCount:   2,
		},
	}
}

func TestBooking_Window(t *testing.T) {
	a := appointment(1, "2024-03-04", "14:00", 60, StatusScheduled)
	assert.Equal(t, MinuteInterval(date("2024-03-04"), "14:00", 60), a.Window())
	assert.Equal(t, types.TimeString("15:00"), a.Appointment.EndTime())

	r := reservation(2, "2024-03-01", "2024-03-05", StatusConfirmed)
	assert.Equal(t, GranularityDay, r.Window().Granularity)
	assert.Equal(t, 4, r.Reservation.Nights())

	broken := &Booking{Kind: KindReservation}
	assert.False(t, broken.Window().IsValid())
}

func TestBooking_StartsAt(t *testing.T) {
	loc := time.FixedZone("MSK", 3*3600)
	a := appointment(1, "2024-03-04", "14:30", 60, StatusScheduled)
	assert.Equal(t, time.Date(2024, 3, 4, 14, 30, 0, 0, loc), a.Appointment.StartsAt(loc))
}

func TestBooking_CanBeDeleted(t *testing.T) {
	today := date("2024-03-04")

	assert.False(t, appointment(1, "2024-03-10", "10:00", 60, StatusScheduled).CanBeDeleted(today))
	assert.False(t, appointment(1, "2024-03-04", "10:00", 60, StatusConfirmed).CanBeDeleted(today))
	assert.True(t, appointment(1, "2024-03-10", "10:00", 60, StatusCancelled).CanBeDeleted(today))
	assert.True(t, appointment(1, "2024-03-01", "10:00", 60, StatusScheduled).CanBeDeleted(today))
	assert.True(t, reservation(2, "2024-03-05", "2024-03-07", StatusCheckedOut).CanBeDeleted(today))
	assert.False(t, reservation(2, "2024-03-05", "2024-03-07", StatusConfirmed).CanBeDeleted(today))

	// проживание ещё идёт: дата заезда прошла, дата выезда нет
	assert.False(t, reservation(2, "2024-03-01", "2024-03-06", StatusConfirmed).CanBeDeleted(today))
	assert.False(t, reservation(2, "2024-03-01", "2024-03-06", StatusCheckedIn).CanBeDeleted(today))
	// гость задержался после даты выезда
	assert.False(t, reservation(2, "2024-03-01", "2024-03-03", StatusCheckedIn).CanBeDeleted(today))
	// незаселённая бронь, срок которой закончился
	assert.True(t, reservation(2, "2024-03-01", "2024-03-04", StatusConfirmed).CanBeDeleted(today))
}

func TestBooking_Clone(t *testing.T) {
	a := appointment(1, "2024-03-04", "14:00", 60, StatusScheduled)
	c := a.Clone()
	c.Appointment.StartTime = "16:00"
	assert.Equal(t, types.TimeString("14:00"), a.Appointment.StartTime)
}

func TestStaleReminders(t *testing.T) {
	a := appointment(1, "2024-03-04", "14:00", 60, StatusScheduled)
	a.ReminderFlags = ReminderDayBefore | ReminderHourBefore

	sameWindow := a.Clone()
	sameWindow.Appointment.DurationMinutes = 90
	assert.Equal(t, ReminderFlags(0), StaleReminders(a, sameWindow))

	moved := a.Clone()
	moved.Appointment.StartTime = "16:00"
	assert.Equal(t, ReminderDayBefore|ReminderHourBefore, StaleReminders(a, moved))

	r := reservation(2, "2024-03-01", "2024-03-05", StatusCheckedIn)
	r.ReminderFlags = ReminderCheckInTomorrow | ReminderCheckoutPending
	extended := r.Clone()
	extended.Reservation.CheckOutDate = date("2024-03-07")
	assert.Equal(t, ReminderCheckoutPending, StaleReminders(r, extended))
}

func TestReminderFlags(t *testing.T) {
	f := ReminderFlags(0).With(ReminderSameDay).With(ReminderCheckoutPending)
	assert.True(t, f.Has(ReminderSameDay))
	assert.False(t, f.Has(ReminderHourBefore))
	assert.Equal(t, "same_day|checkout_pending", f.String())
	assert.Equal(t, "none", f.Without(ReminderSameDay|ReminderCheckoutPending).String())
}

func TestBookingPolicy(t *testing.T) {
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	p := BookingPolicy{AdvanceBookingDays: 7, MinBookingNoticeMinutes: 60}

	assert.NoError(t, p.CheckDate(date("2024-03-04"), now))
	assert.NoError(t, p.CheckDate(date("2024-03-11"), now))
	assert.ErrorIs(t, p.CheckDate(date("2024-03-03"), now), ErrDateInPast)
	assert.ErrorIs(t, p.CheckDate(date("2024-03-12"), now), ErrDateTooFarInFuture)

	assert.NoError(t, p.CheckNotice(now.Add(time.Hour), now))
	assert.ErrorIs(t, p.CheckNotice(now.Add(30*time.Minute), now), ErrTooLateToBook)

	unlimited := BookingPolicy{}
	assert.NoError(t, unlimited.CheckDate(date("2030-01-01"), now))
	assert.Equal(t, DefaultSlotStepMinutes, unlimited.StepMinutes())
}

func TestErrorMessages(t *testing.T) {
	existing := appointment(7, "2024-03-04", "14:00", 60, StatusConfirmed)
	err := SlotUnavailableError(3, MinuteInterval(date("2024-03-04"), "13:30", 60), existing)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Contains(t, err.Error(), "resource 3")
	assert.Contains(t, err.Error(), "2024-03-04 13:30-14:30")
	assert.Contains(t, err.Error(), "booking 7")

	err = InvalidTransitionError(5, StatusScheduled, StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "from scheduled to completed")
}
