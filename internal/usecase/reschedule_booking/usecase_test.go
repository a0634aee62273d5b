package reschedule_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/fakes"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

func day(s string) time.Time {
	d, err := time.Parse(domain.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return d
}

type env struct {
	uc       *UseCase
	bookings *fakes.BookingStore
	notifier *fakes.Notifier
}

func newEnv(now time.Time) *env {
	resources := fakes.NewResourceStore()
	resources.AddResource(&domain.Resource{ID: 1, Kind: domain.ResourceProfessional, IsActive: true})
	resources.AddResource(&domain.Resource{ID: 2, Kind: domain.ResourceRoom, IsActive: true, Capacity: 2})
	resources.AddSchedule(domain.NewSchedule(1,
		domain.DaySchedule{Weekday: time.Monday, IsWorking: true, StartTime: "09:00", EndTime: "18:00"},
		domain.DaySchedule{Weekday: time.Tuesday, IsWorking: true, StartTime: "09:00", EndTime: "18:00"},
	))

	e := &env{bookings: fakes.NewBookingStore(), notifier: &fakes.Notifier{}}
	e.uc = NewUseCase(e.bookings, resources, e.notifier, &fakes.TxManager{}, domain.DefaultBookingPolicy(), fakes.Logger{})
	e.uc.timeProvider = fakes.NewClock(now)
	return e
}

func (e *env) appointment(date, start string, status domain.BookingStatus, flags domain.ReminderFlags) *domain.Booking {
	return e.bookings.Put(&domain.Booking{
		Kind:          domain.KindAppointment,
		ResourceID:    1,
		ClientID:      100,
		Status:        status,
		ReminderFlags: flags,
		Appointment: &domain.AppointmentDetails{
			ServiceID:       10,
			Date:            day(date),
			StartTime:       types.TimeString(start),
			DurationMinutes: 60,
		},
	})
}

func (e *env) reservation(in, out string, status domain.BookingStatus, flags domain.ReminderFlags) *domain.Booking {
	return e.bookings.Put(&domain.Booking{
		Kind:          domain.KindReservation,
		ResourceID:    2,
		ClientID:      100,
		Status:        status,
		ReminderFlags: flags,
		Reservation: &domain.ReservationDetails{
			CheckInDate:  day(in),
			CheckOutDate: day(out),
			GuestCount:   1,
		},
	})
}

func TestReschedule_Appointment(t *testing.T) {
	e := newEnv(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	b := e.appointment("2024-03-04", "10:00", domain.StatusConfirmed,
		domain.ReminderDayBefore|domain.ReminderSameDay)

	resp, err := e.uc.Execute(context.Background(), &Request{BookingID: b.ID, Date: day("2024-03-05"), StartTime: "11:00"})
	require.NoError(t, err)

	stored := e.bookings.Get(b.ID)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
	assert.Equal(t, "2024-03-05 11:00-12:00", stored.Window().String())
	assert.Equal(t, domain.ReminderFlags(0), stored.ReminderFlags)
	assert.Equal(t, stored.ReminderFlags, resp.Booking.ReminderFlags)
	assert.Equal(t, 1, e.notifier.Count(domain.TemplateBookingRescheduled))
}

func TestReschedule_StalledNotifierDoesNotBlock(t *testing.T) {
	e := newEnv(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	e.notifier.Stall = true
	e.uc.WithNotifyTimeout(50 * time.Millisecond)
	b := e.appointment("2024-03-04", "10:00", domain.StatusConfirmed, 0)

	started := time.Now()
	_, err := e.uc.Execute(context.Background(), &Request{BookingID: b.ID, Date: day("2024-03-05"), StartTime: "11:00"})
	require.NoError(t, err)
	assert.Less(t, time.Since(started), 2*time.Second)
	assert.Equal(t, "2024-03-05 11:00-12:00", e.bookings.Get(b.ID).Window().String())
}

func TestReschedule_ConflictLeavesBookingUnchanged(t *testing.T) {
	e := newEnv(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	b := e.appointment("2024-03-04", "10:00", domain.StatusScheduled, domain.ReminderDayBefore)
	e.appointment("2024-03-04", "14:00", domain.StatusScheduled, 0)

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: b.ID, Date: day("2024-03-04"), StartTime: "13:30"})
	require.ErrorIs(t, err, domain.ErrSlotUnavailable)
	assert.Contains(t, err.Error(), "2024-03-04 13:30-14:30")

	stored := e.bookings.Get(b.ID)
	assert.Equal(t, "2024-03-04 10:00-11:00", stored.Window().String())
	assert.Equal(t, domain.ReminderDayBefore, stored.ReminderFlags)
	assert.Zero(t, e.bookings.Writes)
	assert.Empty(t, e.notifier.Sent())
}

func TestReschedule_OverlapWithItselfAllowed(t *testing.T) {
	e := newEnv(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	b := e.appointment("2024-03-04", "10:00", domain.StatusScheduled, 0)

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: b.ID, Date: day("2024-03-04"), StartTime: "10:30"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04 10:30-11:30", e.bookings.Get(b.ID).Window().String())
}

func TestReschedule_InactiveBooking(t *testing.T) {
	e := newEnv(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))

	for _, status := range []domain.BookingStatus{domain.StatusCancelled, domain.StatusCompleted, domain.StatusNoShow} {
		b := e.appointment("2024-03-04", "10:00", status, 0)
		_, err := e.uc.Execute(context.Background(), &Request{BookingID: b.ID, Date: day("2024-03-05"), StartTime: "10:00"})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, status)
	}
	assert.Zero(t, e.bookings.Writes)
}

func TestReschedule_NotFound(t *testing.T) {
	e := newEnv(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: 42, Date: day("2024-03-05"), StartTime: "10:00"})
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestReschedule_OutsideWorkingHours(t *testing.T) {
	e := newEnv(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	b := e.appointment("2024-03-04", "10:00", domain.StatusScheduled, 0)

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: b.ID, Date: day("2024-03-06"), StartTime: "10:00"})
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}

func TestReschedule_Reservation(t *testing.T) {
	e := newEnv(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	b := e.reservation("2024-03-05", "2024-03-08", domain.StatusConfirmed, domain.ReminderCheckInTomorrow)
	e.reservation("2024-03-01", "2024-03-05", domain.StatusConfirmed, 0)

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: b.ID, CheckInDate: day("2024-03-04"), CheckOutDate: day("2024-03-08")})
	require.ErrorIs(t, err, domain.ErrSlotUnavailable)

	_, err = e.uc.Execute(context.Background(), &Request{BookingID: b.ID, CheckInDate: day("2024-03-06"), CheckOutDate: day("2024-03-09")})
	require.NoError(t, err)

	stored := e.bookings.Get(b.ID)
	assert.Equal(t, "2024-03-06..2024-03-09", stored.Window().String())
	assert.False(t, stored.ReminderFlags.Has(domain.ReminderCheckInTomorrow))
}

func TestReschedule_CheckedInMovesOnlyCheckOut(t *testing.T) {
	e := newEnv(time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC))
	b := e.reservation("2024-03-05", "2024-03-08", domain.StatusCheckedIn, domain.ReminderCheckInTomorrow)

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: b.ID, CheckInDate: day("2024-03-06"), CheckOutDate: day("2024-03-09")})
	require.ErrorIs(t, err, domain.ErrInvalidWindow)

	_, err = e.uc.Execute(context.Background(), &Request{BookingID: b.ID, CheckOutDate: day("2024-03-10")})
	require.NoError(t, err)

	stored := e.bookings.Get(b.ID)
	assert.Equal(t, domain.StatusCheckedIn, stored.Status)
	assert.Equal(t, "2024-03-05..2024-03-10", stored.Window().String())
	assert.True(t, stored.ReminderFlags.Has(domain.ReminderCheckInTomorrow))
}
