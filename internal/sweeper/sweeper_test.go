package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

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
	sweeper   *Sweeper
	clock     *fakes.Clock
	bookings  *fakes.BookingStore
	resources *fakes.ResourceStore
	log       *fakes.NotificationLog
	notifier  *fakes.Notifier
}

func newEnv(now time.Time) *env {
	e := &env{
		clock:     fakes.NewClock(now),
		bookings:  fakes.NewBookingStore(),
		resources: fakes.NewResourceStore(),
		log:       &fakes.NotificationLog{},
		notifier:  &fakes.Notifier{},
	}
	e.resources.AddResource(&domain.Resource{ID: 1, Kind: domain.ResourceProfessional, IsActive: true})
	e.resources.AddResource(&domain.Resource{ID: 2, Kind: domain.ResourceRoom, IsActive: true, Capacity: 2})
	e.sweeper = New(e.bookings, e.resources, e.log, e.notifier, nil, DefaultConfig(), fakes.Logger{}).WithClock(e.clock)
	return e
}

func (e *env) appointment(resourceID int64, date, start string) *domain.Booking {
	return e.bookings.Put(&domain.Booking{
		Kind:       domain.KindAppointment,
		ResourceID: resourceID,
		ClientID:   100,
		Status:     domain.StatusConfirmed,
		Appointment: &domain.AppointmentDetails{
			Date:            day(date),
			StartTime:       types.TimeString(start),
			DurationMinutes: 60,
		},
	})
}

func (e *env) reservation(status domain.BookingStatus, in, out string) *domain.Booking {
	return e.bookings.Put(&domain.Booking{
		Kind:       domain.KindReservation,
		ResourceID: 2,
		ClientID:   100,
		Status:     status,
		Reservation: &domain.ReservationDetails{
			CheckInDate:  day(in),
			CheckOutDate: day(out),
			GuestCount:   1,
		},
	})
}

func TestSweepTomorrow_CheckInReminderOnce(t *testing.T) {
	e := newEnv(time.Date(2024, 3, 4, 0, 1, 0, 0, time.UTC))
	b := e.reservation(domain.StatusConfirmed, "2024-03-05", "2024-03-08")
	ctx := context.Background()

	sent, err := e.sweeper.SweepTomorrow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []fakes.Sent{{BookingID: b.ID, Template: domain.TemplateCheckInTomorrow}}, e.notifier.Sent())
	assert.True(t, e.bookings.Get(b.ID).ReminderFlags.Has(domain.ReminderCheckInTomorrow))

	e.clock.Set(time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC))
	sent, err = e.sweeper.SweepTomorrow(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Len(t, e.notifier.Sent(), 1)
	assert.Equal(t, domain.StatusConfirmed, e.bookings.Get(b.ID).Status)
}

func TestSweepTomorrow_Appointments(t *testing.T) {
	e := newEnv(time.Date(2024, 3, 3, 18, 0, 0, 0, time.UTC))
	tomorrow := e.appointment(1, "2024-03-04", "10:00")
	e.appointment(1, "2024-03-05", "10:00")

	sent, err := e.sweeper.SweepTomorrow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []fakes.Sent{{BookingID: tomorrow.ID, Template: domain.TemplateReminderTomorrow}}, e.notifier.Sent())
}

func TestSweepUpcoming_HourBeforeIdempotent(t *testing.T) {
	e := newEnv(time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC))
	b := e.appointment(1, "2024-03-04", "10:00")
	ctx := context.Background()

	// за три часа ещё рано
	sent, err := e.sweeper.SweepUpcoming(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)

	e.clock.Set(time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC))
	sent, err = e.sweeper.SweepUpcoming(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	e.clock.Advance(15 * time.Minute)
	sent, err = e.sweeper.SweepUpcoming(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)

	assert.Equal(t, 1, e.notifier.Count(domain.TemplateReminderHourBefore))
	assert.Equal(t, domain.ReminderHourBefore, e.bookings.Get(b.ID).ReminderFlags)
}

func TestSweepUpcoming_SkipsTooClose(t *testing.T) {
	e := newEnv(time.Date(2024, 3, 4, 9, 45, 0, 0, time.UTC))
	e.appointment(1, "2024-03-04", "10:00")

	sent, err := e.sweeper.SweepUpcoming(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestSweep_FailedSendRetriedNextTick(t *testing.T) {
	e := newEnv(time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC))
	b := e.appointment(1, "2024-03-04", "10:00")
	ctx := context.Background()

	e.notifier.Fail = errors.New("broker down")
	sent, err := e.sweeper.SweepUpcoming(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.False(t, e.bookings.Get(b.ID).ReminderFlags.Has(domain.ReminderHourBefore))

	e.notifier.Fail = nil
	e.clock.Advance(15 * time.Minute)
	sent, err = e.sweeper.SweepUpcoming(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.True(t, e.bookings.Get(b.ID).ReminderFlags.Has(domain.ReminderHourBefore))
}

func TestSweepToday(t *testing.T) {
	e := newEnv(time.Date(2024, 3, 8, 7, 0, 0, 0, time.UTC))
	today := e.appointment(1, "2024-03-08", "15:00")
	due := e.reservation(domain.StatusCheckedIn, "2024-03-05", "2024-03-08")
	e.reservation(domain.StatusCheckedIn, "2024-03-06", "2024-03-09")

	sent, err := e.sweeper.SweepToday(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, []fakes.Sent{
		{BookingID: today.ID, Template: domain.TemplateReminderToday},
		{BookingID: due.ID, Template: domain.TemplateCheckoutPending},
	}, e.notifier.Sent())

	stored := e.bookings.Get(due.ID)
	assert.Equal(t, domain.StatusCheckedIn, stored.Status)
	assert.True(t, stored.ReminderFlags.Has(domain.ReminderCheckoutPending))
}

func TestSweep_ResourceTimezone(t *testing.T) {
	e := newEnv(time.Date(2024, 3, 4, 21, 30, 0, 0, time.UTC))
	e.resources.AddResource(&domain.Resource{ID: 3, Kind: domain.ResourceProfessional, IsActive: true, Timezone: "Europe/Moscow"})
	b := e.appointment(3, "2024-03-05", "11:00")
	ctx := context.Background()

	// в Москве уже 5 марта
	sent, err := e.sweeper.SweepTomorrow(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)

	sent, err = e.sweeper.SweepToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.True(t, e.bookings.Get(b.ID).ReminderFlags.Has(domain.ReminderSameDay))
}

func TestSweep_CancelledContext(t *testing.T) {
	e := newEnv(time.Date(2024, 3, 3, 18, 0, 0, 0, time.UTC))
	e.appointment(1, "2024-03-04", "10:00")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.sweeper.SweepTomorrow(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, e.notifier.Sent())
}

func TestCleanupNotifications(t *testing.T) {
	e := newEnv(time.Date(2024, 6, 1, 3, 30, 0, 0, time.UTC))
	ctx := context.Background()
	require.NoError(t, e.log.Create(ctx, &domain.Notification{BookingID: 1, CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}))
	require.NoError(t, e.log.Create(ctx, &domain.Notification{BookingID: 2, CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}))

	deleted, err := e.sweeper.CleanupNotifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	require.Len(t, e.log.Records(), 1)
	assert.Equal(t, int64(2), e.log.Records()[0].BookingID)
}

func TestRun_UnknownPass(t *testing.T) {
	e := newEnv(time.Now())
	assert.ErrorIs(t, e.sweeper.Run(context.Background(), "weekly"), ErrUnknownPass)
}

func TestRunAll(t *testing.T) {
	e := newEnv(time.Date(2024, 3, 4, 0, 1, 0, 0, time.UTC))
	e.reservation(domain.StatusConfirmed, "2024-03-05", "2024-03-08")

	require.NoError(t, e.sweeper.RunAll(context.Background()))
	require.NoError(t, e.sweeper.RunAll(context.Background()))
	assert.Equal(t, 1, e.notifier.Count(domain.TemplateCheckInTomorrow))
}
