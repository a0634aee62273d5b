package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/fakes"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/create_booking"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-BookingEngine/internal/usecase/transition_booking"
	"github.com/m04kA/SMC-BookingEngine/pkg/ptr"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

const (
	professionalID = int64(1)
	roomID         = int64(2)
	haircutID      = int64(10)
)

type recordedMetrics struct {
	ops []string
}

func (m *recordedMetrics) ObserveBookingOperation(operation, result string) {
	m.ops = append(m.ops, operation+":"+result)
}

type env struct {
	svc       *Service
	bookings  *fakes.BookingStore
	resources *fakes.ResourceStore
	notifier  *fakes.Notifier
	tx        *fakes.TxManager
	metrics   *recordedMetrics
}

func newEnv(t *testing.T) *env {
	t.Helper()

	resources := fakes.NewResourceStore()
	resources.AddResource(&domain.Resource{ID: professionalID, Kind: domain.ResourceProfessional, Name: "Anna", IsActive: true})
	resources.AddResource(&domain.Resource{ID: roomID, Kind: domain.ResourceRoom, Name: "101", IsActive: true, Capacity: 2})
	resources.AddService(&domain.Service{ID: haircutID, ProfessionalID: professionalID, Name: "Haircut", DurationMinutes: 60, IsActive: true})
	resources.AddSchedule(domain.NewSchedule(professionalID, domain.DaySchedule{
		Weekday:    time.Monday,
		IsWorking:  true,
		StartTime:  types.MustFromString("09:00"),
		EndTime:    types.MustFromString("18:00"),
		BreakStart: ptr.Ptr(types.MustFromString("12:00")),
		BreakEnd:   ptr.Ptr(types.MustFromString("13:00")),
	}))

	e := &env{
		bookings:  fakes.NewBookingStore(),
		resources: resources,
		notifier:  &fakes.Notifier{},
		tx:        &fakes.TxManager{},
		metrics:   &recordedMetrics{},
	}

	// пятница 2024-03-01 10:00 UTC
	clock := fakes.NewClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	policy := domain.DefaultBookingPolicy()
	log := fakes.Logger{}

	e.svc = NewService(
		create_booking.NewUseCase(e.bookings, e.resources, e.notifier, e.tx, policy, log).WithTimeProvider(clock),
		get_available_slots.NewUseCase(e.bookings, e.resources, e.tx, policy, log).WithTimeProvider(clock),
		reschedule_booking.NewUseCase(e.bookings, e.resources, e.notifier, e.tx, policy, log).WithTimeProvider(clock),
		transition_booking.NewUseCase(e.bookings, e.resources, e.notifier, e.tx, log).WithTimeProvider(clock),
		e.bookings,
		e.resources,
		e.tx,
		e.metrics,
		log,
	)
	e.svc.timeProvider = clock
	return e
}

func (e *env) createAppointment(t *testing.T, start string) *models.BookingResponse {
	t.Helper()

	resp, err := e.svc.CreateBooking(context.Background(), &models.CreateBookingRequest{
		ResourceID: professionalID,
		ClientID:   100,
		ServiceID:  haircutID,
		Date:       "2024-03-04",
		StartTime:  start,
	})
	require.NoError(t, err)
	return resp
}

func TestCheckAvailability_Appointment(t *testing.T) {
	e := newEnv(t)
	e.createAppointment(t, "10:00")

	resp, err := e.svc.CheckAvailability(context.Background(), &models.CheckAvailabilityRequest{
		ResourceID: professionalID,
		ServiceID:  haircutID,
		Date:       "2024-03-04",
	})
	require.NoError(t, err)

	assert.Equal(t, "professional", resp.Kind)
	assert.Equal(t, "2024-03-04", resp.Date)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Nil(t, resp.Available)
	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, models.SlotResponse{StartTime: "09:00", EndTime: "10:00"}, resp.Slots[0])
	for _, slot := range resp.Slots {
		assert.NotEqual(t, "10:00", slot.StartTime, "booked slot must be excluded")
		assert.NotEqual(t, "09:30", slot.StartTime, "overlapping slot must be excluded")
	}
}

func TestCheckAvailability_Room(t *testing.T) {
	e := newEnv(t)

	resp, err := e.svc.CheckAvailability(context.Background(), &models.CheckAvailabilityRequest{
		ResourceID:   roomID,
		CheckInDate:  "2024-03-01",
		CheckOutDate: "2024-03-05",
	})
	require.NoError(t, err)

	assert.Equal(t, "room", resp.Kind)
	require.NotNil(t, resp.Available)
	assert.True(t, *resp.Available)
	assert.Empty(t, resp.Slots)
}

func TestCheckAvailability_InvalidDate(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.CheckAvailability(context.Background(), &models.CheckAvailabilityRequest{
		ResourceID: professionalID,
		ServiceID:  haircutID,
		Date:       "04.03.2024",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, []string{"check_availability:rejected"}, e.metrics.ops)
}

func TestCreateBooking_ConflictReported(t *testing.T) {
	e := newEnv(t)

	created := e.createAppointment(t, "14:00")
	assert.Equal(t, "scheduled", created.Status)
	assert.Equal(t, "2024-03-04 14:00-15:00", created.Window)
	require.NotNil(t, created.Appointment)
	assert.Equal(t, "15:00", created.Appointment.EndTime)
	assert.ElementsMatch(t, []string{"confirmed", "cancelled", "no_show"}, created.AllowedTransitions)

	_, err := e.svc.CreateBooking(context.Background(), &models.CreateBookingRequest{
		ResourceID: professionalID,
		ClientID:   101,
		ServiceID:  haircutID,
		Date:       "2024-03-04",
		StartTime:  "13:30",
	})
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
	assert.Equal(t, []string{"create:success", "create:conflict"}, e.metrics.ops)
}

func TestCreateBooking_InvalidTime(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.CreateBooking(context.Background(), &models.CreateBookingRequest{
		ResourceID: professionalID,
		ClientID:   100,
		ServiceID:  haircutID,
		Date:       "2024-03-04",
		StartTime:  "25:00",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, e.bookings.Writes)
}

func TestCreateBooking_Reservation(t *testing.T) {
	e := newEnv(t)

	resp, err := e.svc.CreateBooking(context.Background(), &models.CreateBookingRequest{
		ResourceID:   roomID,
		ClientID:     200,
		CheckInDate:  "2024-03-01",
		CheckOutDate: "2024-03-05",
		GuestCount:   2,
	})
	require.NoError(t, err)

	assert.Equal(t, "reservation", resp.Kind)
	assert.Equal(t, "confirmed", resp.Status)
	require.NotNil(t, resp.Reservation)
	assert.Equal(t, 4, resp.Reservation.Nights)
	assert.Nil(t, resp.Appointment)
}

func TestRescheduleBooking(t *testing.T) {
	e := newEnv(t)
	created := e.createAppointment(t, "10:00")

	resp, err := e.svc.RescheduleBooking(context.Background(), created.ID, &models.RescheduleBookingRequest{
		Date:      "2024-03-04",
		StartTime: "15:00",
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-04 15:00-16:00", resp.Window)
	assert.Equal(t, created.Status, resp.Status)
	assert.Equal(t, 1, e.notifier.Count(domain.TemplateBookingRescheduled))
}

func TestTransitionBooking(t *testing.T) {
	e := newEnv(t)
	created := e.createAppointment(t, "10:00")

	_, err := e.svc.TransitionBooking(context.Background(), created.ID, &models.TransitionBookingRequest{Status: "completed"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	resp, err := e.svc.TransitionBooking(context.Background(), created.ID, &models.TransitionBookingRequest{
		Status: "cancelled",
		Reason: ptr.Ptr("client asked"),
	})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, ptr.Ptr("client asked"), resp.CancellationReason)
	assert.NotNil(t, resp.CancelledAt)
	assert.Empty(t, resp.AllowedTransitions)

	_, err = e.svc.TransitionBooking(context.Background(), created.ID, &models.TransitionBookingRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, []string{"create:success", "transition:rejected", "transition:success", "transition:rejected"}, e.metrics.ops)
}

func TestGetByID(t *testing.T) {
	e := newEnv(t)
	created := e.createAppointment(t, "10:00")

	resp, err := e.svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.ID)

	_, err = e.svc.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	e.tx.Timeout = true
	_, err = e.svc.GetByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrPersistenceTimeout)
}

func TestListResourceBookings(t *testing.T) {
	e := newEnv(t)
	first := e.createAppointment(t, "10:00")
	second := e.createAppointment(t, "14:00")

	_, err := e.svc.TransitionBooking(context.Background(), second.ID, &models.TransitionBookingRequest{Status: "cancelled"})
	require.NoError(t, err)

	active, err := e.svc.ListResourceBookings(context.Background(), &models.ListResourceBookingsRequest{ResourceID: professionalID})
	require.NoError(t, err)
	require.Len(t, active.Bookings, 1)
	assert.Equal(t, first.ID, active.Bookings[0].ID)

	all, err := e.svc.ListResourceBookings(context.Background(), &models.ListResourceBookingsRequest{
		ResourceID:      professionalID,
		StartDate:       ptr.Ptr("2024-03-04"),
		EndDate:         ptr.Ptr("2024-03-04"),
		IncludeInactive: true,
	})
	require.NoError(t, err)
	assert.Len(t, all.Bookings, 2)

	_, err = e.svc.ListResourceBookings(context.Background(), &models.ListResourceBookingsRequest{ResourceID: 404})
	assert.ErrorIs(t, err, domain.ErrResourceInactiveOrNotFound)

	_, err = e.svc.ListResourceBookings(context.Background(), &models.ListResourceBookingsRequest{
		ResourceID: professionalID,
		StartDate:  ptr.Ptr("2024-03-05"),
		EndDate:    ptr.Ptr("2024-03-04"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.svc.ListResourceBookings(context.Background(), &models.ListResourceBookingsRequest{
		ResourceID: professionalID,
		Status:     ptr.Ptr("pending"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListClientBookings(t *testing.T) {
	e := newEnv(t)
	e.createAppointment(t, "10:00")

	resp, err := e.svc.ListClientBookings(context.Background(), &models.ListClientBookingsRequest{ClientID: 100})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 1)

	resp, err = e.svc.ListClientBookings(context.Background(), &models.ListClientBookingsRequest{ClientID: 555})
	require.NoError(t, err)
	assert.NotNil(t, resp.Bookings)
	assert.Empty(t, resp.Bookings)

	_, err = e.svc.ListClientBookings(context.Background(), &models.ListClientBookingsRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeleteBooking(t *testing.T) {
	e := newEnv(t)

	t.Run("future active booking is kept", func(t *testing.T) {
		created := e.createAppointment(t, "10:00")

		err := e.svc.DeleteBooking(context.Background(), created.ID)
		assert.ErrorIs(t, err, domain.ErrCannotDelete)
		assert.NotNil(t, e.bookings.Get(created.ID))
	})

	t.Run("cancelled booking is deleted", func(t *testing.T) {
		created := e.createAppointment(t, "15:00")
		_, err := e.svc.TransitionBooking(context.Background(), created.ID, &models.TransitionBookingRequest{Status: "cancelled"})
		require.NoError(t, err)

		require.NoError(t, e.svc.DeleteBooking(context.Background(), created.ID))
		assert.Nil(t, e.bookings.Get(created.ID))
	})

	t.Run("past active booking is deleted", func(t *testing.T) {
		past := e.bookings.Put(&domain.Booking{
			Kind:       domain.KindAppointment,
			ResourceID: professionalID,
			ClientID:   7,
			Status:     domain.StatusConfirmed,
			Appointment: &domain.AppointmentDetails{
				ServiceID:       haircutID,
				Date:            time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC),
				StartTime:       types.MustFromString("10:00"),
				DurationMinutes: 60,
			},
		})

		require.NoError(t, e.svc.DeleteBooking(context.Background(), past.ID))
		assert.Nil(t, e.bookings.Get(past.ID))
	})

	t.Run("missing booking", func(t *testing.T) {
		err := e.svc.DeleteBooking(context.Background(), 999)
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	})
}
