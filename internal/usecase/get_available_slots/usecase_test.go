package get_available_slots

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/fakes"
	"github.com/m04kA/SMC-BookingEngine/pkg/ptr"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

func day(s string) time.Time {
	d, err := time.Parse(domain.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return d
}

func starts(slots []domain.TimeSlot) []string {
	result := make([]string, 0, len(slots))
	for _, s := range slots {
		result = append(result, string(s.StartTime))
	}
	return result
}

func setup(now time.Time) (*UseCase, *fakes.BookingStore, *fakes.ResourceStore) {
	resources := fakes.NewResourceStore()
	resources.AddResource(&domain.Resource{ID: 1, Kind: domain.ResourceProfessional, IsActive: true})
	resources.AddResource(&domain.Resource{ID: 2, Kind: domain.ResourceRoom, IsActive: true, Capacity: 2})
	resources.AddService(&domain.Service{ID: 10, ProfessionalID: 1, Name: "Haircut", DurationMinutes: 60, IsActive: true})
	resources.AddSchedule(domain.NewSchedule(1, domain.DaySchedule{
		Weekday:    time.Monday,
		IsWorking:  true,
		StartTime:  "09:00",
		EndTime:    "18:00",
		BreakStart: ptr.Ptr(types.TimeString("12:00")),
		BreakEnd:   ptr.Ptr(types.TimeString("13:00")),
	}))

	bookings := fakes.NewBookingStore()
	uc := NewUseCase(bookings, resources, &fakes.TxManager{}, domain.DefaultBookingPolicy(), fakes.Logger{})
	uc.timeProvider = fakes.NewClock(now)
	return uc, bookings, resources
}

func TestSlots_FreeDay(t *testing.T) {
	uc, _, _ := setup(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{ResourceID: 1, ServiceID: 10, Date: day("2024-03-04")})
	require.NoError(t, err)

	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Equal(t, []string{
		"09:00", "09:30", "10:00", "10:30", "11:00",
		"13:00", "13:30", "14:00", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00",
	}, starts(resp.Slots))
}

func TestSlots_ExcludeBooked(t *testing.T) {
	uc, bookings, _ := setup(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	bookings.Put(&domain.Booking{
		Kind:       domain.KindAppointment,
		ResourceID: 1,
		Status:     domain.StatusConfirmed,
		Appointment: &domain.AppointmentDetails{
			Date:            day("2024-03-04"),
			StartTime:       "14:00",
			DurationMinutes: 60,
		},
	})
	bookings.Put(&domain.Booking{
		Kind:       domain.KindAppointment,
		ResourceID: 1,
		Status:     domain.StatusCancelled,
		Appointment: &domain.AppointmentDetails{
			Date:            day("2024-03-04"),
			StartTime:       "09:00",
			DurationMinutes: 60,
		},
	})

	resp, err := uc.Execute(context.Background(), &Request{ResourceID: 1, ServiceID: 10, Date: day("2024-03-04")})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"09:00", "09:30", "10:00", "10:30", "11:00",
		"13:00", "15:00", "15:30", "16:00", "16:30", "17:00",
	}, starts(resp.Slots))
}

func TestSlots_TodayRespectsNotice(t *testing.T) {
	uc, _, _ := setup(time.Date(2024, 3, 4, 13, 10, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{ResourceID: 1, ServiceID: 10, Date: day("2024-03-04")})
	require.NoError(t, err)

	assert.Equal(t, []string{"14:30", "15:00", "15:30", "16:00", "16:30", "17:00"}, starts(resp.Slots))
}

func TestSlots_ResourceTimezone(t *testing.T) {
	uc, _, resources := setup(time.Date(2024, 3, 4, 10, 10, 0, 0, time.UTC))
	resources.AddResource(&domain.Resource{ID: 1, Kind: domain.ResourceProfessional, IsActive: true, Timezone: "Europe/Moscow"})

	// 13:10 по Москве
	resp, err := uc.Execute(context.Background(), &Request{ResourceID: 1, ServiceID: 10, Date: day("2024-03-04")})
	require.NoError(t, err)
	assert.Equal(t, "14:30", string(resp.Slots[0].StartTime))
}

func TestSlots_EmptyResults(t *testing.T) {
	uc, _, _ := setup(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	resp, err := uc.Execute(ctx, &Request{ResourceID: 1, ServiceID: 10, Date: day("2024-03-05")})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)

	resp, err = uc.Execute(ctx, &Request{ResourceID: 1, ServiceID: 10, Date: day("2024-02-26")})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestSlots_Errors(t *testing.T) {
	uc, _, resources := setup(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	resources.AddResource(&domain.Resource{ID: 3, Kind: domain.ResourceProfessional, IsActive: false})
	ctx := context.Background()

	_, err := uc.Execute(ctx, &Request{ResourceID: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Execute(ctx, &Request{ResourceID: 3, ServiceID: 10, Date: day("2024-03-04")})
	assert.ErrorIs(t, err, domain.ErrResourceInactiveOrNotFound)

	_, err = uc.Execute(ctx, &Request{ResourceID: 1, ServiceID: 99, Date: day("2024-03-04")})
	assert.ErrorIs(t, err, domain.ErrServiceNotFound)

	uc.policy.AdvanceBookingDays = 2
	_, err = uc.Execute(ctx, &Request{ResourceID: 1, ServiceID: 10, Date: day("2024-03-04")})
	assert.ErrorIs(t, err, domain.ErrDateTooFarInFuture)
}

func TestStayAvailability(t *testing.T) {
	uc, bookings, _ := setup(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	bookings.Put(&domain.Booking{
		Kind:       domain.KindReservation,
		ResourceID: 2,
		Status:     domain.StatusConfirmed,
		Reservation: &domain.ReservationDetails{
			CheckInDate:  day("2024-03-01"),
			CheckOutDate: day("2024-03-05"),
			GuestCount:   1,
		},
	})
	ctx := context.Background()

	resp, err := uc.Execute(ctx, &Request{ResourceID: 2, CheckInDate: day("2024-03-05"), CheckOutDate: day("2024-03-08")})
	require.NoError(t, err)
	assert.True(t, resp.Available)

	resp, err = uc.Execute(ctx, &Request{ResourceID: 2, CheckInDate: day("2024-03-04"), CheckOutDate: day("2024-03-06")})
	require.NoError(t, err)
	assert.False(t, resp.Available)

	_, err = uc.Execute(ctx, &Request{ResourceID: 2, CheckInDate: day("2024-03-06"), CheckOutDate: day("2024-03-06")})
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}
