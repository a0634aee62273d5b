package availability

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

func appointment(id int64, day, start string, duration int, status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:         id,
		Kind:       domain.KindAppointment,
		ResourceID: 1,
		Status:     status,
		Appointment: &domain.AppointmentDetails{
			Date:            mustDate(day),
			StartTime:       types.MustFromString(start),
			DurationMinutes: duration,
		},
	}
}

func reservation(id int64, in, out string, status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:         id,
		Kind:       domain.KindReservation,
		ResourceID: 2,
		Status:     status,
		Reservation: &domain.ReservationDetails{
			CheckInDate:  mustDate(in),
			CheckOutDate: mustDate(out),
			GuestCount:   1,
		},
	}
}

func TestHasConflict_Appointments(t *testing.T) {
	existing := []*domain.Booking{appointment(1, "2024-03-04", "14:00", 60, domain.StatusConfirmed)}
	day := mustDate("2024-03-04")

	assert.True(t, HasConflict(domain.MinuteInterval(day, "13:30", 60), existing, 0))
	assert.False(t, HasConflict(domain.MinuteInterval(day, "15:00", 60), existing, 0))
}

func TestHasConflict_Reservations(t *testing.T) {
	existing := []*domain.Booking{reservation(1, "2024-03-01", "2024-03-05", domain.StatusConfirmed)}

	b := domain.DayInterval(mustDate("2024-03-05"), mustDate("2024-03-08"))
	c := domain.DayInterval(mustDate("2024-03-04"), mustDate("2024-03-06"))

	assert.False(t, HasConflict(b, existing, 0))
	assert.True(t, HasConflict(c, existing, 0))
}

func TestHasConflict_IgnoresInactive(t *testing.T) {
	day := mustDate("2024-03-04")
	candidate := domain.MinuteInterval(day, "14:00", 60)

	for _, status := range []domain.BookingStatus{domain.StatusCancelled, domain.StatusNoShow, domain.StatusCompleted} {
		existing := []*domain.Booking{appointment(1, "2024-03-04", "14:00", 60, status)}
		assert.False(t, HasConflict(candidate, existing, 0), status)
	}

	rooms := []*domain.Booking{reservation(1, "2024-03-01", "2024-03-05", domain.StatusCheckedOut)}
	assert.False(t, HasConflict(domain.DayInterval(mustDate("2024-03-02"), mustDate("2024-03-03")), rooms, 0))

	checkedIn := []*domain.Booking{reservation(1, "2024-03-01", "2024-03-05", domain.StatusCheckedIn)}
	assert.True(t, HasConflict(domain.DayInterval(mustDate("2024-03-02"), mustDate("2024-03-03")), checkedIn, 0))
}

func TestFindConflict_ExcludesSelf(t *testing.T) {
	self := appointment(7, "2024-03-04", "14:00", 60, domain.StatusScheduled)
	other := appointment(8, "2024-03-04", "16:00", 60, domain.StatusScheduled)
	existing := []*domain.Booking{other, nil, self}

	moved := domain.MinuteInterval(mustDate("2024-03-04"), "14:30", 60)
	assert.Nil(t, FindConflict(moved, existing, 7))

	intoOther := domain.MinuteInterval(mustDate("2024-03-04"), "15:30", 60)
	got := FindConflict(intoOther, existing, 7)
	require.NotNil(t, got)
	assert.Equal(t, int64(8), got.ID)
}

// Детектор не должен зависеть от порядка входных бронирований
func TestHasConflict_OrderIndependent(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	day := mustDate("2024-03-04")

	var existing []*domain.Booking
	for i := range 8 {
		start, _ := types.FromMinutes(9*60 + i*60)
		existing = append(existing, appointment(int64(i+1), "2024-03-04", start.String(), 45, domain.StatusConfirmed))
	}

	for i := 0; i < 200; i++ {
		startMin := 8*60 + rnd.Intn(10*60)
		start, _ := types.FromMinutes(startMin)
		candidate := domain.MinuteInterval(day, start, 1+rnd.Intn(90))

		want := HasConflict(candidate, existing, 0)
		shuffled := slices.Clone(existing)
		rnd.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, HasConflict(candidate, shuffled, 0))
	}
}

func TestFreeSlots(t *testing.T) {
	day := mustDate("2024-03-04")
	existing := []*domain.Booking{
		appointment(1, "2024-03-04", "14:00", 60, domain.StatusConfirmed),
		appointment(2, "2024-03-04", "10:00", 60, domain.StatusCancelled),
	}

	free := FreeSlots(day, GenerateSlots(mondaySchedule(), day, 60, 30), existing)

	var got []string
	for _, s := range free {
		got = append(got, s.String())
	}
	assert.Contains(t, got, "10:00-11:00")
	assert.Contains(t, got, "13:00-14:00")
	assert.Contains(t, got, "15:00-16:00")
	assert.NotContains(t, got, "13:30-14:30")
	assert.NotContains(t, got, "14:00-15:00")
	assert.NotContains(t, got, "14:30-15:30")
}
