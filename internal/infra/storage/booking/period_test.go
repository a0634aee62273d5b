package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

func TestPeriodLiteral(t *testing.T) {
	appointment := &domain.Booking{
		Kind: domain.KindAppointment,
		Appointment: &domain.AppointmentDetails{
			Date:            time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			StartTime:       types.MustFromString("23:30"),
			DurationMinutes: 30,
		},
	}
	got, err := periodLiteral(appointment)
	require.NoError(t, err)
	assert.Equal(t, "[2024-03-04 23:30:00,2024-03-05 00:00:00)", got)

	reservation := &domain.Booking{
		Kind: domain.KindReservation,
		Reservation: &domain.ReservationDetails{
			CheckInDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			CheckOutDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		},
	}
	got, err = periodLiteral(reservation)
	require.NoError(t, err)
	assert.Equal(t, "[2024-03-01 00:00:00,2024-03-05 00:00:00)", got)

	_, err = periodLiteral(&domain.Booking{Kind: domain.KindReservation})
	assert.ErrorIs(t, err, ErrInvalidBooking)
}

func TestDateRangeLiteral(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "[2024-03-01,2024-03-02)", dateRangeLiteral(from, from.AddDate(0, 0, 1)))
}
