package resources

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/fakes"
	"github.com/m04kA/SMC-BookingEngine/pkg/ptr"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

func newService(t *testing.T) (*Service, *fakes.TxManager) {
	t.Helper()

	store := fakes.NewResourceStore()
	store.AddResource(&domain.Resource{ID: 1, Kind: domain.ResourceProfessional, Name: "Anna", IsActive: true, Timezone: "Europe/Moscow"})
	store.AddResource(&domain.Resource{ID: 2, Kind: domain.ResourceRoom, Name: "101", IsActive: true, Capacity: 2, OccupiedByBookingID: ptr.Ptr(int64(7))})
	store.AddService(&domain.Service{ID: 10, ProfessionalID: 1, Name: "Haircut", DurationMinutes: 60, IsActive: true})
	store.AddSchedule(domain.NewSchedule(1,
		domain.DaySchedule{
			Weekday:    time.Monday,
			IsWorking:  true,
			StartTime:  types.MustFromString("09:00"),
			EndTime:    types.MustFromString("18:00"),
			BreakStart: ptr.Ptr(types.MustFromString("12:00")),
			BreakEnd:   ptr.Ptr(types.MustFromString("13:00")),
		},
		domain.DaySchedule{
			Weekday:   time.Tuesday,
			IsWorking: true,
			StartTime: types.MustFromString("10:00"),
			EndTime:   types.MustFromString("16:00"),
		},
	))

	tx := &fakes.TxManager{}
	return NewService(store, tx, domain.DefaultBookingPolicy(), fakes.Logger{}), tx
}

func TestGetResource_Professional(t *testing.T) {
	svc, _ := newService(t)

	resp, err := svc.GetResource(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "professional", resp.Kind)
	assert.Equal(t, "Europe/Moscow", resp.Timezone)
	assert.Equal(t, domain.DefaultSlotStepMinutes, resp.Policy.SlotStepMinutes)
	assert.Equal(t, domain.DefaultMinBookingNoticeMinutes, resp.Policy.MinBookingNoticeMinutes)

	require.Len(t, resp.Schedule, 7)
	monday := resp.Schedule[0]
	assert.Equal(t, "Monday", monday.Weekday)
	assert.True(t, monday.IsWorking)
	assert.Equal(t, "09:00", monday.StartTime)
	assert.Equal(t, ptr.Ptr("12:00"), monday.BreakStart)
	assert.Equal(t, ptr.Ptr("13:00"), monday.BreakEnd)

	tuesday := resp.Schedule[1]
	assert.Nil(t, tuesday.BreakStart)

	sunday := resp.Schedule[6]
	assert.Equal(t, "Sunday", sunday.Weekday)
	assert.False(t, sunday.IsWorking)
	assert.Empty(t, sunday.StartTime)
}

func TestGetResource_Room(t *testing.T) {
	svc, _ := newService(t)

	resp, err := svc.GetResource(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, "room", resp.Kind)
	assert.Equal(t, 2, resp.Capacity)
	assert.Equal(t, "UTC", resp.Timezone)
	assert.Equal(t, ptr.Ptr(int64(7)), resp.OccupiedByBookingID)
	assert.Nil(t, resp.Schedule)
}

func TestGetResource_Errors(t *testing.T) {
	svc, tx := newService(t)

	_, err := svc.GetResource(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrResourceInactiveOrNotFound)

	tx.Timeout = true
	_, err = svc.GetResource(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrPersistenceTimeout)
}

func TestGetService(t *testing.T) {
	svc, _ := newService(t)

	resp, err := svc.GetService(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "Haircut", resp.Name)
	assert.Equal(t, 60, resp.DurationMinutes)

	_, err = svc.GetService(context.Background(), 2, 10)
	assert.ErrorIs(t, err, domain.ErrServiceNotFound)

	_, err = svc.GetService(context.Background(), 1, 99)
	assert.ErrorIs(t, err, domain.ErrServiceNotFound)
}
