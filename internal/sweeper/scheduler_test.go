package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/fakes"
)

func TestNewScheduler_InvalidSpec(t *testing.T) {
	e := newEnv(time.Now())
	cfg := DefaultScheduleConfig()
	cfg.TodaySpec = "every day"

	_, err := NewScheduler(e.sweeper, cfg, fakes.Logger{})
	assert.Error(t, err)
}

func TestScheduler_StartStop(t *testing.T) {
	e := newEnv(time.Now())
	cfg := DefaultScheduleConfig()
	cfg.CleanupSpec = ""

	s, err := NewScheduler(e.sweeper, cfg, fakes.Logger{})
	require.NoError(t, err)

	s.Start(context.Background())
	assert.Len(t, s.cron.Entries(), 3)
	s.Stop(time.Second)
}
