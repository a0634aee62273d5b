package domain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

func date(s string) time.Time {
	d, err := time.Parse(DateFormat, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestInterval_Overlaps_Appointments(t *testing.T) {
	day := date("2024-03-04")
	existing := MinuteInterval(day, types.MustFromString("14:00"), 60)

	tests := []struct {
		name      string
		candidate Interval
		want      bool
	}{
		{"overlaps start", MinuteInterval(day, types.MustFromString("13:30"), 60), true},
		{"touches end", MinuteInterval(day, types.MustFromString("15:00"), 60), false},
		{"touches start", MinuteInterval(day, types.MustFromString("13:00"), 60), false},
		{"inside", MinuteInterval(day, types.MustFromString("14:15"), 30), true},
		{"covers", MinuteInterval(day, types.MustFromString("13:00"), 180), true},
		{"same time other day", MinuteInterval(date("2024-03-05"), types.MustFromString("14:00"), 60), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, existing.Overlaps(tt.candidate))
			assert.Equal(t, tt.want, tt.candidate.Overlaps(existing))
		})
	}
}

func TestInterval_Overlaps_Reservations(t *testing.T) {
	a := DayInterval(date("2024-03-01"), date("2024-03-05"))

	assert.False(t, a.Overlaps(DayInterval(date("2024-03-05"), date("2024-03-08"))))
	assert.True(t, a.Overlaps(DayInterval(date("2024-03-04"), date("2024-03-06"))))
	assert.Equal(t, int64(4), a.Length())
}

func TestInterval_DifferentGranularity(t *testing.T) {
	m := Interval{Start: 0, End: 100, Granularity: GranularityMinute}
	d := Interval{Start: 0, End: 100, Granularity: GranularityDay}
	assert.False(t, m.Overlaps(d))
}

// Случайные пары: пересекающиеся по построению должны пересекаться,
// касающиеся по построению не должны.
func TestInterval_OverlapProperty(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 5000; i++ {
		g := GranularityMinute
		if i%2 == 1 {
			g = GranularityDay
		}
		start := rnd.Int63n(100000)
		length := 1 + rnd.Int63n(500)
		a := Interval{Start: start, End: start + length, Granularity: g}

		// b начинается строго внутри a
		offset := rnd.Int63n(length)
		b := Interval{Start: start + offset, End: start + offset + 1 + rnd.Int63n(500), Granularity: g}
		assert.True(t, a.Overlaps(b), "a=%v b=%v", a, b)
		assert.True(t, b.Overlaps(a), "a=%v b=%v", a, b)

		after := Interval{Start: a.End, End: a.End + 1 + rnd.Int63n(500), Granularity: g}
		before := Interval{Start: a.Start - 1 - rnd.Int63n(500), End: a.Start, Granularity: g}
		assert.False(t, a.Overlaps(after), "a=%v after=%v", a, after)
		assert.False(t, a.Overlaps(before), "a=%v before=%v", a, before)
		assert.False(t, after.Overlaps(before))
	}
}

func TestInterval_String(t *testing.T) {
	day := date("2024-03-04")
	assert.Equal(t, "2024-03-04 14:00-15:00", MinuteInterval(day, types.MustFromString("14:00"), 60).String())
	assert.Equal(t, "2024-03-04 23:00-24:00", MinuteInterval(day, types.MustFromString("23:00"), 60).String())
	assert.Equal(t, "2024-03-01..2024-03-05", DayInterval(date("2024-03-01"), date("2024-03-05")).String())
}

func TestDayIndex_IgnoresClock(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	late := time.Date(2024, 3, 4, 23, 59, 0, 0, loc)
	assert.Equal(t, DayIndex(date("2024-03-04")), DayIndex(late))
	assert.Equal(t, "2024-03-04", DateFromIndex(DayIndex(late)).Format(DateFormat))
}
