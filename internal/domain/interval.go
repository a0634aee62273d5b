package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Granularity единица оси, на которой лежит интервал
type Granularity int

const (
	// GranularityMinute абсолютные минуты: dayIndex*1440 + минута суток (записи к специалисту)
	GranularityMinute Granularity = iota + 1
	// GranularityDay номера дней (проживание в номере)
	GranularityDay
)

func (g Granularity) String() string {
	switch g {
	case GranularityMinute:
		return "minute"
	case GranularityDay:
		return "day"
	default:
		return "unknown"
	}
}

// Interval полуоткрытый интервал [Start, End).
// Один тип обслуживает и записи, и проживания: отличается только гранулярность.
type Interval struct {
	Start       int64
	End         int64
	Granularity Granularity
}

// DayIndex номер календарного дня даты (в её собственном часовом поясе)
func DayIndex(date time.Time) int64 {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// DateFromIndex обратное преобразование DayIndex, дата в UTC
func DateFromIndex(idx int64) time.Time {
	return time.Unix(idx*86400, 0).UTC()
}

// MinuteInterval интервал записи: дата + время начала + длительность
func MinuteInterval(date time.Time, start types.TimeString, durationMinutes int) Interval {
	from := DayIndex(date)*MinutesPerDay + int64(start.Minutes())
	return Interval{
		Start:       from,
		End:         from + int64(durationMinutes),
		Granularity: GranularityMinute,
	}
}

// DayInterval интервал проживания [checkIn, checkOut)
func DayInterval(checkIn, checkOut time.Time) Interval {
	return Interval{
		Start:       DayIndex(checkIn),
		End:         DayIndex(checkOut),
		Granularity: GranularityDay,
	}
}

// IsValid непустой интервал с известной гранулярностью
func (i Interval) IsValid() bool {
	return i.Start < i.End && (i.Granularity == GranularityMinute || i.Granularity == GranularityDay)
}

// Overlaps s1 < e2 && s2 < e1. Касание границ пересечением не считается.
// Интервалы разной гранулярности не сравнимы и никогда не пересекаются.
func (i Interval) Overlaps(other Interval) bool {
	if i.Granularity != other.Granularity {
		return false
	}
	return i.Start < other.End && other.Start < i.End
}

// Contains интервал other целиком лежит внутри i
func (i Interval) Contains(other Interval) bool {
	return i.Granularity == other.Granularity && i.Start <= other.Start && other.End <= i.End
}

// Length длина в единицах гранулярности
func (i Interval) Length() int64 {
	return i.End - i.Start
}

func (i Interval) String() string {
	switch i.Granularity {
	case GranularityMinute:
		day := floorDiv(i.Start, MinutesPerDay)
		base := day * MinutesPerDay
		return fmt.Sprintf("%s %s-%s",
			DateFromIndex(day).Format(DateFormat),
			formatMinutes(i.Start-base),
			formatMinutes(i.End-base),
		)
	case GranularityDay:
		return fmt.Sprintf("%s..%s",
			DateFromIndex(i.Start).Format(DateFormat),
			DateFromIndex(i.End).Format(DateFormat),
		)
	default:
		return fmt.Sprintf("[%d, %d)", i.Start, i.End)
	}
}

func formatMinutes(m int64) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}
