package booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

const (
	timestampLayout = "2006-01-02 15:04:00"
	codeExclusion   = "23P01"
)

// periodLiteral значение колонки period (tsrange) для окна бронирования.
// Записи занимают минуты, проживания целые сутки от полуночи до полуночи;
// обе формы полуоткрыты, поэтому && в Postgres совпадает с domain.Interval.Overlaps.
func periodLiteral(b *domain.Booking) (string, error) {
	window := b.Window()
	if !window.IsValid() {
		return "", fmt.Errorf("%w: booking %d has empty window", ErrInvalidBooking, b.ID)
	}

	var from, to time.Time
	switch window.Granularity {
	case domain.GranularityMinute:
		from = time.Unix(window.Start*60, 0).UTC()
		to = time.Unix(window.End*60, 0).UTC()
	case domain.GranularityDay:
		from = domain.DateFromIndex(window.Start)
		to = domain.DateFromIndex(window.End)
	}

	return fmt.Sprintf("[%s,%s)", from.Format(timestampLayout), to.Format(timestampLayout)), nil
}

// dateRangeLiteral диапазон [from, to) по датам для поиска пересечений
func dateRangeLiteral(from, to time.Time) string {
	return fmt.Sprintf("[%s,%s)", from.Format(domain.DateFormat), to.Format(domain.DateFormat))
}

func dateParam(t time.Time) string {
	return t.Format(domain.DateFormat)
}
