package get_available_slots

import (
	"iter"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// noticeFilter пропускает только слоты, до начала которых осталось не меньше
// minNoticeMinutes. Для дат после сегодняшней фильтр ничего не отбрасывает.
// localNow должен быть в часовом поясе ресурса.
func noticeFilter(slots iter.Seq[domain.TimeSlot], date, localNow time.Time, minNoticeMinutes int) iter.Seq[domain.TimeSlot] {
	if domain.DayIndex(date) != domain.DayIndex(localNow) {
		return slots
	}

	earliest := localNow.Hour()*60 + localNow.Minute() + minNoticeMinutes
	if localNow.Second() > 0 || localNow.Nanosecond() > 0 {
		earliest++
	}

	return func(yield func(domain.TimeSlot) bool) {
		for slot := range slots {
			if slot.StartTime.Minutes() < earliest {
				continue
			}
			if !yield(slot) {
				return
			}
		}
	}
}
