package availability

import (
	"iter"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// HasConflict проверяет кандидата на пересечение с активными бронированиями
func HasConflict(candidate domain.Interval, existing []*domain.Booking, excludeID int64) bool {
	return FindConflict(candidate, existing, excludeID) != nil
}

// FindConflict возвращает первое активное бронирование, пересекающееся с кандидатом.
//
// Линейный проход, порядок входа не важен. Неактивные бронирования
// (отменённые, завершённые, no-show) не блокируют. excludeID исключает
// переносимое бронирование из проверки, 0 означает "не исключать".
func FindConflict(candidate domain.Interval, existing []*domain.Booking, excludeID int64) *domain.Booking {
	for _, b := range existing {
		if b == nil {
			continue
		}
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		if !b.IsActive() {
			continue
		}
		if candidate.Overlaps(b.Window()) {
			return b
		}
	}
	return nil
}

// FreeSlots отбирает из последовательности слоты, не занятые активными бронированиями на дату
func FreeSlots(date time.Time, slots iter.Seq[domain.TimeSlot], existing []*domain.Booking) []domain.TimeSlot {
	free := make([]domain.TimeSlot, 0)
	for slot := range slots {
		candidate := domain.MinuteInterval(date, slot.StartTime, slot.DurationMinutes())
		if !HasConflict(candidate, existing, 0) {
			free = append(free, slot)
		}
	}
	return free
}
