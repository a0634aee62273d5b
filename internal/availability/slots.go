package availability

import (
	"iter"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// GenerateSlots возвращает ленивую последовательность слотов на дату.
//
// Слоты идут от начала рабочего дня с шагом stepMinutes. Слот [s, s+duration)
// попадает в выдачу, только если целиком лежит в рабочих часах и не задевает
// перерыв (частичное пересечение с перерывом тоже исключает слот).
// Выходной день даёт пустую последовательность. Функция чистая: повторный
// обход даёт тот же результат в том же порядке.
func GenerateSlots(schedule *domain.Schedule, date time.Time, durationMinutes, stepMinutes int) iter.Seq[domain.TimeSlot] {
	day := schedule.ForDate(date)
	return generateDaySlots(day, durationMinutes, stepMinutes)
}

func generateDaySlots(day domain.DaySchedule, durationMinutes, stepMinutes int) iter.Seq[domain.TimeSlot] {
	return func(yield func(domain.TimeSlot) bool) {
		if !day.IsWorking || durationMinutes <= 0 || stepMinutes <= 0 {
			return
		}

		open, closing := day.StartTime.Minutes(), day.EndTime.Minutes()
		if open < 0 || closing < 0 {
			return
		}

		breakStart, breakEnd := -1, -1
		if day.HasBreak() {
			breakStart, breakEnd = day.BreakStart.Minutes(), day.BreakEnd.Minutes()
		}

		for start := open; start+durationMinutes <= closing; start += stepMinutes {
			end := start + durationMinutes
			if breakStart >= 0 && start < breakEnd && breakStart < end {
				continue
			}

			startTS, err := types.FromMinutes(start)
			if err != nil {
				return
			}
			endTS, err := types.FromMinutes(end)
			if err != nil {
				return
			}

			if !yield(domain.TimeSlot{StartTime: startTS, EndTime: endTS}) {
				return
			}
		}
	}
}

// FitsSchedule проверяет, что окно [start, start+duration) на дату лежит
// в рабочих часах и не задевает перерыв. Шаг сетки не учитывается:
// запись может начинаться в любую минуту.
func FitsSchedule(schedule *domain.Schedule, date time.Time, start types.TimeString, durationMinutes int) bool {
	day := schedule.ForDate(date)
	if !day.IsWorking || durationMinutes <= 0 {
		return false
	}

	s := start.Minutes()
	if s < 0 {
		return false
	}
	e := s + durationMinutes

	if s < day.StartTime.Minutes() || e > day.EndTime.Minutes() {
		return false
	}
	if day.HasBreak() && s < day.BreakEnd.Minutes() && day.BreakStart.Minutes() < e {
		return false
	}
	return true
}
