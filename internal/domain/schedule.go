package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// DaySchedule рабочие часы специалиста в один день недели
type DaySchedule struct {
	Weekday    time.Weekday
	IsWorking  bool
	StartTime  types.TimeString
	EndTime    types.TimeString
	BreakStart *types.TimeString
	BreakEnd   *types.TimeString
}

// HasBreak перерыв задан полностью
func (d DaySchedule) HasBreak() bool {
	return d.BreakStart != nil && d.BreakEnd != nil
}

// Validate working => start < end; break => start <= break_start < break_end <= end
func (d DaySchedule) Validate() error {
	if d.Weekday < time.Sunday || d.Weekday > time.Saturday {
		return fmt.Errorf("%w: weekday %d", ErrInvalidSchedule, d.Weekday)
	}
	if !d.IsWorking {
		return nil
	}
	if err := d.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: %s start_time: %v", ErrInvalidSchedule, d.Weekday, err)
	}
	if err := d.EndTime.Validate(); err != nil {
		return fmt.Errorf("%w: %s end_time: %v", ErrInvalidSchedule, d.Weekday, err)
	}
	if d.StartTime.Minutes() >= d.EndTime.Minutes() {
		return fmt.Errorf("%w: %s start_time %s must be before end_time %s",
			ErrInvalidSchedule, d.Weekday, d.StartTime, d.EndTime)
	}

	if (d.BreakStart == nil) != (d.BreakEnd == nil) {
		return fmt.Errorf("%w: %s break_start and break_end must be set together", ErrInvalidSchedule, d.Weekday)
	}
	if !d.HasBreak() {
		return nil
	}

	bs, be := d.BreakStart.Minutes(), d.BreakEnd.Minutes()
	if bs < 0 || be < 0 {
		return fmt.Errorf("%w: %s invalid break time", ErrInvalidSchedule, d.Weekday)
	}
	if bs < d.StartTime.Minutes() || bs >= be || be > d.EndTime.Minutes() {
		return fmt.Errorf("%w: %s break %s-%s must lie within %s-%s",
			ErrInvalidSchedule, d.Weekday, *d.BreakStart, *d.BreakEnd, d.StartTime, d.EndTime)
	}
	return nil
}

// Schedule недельное расписание специалиста.
// Отсутствующий день недели считается выходным.
type Schedule struct {
	ResourceID int64
	Days       map[time.Weekday]DaySchedule
}

// NewSchedule собирает расписание из списка дней
func NewSchedule(resourceID int64, days ...DaySchedule) *Schedule {
	s := &Schedule{
		ResourceID: resourceID,
		Days:       make(map[time.Weekday]DaySchedule, len(days)),
	}
	for _, d := range days {
		s.Days[d.Weekday] = d
	}
	return s
}

// ForDate запись расписания на день недели даты
func (s *Schedule) ForDate(date time.Time) DaySchedule {
	if s == nil {
		return DaySchedule{Weekday: date.Weekday()}
	}
	day, ok := s.Days[date.Weekday()]
	if !ok {
		return DaySchedule{Weekday: date.Weekday()}
	}
	return day
}

// IsWorkingDay специалист работает в эту дату
func (s *Schedule) IsWorkingDay(date time.Time) bool {
	return s.ForDate(date).IsWorking
}

// Validate проверяет все дни
func (s *Schedule) Validate() error {
	for _, d := range s.Days {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}
