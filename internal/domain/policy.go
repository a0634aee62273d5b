package domain

import (
	"fmt"
	"time"
)

// BookingPolicy ограничения на даты бронирований
type BookingPolicy struct {
	SlotStepMinutes         int
	AdvanceBookingDays      int // 0 = unlimited
	MinBookingNoticeMinutes int
}

// DefaultBookingPolicy значения по умолчанию
func DefaultBookingPolicy() BookingPolicy {
	return BookingPolicy{
		SlotStepMinutes:         DefaultSlotStepMinutes,
		AdvanceBookingDays:      DefaultAdvanceBookingDays,
		MinBookingNoticeMinutes: DefaultMinBookingNoticeMinutes,
	}
}

// HasAdvanceBookingLimit returns true if there's a limit on how far in advance bookings can be made
func (p BookingPolicy) HasAdvanceBookingLimit() bool {
	return p.AdvanceBookingDays > 0
}

// StepMinutes шаг генерации слотов
func (p BookingPolicy) StepMinutes() int {
	if p.SlotStepMinutes <= 0 {
		return DefaultSlotStepMinutes
	}
	return p.SlotStepMinutes
}

// CheckDate дата не в прошлом и не дальше горизонта бронирования.
// now должен быть в часовом поясе ресурса.
func (p BookingPolicy) CheckDate(date, now time.Time) error {
	today := DayIndex(now)
	day := DayIndex(date)

	if day < today {
		return fmt.Errorf("%w: %s", ErrDateInPast, date.Format(DateFormat))
	}
	if p.HasAdvanceBookingLimit() && day > today+int64(p.AdvanceBookingDays) {
		return fmt.Errorf("%w: %s is more than %d days ahead",
			ErrDateTooFarInFuture, date.Format(DateFormat), p.AdvanceBookingDays)
	}
	return nil
}

// CheckNotice запись начинается не раньше чем через MinBookingNoticeMinutes
func (p BookingPolicy) CheckNotice(startsAt, now time.Time) error {
	earliest := now.Add(time.Duration(p.MinBookingNoticeMinutes) * time.Minute)
	if startsAt.Before(earliest) {
		return fmt.Errorf("%w: %s starts before %s (minimum notice %d minutes)",
			ErrTooLateToBook, startsAt.Format("2006-01-02 15:04"), earliest.Format("2006-01-02 15:04"),
			p.MinBookingNoticeMinutes)
	}
	return nil
}
