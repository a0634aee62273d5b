package domain

import "github.com/m04kA/SMC-BookingEngine/pkg/types"

// TimeSlot кандидат [StartTime, EndTime) на дату
type TimeSlot struct {
	StartTime types.TimeString
	EndTime   types.TimeString
}

// DurationMinutes длина слота
func (s TimeSlot) DurationMinutes() int {
	return s.EndTime.Minutes() - s.StartTime.Minutes()
}

func (s TimeSlot) String() string {
	return s.StartTime.String() + "-" + s.EndTime.String()
}
