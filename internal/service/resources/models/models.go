package models

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// DayScheduleResponse рабочие часы в один день недели
type DayScheduleResponse struct {
	Weekday    string  `json:"weekday"`
	IsWorking  bool    `json:"isWorking"`
	StartTime  string  `json:"startTime,omitempty"`
	EndTime    string  `json:"endTime,omitempty"`
	BreakStart *string `json:"breakStart,omitempty"`
	BreakEnd   *string `json:"breakEnd,omitempty"`
}

// PolicyResponse правила бронирования, которые действуют для ресурса
type PolicyResponse struct {
	SlotStepMinutes         int `json:"slotStepMinutes"`
	AdvanceBookingDays      int `json:"advanceBookingDays"` // 0 = без ограничений
	MinBookingNoticeMinutes int `json:"minBookingNoticeMinutes"`
}

// ResourceResponse ресурс с расписанием и правилами бронирования
type ResourceResponse struct {
	ID                  int64                 `json:"id"`
	Kind                string                `json:"kind"`
	Name                string                `json:"name"`
	IsActive            bool                  `json:"isActive"`
	Capacity            int                   `json:"capacity,omitempty"`
	Timezone            string                `json:"timezone"`
	OccupiedByBookingID *int64                `json:"occupiedByBookingId,omitempty"`
	Schedule            []DayScheduleResponse `json:"schedule,omitempty"`
	Policy              PolicyResponse        `json:"policy"`
	CreatedAt           time.Time             `json:"createdAt"`
	UpdatedAt           time.Time             `json:"updatedAt"`
}

// ServiceResponse услуга специалиста
type ServiceResponse struct {
	ID              int64  `json:"id"`
	ProfessionalID  int64  `json:"professionalId"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
	IsActive        bool   `json:"isActive"`
}

// FromDomainResource конвертирует ресурс, расписание и политику в DTO.
// Расписание выводится с понедельника.
func FromDomainResource(r *domain.Resource, schedule *domain.Schedule, policy domain.BookingPolicy) *ResourceResponse {
	if r == nil {
		return nil
	}

	timezone := r.Timezone
	if timezone == "" {
		timezone = time.UTC.String()
	}

	resp := &ResourceResponse{
		ID:                  r.ID,
		Kind:                string(r.Kind),
		Name:                r.Name,
		IsActive:            r.IsActive,
		Capacity:            r.Capacity,
		Timezone:            timezone,
		OccupiedByBookingID: r.OccupiedByBookingID,
		Policy: PolicyResponse{
			SlotStepMinutes:         policy.StepMinutes(),
			AdvanceBookingDays:      policy.AdvanceBookingDays,
			MinBookingNoticeMinutes: policy.MinBookingNoticeMinutes,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}

	if schedule == nil {
		return resp
	}

	resp.Schedule = make([]DayScheduleResponse, 0, 7)
	for i := 1; i <= 7; i++ {
		wd := time.Weekday(i % 7)
		day, ok := schedule.Days[wd]
		if !ok {
			day = domain.DaySchedule{Weekday: wd}
		}
		item := DayScheduleResponse{
			Weekday:   day.Weekday.String(),
			IsWorking: day.IsWorking,
		}
		if day.IsWorking {
			item.StartTime = day.StartTime.String()
			item.EndTime = day.EndTime.String()
			if day.HasBreak() {
				bs, be := day.BreakStart.String(), day.BreakEnd.String()
				item.BreakStart, item.BreakEnd = &bs, &be
			}
		}
		resp.Schedule = append(resp.Schedule, item)
	}

	return resp
}

// FromDomainService конвертирует услугу в DTO
func FromDomainService(s *domain.Service) *ServiceResponse {
	if s == nil {
		return nil
	}
	return &ServiceResponse{
		ID:              s.ID,
		ProfessionalID:  s.ProfessionalID,
		Name:            s.Name,
		DurationMinutes: s.DurationMinutes,
		IsActive:        s.IsActive,
	}
}
