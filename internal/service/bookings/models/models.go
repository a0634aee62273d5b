package models

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Request модели

// CheckAvailabilityRequest запрос доступности ресурса.
// Для специалиста нужны ServiceID и Date, для номера CheckInDate и CheckOutDate.
type CheckAvailabilityRequest struct {
	ResourceID   int64  `json:"resourceId"`
	ServiceID    int64  `json:"serviceId,omitempty"`
	Date         string `json:"date,omitempty"`         // "2024-03-04"
	CheckInDate  string `json:"checkInDate,omitempty"`  // "2024-03-01"
	CheckOutDate string `json:"checkOutDate,omitempty"` // "2024-03-05"
}

// CreateBookingRequest запрос на создание бронирования
type CreateBookingRequest struct {
	ResourceID int64   `json:"resourceId"`
	ClientID   int64   `json:"clientId"`
	Notes      *string `json:"notes,omitempty"`

	ServiceID int64  `json:"serviceId,omitempty"`
	Date      string `json:"date,omitempty"`
	StartTime string `json:"startTime,omitempty"` // "10:00"

	CheckInDate  string `json:"checkInDate,omitempty"`
	CheckOutDate string `json:"checkOutDate,omitempty"`
	GuestCount   int    `json:"guestCount,omitempty"`
}

// RescheduleBookingRequest новое окно бронирования
type RescheduleBookingRequest struct {
	Date      string `json:"date,omitempty"`
	StartTime string `json:"startTime,omitempty"`

	CheckInDate  string `json:"checkInDate,omitempty"`
	CheckOutDate string `json:"checkOutDate,omitempty"`
}

// TransitionBookingRequest перевод в новый статус
type TransitionBookingRequest struct {
	Status string  `json:"status"`
	Reason *string `json:"reason,omitempty"`
}

// ListResourceBookingsRequest календарь ресурса
type ListResourceBookingsRequest struct {
	ResourceID      int64   `json:"resourceId"`
	StartDate       *string `json:"startDate,omitempty"`
	EndDate         *string `json:"endDate,omitempty"`
	Status          *string `json:"status,omitempty"`
	IncludeInactive bool    `json:"includeInactive,omitempty"`
}

// ListClientBookingsRequest история клиента
type ListClientBookingsRequest struct {
	ClientID        int64 `json:"clientId"`
	IncludeInactive bool  `json:"includeInactive,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListResourceBookingsRequest) ToDomainFilter() (domain.ResourceBookingsFilter, error) {
	filter := domain.ResourceBookingsFilter{
		ResourceID:      r.ResourceID,
		IncludeInactive: r.IncludeInactive,
	}

	if r.StartDate != nil {
		d, err := ParseDate(*r.StartDate)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &d
	}
	if r.EndDate != nil {
		d, err := ParseDate(*r.EndDate)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &d
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return filter, fmt.Errorf("%w: endDate before startDate", domain.ErrInvalidInput)
	}

	if r.Status != nil {
		status := domain.BookingStatus(*r.Status)
		if !domain.IsKnownStatus(domain.KindAppointment, status) && !domain.IsKnownStatus(domain.KindReservation, status) {
			return filter, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, *r.Status)
		}
		filter.Status = &status
	}

	return filter, nil
}

// ParseDate разбирает дату "YYYY-MM-DD"; пустая строка даёт нулевое время
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(domain.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q, expected YYYY-MM-DD", domain.ErrInvalidInput, s)
	}
	return d, nil
}

// ParseTime разбирает время "HH:MM"; пустая строка даёт пустое значение
func ParseTime(s string) (types.TimeString, error) {
	if s == "" {
		return "", nil
	}
	t, err := types.NewTimeStringFromString(s)
	if err != nil {
		return "", fmt.Errorf("%w: time %q, expected HH:MM", domain.ErrInvalidInput, s)
	}
	return t, nil
}

// Response модели

// SlotResponse свободный слот
type SlotResponse struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// AvailabilityResponse доступность ресурса
type AvailabilityResponse struct {
	ResourceID int64  `json:"resourceId"`
	Kind       string `json:"kind"`

	Date            string         `json:"date,omitempty"`
	ServiceID       int64          `json:"serviceId,omitempty"`
	DurationMinutes int            `json:"durationMinutes,omitempty"`
	Slots           []SlotResponse `json:"slots,omitempty"`

	CheckInDate  string `json:"checkInDate,omitempty"`
	CheckOutDate string `json:"checkOutDate,omitempty"`
	Available    *bool  `json:"available,omitempty"`
}

// AppointmentResponse детали записи к специалисту
type AppointmentResponse struct {
	ServiceID       int64  `json:"serviceId"`
	ServiceName     string `json:"serviceName"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`
}

// ReservationResponse детали проживания
type ReservationResponse struct {
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	Nights       int    `json:"nights"`
	GuestCount   int    `json:"guestCount"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID         int64  `json:"id"`
	Kind       string `json:"kind"`
	ResourceID int64  `json:"resourceId"`
	ClientID   int64  `json:"clientId"`
	Status     string `json:"status"`
	Window     string `json:"window"`

	Appointment *AppointmentResponse `json:"appointment,omitempty"`
	Reservation *ReservationResponse `json:"reservation,omitempty"`

	Reminders          []string `json:"reminders"`
	AllowedTransitions []string `json:"allowedTransitions"`
	Notes              *string  `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format
	CheckedInAt        *string `json:"checkedInAt,omitempty"`
	CheckedOutAt       *string `json:"checkedOutAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		Kind:               string(b.Kind),
		ResourceID:         b.ResourceID,
		ClientID:           b.ClientID,
		Status:             string(b.Status),
		Window:             b.Window().String(),
		Reminders:          b.ReminderFlags.Names(),
		AllowedTransitions: make([]string, 0),
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		CancelledAt:        formatTimestamp(b.CancelledAt),
		CheckedInAt:        formatTimestamp(b.CheckedInAt),
		CheckedOutAt:       formatTimestamp(b.CheckedOutAt),
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	for _, s := range domain.AllowedTransitions(b.Kind, b.Status) {
		resp.AllowedTransitions = append(resp.AllowedTransitions, string(s))
	}

	if a := b.Appointment; a != nil {
		resp.Appointment = &AppointmentResponse{
			ServiceID:       a.ServiceID,
			ServiceName:     a.ServiceName,
			Date:            a.Date.Format(domain.DateFormat),
			StartTime:       a.StartTime.String(),
			EndTime:         a.EndTime().String(),
			DurationMinutes: a.DurationMinutes,
		}
	}

	if r := b.Reservation; r != nil {
		resp.Reservation = &ReservationResponse{
			CheckInDate:  r.CheckInDate.Format(domain.DateFormat),
			CheckOutDate: r.CheckOutDate.Format(domain.DateFormat),
			Nights:       r.Nights(),
			GuestCount:   r.GuestCount,
		}
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
