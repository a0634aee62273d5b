// Package fakes in-memory реализации контрактов хранилища и внешних
// зависимостей для тестов usecase, sweeper и сервисов.
package fakes

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/booking"
)

// BookingStore повторяет поведение booking.Repository, включая exclusion-ограничение
type BookingStore struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]*domain.Booking

	// Writes число успешных изменяющих операций
	Writes int
}

func NewBookingStore() *BookingStore {
	return &BookingStore{bookings: make(map[int64]*domain.Booking)}
}

// Put кладет бронирование как есть (для подготовки теста)
func (s *BookingStore) Put(b *domain.Booking) *domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == 0 {
		s.nextID++
		b.ID = s.nextID
	} else if b.ID > s.nextID {
		s.nextID = b.ID
	}
	s.bookings[b.ID] = b.Clone()
	return b
}

// Get текущее состояние без ошибок, nil если нет
func (s *BookingStore) Get(id int64) *domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil
	}
	return b.Clone()
}

func (s *BookingStore) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.IsActive() {
		for _, other := range s.bookings {
			if other.ResourceID == b.ResourceID && other.IsActive() && other.Window().Overlaps(b.Window()) {
				return nil, bookingRepo.ErrOverlap
			}
		}
	}

	s.nextID++
	b.ID = s.nextID
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	s.bookings[b.ID] = b.Clone()
	s.Writes++
	return b, nil
}

func (s *BookingStore) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if b := s.Get(id); b != nil {
		return b, nil
	}
	return nil, bookingRepo.ErrBookingNotFound
}

func (s *BookingStore) GetActiveByResource(_ context.Context, resourceID int64, from, to time.Time) ([]*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	days := domain.DayInterval(from, to)
	return s.filter(func(b *domain.Booking) bool {
		return b.ResourceID == resourceID && b.IsActive() && dayRange(b).Overlaps(days)
	}), nil
}

func (s *BookingStore) ListByResource(_ context.Context, f domain.ResourceBookingsFilter) ([]*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filter(func(b *domain.Booking) bool {
		if b.ResourceID != f.ResourceID {
			return false
		}
		days := dayRange(b)
		if f.StartDate != nil && days.End <= domain.DayIndex(*f.StartDate) {
			return false
		}
		if f.EndDate != nil && days.Start > domain.DayIndex(*f.EndDate) {
			return false
		}
		if f.Status != nil {
			return b.Status == *f.Status
		}
		return f.IncludeInactive || b.IsActive()
	}), nil
}

func (s *BookingStore) ListByClient(_ context.Context, f domain.ClientBookingsFilter) ([]*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.filter(func(b *domain.Booking) bool {
		return b.ClientID == f.ClientID && (f.IncludeInactive || b.IsActive())
	})
	slices.Reverse(result)
	return result, nil
}

func (s *BookingStore) UpdateWindow(_ context.Context, b *domain.Booking, stale domain.ReminderFlags) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.bookings[b.ID]
	if !ok || !current.IsActive() {
		return bookingRepo.ErrStatusChanged
	}
	for _, other := range s.bookings {
		if other.ID != b.ID && other.ResourceID == b.ResourceID && other.IsActive() && other.Window().Overlaps(b.Window()) {
			return bookingRepo.ErrOverlap
		}
	}

	updated := current.Clone()
	updated.Appointment = b.Clone().Appointment
	updated.Reservation = b.Clone().Reservation
	updated.ReminderFlags = current.ReminderFlags.Without(stale)
	updated.UpdatedAt = time.Now()
	s.bookings[b.ID] = updated

	b.ReminderFlags = updated.ReminderFlags
	b.UpdatedAt = updated.UpdatedAt
	s.Writes++
	return nil
}

func (s *BookingStore) UpdateStatus(_ context.Context, b *domain.Booking, from domain.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.bookings[b.ID]
	if !ok || current.Status != from {
		return bookingRepo.ErrStatusChanged
	}

	updated := current.Clone()
	updated.Status = b.Status
	updated.Notes = b.Notes
	updated.CancellationReason = b.CancellationReason
	updated.CancelledAt = b.CancelledAt
	updated.CheckedInAt = b.CheckedInAt
	updated.CheckedOutAt = b.CheckedOutAt
	updated.UpdatedAt = time.Now()
	s.bookings[b.ID] = updated
	s.Writes++
	return nil
}

func (s *BookingStore) MarkReminderSent(_ context.Context, id int64, flag domain.ReminderFlags) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok || !b.IsActive() || b.ReminderFlags&flag != 0 {
		return false, nil
	}
	b.ReminderFlags = b.ReminderFlags.With(flag)
	s.Writes++
	return true, nil
}

func (s *BookingStore) ListAppointmentsByDate(_ context.Context, from, to time.Time, missing domain.ReminderFlags) ([]*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lo, hi := domain.DayIndex(from), domain.DayIndex(to)
	return s.filter(func(b *domain.Booking) bool {
		if b.Kind != domain.KindAppointment || !b.IsActive() || b.ReminderFlags&missing != 0 {
			return false
		}
		day := domain.DayIndex(b.Appointment.Date)
		return day >= lo && day <= hi
	}), nil
}

func (s *BookingStore) ListReservationsByCheckIn(_ context.Context, from, to time.Time, missing domain.ReminderFlags) ([]*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lo, hi := domain.DayIndex(from), domain.DayIndex(to)
	return s.filter(func(b *domain.Booking) bool {
		if b.Kind != domain.KindReservation || b.Status != domain.StatusConfirmed || b.ReminderFlags&missing != 0 {
			return false
		}
		day := domain.DayIndex(b.Reservation.CheckInDate)
		return day >= lo && day <= hi
	}), nil
}

func (s *BookingStore) ListCheckedInDueOut(_ context.Context, until time.Time, missing domain.ReminderFlags) ([]*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := domain.DayIndex(until)
	return s.filter(func(b *domain.Booking) bool {
		return b.Kind == domain.KindReservation && b.Status == domain.StatusCheckedIn &&
			b.ReminderFlags&missing == 0 && domain.DayIndex(b.Reservation.CheckOutDate) <= limit
	}), nil
}

func (s *BookingStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[id]; !ok {
		return bookingRepo.ErrBookingNotFound
	}
	delete(s.bookings, id)
	s.Writes++
	return nil
}

// filter вызывается под мьютексом; результат упорядочен по началу окна и ID
func (s *BookingStore) filter(keep func(*domain.Booking) bool) []*domain.Booking {
	result := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if keep(b) {
			result = append(result, b.Clone())
		}
	}
	slices.SortFunc(result, func(a, b *domain.Booking) int {
		if d := dayRange(a).Start - dayRange(b).Start; d != 0 {
			return int(d)
		}
		if d := a.Window().Start - b.Window().Start; d != 0 && a.Kind == b.Kind {
			return int(d)
		}
		return int(a.ID - b.ID)
	})
	return result
}

// dayRange дни, которые задевает бронирование
func dayRange(b *domain.Booking) domain.Interval {
	w := b.Window()
	if w.Granularity == domain.GranularityDay {
		return w
	}
	start := w.Start / domain.MinutesPerDay
	end := (w.End + domain.MinutesPerDay - 1) / domain.MinutesPerDay
	return domain.Interval{Start: start, End: end, Granularity: domain.GranularityDay}
}
