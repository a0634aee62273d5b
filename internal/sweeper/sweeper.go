// Package sweeper периодически рассылает напоминания по бронированиям
// и чистит журнал уведомлений. Статусы бронирований sweeper не меняет.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Названия проходов
const (
	PassUpcoming = "upcoming"
	PassTomorrow = "tomorrow"
	PassToday    = "today"
	PassCleanup  = "cleanup"
)

// Passes все проходы в порядке запуска
var Passes = []string{PassUpcoming, PassTomorrow, PassToday, PassCleanup}

// ErrUnknownPass неизвестное имя прохода
var ErrUnknownPass = errors.New("sweeper: unknown pass")

// Config параметры проходов
type Config struct {
	// Окно напоминания "за час": запись начинается через [LeadMin, LeadMax]
	LeadMin       time.Duration
	LeadMax       time.Duration
	RetentionDays int
}

// DefaultConfig значения по умолчанию
func DefaultConfig() Config {
	return Config{
		LeadMin:       30 * time.Minute,
		LeadMax:       120 * time.Minute,
		RetentionDays: 90,
	}
}

// Sweeper выполняет проходы по бронированиям
type Sweeper struct {
	bookings      BookingRepository
	resources     ResourceRepository
	notifications NotificationRepository
	notifier      Notifier
	metrics       Metrics
	clock         Clock
	cfg           Config
	logger        Logger
}

// New создает sweeper. metrics может быть nil.
func New(
	bookings BookingRepository,
	resources ResourceRepository,
	notifications NotificationRepository,
	notifier Notifier,
	metrics Metrics,
	cfg Config,
	logger Logger,
) *Sweeper {
	return &Sweeper{
		bookings:      bookings,
		resources:     resources,
		notifications: notifications,
		notifier:      notifier,
		metrics:       metrics,
		clock:         RealClock{},
		cfg:           cfg,
		logger:        logger,
	}
}

// WithClock подменяет часы
func (s *Sweeper) WithClock(clock Clock) *Sweeper {
	s.clock = clock
	return s
}

// Run выполняет проход по имени
func (s *Sweeper) Run(ctx context.Context, pass string) error {
	switch pass {
	case PassUpcoming:
		_, err := s.SweepUpcoming(ctx)
		return err
	case PassTomorrow:
		_, err := s.SweepTomorrow(ctx)
		return err
	case PassToday:
		_, err := s.SweepToday(ctx)
		return err
	case PassCleanup:
		_, err := s.CleanupNotifications(ctx)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPass, pass)
	}
}

// RunAll выполняет все проходы по очереди, первая ошибка прерывает цикл
func (s *Sweeper) RunAll(ctx context.Context) error {
	for _, pass := range Passes {
		if err := s.Run(ctx, pass); err != nil {
			return fmt.Errorf("pass %s: %w", pass, err)
		}
	}
	return nil
}

// SweepUpcoming напоминает о записях, до начала которых от LeadMin до LeadMax
func (s *Sweeper) SweepUpcoming(ctx context.Context) (int, error) {
	started := s.clock.Now()
	defer s.observe(PassUpcoming, started)

	now := started
	candidates, err := s.bookings.ListAppointmentsByDate(ctx,
		utcDay(now, -1), utcDay(now, 1), domain.ReminderHourBefore)
	if err != nil {
		s.logger.Error("SweepUpcoming: failed to list appointments: %v", err)
		return 0, err
	}

	p := s.newPass(ctx)
	for _, b := range candidates {
		if ctx.Err() != nil {
			return p.sent, ctx.Err()
		}
		loc, err := p.location(b.ResourceID)
		if err != nil {
			s.logger.Warn("SweepUpcoming: booking id=%d: %v", b.ID, err)
			continue
		}
		until := b.Appointment.StartsAt(loc).Sub(now)
		if until < s.cfg.LeadMin || until > s.cfg.LeadMax {
			continue
		}
		p.remind(b, domain.ReminderHourBefore, domain.TemplateReminderHourBefore)
	}

	s.logger.Info("SweepUpcoming: %d candidates, %d reminders sent", len(candidates), p.sent)
	return p.sent, nil
}

// SweepTomorrow напоминания о завтрашних записях и заездах
func (s *Sweeper) SweepTomorrow(ctx context.Context) (int, error) {
	started := s.clock.Now()
	defer s.observe(PassTomorrow, started)

	now := started
	p := s.newPass(ctx)

	appointments, err := s.bookings.ListAppointmentsByDate(ctx,
		utcDay(now, 0), utcDay(now, 2), domain.ReminderDayBefore)
	if err != nil {
		s.logger.Error("SweepTomorrow: failed to list appointments: %v", err)
		return 0, err
	}
	for _, b := range appointments {
		if ctx.Err() != nil {
			return p.sent, ctx.Err()
		}
		if p.isLocalDay(b, b.Appointment.Date, now, 1) {
			p.remind(b, domain.ReminderDayBefore, domain.TemplateReminderTomorrow)
		}
	}

	reservations, err := s.bookings.ListReservationsByCheckIn(ctx,
		utcDay(now, 0), utcDay(now, 2), domain.ReminderCheckInTomorrow)
	if err != nil {
		s.logger.Error("SweepTomorrow: failed to list reservations: %v", err)
		return p.sent, err
	}
	for _, b := range reservations {
		if ctx.Err() != nil {
			return p.sent, ctx.Err()
		}
		if p.isLocalDay(b, b.Reservation.CheckInDate, now, 1) {
			p.remind(b, domain.ReminderCheckInTomorrow, domain.TemplateCheckInTomorrow)
		}
	}

	s.logger.Info("SweepTomorrow: %d appointments, %d reservations, %d reminders sent",
		len(appointments), len(reservations), p.sent)
	return p.sent, nil
}

// SweepToday напоминания о сегодняшних записях и о просроченном выезде.
// Просроченный выезд только помечается, статус остаётся checked_in.
func (s *Sweeper) SweepToday(ctx context.Context) (int, error) {
	started := s.clock.Now()
	defer s.observe(PassToday, started)

	now := started
	p := s.newPass(ctx)

	appointments, err := s.bookings.ListAppointmentsByDate(ctx,
		utcDay(now, -1), utcDay(now, 1), domain.ReminderSameDay)
	if err != nil {
		s.logger.Error("SweepToday: failed to list appointments: %v", err)
		return 0, err
	}
	for _, b := range appointments {
		if ctx.Err() != nil {
			return p.sent, ctx.Err()
		}
		if p.isLocalDay(b, b.Appointment.Date, now, 0) {
			p.remind(b, domain.ReminderSameDay, domain.TemplateReminderToday)
		}
	}

	due, err := s.bookings.ListCheckedInDueOut(ctx, utcDay(now, 1), domain.ReminderCheckoutPending)
	if err != nil {
		s.logger.Error("SweepToday: failed to list checked-in reservations: %v", err)
		return p.sent, err
	}
	for _, b := range due {
		if ctx.Err() != nil {
			return p.sent, ctx.Err()
		}
		loc, err := p.location(b.ResourceID)
		if err != nil {
			s.logger.Warn("SweepToday: booking id=%d: %v", b.ID, err)
			continue
		}
		if domain.DayIndex(b.Reservation.CheckOutDate) <= domain.DayIndex(now.In(loc)) {
			p.remind(b, domain.ReminderCheckoutPending, domain.TemplateCheckoutPending)
		}
	}

	s.logger.Info("SweepToday: %d appointments, %d due out, %d reminders sent",
		len(appointments), len(due), p.sent)
	return p.sent, nil
}

// CleanupNotifications удаляет записи журнала старше RetentionDays
func (s *Sweeper) CleanupNotifications(ctx context.Context) (int64, error) {
	started := s.clock.Now()
	defer s.observe(PassCleanup, started)

	if s.cfg.RetentionDays <= 0 {
		return 0, nil
	}

	before := started.AddDate(0, 0, -s.cfg.RetentionDays)
	deleted, err := s.notifications.DeleteOlderThan(ctx, before)
	if err != nil {
		s.logger.Error("CleanupNotifications: %v", err)
		return 0, err
	}

	s.logger.Info("CleanupNotifications: deleted %d records older than %s", deleted, before.Format(time.RFC3339))
	return deleted, nil
}

func (s *Sweeper) observe(pass string, started time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveSweep(pass, started)
	}
}

// utcDay полночь UTC дня now+offset. Выборки берутся с запасом в день
// в обе стороны, точная проверка идёт по часовому поясу ресурса.
func utcDay(now time.Time, offset int) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d+offset, 0, 0, 0, 0, time.UTC)
}
