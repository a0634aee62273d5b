package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// pass состояние одного прохода: кэш часовых поясов и счётчик отправок
type pass struct {
	s         *Sweeper
	ctx       context.Context
	locations map[int64]*time.Location
	sent      int
}

func (s *Sweeper) newPass(ctx context.Context) *pass {
	return &pass{s: s, ctx: ctx, locations: make(map[int64]*time.Location)}
}

func (p *pass) location(resourceID int64) (*time.Location, error) {
	if loc, ok := p.locations[resourceID]; ok {
		return loc, nil
	}

	resource, err := p.s.resources.GetByID(p.ctx, resourceID)
	if err != nil {
		return nil, fmt.Errorf("resource %d: %w", resourceID, err)
	}

	loc := resource.Location()
	p.locations[resourceID] = loc
	return loc, nil
}

// isLocalDay дата date равна сегодняшней дате ресурса плюс offset дней
func (p *pass) isLocalDay(b *domain.Booking, date, now time.Time, offset int64) bool {
	loc, err := p.location(b.ResourceID)
	if err != nil {
		p.s.logger.Warn("Sweeper: booking id=%d: %v", b.ID, err)
		return false
	}
	return domain.DayIndex(date) == domain.DayIndex(now.In(loc))+offset
}

// remind отправляет уведомление и только после успешной отправки ставит флаг.
// Ошибка отправки логируется, бронирование попадёт в следующий проход.
func (p *pass) remind(b *domain.Booking, flag domain.ReminderFlags, template domain.TemplateKind) {
	if err := p.s.notifier.Notify(p.ctx, b, template); err != nil {
		p.s.logger.Warn("Sweeper: %v: booking id=%d reminder %s: %v", domain.ErrNotifyFailure, b.ID, flag, err)
		p.observe(flag, false)
		return
	}

	marked, err := p.s.bookings.MarkReminderSent(p.ctx, b.ID, flag)
	if err != nil {
		p.s.logger.Error("Sweeper: failed to mark reminder %s for booking id=%d: %v", flag, b.ID, err)
		p.observe(flag, false)
		return
	}
	if !marked {
		// флаг уже стоит или бронирование перестало быть активным
		p.s.logger.Warn("Sweeper: reminder %s for booking id=%d was not marked", flag, b.ID)
	}

	p.sent++
	p.observe(flag, true)
}

func (p *pass) observe(flag domain.ReminderFlags, ok bool) {
	if p.s.metrics != nil {
		p.s.metrics.ObserveReminder(flag.String(), ok)
	}
}
