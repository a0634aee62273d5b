package fakes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/txmanager"
)

// Sent одно отправленное уведомление
type Sent struct {
	BookingID int64
	Template  domain.TemplateKind
}

// Notifier запоминает уведомления; пока Fail != nil, все отправки падают.
// Stall держит отправку до истечения ctx.
type Notifier struct {
	mu    sync.Mutex
	Fail  error
	Stall bool
	sent  []Sent
}

func (n *Notifier) Notify(ctx context.Context, b *domain.Booking, template domain.TemplateKind) error {
	if n.Stall {
		<-ctx.Done()
		return ctx.Err()
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.Fail != nil {
		return n.Fail
	}
	n.sent = append(n.sent, Sent{BookingID: b.ID, Template: template})
	return nil
}

// Sent копия списка отправленных
func (n *Notifier) Sent() []Sent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Sent(nil), n.sent...)
}

// Count число отправок шаблона
func (n *Notifier) Count(template domain.TemplateKind) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	count := 0
	for _, s := range n.sent {
		if s.Template == template {
			count++
		}
	}
	return count
}

// ErrInjectedTimeout имитирует истечение времени транзакции
var ErrInjectedTimeout = errors.New("fakes: injected timeout")

// TxManager выполняет fn без транзакции. Timeout имитирует истёкшую
// транзакцию: fn не вызывается, возвращается txmanager.ErrTimeout.
type TxManager struct {
	Timeout bool
	Calls   int
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	if m.Timeout {
		return fmt.Errorf("%w: %w", txmanager.ErrTimeout, ErrInjectedTimeout)
	}
	return fn(ctx)
}

// Clock ручные часы
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set переводит часы
func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Advance сдвигает часы вперёд
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Logger ничего не пишет
type Logger struct{}

func (Logger) Debug(string, ...interface{})  {}
func (Logger) Info(string, ...interface{})   {}
func (Logger) Warn(string, ...interface{})   {}
func (Logger) Error(string, ...interface{})  {}
func (Logger) Printf(string, ...interface{}) {}

// NotificationLog повторяет поведение notification.Repository
type NotificationLog struct {
	mu      sync.Mutex
	records []*domain.Notification
}

func (l *NotificationLog) Create(_ context.Context, n *domain.Notification) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := *n
	l.records = append(l.records, &c)
	return nil
}

func (l *NotificationLog) ListByBooking(_ context.Context, bookingID int64) ([]*domain.Notification, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]*domain.Notification, 0)
	for _, n := range l.records {
		if n.BookingID == bookingID {
			c := *n
			result = append(result, &c)
		}
	}
	return result, nil
}

func (l *NotificationLog) DeleteOlderThan(_ context.Context, before time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.records[:0]
	var deleted int64
	for _, n := range l.records {
		if n.CreatedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	l.records = kept
	return deleted, nil
}

// Records копия журнала
func (l *NotificationLog) Records() []*domain.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*domain.Notification(nil), l.records...)
}
