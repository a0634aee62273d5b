package notifications

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/clientservice"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/notifier"
)

const journalTimeout = 2 * time.Second

// Config ограничение частоты исходящих уведомлений
type Config struct {
	RatePerSecond float64
	Burst         int
}

// Service рендерит шаблон, находит адресата, отправляет через Sink и пишет журнал
type Service struct {
	sink         Sink
	contacts     ContactDirectory
	repo         NotificationRepository
	catalogue    *Catalogue
	limiter      *rate.Limiter
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает сервис уведомлений. contacts и metrics могут быть nil.
func NewService(
	sink Sink,
	contacts ContactDirectory,
	repo NotificationRepository,
	catalogue *Catalogue,
	cfg Config,
	metrics Metrics,
	logger Logger,
) *Service {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Service{
		sink:         sink,
		contacts:     contacts,
		repo:         repo,
		catalogue:    catalogue,
		limiter:      rate.NewLimiter(limit, burst),
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Notify отправляет уведомление по бронированию.
// Каждая попытка отправки попадает в журнал со статусом sent или failed.
func (s *Service) Notify(ctx context.Context, b *domain.Booking, template domain.TemplateKind) error {
	payload := buildPayload(b)

	// 1. Текст уведомления
	subject, body, err := s.catalogue.Render(template, payload)
	if err != nil {
		s.logger.Error("Notify: booking id=%d: %v", b.ID, err)
		s.observe(template, false)
		return fmt.Errorf("%w: %w", domain.ErrNotifyFailure, err)
	}

	// 2. Адресат
	recipient := s.recipient(ctx, b.ClientID)

	// 3. Ограничение частоты
	if err := s.limiter.Wait(ctx); err != nil {
		s.logger.Warn("Notify: booking id=%d throttled: %v", b.ID, err)
		s.observe(template, false)
		return fmt.Errorf("%w: throttle: %w", domain.ErrNotifyFailure, err)
	}

	record := &domain.Notification{
		ID:        uuid.New(),
		BookingID: b.ID,
		Recipient: recipient,
		Template:  template,
		Payload:   payload,
		Status:    domain.NotificationSent,
		CreatedAt: s.timeProvider.Now(),
	}

	// 4. Отправка
	sendErr := s.sink.Send(ctx, notifier.Message{
		ID:        record.ID.String(),
		BookingID: b.ID,
		Recipient: recipient,
		Template:  string(template),
		Subject:   subject,
		Body:      body,
		Payload:   payload,
		CreatedAt: record.CreatedAt,
	})
	if sendErr != nil {
		msg := sendErr.Error()
		record.Status = domain.NotificationFailed
		record.Error = &msg
	}

	// 5. Журнал. Ошибка записи журнала не отменяет доставку.
	// Неудачная попытка записывается, даже если ctx уже истёк.
	journalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()
	if err := s.repo.Create(journalCtx, record); err != nil {
		s.logger.Error("Notify: failed to record notification %s: %v", record.ID, err)
	}

	s.observe(template, sendErr == nil)
	if sendErr != nil {
		s.logger.Warn("Notify: booking id=%d template=%s to %s failed: %v", b.ID, template, recipient, sendErr)
		return fmt.Errorf("%w: %w", domain.ErrNotifyFailure, sendErr)
	}

	s.logger.Info("Notify: booking id=%d template=%s sent to %s", b.ID, template, recipient)
	return nil
}

// recipient адрес из справочника или client:<id>, если справочник недоступен
func (s *Service) recipient(ctx context.Context, clientID int64) string {
	fallback := "client:" + strconv.FormatInt(clientID, 10)
	if s.contacts == nil {
		return fallback
	}

	contact, err := s.contacts.GetContactWithGracefulDegradation(ctx, clientID)
	if err != nil {
		if !errors.Is(err, clientservice.ErrClientNotFound) && !errors.Is(err, clientservice.ErrServiceDegraded) {
			s.logger.Warn("Notify: contact lookup for client=%d: %v", clientID, err)
		}
		return fallback
	}
	if addr := contact.Address(); addr != "" {
		return addr
	}
	return fallback
}

func (s *Service) observe(template domain.TemplateKind, ok bool) {
	if s.metrics != nil {
		s.metrics.ObserveNotification(string(template), ok)
	}
}

// History журнал уведомлений по бронированию
func (s *Service) History(ctx context.Context, bookingID int64) ([]*domain.Notification, error) {
	records, err := s.repo.ListByBooking(ctx, bookingID)
	if err != nil {
		s.logger.Error("History: booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: %w", ErrHistory, err)
	}
	return records, nil
}
