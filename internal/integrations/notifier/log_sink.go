package notifier

import "context"

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
}

// LogSink пишет уведомления в лог. Используется, когда брокер не настроен.
type LogSink struct {
	log Logger
}

func NewLogSink(log Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Send(_ context.Context, msg Message) error {
	s.log.Info("Notification %s: booking=%d recipient=%s template=%s subject=%q",
		msg.ID, msg.BookingID, msg.Recipient, msg.Template, msg.Subject)
	return nil
}
