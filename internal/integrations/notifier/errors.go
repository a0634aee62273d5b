package notifier

import "errors"

var (
	// ErrPublish брокер не принял сообщение
	ErrPublish = errors.New("notifier: publish failed")

	// ErrClosed отправка после Close
	ErrClosed = errors.New("notifier: publisher is closed")
)
