package bookings

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/txmanager"
)

var (
	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings.service: internal error")
)

// Результаты операций для метрик
const (
	resultSuccess  = "success"
	resultConflict = "conflict"
	resultRejected = "rejected"
	resultTimeout  = "timeout"
	resultError    = "error"
)

// rejections ошибки, которые означают отказ по бизнес-правилам, а не сбой
var rejections = []error{
	domain.ErrInvalidInput,
	domain.ErrInvalidWindow,
	domain.ErrInvalidTransition,
	domain.ErrResourceInactiveOrNotFound,
	domain.ErrBookingNotFound,
	domain.ErrServiceNotFound,
	domain.ErrCapacityExceeded,
	domain.ErrDateInPast,
	domain.ErrDateTooFarInFuture,
	domain.ErrTooLateToBook,
	domain.ErrCannotDelete,
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return resultSuccess
	case errors.Is(err, domain.ErrSlotUnavailable):
		return resultConflict
	case errors.Is(err, domain.ErrPersistenceTimeout):
		return resultTimeout
	}
	for _, target := range rejections {
		if errors.Is(err, target) {
			return resultRejected
		}
	}
	return resultError
}

func persistenceError(err error) error {
	if txmanager.IsTransient(err) {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceTimeout, err)
	}
	return err
}
