package create_booking

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/txmanager"
)

var (
	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)

// persistenceError превращает таймаут или исчерпанные повторы транзакции
// в повторяемую ошибку, остальное возвращает как есть
func persistenceError(err error) error {
	if txmanager.IsTransient(err) {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceTimeout, err)
	}
	return err
}
