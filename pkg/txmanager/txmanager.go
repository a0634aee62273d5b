package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
)

const (
	defaultTimeout    = 5 * time.Second
	defaultMaxRetries = 3

	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeQueryCanceled        = "57014"
)

var (
	// ErrTimeout транзакция не уложилась в отведённое время
	ErrTimeout = errors.New("txmanager: transaction timeout")
	// ErrConflict конкурентная транзакция не дала завершиться (после всех повторов)
	ErrConflict = errors.New("txmanager: concurrent transaction conflict")
)

// TxBeginner открывает транзакции
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

type Option func(*TransactionManager)

// WithTimeout ограничивает длительность одной попытки
func WithTimeout(timeout time.Duration) Option {
	return func(m *TransactionManager) {
		if timeout > 0 {
			m.timeout = timeout
		}
	}
}

// WithMaxRetries задает число повторов при ошибке сериализации
func WithMaxRetries(n int) Option {
	return func(m *TransactionManager) {
		if n >= 0 {
			m.maxRetries = n
		}
	}
}

// WithLogger подключает логирование повторов
func WithLogger(log Logger) Option {
	return func(m *TransactionManager) {
		m.logger = log
	}
}

// TransactionManager выполняет функции внутри транзакции.
// Транзакция передается в fn через контекст, репозитории достают ее через dbmetrics.GetExecutor.
type TransactionManager struct {
	db         TxBeginner
	timeout    time.Duration
	maxRetries int
	logger     Logger
}

func NewTransactionManager(db TxBeginner, opts ...Option) *TransactionManager {
	m := &TransactionManager{
		db:         db,
		timeout:    defaultTimeout,
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Do выполняет fn в транзакции READ COMMITTED
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// DoSerializable выполняет fn в транзакции SERIALIZABLE с повтором при конфликте сериализации
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

// DoReadOnly выполняет fn в транзакции только для чтения
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	// Вложенный вызов работает в уже открытой транзакции
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	var err error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		err = m.attempt(ctx, opts, fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) || ctx.Err() != nil {
			break
		}
		if m.logger != nil {
			m.logger.Warn("txmanager: retrying transaction (attempt %d/%d): %v", attempt+1, m.maxRetries, err)
		}
	}

	if isRetryable(err) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}

func (m *TransactionManager) attempt(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	attemptCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	tx, err := m.db.BeginTx(attemptCtx, opts)
	if err != nil {
		return classify(attemptCtx, fmt.Errorf("begin transaction: %w", err))
	}

	if err := fn(dbmetrics.WithTx(attemptCtx, tx)); err != nil {
		_ = tx.Rollback()
		return classify(attemptCtx, err)
	}

	if err := tx.Commit(); err != nil {
		return classify(attemptCtx, fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// classify помечает ошибки истечения времени сентинелом ErrTimeout,
// остальные возвращает без изменений
func classify(ctx context.Context, err error) error {
	if errors.Is(err, ErrTimeout) {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) || hasCode(err, codeQueryCanceled) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

func isRetryable(err error) bool {
	return hasCode(err, codeSerializationFailure) || hasCode(err, codeDeadlockDetected)
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code
	}
	return false
}

// IsTransient сообщает, что операцию можно безопасно повторить позже
func IsTransient(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrConflict)
}
