package migrations

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
)

//go:embed *.sql
var files embed.FS

// ErrMigration ошибка применения миграции
var ErrMigration = errors.New("migrations: failed to apply")

// TxRunner выполняет функцию в транзакции
type TxRunner interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
}

// Up применяет ещё не применённые миграции по порядку имён файлов.
// Каждый файл и запись о нём в schema_migrations идут в одной транзакции.
func Up(ctx context.Context, db dbmetrics.DBExecutor, tx TxRunner, log Logger) ([]string, error) {
	names, err := List()
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return nil, fmt.Errorf("%w: create schema_migrations: %v", ErrMigration, err)
	}

	applied := make([]string, 0, len(names))
	for _, name := range names {
		var done bool
		err := db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, name,
		).Scan(&done)
		if err != nil {
			return applied, fmt.Errorf("%w: check %s: %v", ErrMigration, name, err)
		}
		if done {
			continue
		}

		body, err := files.ReadFile(name)
		if err != nil {
			return applied, fmt.Errorf("%w: read %s: %v", ErrMigration, name, err)
		}

		err = tx.Do(ctx, func(ctx context.Context) error {
			executor := dbmetrics.GetExecutor(ctx, db)
			if _, err := executor.ExecContext(ctx, string(body)); err != nil {
				return err
			}
			_, err := executor.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, name)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("%w: %s: %v", ErrMigration, name, err)
		}

		log.Info("migrations: applied %s", name)
		applied = append(applied, name)
	}

	return applied, nil
}

// List имена встроенных миграций в порядке применения
func List() ([]string, error) {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	return names, nil
}
