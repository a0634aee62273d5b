package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-BookingEngine/internal/config"
	bookingRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/booking"
	notificationRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/notification"
	resourceRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/resource"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/clientservice"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/notifier"
	notificationsService "github.com/m04kA/SMC-BookingEngine/internal/service/notifications"
	"github.com/m04kA/SMC-BookingEngine/internal/sweeper"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/logger"
	"github.com/m04kA/SMC-BookingEngine/pkg/metrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/txmanager"
)

// app общие зависимости для всех команд
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics

	sqlDB         *sql.DB
	db            *dbmetrics.DB
	stopMetricsCh chan struct{}
	txManager     *txmanager.TransactionManager

	bookings      *bookingRepo.Repository
	resources     *resourceRepo.Repository
	notifications *notificationRepo.Repository

	notifier  *notificationsService.Service
	publisher *notifier.Publisher
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Configuration loaded from %s", configPath)

	a := &app{cfg: cfg, log: log, stopMetricsCh: make(chan struct{})}

	if cfg.Metrics.Enabled {
		a.metrics = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	a.sqlDB, err = sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	a.sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	a.sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.sqlDB.PingContext(pingCtx); err != nil {
		a.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if a.metrics != nil {
		a.db = dbmetrics.WrapWithDefault(a.sqlDB, a.metrics, cfg.Metrics.ServiceName, a.stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		a.db = dbmetrics.Wrap(a.sqlDB)
	}

	a.txManager = txmanager.NewTransactionManager(a.db,
		txmanager.WithTimeout(time.Duration(cfg.Database.TxTimeout)*time.Second),
		txmanager.WithMaxRetries(cfg.Database.TxMaxRetries),
		txmanager.WithLogger(log),
	)

	a.bookings = bookingRepo.NewRepository(a.db)
	a.resources = resourceRepo.NewRepository(a.db)
	a.notifications = notificationRepo.NewRepository(a.db)

	if err := a.initNotifier(); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *app) initNotifier() error {
	var sink notificationsService.Sink
	switch a.cfg.Notifier.Driver {
	case config.NotifierAMQP:
		publisher, err := notifier.NewPublisher(a.cfg.Notifier.AMQPURL, a.cfg.Notifier.Exchange)
		if err != nil {
			return fmt.Errorf("connect notifier: %w", err)
		}
		a.publisher = publisher
		sink = publisher
		a.log.Info("Notifications are published to exchange %q", a.cfg.Notifier.Exchange)
	default:
		sink = notifier.NewLogSink(a.log)
		a.log.Info("Notifications are written to the log")
	}

	// nil без типа: сервис уведомлений проверяет наличие справочника
	var contacts notificationsService.ContactDirectory
	if a.cfg.ClientService.Enabled {
		contacts = clientservice.NewClient(
			a.cfg.ClientService.URL,
			time.Duration(a.cfg.ClientService.Timeout)*time.Second,
			a.log,
		)
		a.log.Info("ClientService integration enabled (url=%s, timeout=%ds)",
			a.cfg.ClientService.URL, a.cfg.ClientService.Timeout)
	}

	catalogue, err := notificationsService.DefaultCatalogue()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	a.notifier = notificationsService.NewService(
		sink,
		contacts,
		a.notifications,
		catalogue,
		a.cfg.Notifier.Throttle(),
		a.metrics,
		a.log,
	)
	return nil
}

func (a *app) newSweeper() *sweeper.Sweeper {
	return sweeper.New(
		a.bookings,
		a.resources,
		a.notifications,
		a.notifier,
		a.metrics,
		a.cfg.Sweeper.Passes(),
		a.log,
	)
}

// Close освобождает ресурсы в обратном порядке
func (a *app) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Error("Failed to close notifier: %v", err)
		}
	}
	if a.metrics != nil {
		close(a.stopMetricsCh)
		a.metrics = nil
	}
	if a.sqlDB != nil {
		if err := a.sqlDB.Close(); err != nil {
			a.log.Error("Failed to close database: %v", err)
		}
	}
	a.log.Close()
}
