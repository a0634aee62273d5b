package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	checkAvailabilityHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/check_availability"
	createBookingHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/create_booking"
	deleteBookingHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/delete_booking"
	getBookingHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_booking"
	getBookingNotificationsHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_booking_notifications"
	getClientBookingsHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_client_bookings"
	getResourceHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_resource"
	getResourceBookingsHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_resource_bookings"
	rescheduleBookingHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/reschedule_booking"
	transitionBookingHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/transition_booking"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/infra/storage/migrations"
	bookingsService "github.com/m04kA/SMC-BookingEngine/internal/service/bookings"
	resourcesService "github.com/m04kA/SMC-BookingEngine/internal/service/resources"
	"github.com/m04kA/SMC-BookingEngine/internal/sweeper"
	createBookingUC "github.com/m04kA/SMC-BookingEngine/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
	rescheduleBookingUC "github.com/m04kA/SMC-BookingEngine/internal/usecase/reschedule_booking"
	transitionBookingUC "github.com/m04kA/SMC-BookingEngine/internal/usecase/transition_booking"
)

func newServeCmd(configPath *string) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the reminder scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			a.log.Info("Starting SMC-BookingEngine %s...", Version)

			if migrate {
				if _, err := migrations.Up(ctx, a.db, a.txManager, a.log); err != nil {
					return err
				}
			}

			return serve(ctx, a)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before start")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"

	return cmd
}

func serve(ctx context.Context, a *app) error {
	cfg := a.cfg
	log := a.log
	policy := cfg.Booking.Policy()

	// Инициализируем use cases
	notifyTimeout := cfg.Notifier.NotifyTimeout()
	createBookingUseCase := createBookingUC.NewUseCase(a.bookings, a.resources, a.notifier, a.txManager, policy, log).
		WithNotifyTimeout(notifyTimeout)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(a.bookings, a.resources, a.txManager, policy, log)
	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(a.bookings, a.resources, a.notifier, a.txManager, policy, log).
		WithNotifyTimeout(notifyTimeout)
	transitionBookingUseCase := transitionBookingUC.NewUseCase(a.bookings, a.resources, a.notifier, a.txManager, log).
		WithNotifyTimeout(notifyTimeout)

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		createBookingUseCase,
		getAvailableSlotsUseCase,
		rescheduleBookingUseCase,
		transitionBookingUseCase,
		a.bookings,
		a.resources,
		a.txManager,
		a.metrics,
		log,
	)
	resourceSvc := resourcesService.NewService(a.resources, a.txManager, policy, log)

	// Инициализируем handlers
	checkAvailability := checkAvailabilityHandler.NewHandler(bookingSvc, log)
	createBooking := createBookingHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(bookingSvc, log)
	transitionBooking := transitionBookingHandler.NewHandler(bookingSvc, log)
	deleteBooking := deleteBookingHandler.NewHandler(bookingSvc, log)
	getResourceBookings := getResourceBookingsHandler.NewHandler(bookingSvc, log)
	getClientBookings := getClientBookingsHandler.NewHandler(bookingSvc, log)
	getResource := getResourceHandler.NewHandler(resourceSvc, log)
	getBookingNotifications := getBookingNotificationsHandler.NewHandler(a.notifier, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if a.metrics != nil {
		r.Use(middleware.MetricsMiddleware(a.metrics, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/resources/{resourceId}", getResource.Handle).Methods(http.MethodGet)
	api.HandleFunc("/resources/{resourceId}/services/{serviceId}", getResource.HandleService).Methods(http.MethodGet)
	api.HandleFunc("/resources/{resourceId}/availability", checkAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)
	protected.Use(middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst).Middleware)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}", deleteBooking.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/bookings/{bookingId}/window", rescheduleBooking.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/bookings/{bookingId}/status", transitionBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/notifications", getBookingNotifications.Handle).Methods(http.MethodGet)

	// --- Выборки ---
	protected.HandleFunc("/resources/{resourceId}/bookings", getResourceBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/clients/{clientId}/bookings", getClientBookings.Handle).Methods(http.MethodGet)

	// Планировщик напоминаний
	var scheduler *sweeper.Scheduler
	if cfg.Sweeper.Enabled {
		var err error
		scheduler, err = sweeper.NewScheduler(a.newSweeper(), cfg.Sweeper.Schedule(), log)
		if err != nil {
			return err
		}
		scheduler.Start(ctx)
		log.Info("Reminder scheduler started")
	}

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	log.Info("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop(time.Duration(cfg.Sweeper.StopTimeoutSeconds) * time.Second)
		log.Info("Reminder scheduler stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if serveErr != nil {
		return fmt.Errorf("server failed: %w", serveErr)
	}
	log.Info("Server stopped gracefully")
	return nil
}
