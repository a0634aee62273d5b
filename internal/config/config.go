package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/service/notifications"
	"github.com/m04kA/SMC-BookingEngine/internal/sweeper"
)

// EnvPrefix префикс переменных окружения, например BOOKING_DATABASE_HOST
const EnvPrefix = "BOOKING"

// Драйверы доставки уведомлений
const (
	NotifierAMQP = "amqp"
	NotifierLog  = "log"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server        ServerConfig        `toml:"server" envconfig:"SERVER"`
	Database      DatabaseConfig      `toml:"database" envconfig:"DATABASE"`
	Logs          LogsConfig          `toml:"logs" envconfig:"LOGS"`
	Metrics       MetricsConfig       `toml:"metrics" envconfig:"METRICS"`
	Booking       BookingConfig       `toml:"booking" envconfig:"BOOKING"`
	Sweeper       SweeperConfig       `toml:"sweeper" envconfig:"SWEEPER"`
	Notifier      NotifierConfig      `toml:"notifier" envconfig:"NOTIFIER"`
	ClientService ClientServiceConfig `toml:"client_service" envconfig:"CLIENT_SERVICE"`
}

// ServerConfig HTTP сервер. Таймауты в секундах.
type ServerConfig struct {
	HTTPPort        int     `toml:"http_port" envconfig:"HTTP_PORT"`
	ReadTimeout     int     `toml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    int     `toml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     int     `toml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout int     `toml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimitRPS    float64 `toml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"` // 0 = без ограничения
	RateLimitBurst  int     `toml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST"`
}

// DatabaseConfig подключение к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host" envconfig:"HOST"`
	Port            int    `toml:"port" envconfig:"PORT"`
	User            string `toml:"user" envconfig:"USER"`
	Password        string `toml:"password" envconfig:"PASSWORD"`
	DBName          string `toml:"dbname" envconfig:"DBNAME"`
	SSLMode         string `toml:"sslmode" envconfig:"SSLMODE"`
	MaxOpenConns    int    `toml:"max_open_conns" envconfig:"MAX_OPEN_CONNS"`
	MaxIdleConns    int    `toml:"max_idle_conns" envconfig:"MAX_IDLE_CONNS"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME"` // секунды
	TxTimeout       int    `toml:"tx_timeout" envconfig:"TX_TIMEOUT"`               // секунды на попытку
	TxMaxRetries    int    `toml:"tx_max_retries" envconfig:"TX_MAX_RETRIES"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file" envconfig:"FILE"`
	Level string `toml:"level" envconfig:"LEVEL"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled" envconfig:"ENABLED"`
	Path        string `toml:"path" envconfig:"PATH"`
	ServiceName string `toml:"service_name" envconfig:"SERVICE_NAME"`
}

// BookingConfig правила бронирования
type BookingConfig struct {
	SlotStepMinutes         int `toml:"slot_step_minutes" envconfig:"SLOT_STEP_MINUTES"`
	AdvanceBookingDays      int `toml:"advance_booking_days" envconfig:"ADVANCE_BOOKING_DAYS"`
	MinBookingNoticeMinutes int `toml:"min_booking_notice_minutes" envconfig:"MIN_BOOKING_NOTICE_MINUTES"`
}

// Policy правила в доменном виде
func (c BookingConfig) Policy() domain.BookingPolicy {
	return domain.BookingPolicy{
		SlotStepMinutes:         c.SlotStepMinutes,
		AdvanceBookingDays:      c.AdvanceBookingDays,
		MinBookingNoticeMinutes: c.MinBookingNoticeMinutes,
	}
}

// SweeperConfig расписание проходов (cron, пустая строка отключает проход)
type SweeperConfig struct {
	Enabled            bool   `toml:"enabled" envconfig:"ENABLED"`
	UpcomingSpec       string `toml:"upcoming_spec" envconfig:"UPCOMING_SPEC"`
	TomorrowSpec       string `toml:"tomorrow_spec" envconfig:"TOMORROW_SPEC"`
	TodaySpec          string `toml:"today_spec" envconfig:"TODAY_SPEC"`
	CleanupSpec        string `toml:"cleanup_spec" envconfig:"CLEANUP_SPEC"`
	LeadMinMinutes     int    `toml:"lead_min_minutes" envconfig:"LEAD_MIN_MINUTES"`
	LeadMaxMinutes     int    `toml:"lead_max_minutes" envconfig:"LEAD_MAX_MINUTES"`
	RetentionDays      int    `toml:"retention_days" envconfig:"RETENTION_DAYS"`
	StopTimeoutSeconds int    `toml:"stop_timeout" envconfig:"STOP_TIMEOUT"`
}

func (c SweeperConfig) Schedule() sweeper.ScheduleConfig {
	return sweeper.ScheduleConfig{
		UpcomingSpec: c.UpcomingSpec,
		TomorrowSpec: c.TomorrowSpec,
		TodaySpec:    c.TodaySpec,
		CleanupSpec:  c.CleanupSpec,
	}
}

func (c SweeperConfig) Passes() sweeper.Config {
	return sweeper.Config{
		LeadMin:       time.Duration(c.LeadMinMinutes) * time.Minute,
		LeadMax:       time.Duration(c.LeadMaxMinutes) * time.Minute,
		RetentionDays: c.RetentionDays,
	}
}

// NotifierConfig доставка уведомлений
type NotifierConfig struct {
	Driver        string  `toml:"driver" envconfig:"DRIVER"` // amqp | log
	AMQPURL       string  `toml:"amqp_url" envconfig:"AMQP_URL"`
	Exchange      string  `toml:"exchange" envconfig:"EXCHANGE"`
	RatePerSecond float64 `toml:"rate_per_second" envconfig:"RATE_PER_SECOND"`
	Burst         int     `toml:"burst" envconfig:"BURST"`
	Timeout       int     `toml:"timeout" envconfig:"TIMEOUT"` // секунды на одно уведомление после записи
}

func (c NotifierConfig) Throttle() notifications.Config {
	return notifications.Config{
		RatePerSecond: c.RatePerSecond,
		Burst:         c.Burst,
	}
}

// NotifyTimeout сколько запись ждёт отправки уведомления
func (c NotifierConfig) NotifyTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// ClientServiceConfig справочник контактов клиентов
type ClientServiceConfig struct {
	Enabled bool   `toml:"enabled" envconfig:"ENABLED"`
	URL     string `toml:"url" envconfig:"URL"`
	Timeout int    `toml:"timeout" envconfig:"TIMEOUT"` // секунды
}

// Default значения, которые действуют, если их нет в файле и окружении
func Default() *Config {
	schedule := sweeper.DefaultScheduleConfig()
	passes := sweeper.DefaultConfig()
	policy := domain.DefaultBookingPolicy()

	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
			RateLimitBurst:  10,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			TxTimeout:       5,
			TxMaxRetries:    3,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "booking-engine",
		},
		Booking: BookingConfig{
			SlotStepMinutes:         policy.SlotStepMinutes,
			AdvanceBookingDays:      policy.AdvanceBookingDays,
			MinBookingNoticeMinutes: policy.MinBookingNoticeMinutes,
		},
		Sweeper: SweeperConfig{
			Enabled:            true,
			UpcomingSpec:       schedule.UpcomingSpec,
			TomorrowSpec:       schedule.TomorrowSpec,
			TodaySpec:          schedule.TodaySpec,
			CleanupSpec:        schedule.CleanupSpec,
			LeadMinMinutes:     int(passes.LeadMin / time.Minute),
			LeadMaxMinutes:     int(passes.LeadMax / time.Minute),
			RetentionDays:      passes.RetentionDays,
			StopTimeoutSeconds: 30,
		},
		Notifier: NotifierConfig{
			Driver:   NotifierLog,
			Exchange: "booking.notifications",
			Burst:    1,
			Timeout:  int(domain.DefaultNotifyTimeout / time.Second),
		},
		ClientService: ClientServiceConfig{Timeout: 3},
	}
}

// Load читает TOML файл поверх значений по умолчанию, затем применяет
// переменные окружения с префиксом BOOKING_ и проверяет результат.
// Пустой path пропускает файл.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Server.HTTPPort > 0 && c.Server.HTTPPort < 65536, "server.http_port %d out of range", c.Server.HTTPPort)
	check(c.Server.RateLimitRPS >= 0, "server.rate_limit_rps must not be negative")

	check(c.Database.Host != "", "database.host is required")
	check(c.Database.DBName != "", "database.dbname is required")
	check(c.Database.TxTimeout > 0, "database.tx_timeout must be positive")
	check(c.Database.TxMaxRetries >= 0, "database.tx_max_retries must not be negative")

	check(c.Booking.SlotStepMinutes >= domain.MinSlotStepMinutes && c.Booking.SlotStepMinutes <= domain.MaxSlotStepMinutes,
		"booking.slot_step_minutes must be within %d..%d", domain.MinSlotStepMinutes, domain.MaxSlotStepMinutes)
	check(c.Booking.AdvanceBookingDays >= 0 && c.Booking.AdvanceBookingDays <= domain.MaxAdvanceBookingDays,
		"booking.advance_booking_days must be within 0..%d", domain.MaxAdvanceBookingDays)
	check(c.Booking.MinBookingNoticeMinutes >= 0 && c.Booking.MinBookingNoticeMinutes <= domain.MaxBookingNoticeMinutes,
		"booking.min_booking_notice_minutes must be within 0..%d", domain.MaxBookingNoticeMinutes)

	check(c.Sweeper.LeadMinMinutes >= 0 && c.Sweeper.LeadMinMinutes < c.Sweeper.LeadMaxMinutes,
		"sweeper.lead_min_minutes must be below lead_max_minutes")
	check(c.Sweeper.RetentionDays > 0, "sweeper.retention_days must be positive")

	check(c.Notifier.Timeout > 0, "notifier.timeout must be positive")

	switch c.Notifier.Driver {
	case NotifierLog:
	case NotifierAMQP:
		check(c.Notifier.AMQPURL != "", "notifier.amqp_url is required for the amqp driver")
		check(c.Notifier.Exchange != "", "notifier.exchange is required for the amqp driver")
	default:
		errs = append(errs, fmt.Errorf("notifier.driver %q is not one of %s, %s", c.Notifier.Driver, NotifierAMQP, NotifierLog))
	}

	if c.ClientService.Enabled {
		check(c.ClientService.URL != "", "client_service.url is required when enabled")
		check(c.ClientService.Timeout > 0, "client_service.timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
