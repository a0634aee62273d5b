package sweeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ScheduleConfig расписание проходов в формате cron (5 полей или @every)
type ScheduleConfig struct {
	UpcomingSpec string
	TomorrowSpec string
	TodaySpec    string
	CleanupSpec  string
}

// DefaultScheduleConfig значения по умолчанию
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		UpcomingSpec: "@every 15m",
		TomorrowSpec: "1 0 * * *",
		TodaySpec:    "0 7 * * *",
		CleanupSpec:  "30 3 * * *",
	}
}

// SchedulerLogger логгер планировщика: printf-формат нужен самому cron
type SchedulerLogger interface {
	Logger
	Printf(format string, v ...interface{})
}

// Scheduler запускает проходы sweeper по расписанию внутри процесса.
// Пропущенный из-за долгого предыдущего прохода запуск не ставится в очередь.
type Scheduler struct {
	sweeper *Sweeper
	cron    *cron.Cron
	logger  SchedulerLogger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler регистрирует проходы; пустая строка в расписании отключает проход
func NewScheduler(sweeper *Sweeper, cfg ScheduleConfig, logger SchedulerLogger) (*Scheduler, error) {
	cronLogger := cron.PrintfLogger(logger)
	s := &Scheduler{
		sweeper: sweeper,
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		)),
		logger: logger,
	}

	jobs := []struct {
		pass string
		spec string
	}{
		{PassUpcoming, cfg.UpcomingSpec},
		{PassTomorrow, cfg.TomorrowSpec},
		{PassToday, cfg.TodaySpec},
		{PassCleanup, cfg.CleanupSpec},
	}
	for _, job := range jobs {
		if job.spec == "" {
			logger.Warn("Scheduler: pass %s is disabled", job.pass)
			continue
		}
		pass := job.pass
		if _, err := s.cron.AddFunc(job.spec, func() { s.run(pass) }); err != nil {
			return nil, fmt.Errorf("sweeper: pass %s spec %q: %w", pass, job.spec, err)
		}
	}

	return s, nil
}

// Start запускает планировщик. Отмена ctx прерывает текущие проходы.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("Scheduler: started with %d jobs", len(s.cron.Entries()))
}

// Stop останавливает планировщик и ждёт завершения проходов не дольше timeout
func (s *Scheduler) Stop(timeout time.Duration) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler: stopped")
	case <-time.After(timeout):
		s.logger.Warn("Scheduler: passes did not finish within %s", timeout)
	}
}

func (s *Scheduler) run(pass string) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		return
	}

	if err := s.sweeper.Run(ctx, pass); err != nil {
		s.logger.Error("Scheduler: pass %s failed: %v", pass, err)
	}
}
