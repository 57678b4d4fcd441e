package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"onesmallstep/internal/logger"
)

// SchedulerService wraps cron-based jobs.
type SchedulerService struct {
	cron    *cron.Cron
	log     *logger.Logger
	timeout time.Duration
}

func NewSchedulerService(loc *time.Location, log *logger.Logger) *SchedulerService {
	return &SchedulerService{
		cron:    cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		log:     log.With("component", "SchedulerService"),
		timeout: 30 * time.Second,
	}
}

// ScheduleDaily registers a job at the given HH:MM time string. Each run gets
// its own timeout-bound context and failures are logged, not retried.
func (s *SchedulerService) ScheduleDaily(name, timeStr string, job func(ctx context.Context) error) (cron.EntryID, error) {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := job(ctx); err != nil {
			s.log.Error("scheduled job failed", "job", name, "error", err)
			return
		}
		s.log.Debug("scheduled job done", "job", name)
	})
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// buildDailySpec turns "HH:MM" into a seconds-enabled cron spec.
func buildDailySpec(timeStr string) (string, error) {
	at, err := time.Parse("15:04", strings.TrimSpace(timeStr))
	if err != nil {
		return "", fmt.Errorf("invalid daily time %q, expected HH:MM: %w", timeStr, err)
	}
	return fmt.Sprintf("0 %d %d * * *", at.Minute(), at.Hour()), nil
}
