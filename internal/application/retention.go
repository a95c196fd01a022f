package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/example/tablohm/internal/persistence"
)

// RetentionService purges ended events after the configured retention period
// and sweeps expired sessions. It runs on a cron schedule.
type RetentionService struct {
	events   persistence.EventRepository
	sessions persistence.SessionRepository
	configs  persistence.WakeConfigRepository
	now      func() time.Time
	logger   *slog.Logger
	cron     *cron.Cron
}

// NewRetentionService constructs a retention service.
func NewRetentionService(events persistence.EventRepository, sessions persistence.SessionRepository, configs persistence.WakeConfigRepository, now func() time.Time, logger *slog.Logger) *RetentionService {
	if now == nil {
		now = time.Now
	}
	return &RetentionService{
		events:   events,
		sessions: sessions,
		configs:  configs,
		now:      now,
		logger:   defaultLogger(logger),
	}
}

// Start schedules the purge job. The schedule uses cron syntax; an empty
// string falls back to a nightly run.
func (s *RetentionService) Start(spec string) error {
	if spec == "" {
		spec = "0 3 * * *"
	}
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.RunOnce(ctx); err != nil {
			s.logger.Error("retention run failed", "error", err)
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *RetentionService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// RunOnce executes one purge pass: events whose retention lapsed and
// sessions past their expiry.
func (s *RetentionService) RunOnce(ctx context.Context) error {
	logger := serviceLogger(ctx, s.logger, "RetentionService", "RunOnce")

	retentionDays := DefaultWakeSettings().DeleteAfterDays
	config, err := s.configs.GetWakeConfig(ctx)
	if err == nil {
		retentionDays = config.DeleteAfterDays
	}

	now := s.now()
	if retentionDays > 0 {
		cutoff := now.AddDate(0, 0, -retentionDays)
		purged, err := s.events.DeleteEventsEndedBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		if purged > 0 {
			logger.InfoContext(ctx, "purged ended events", "count", purged, "cutoff", cutoff)
		}
	}

	if err := s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
		return err
	}
	return nil
}
