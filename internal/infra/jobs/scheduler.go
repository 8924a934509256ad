package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultCompletionSchedule runs shortly after midnight UTC, when the previous day's rentals end.
const DefaultCompletionSchedule = "5 0 * * *"

// BookingCompleter marks bookings whose end date has passed as completed.
type BookingCompleter interface {
	CompleteFinishedBookings(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron      *cron.Cron
	completer BookingCompleter
	timeout   time.Duration
	logger    *slog.Logger
}

type Config struct {
	// Spec is a standard five-field cron expression or a descriptor such as "@hourly".
	Spec    string
	Timeout time.Duration
	Logger  *slog.Logger
}

func NewScheduler(completer BookingCompleter, cfg Config) (*Scheduler, error) {
	if completer == nil {
		return nil, errors.New("jobs: completer is required")
	}
	spec := strings.TrimSpace(cfg.Spec)
	if spec == "" {
		spec = DefaultCompletionSchedule
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	s := &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		completer: completer,
		timeout:   timeout,
		logger:    cfg.Logger,
	}
	if _, err := s.cron.AddFunc(spec, func() { _, _ = s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("jobs: invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	if s.logger != nil {
		s.logger.Info("booking completion job scheduled", "next_run", s.NextRun())
	}
}

// Stop halts the scheduler and waits for a running job, or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunOnce completes finished bookings immediately.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	started := time.Now()
	n, err := s.completer.CompleteFinishedBookings(ctx)
	if s.logger != nil {
		if err != nil {
			s.logger.Error("booking completion job failed", "completed", n, "err", err)
		} else {
			s.logger.Info("booking completion job finished", "completed", n, "duration", time.Since(started))
		}
	}
	return n, err
}
