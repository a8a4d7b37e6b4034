// Package reminder implements the periodic job that raises due-date reminder
// events for tasks approaching their deadline.
package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taskpulse/taskpulse/internal/service"
)

// Scanner periodically queries for tasks crossing the due-date threshold and
// raises a Reminder event for each through the same commit-gated path used by
// interactive mutations. After a successful raise the task is marked so the
// reminder fires once per due-date cycle.
//
// A crash between "event raised" and "marked sent" can produce a duplicate
// reminder on the next run; that at-least-once tradeoff is accepted.
type Scanner struct {
	tasks    service.TaskService
	lead     time.Duration
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScanner creates a Scanner that runs every interval and selects tasks due
// within the lead duration.
func NewScanner(
	tasks service.TaskService,
	lead, interval time.Duration,
	logger *slog.Logger,
) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		tasks:    tasks,
		lead:     lead,
		interval: interval,
		logger: logger.With(
			"component", "reminder_scanner",
			"lead", lead.String(),
			"interval", interval.String(),
		),
	}
}

// Start begins the scan loop on a background goroutine.
func (s *Scanner) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Scan(ctx)
			}
		}
	}()

	s.logger.Info("reminder scanner started")
}

// Stop shuts the scanner down, letting an in-progress scan finish.
func (s *Scanner) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("reminder scanner stopped")
}

// Scan performs one pass. Per-task failures are logged and skipped so one
// task's failure does not abort the rest of the scan.
func (s *Scanner) Scan(ctx context.Context) {
	threshold := time.Now().UTC().Add(s.lead)

	tasks, err := s.tasks.FindDueForReminder(ctx, threshold)
	if err != nil {
		s.logger.Error("failed to query tasks due for reminder",
			"error", err,
			"threshold", threshold)
		return
	}

	if len(tasks) == 0 {
		s.logger.Debug("no tasks due for reminder", "threshold", threshold)
		return
	}

	s.logger.Info("found tasks needing reminders",
		"count", len(tasks),
		"threshold", threshold)

	for _, task := range tasks {
		if err := s.tasks.RaiseReminder(ctx, task.ID); err != nil {
			s.logger.Error("failed to raise reminder event",
				"error", err,
				"task_id", task.ID)
			continue
		}

		if err := s.tasks.MarkReminderSent(ctx, task.ID); err != nil {
			// The reminder event is already out; the next scan may select
			// this task again and send a duplicate.
			s.logger.Error("failed to mark reminder as sent",
				"error", err,
				"task_id", task.ID)
			continue
		}

		s.logger.Info("reminder raised", "task_id", task.ID)
	}
}
