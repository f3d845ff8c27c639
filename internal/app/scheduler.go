package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/coordination"
	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/domain"
	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/logging"
	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/metrics"
)

const dueReminderBatchSize = 100

// LeaderElector gates the scheduler so only one service instance scans
// for due reminders. Satisfied by coordination.LeaderElection.
type LeaderElector interface {
	TryBecomeLeader(ctx context.Context) (bool, error)
	RenewLease(ctx context.Context) error
	ReleaseLease(ctx context.Context) error
}

// Scheduler periodically scans for due reminders on the leader instance
// and pushes a reminder_triggered notification to the owner's live
// sessions. Fired reminders are deactivated so they fire exactly once.
type Scheduler struct {
	reminders domain.ReminderRepository
	notifier  domain.Notifier
	election  LeaderElector
	clock     clockwork.Clock
	interval  time.Duration

	isLeader bool
}

func NewScheduler(reminders domain.ReminderRepository, notifier domain.Notifier, election LeaderElector, clock clockwork.Clock, interval time.Duration) *Scheduler {
	return &Scheduler{
		reminders: reminders,
		notifier:  notifier,
		election:  election,
		clock:     clock,
		interval:  interval,
	}
}

// Run blocks until ctx is cancelled, releasing a held lease on the way
// out so a standby instance can take over immediately.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("reminder scheduler started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			if s.isLeader {
				// ctx is done, detach the release from it
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				if err := s.election.ReleaseLease(releaseCtx); err != nil {
					logging.WithError(err).Warn("failed to release scheduler lease")
				}
				cancel()
			}
			slog.Info("reminder scheduler stopped")
			return
		case <-ticker.Chan():
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if s.isLeader {
		if err := s.election.RenewLease(ctx); err != nil {
			if errors.Is(err, coordination.ErrNotLeader) {
				slog.Info("lost scheduler leadership")
			} else {
				logging.WithError(err).Warn("failed to renew scheduler lease")
			}
			s.isLeader = false
			return
		}
	} else {
		acquired, err := s.election.TryBecomeLeader(ctx)
		if err != nil {
			logging.WithError(err).Warn("scheduler leader election failed")
			return
		}
		if !acquired {
			return
		}
		slog.Info("acquired scheduler leadership")
		s.isLeader = true
	}

	s.scan(ctx)
}

func (s *Scheduler) scan(ctx context.Context) {
	start := s.clock.Now()
	defer func() {
		metrics.ReminderScanDuration.Observe(s.clock.Since(start).Seconds())
	}()

	due, err := s.reminders.ListDue(ctx, start, dueReminderBatchSize)
	if err != nil {
		logging.WithError(err).Error("failed to list due reminders")
		return
	}

	for _, reminder := range due {
		s.notifier.NotifyUser(reminder.UserID, domain.NotifyReminderTriggered, reminderPayload(reminder))

		// Deactivate after delivery; a crash in between re-fires the
		// reminder on the next scan, which beats dropping it.
		if err := s.reminders.Deactivate(ctx, reminder.ID); err != nil {
			logging.WithError(err).Error("failed to deactivate fired reminder",
				"reminder_id", reminder.ID.String())
			continue
		}
		metrics.RemindersFired.Inc()
	}

	if len(due) > 0 {
		slog.Info("fired due reminders", "count", len(due))
	}
}

func reminderPayload(reminder *domain.Reminder) map[string]any {
	payload := map[string]any{
		"reminder_id":       reminder.ID.String(),
		"reminder_time":     reminder.ReminderTime.Format(time.RFC3339),
		"reminder_type":     reminder.ReminderType,
		"lead_time_minutes": reminder.LeadTimeMinutes,
	}
	if reminder.EventID != nil {
		payload["event_id"] = reminder.EventID.String()
	}
	return payload
}
