// AngelaMos | 2026
// retention.go

package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/robfig/cron/v3"
)

const (
	lockName   = "enhancify:housekeeping"
	jobTimeout = 5 * time.Minute
)

// Task is one housekeeping step. It reports how many rows it touched.
type Task struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (unlock func(), err error)
}

// RedsyncLocker takes a single-attempt redis lock so only one replica runs
// a scheduled pass.
type RedsyncLocker struct {
	rs *redsync.Redsync
}

func NewRedsyncLocker(rs *redsync.Redsync) *RedsyncLocker {
	return &RedsyncLocker{rs: rs}
}

func (l *RedsyncLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	m := l.rs.NewMutex(name, redsync.WithExpiry(ttl), redsync.WithTries(1))
	if err := m.LockContext(ctx); err != nil {
		return nil, err
	}

	return func() {
		if _, err := m.UnlockContext(context.Background()); err != nil {
			slog.Warn("release housekeeping lock", "error", err)
		}
	}, nil
}

// Retention runs the housekeeping tasks on a cron schedule.
type Retention struct {
	cron     *cron.Cron
	schedule string
	locker   Locker
	lockTTL  time.Duration
	tasks    []Task
	logger   *slog.Logger
}

func NewRetention(
	schedule string,
	locker Locker,
	lockTTL time.Duration,
	logger *slog.Logger,
	tasks ...Task,
) *Retention {
	return &Retention{
		cron:     cron.New(),
		schedule: schedule,
		locker:   locker,
		lockTTL:  lockTTL,
		tasks:    tasks,
		logger:   logger,
	}
}

func (r *Retention) Start() error {
	_, err := r.cron.AddFunc(r.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		r.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule housekeeping %q: %w", r.schedule, err)
	}

	r.cron.Start()
	r.logger.Info("housekeeping scheduled", "schedule", r.schedule, "tasks", len(r.tasks))
	return nil
}

// Stop waits for a running pass or for ctx, whichever ends first.
func (r *Retention) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		r.logger.Warn("housekeeping stopped before pass finished")
	}
}

// RunOnce runs every task under the shared lock. A task failure is logged
// and does not stop the others. It reports whether this replica held the
// lock.
func (r *Retention) RunOnce(ctx context.Context) bool {
	unlock, err := r.locker.TryLock(ctx, lockName, r.lockTTL)
	if err != nil {
		r.logger.Info("housekeeping skipped, lock held elsewhere", "error", err)
		return false
	}
	defer unlock()

	for _, t := range r.tasks {
		start := time.Now()
		n, err := t.Run(ctx)
		if err != nil {
			r.logger.Error("housekeeping task failed", "task", t.Name, "error", err)
			continue
		}
		r.logger.Info("housekeeping task done",
			"task", t.Name,
			"affected", n,
			"duration", time.Since(start),
		)
	}

	return true
}
