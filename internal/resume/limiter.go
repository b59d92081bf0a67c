// AngelaMos | 2026
// limiter.go

package resume

import (
	"context"
	"fmt"
	"time"
)

// UploadLog lists upload timestamps after a cutoff, oldest first.
type UploadLog interface {
	UploadTimesSince(ctx context.Context, userID string, since time.Time) ([]time.Time, error)
}

// LimitError is returned when the rolling window is full.
type LimitError struct {
	Quota      Quota
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("upload limit of %d reached, retry in %s", e.Quota.Limit, e.RetryAfter)
}

// Limiter counts uploads inside a trailing window. It never writes; the
// upload row itself is the log entry.
type Limiter struct {
	log    UploadLog
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewLimiter(log UploadLog, limit int, window time.Duration) *Limiter {
	return &Limiter{
		log:    log,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (l *Limiter) Window() time.Duration {
	return l.window
}

func (l *Limiter) Quota(ctx context.Context, userID string) (Quota, error) {
	now := l.now()

	times, err := l.log.UploadTimesSince(ctx, userID, now.Add(-l.window))
	if err != nil {
		return Quota{}, fmt.Errorf("count uploads: %w", err)
	}

	q := Quota{
		Limit:     l.limit,
		Used:      len(times),
		Remaining: max(l.limit-len(times), 0),
	}
	if len(times) > 0 {
		reset := times[0].Add(l.window)
		q.ResetAt = &reset
	}

	return q, nil
}

// Allow returns a *LimitError when the user already has limit uploads
// inside the window. The retry point is when the oldest of them ages out.
func (l *Limiter) Allow(ctx context.Context, userID string) (Quota, error) {
	q, err := l.Quota(ctx, userID)
	if err != nil {
		return q, err
	}

	if q.Used < q.Limit {
		return q, nil
	}

	retry := time.Duration(0)
	if q.ResetAt != nil {
		retry = max(q.ResetAt.Sub(l.now()), 0)
	}

	return q, &LimitError{Quota: q, RetryAfter: retry}
}
