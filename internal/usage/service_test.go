// AngelaMos | 2026
// service_test.go

package usage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/carterperez-dev/enhancify/internal/core"
	"github.com/carterperez-dev/enhancify/internal/user"
)

// memRepo applies the same conditions as the SQL, under one lock.
type memRepo struct {
	mu   sync.Mutex
	subs map[string]*user.Subscription
}

func newMemRepo() *memRepo {
	return &memRepo{subs: make(map[string]*user.Subscription)}
}

func (m *memRepo) GetSubscription(_ context.Context, userID string) (*user.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.subs[userID]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (m *memRepo) ExpirePremium(_ context.Context, userID string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub := m.subs[userID]
	if sub.Plan != user.PlanPremium || !sub.IsActive || sub.EndDate == nil || !sub.EndDate.Before(now) {
		return false, nil
	}
	sub.Plan = user.PlanFreemium
	sub.IsActive = false
	return true, nil
}

func (m *memRepo) ClaimDailyUse(_ context.Context, userID string, now, dayStart time.Time) (*Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub := m.subs[userID]
	if sub.Plan == user.PlanPremium && sub.IsActive {
		return nil, nil
	}
	if sub.LastUsedDate != nil && !sub.LastUsedDate.Before(dayStart) {
		return nil, nil
	}

	prev := sub.LastUsedDate
	at := now
	sub.LastUsedDate = &at
	sub.UsageCount++
	return &Claim{UserID: userID, At: now, Previous: prev}, nil
}

func (m *memRepo) ReleaseDailyUse(_ context.Context, claim *Claim) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub := m.subs[claim.UserID]
	if sub.LastUsedDate == nil || !sub.LastUsedDate.Equal(claim.At) {
		return false, nil
	}
	sub.LastUsedDate = claim.Previous
	if sub.UsageCount > 0 {
		sub.UsageCount--
	}
	return true, nil
}

func newTestGate(repo Repository, now time.Time, loc *time.Location) *Gate {
	g := NewGate(repo, loc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	g.now = func() time.Time { return now }
	return g
}

func ptr(t time.Time) *time.Time { return &t }

func TestFreemiumAllowedOncePerDay(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 4, 15, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	repo.subs["u1"] = &user.Subscription{
		Plan:         user.PlanFreemium,
		LastUsedDate: ptr(now.AddDate(0, 0, -1)),
	}
	g := newTestGate(repo, now, time.UTC)

	d, err := g.Check(context.Background(), "u1")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if d.State != StateFreemiumUnused || d.Claim == nil {
		t.Fatalf("decision = %+v", d)
	}

	_, err = g.Check(context.Background(), "u1")
	var limitErr *LimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("second call err = %v, want LimitError", err)
	}
	if !errors.Is(err, core.ErrUsageLimitReached) {
		t.Fatalf("limit error must match the usage sentinel")
	}
	if want := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC); !limitErr.ResetAt.Equal(want) {
		t.Fatalf("reset at = %s, want %s", limitErr.ResetAt, want)
	}

	g.now = func() time.Time { return now.Add(10 * time.Hour) }
	if _, err := g.Check(context.Background(), "u1"); err != nil {
		t.Fatalf("next calendar day: %v", err)
	}
}

func TestDayBoundaryFollowsConfiguredZone(t *testing.T) {
	t.Parallel()

	manila := time.FixedZone("PHT", 8*60*60)
	// 23:30 UTC on May 4 is already May 5 in Manila.
	used := time.Date(2026, 5, 4, 15, 0, 0, 0, time.UTC)
	now := time.Date(2026, 5, 4, 23, 30, 0, 0, time.UTC)

	repo := newMemRepo()
	repo.subs["u1"] = &user.Subscription{Plan: user.PlanFreemium, LastUsedDate: ptr(used)}

	if _, err := newTestGate(repo, now, manila).Check(context.Background(), "u1"); err != nil {
		t.Fatalf("new local day must allow: %v", err)
	}
}

func TestConcurrentFreemiumCallsClaimOnce(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	repo.subs["u1"] = &user.Subscription{Plan: user.PlanFreemium}
	g := newTestGate(repo, now, time.UTC)

	var allowed, denied atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.Check(context.Background(), "u1")
			var limitErr *LimitError
			switch {
			case err == nil:
				allowed.Add(1)
			case errors.As(err, &limitErr):
				denied.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if allowed.Load() != 1 || denied.Load() != 15 {
		t.Fatalf("allowed=%d denied=%d, want 1/15", allowed.Load(), denied.Load())
	}
}

func TestPremiumActiveSkipsCounter(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	repo.subs["u1"] = &user.Subscription{
		Plan:         user.PlanPremium,
		IsActive:     true,
		EndDate:      ptr(now.AddDate(0, 0, 10)),
		LastUsedDate: ptr(now.Add(-time.Hour)),
		UsageCount:   4,
	}
	g := newTestGate(repo, now, time.UTC)

	for range 3 {
		d, err := g.Check(context.Background(), "u1")
		if err != nil {
			t.Fatalf("premium call: %v", err)
		}
		if d.State != StatePremiumActive || d.Claim != nil {
			t.Fatalf("decision = %+v", d)
		}
	}

	if repo.subs["u1"].UsageCount != 4 {
		t.Fatalf("premium calls must not touch the counter")
	}
}

func TestExpiredPremiumDowngradesThenGatesAsFreemium(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	repo.subs["u1"] = &user.Subscription{
		Plan:     user.PlanPremium,
		IsActive: true,
		EndDate:  ptr(now.Add(-time.Minute)),
	}
	g := newTestGate(repo, now, time.UTC)

	d, err := g.Check(context.Background(), "u1")
	if err != nil {
		t.Fatalf("first call after expiry: %v", err)
	}
	if d.State != StateFreemiumUnused || d.Claim == nil {
		t.Fatalf("decision = %+v", d)
	}

	stored := repo.subs["u1"]
	if stored.Plan != user.PlanFreemium || stored.IsActive {
		t.Fatalf("plan not downgraded: %+v", stored)
	}

	if _, err := g.Check(context.Background(), "u1"); !errors.Is(err, core.ErrUsageLimitReached) {
		t.Fatalf("second call err = %v", err)
	}
}

func TestReleaseReturnsTheDay(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	repo := newMemRepo()
	repo.subs["u1"] = &user.Subscription{Plan: user.PlanFreemium, LastUsedDate: ptr(yesterday), UsageCount: 3}
	g := newTestGate(repo, now, time.UTC)

	d, err := g.Check(context.Background(), "u1")
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	g.Release(context.Background(), d.Claim)

	stored := repo.subs["u1"]
	if stored.UsageCount != 3 || stored.LastUsedDate == nil || !stored.LastUsedDate.Equal(yesterday) {
		t.Fatalf("release did not restore state: %+v", stored)
	}

	if _, err := g.Check(context.Background(), "u1"); err != nil {
		t.Fatalf("retry after release: %v", err)
	}

	g.Release(context.Background(), nil)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	g := newTestGate(newMemRepo(), now, time.UTC)

	st := g.Status(user.Subscription{
		Plan:     user.PlanPremium,
		IsActive: true,
		EndDate:  ptr(now.Add(36 * time.Hour)),
	})
	if st.State != StatePremiumActive || st.DaysRemaining != 2 {
		t.Fatalf("premium status = %+v", st)
	}

	st = g.Status(user.Subscription{Plan: user.PlanFreemium, LastUsedDate: ptr(now.Add(-time.Hour))})
	if st.State != StateFreemiumUsed || !st.DailyLimitUsed {
		t.Fatalf("freemium status = %+v", st)
	}

	st = g.Status(user.Subscription{
		Plan:     user.PlanPremium,
		IsActive: true,
		EndDate:  ptr(now.Add(-time.Hour)),
	})
	if st.State != StatePremiumExpired || st.Plan != user.PlanFreemium || st.IsActive {
		t.Fatalf("expired status = %+v", st)
	}
}
