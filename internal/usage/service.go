// AngelaMos | 2026
// service.go

package usage

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/carterperez-dev/enhancify/internal/core"
	"github.com/carterperez-dev/enhancify/internal/user"
)

// Gate decides whether a user may start an optimization right now.
type Gate struct {
	repo   Repository
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

func NewGate(repo Repository, loc *time.Location, logger *slog.Logger) *Gate {
	if loc == nil {
		loc = time.UTC
	}
	return &Gate{
		repo:   repo,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// Check downgrades an expired premium plan, lets an active premium plan
// through untouched, and otherwise claims today's single freemium use. A
// spent day yields *LimitError.
func (g *Gate) Check(ctx context.Context, userID string) (Decision, error) {
	// timestamptz keeps microseconds; a finer claim time could never match on release
	now := g.now().Truncate(time.Microsecond)

	sub, err := g.repo.GetSubscription(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("usage check: %w", err)
	}

	switch StateOf(*sub, now, g.loc) {
	case StatePremiumActive:
		return Decision{State: StatePremiumActive}, nil
	case StatePremiumExpired:
		expired, err := g.repo.ExpirePremium(ctx, userID, now)
		if err != nil {
			return Decision{}, fmt.Errorf("usage check: %w", err)
		}
		if expired {
			g.logger.Info("premium plan expired",
				"user_id", userID,
				"ended_at", sub.EndDate,
			)
		}
	case StateFreemiumUnused, StateFreemiumUsed:
	}

	dayStart := DayStart(now, g.loc)

	claim, err := g.repo.ClaimDailyUse(ctx, userID, now, dayStart)
	if err != nil {
		return Decision{}, fmt.Errorf("usage check: %w", err)
	}
	if claim == nil {
		return Decision{State: StateFreemiumUsed}, &LimitError{
			ResetAt: dayStart.AddDate(0, 0, 1),
		}
	}

	return Decision{State: StateFreemiumUnused, Claim: claim}, nil
}

// Release hands a claimed use back after the gated call failed. It is a
// no-op for premium decisions.
func (g *Gate) Release(ctx context.Context, claim *Claim) {
	if claim == nil {
		return
	}

	released, err := g.repo.ReleaseDailyUse(ctx, claim)
	if err != nil {
		g.logger.Error("release daily use",
			"user_id", claim.UserID,
			"error", err,
		)
		return
	}
	if !released {
		g.logger.Warn("daily use changed before release", "user_id", claim.UserID)
	}
}

// Status reports the plan as a client sees it.
func (g *Gate) Status(sub user.Subscription) Status {
	now := g.now()
	state := StateOf(sub, now, g.loc)

	st := Status{
		State:          state,
		Plan:           sub.Plan,
		IsActive:       sub.IsActive,
		StartDate:      sub.StartDate,
		EndDate:        sub.EndDate,
		UsageCount:     sub.UsageCount,
		DailyLimitUsed: state == StateFreemiumUsed,
	}

	if state == StatePremiumActive {
		st.DaysRemaining = DaysRemaining(sub, now)
	}
	if state == StatePremiumExpired {
		st.Plan = user.PlanFreemium
		st.IsActive = false
		st.DailyLimitUsed = UsedToday(sub, now, g.loc)
	}

	return st
}

type Status struct {
	State          State
	Plan           string
	IsActive       bool
	StartDate      *time.Time
	EndDate        *time.Time
	DaysRemaining  int
	DailyLimitUsed bool
	UsageCount     int
}

type LimitDetails struct {
	Plan       string    `json:"plan"`
	ResetAt    time.Time `json:"reset_at"`
	UpgradeURL string    `json:"upgrade_url"`
}

// UpgradePath is where the client starts a premium checkout.
const UpgradePath = "/v1/subscriptions/checkout"

// LimitAppError renders a spent freemium day with an upgrade path.
func LimitAppError(e *LimitError) *core.AppError {
	return core.NewAppError(
		e,
		"You have used today's free optimization. Upgrade to Premium for unlimited optimizations.",
		http.StatusForbidden,
		"USAGE_LIMIT_REACHED",
	).WithDetails(LimitDetails{
		Plan:       user.PlanFreemium,
		ResetAt:    e.ResetAt,
		UpgradeURL: UpgradePath,
	})
}
