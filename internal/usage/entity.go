// AngelaMos | 2026
// entity.go

package usage

import (
	"fmt"
	"time"

	"github.com/carterperez-dev/enhancify/internal/core"
	"github.com/carterperez-dev/enhancify/internal/user"
)

type State string

const (
	StateFreemiumUnused State = "freemium-unused-today"
	StateFreemiumUsed   State = "freemium-used-today"
	StatePremiumActive  State = "premium-active"
	StatePremiumExpired State = "premium-expired"
)

// Claim records a freemium use taken for one gated call so it can be handed
// back if the call fails.
type Claim struct {
	UserID   string
	At       time.Time
	Previous *time.Time
}

type Decision struct {
	State State
	Claim *Claim
}

// LimitError is the daily freemium use already being spent.
type LimitError struct {
	ResetAt time.Time
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("daily limit reached, resets at %s", e.ResetAt.Format(time.RFC3339))
}

func (e *LimitError) Unwrap() error {
	return core.ErrUsageLimitReached
}

// DayStart truncates t to midnight of its calendar day in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// StateOf classifies a subscription without mutating it. A premium plan past
// its end date reads as expired until the gate downgrades it.
func StateOf(sub user.Subscription, now time.Time, loc *time.Location) State {
	if sub.Plan == user.PlanPremium && sub.IsActive {
		if sub.EndDate != nil && now.After(*sub.EndDate) {
			return StatePremiumExpired
		}
		return StatePremiumActive
	}

	if UsedToday(sub, now, loc) {
		return StateFreemiumUsed
	}
	return StateFreemiumUnused
}

func UsedToday(sub user.Subscription, now time.Time, loc *time.Location) bool {
	if sub.LastUsedDate == nil {
		return false
	}
	return !sub.LastUsedDate.Before(DayStart(now, loc))
}

// DaysRemaining rounds the time left on a premium plan up to whole days.
func DaysRemaining(sub user.Subscription, now time.Time) int {
	if sub.EndDate == nil || !sub.EndDate.After(now) {
		return 0
	}
	left := sub.EndDate.Sub(now)
	days := int(left / (24 * time.Hour))
	if left%(24*time.Hour) != 0 {
		days++
	}
	return days
}
