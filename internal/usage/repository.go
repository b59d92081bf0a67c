// AngelaMos | 2026
// repository.go

package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/enhancify/internal/core"
	"github.com/carterperez-dev/enhancify/internal/user"
)

// Repository performs every state change as one conditional UPDATE so two
// concurrent calls for the same user cannot both win.
type Repository interface {
	GetSubscription(ctx context.Context, userID string) (*user.Subscription, error)
	ExpirePremium(ctx context.Context, userID string, now time.Time) (bool, error)
	ClaimDailyUse(ctx context.Context, userID string, now, dayStart time.Time) (*Claim, error)
	ReleaseDailyUse(ctx context.Context, claim *Claim) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) GetSubscription(ctx context.Context, userID string) (*user.Subscription, error) {
	query := `
		SELECT plan, subscription_active, subscription_start, subscription_end,
		       last_used_date, usage_count
		FROM users WHERE id = $1`

	row := struct {
		Plan         string     `db:"plan"`
		IsActive     bool       `db:"subscription_active"`
		StartDate    *time.Time `db:"subscription_start"`
		EndDate      *time.Time `db:"subscription_end"`
		LastUsedDate *time.Time `db:"last_used_date"`
		UsageCount   int        `db:"usage_count"`
	}{}

	err := r.db.GetContext(ctx, &row, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get subscription: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}

	return &user.Subscription{
		Plan:         row.Plan,
		IsActive:     row.IsActive,
		StartDate:    row.StartDate,
		EndDate:      row.EndDate,
		LastUsedDate: row.LastUsedDate,
		UsageCount:   row.UsageCount,
	}, nil
}

func (r *repository) ExpirePremium(ctx context.Context, userID string, now time.Time) (bool, error) {
	query := `
		UPDATE users
		SET plan = 'freemium', subscription_active = false, updated_at = NOW()
		WHERE id = $1
		  AND plan = 'premium'
		  AND subscription_active
		  AND subscription_end < $2`

	result, err := r.db.ExecContext(ctx, query, userID, now)
	if err != nil {
		return false, fmt.Errorf("expire premium: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("expire premium: %w", err)
	}

	return n > 0, nil
}

// ClaimDailyUse marks today as used when it has not been yet. A nil claim
// with a nil error means the day was already spent.
func (r *repository) ClaimDailyUse(
	ctx context.Context,
	userID string,
	now, dayStart time.Time,
) (*Claim, error) {
	query := `
		UPDATE users u
		SET last_used_date = $2, usage_count = u.usage_count + 1, updated_at = NOW()
		FROM (SELECT id, last_used_date FROM users WHERE id = $1) prev
		WHERE u.id = prev.id
		  AND NOT (u.plan = 'premium' AND u.subscription_active)
		  AND (u.last_used_date IS NULL OR u.last_used_date < $3)
		RETURNING prev.last_used_date`

	var previous *time.Time
	err := r.db.GetContext(ctx, &previous, query, userID, now, dayStart)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim daily use: %w", err)
	}

	return &Claim{UserID: userID, At: now, Previous: previous}, nil
}

// ReleaseDailyUse undoes a claim only if nothing has touched the row since.
func (r *repository) ReleaseDailyUse(ctx context.Context, claim *Claim) (bool, error) {
	query := `
		UPDATE users
		SET last_used_date = $3, usage_count = GREATEST(usage_count - 1, 0), updated_at = NOW()
		WHERE id = $1 AND last_used_date = $2`

	result, err := r.db.ExecContext(ctx, query, claim.UserID, claim.At, claim.Previous)
	if err != nil {
		return false, fmt.Errorf("release daily use: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("release daily use: %w", err)
	}

	return n > 0, nil
}
