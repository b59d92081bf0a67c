// AngelaMos | 2026
// repository.go

package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/enhancify/internal/core"
	"github.com/carterperez-dev/enhancify/internal/user"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	SetCheckout(ctx context.Context, id string, session CheckoutSession) error
	GetByID(ctx context.Context, id string) (*Payment, error)
	FindPending(ctx context.Context, userID string) (*Payment, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Payment, error)
	List(ctx context.Context, status Status, limit, offset int) ([]AdminPayment, int, error)
	Transition(ctx context.Context, id string, from, to Status) (bool, error)
	Approve(ctx context.Context, id string, grant Grant) (*Payment, error)
	ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]Payment, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const paymentColumns = `
	id, user_id, plan, amount, currency, provider, provider_ref, checkout_url,
	status, valid_from, valid_until, verified_by, verified_at,
	created_at, updated_at`

func (r *repository) Create(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO subscriptions (id, user_id, plan, amount, currency, provider, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	row := struct {
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}{}

	err := r.db.GetContext(ctx, &row, query,
		p.ID, p.UserID, p.Plan, p.Amount, p.Currency, p.Provider, p.Status)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("create payment: %w", core.ErrNotFound)
		}
		if core.IsDuplicateKey(err) {
			return fmt.Errorf("create payment: %w", ErrPendingExists)
		}
		return fmt.Errorf("create payment: %w", err)
	}

	p.CreatedAt = row.CreatedAt
	p.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *repository) SetCheckout(ctx context.Context, id string, session CheckoutSession) error {
	query := `
		UPDATE subscriptions
		SET provider_ref = $2, checkout_url = $3, updated_at = NOW()
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, session.ID, session.URL)
	if err != nil {
		return fmt.Errorf("set checkout: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 { //nolint:errcheck // pgx always reports
		return fmt.Errorf("set checkout: %w", core.ErrNotFound)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p,
		`SELECT `+paymentColumns+` FROM subscriptions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get payment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

// FindPending returns the user's open payment. At most one exists.
func (r *repository) FindPending(ctx context.Context, userID string) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `
		SELECT `+paymentColumns+`
		FROM subscriptions
		WHERE user_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find pending payment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find pending payment: %w", err)
	}
	return &p, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string, limit int) ([]Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var items []Payment
	if err := r.db.SelectContext(ctx, &items, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return items, nil
}

func (r *repository) List(
	ctx context.Context,
	status Status,
	limit, offset int,
) ([]AdminPayment, int, error) {
	where := ""
	args := []any{}
	if status != "" {
		where = "WHERE s.status = $1"
		args = append(args, status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM subscriptions s ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT s.id, s.user_id, s.plan, s.amount, s.currency, s.provider,
		       s.provider_ref, s.checkout_url, s.status, s.valid_from, s.valid_until,
		       s.verified_by, s.verified_at, s.created_at, s.updated_at,
		       u.email AS user_email,
		       TRIM(u.first_name || ' ' || u.last_name) AS user_name
		FROM subscriptions s
		JOIN users u ON u.id = s.user_id
		%s
		ORDER BY s.created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)

	var items []AdminPayment
	if err := r.db.SelectContext(ctx, &items, query, append(args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	return items, total, nil
}

// Transition moves a payment between states only when it is still in from.
func (r *repository) Transition(ctx context.Context, id string, from, to Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return false, fmt.Errorf("transition payment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition payment: %w", err)
	}
	return n == 1, nil
}

// Approve settles a payment in one of grant.From and grants the owner
// premium in one transaction. A plan still running is extended rather than
// restarted.
func (r *repository) Approve(ctx context.Context, id string, grant Grant) (*Payment, error) {
	var p Payment

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var current struct {
			UserID string `db:"user_id"`
			Status Status `db:"status"`
		}
		err := tx.GetContext(ctx, &current,
			`SELECT user_id, status FROM subscriptions WHERE id = $1 FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrNotFound
		}
		if err != nil {
			return err
		}
		if !slices.Contains(grant.From, current.Status) {
			return ErrNotPending
		}

		var owner struct {
			Plan   string     `db:"plan"`
			Active bool       `db:"subscription_active"`
			Start  *time.Time `db:"subscription_start"`
			End    *time.Time `db:"subscription_end"`
		}
		if err := tx.GetContext(ctx, &owner, `
			SELECT plan, subscription_active, subscription_start, subscription_end
			FROM users WHERE id = $1 FOR UPDATE`, current.UserID); err != nil {
			return err
		}

		active := owner.Plan == user.PlanPremium && owner.Active
		from, until := PremiumWindow(owner.End, active, grant.At, grant.Validity)

		err = tx.GetContext(ctx, &p, `
			UPDATE subscriptions
			SET status = 'approved', valid_from = $2, valid_until = $3,
			    verified_by = $4, verified_at = $5, updated_at = NOW()
			WHERE id = $1
			RETURNING `+paymentColumns, id, from, until, grant.VerifiedBy, grant.At)
		if err != nil {
			return err
		}

		planStart := grant.At
		if from.After(grant.At) && owner.Start != nil {
			planStart = *owner.Start
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE users
			SET plan = $2, subscription_active = TRUE,
			    subscription_start = $3, subscription_end = $4,
			    transaction_id = $5, updated_at = NOW()
			WHERE id = $1`,
			p.UserID, user.PlanPremium, planStart, until, transactionID(&p))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("approve payment: %w", err)
	}

	return &p, nil
}

// ListPendingBefore returns open payments created before the cutoff, oldest
// first.
func (r *repository) ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM subscriptions
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at
		LIMIT $2`

	var items []Payment
	if err := r.db.SelectContext(ctx, &items, query, before, limit); err != nil {
		return nil, fmt.Errorf("list stale payments: %w", err)
	}
	return items, nil
}

func transactionID(p *Payment) string {
	if p.ProviderRef != nil && *p.ProviderRef != "" {
		return *p.ProviderRef
	}
	return p.ID
}
