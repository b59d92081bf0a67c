// AngelaMos | 2026
// repository.go

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/enhancify/internal/core"
)

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id string) (*Entry, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error)
	Delete(ctx context.Context, id, userID string) error
	PurgeBefore(ctx context.Context, before time.Time) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const entryColumns = `
	id, user_id, result_id, original_score, enhanced_score,
	job_description, created_at`

func (r *repository) Create(ctx context.Context, e *Entry) error {
	query := `
		INSERT INTO history (id, user_id, result_id, original_score, enhanced_score, job_description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &e.CreatedAt, query,
		e.ID, e.UserID, e.ResultID, e.OriginalScore, e.EnhancedScore, e.JobDescription)
	if err != nil {
		if core.IsDuplicateKey(err) {
			return fmt.Errorf("create history: %w", core.ErrDuplicateKey)
		}
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("create history: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create history: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Entry, error) {
	var e Entry
	err := r.db.GetContext(ctx, &e, `SELECT `+entryColumns+` FROM history WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get history: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return &e, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var items []Entry
	if err := r.db.SelectContext(ctx, &items, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return items, nil
}

func (r *repository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM history WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete history: %w", core.ErrNotFound)
	}
	return nil
}

func (r *repository) PurgeBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM history WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("purge history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge history: %w", err)
	}
	return n, nil
}
