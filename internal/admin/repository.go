// AngelaMos | 2026
// repository.go

package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/carterperez-dev/enhancify/internal/core"
)

type Repository interface {
	CountUsers(ctx context.Context) (int, error)
	CountResults(ctx context.Context) (int, error)
	AverageScore(ctx context.Context) (float64, error)
	AverageImprovement(ctx context.Context) (float64, error)
	ActiveUsers(ctx context.Context, since time.Time) (int, error)
	MonthlyCounts(ctx context.Context, since time.Time) ([]MonthStat, error)
	DailyCounts(ctx context.Context, since time.Time) ([]DayStat, error)
	RecentResults(ctx context.Context, limit int) ([]RecentResult, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *repository) CountResults(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM optimize_results`); err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return n, nil
}

func (r *repository) AverageScore(ctx context.Context) (float64, error) {
	var avg float64
	err := r.db.GetContext(ctx, &avg,
		`SELECT COALESCE(AVG(enhanced_score), 0) FROM optimize_results`)
	if err != nil {
		return 0, fmt.Errorf("average score: %w", err)
	}
	return avg, nil
}

func (r *repository) AverageImprovement(ctx context.Context) (float64, error) {
	var avg float64
	err := r.db.GetContext(ctx, &avg,
		`SELECT COALESCE(AVG(enhanced_score - original_score), 0) FROM optimize_results`)
	if err != nil {
		return 0, fmt.Errorf("average improvement: %w", err)
	}
	return avg, nil
}

func (r *repository) ActiveUsers(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(DISTINCT user_id) FROM optimize_results WHERE created_at >= $1`, since)
	if err != nil {
		return 0, fmt.Errorf("active users: %w", err)
	}
	return n, nil
}

func (r *repository) MonthlyCounts(ctx context.Context, since time.Time) ([]MonthStat, error) {
	query := `
		SELECT to_char(date_trunc('month', created_at AT TIME ZONE 'UTC'), 'YYYY-MM') AS month,
		       COUNT(*) AS count,
		       COALESCE(AVG(enhanced_score), 0) AS avg_score
		FROM optimize_results
		WHERE created_at >= $1
		GROUP BY 1
		ORDER BY 1`

	var rows []MonthStat
	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, fmt.Errorf("monthly counts: %w", err)
	}
	return rows, nil
}

func (r *repository) DailyCounts(ctx context.Context, since time.Time) ([]DayStat, error) {
	query := `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
		       COUNT(*) AS count
		FROM optimize_results
		WHERE created_at >= $1
		GROUP BY 1
		ORDER BY 1`

	var rows []DayStat
	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, fmt.Errorf("daily counts: %w", err)
	}
	return rows, nil
}

func (r *repository) RecentResults(ctx context.Context, limit int) ([]RecentResult, error) {
	query := `
		SELECT o.id, o.user_id,
		       TRIM(u.first_name || ' ' || u.last_name) AS user_name,
		       u.email AS user_email,
		       o.original_score, o.enhanced_score, o.created_at
		FROM optimize_results o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
		LIMIT $1`

	var rows []RecentResult
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("recent results: %w", err)
	}
	return rows, nil
}
