// AngelaMos | 2026
// service.go

package admin

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

// AnalyticsService answers the dashboard. Independent aggregates run
// concurrently and the first failure cancels the rest.
type AnalyticsService struct {
	repo Repository
	now  func() time.Time
}

func NewAnalyticsService(repo Repository) *AnalyticsService {
	return &AnalyticsService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *AnalyticsService) Overview(ctx context.Context) (*Overview, error) {
	var out Overview
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.repo.CountUsers(ctx)
		out.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountResults(ctx)
		out.TotalResumes = n
		return err
	})
	g.Go(func() error {
		avg, err := s.repo.AverageScore(ctx)
		out.AverageMatchScore = round1(avg)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AnalyticsService) Analytics(ctx context.Context) (*Analytics, error) {
	var out Analytics
	since := s.now().UTC().AddDate(0, 0, -usageDays)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.repo.CountResults(ctx)
		out.TotalAnalyses = n
		return err
	})
	g.Go(func() error {
		avg, err := s.repo.AverageImprovement(ctx)
		out.AvgImprovement = round1(avg)
		return err
	})
	g.Go(func() error {
		n, err := s.repo.ActiveUsers(ctx, since)
		out.ActiveUsers = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Activity returns one entry per month for the last twelve months,
// oldest first, including months with no results.
func (s *AnalyticsService) Activity(ctx context.Context) ([]MonthStat, error) {
	first := monthStart(s.now()).AddDate(0, -(activityMonths - 1), 0)

	rows, err := s.repo.MonthlyCounts(ctx, first)
	if err != nil {
		return nil, err
	}

	return fillMonths(rows, first, activityMonths), nil
}

// Monthly is Activity with the average enhanced score kept per month.
func (s *AnalyticsService) Monthly(ctx context.Context) ([]MonthStat, error) {
	stats, err := s.Activity(ctx)
	if err != nil {
		return nil, err
	}
	for i := range stats {
		stats[i].AvgScore = round1(stats[i].AvgScore)
	}
	return stats, nil
}

// Usage returns daily result counts for the trailing thirty days, today
// included.
func (s *AnalyticsService) Usage(ctx context.Context) ([]DayStat, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	first := today.AddDate(0, 0, -(usageDays - 1))

	rows, err := s.repo.DailyCounts(ctx, first)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]int, len(rows))
	for _, r := range rows {
		byDay[r.Day] = r.Count
	}

	out := make([]DayStat, 0, usageDays)
	for i := range usageDays {
		day := first.AddDate(0, 0, i).Format(dayLayout)
		out = append(out, DayStat{Day: day, Count: byDay[day]})
	}
	return out, nil
}

func (s *AnalyticsService) Recent(ctx context.Context) ([]RecentResult, error) {
	rows, err := s.repo.RecentResults(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []RecentResult{}
	}
	return rows, nil
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func fillMonths(rows []MonthStat, first time.Time, months int) []MonthStat {
	byMonth := make(map[string]MonthStat, len(rows))
	for _, r := range rows {
		byMonth[r.Month] = r
	}

	out := make([]MonthStat, 0, months)
	for i := range months {
		key := first.AddDate(0, i, 0).Format(monthLayout)
		stat, ok := byMonth[key]
		if !ok {
			stat = MonthStat{Month: key}
		}
		out = append(out, stat)
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
