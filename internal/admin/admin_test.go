// AngelaMos | 2026
// admin_test.go

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type stubRepo struct {
	users       int
	results     int
	avgScore    float64
	avgImprove  float64
	active      int
	monthly     []MonthStat
	daily       []DayStat
	recent      []RecentResult
	failResults error

	monthlySince time.Time
	activeSince  time.Time
}

func (s *stubRepo) CountUsers(context.Context) (int, error) { return s.users, nil }
func (s *stubRepo) CountResults(context.Context) (int, error) {
	return s.results, s.failResults
}
func (s *stubRepo) AverageScore(context.Context) (float64, error)       { return s.avgScore, nil }
func (s *stubRepo) AverageImprovement(context.Context) (float64, error) { return s.avgImprove, nil }

func (s *stubRepo) ActiveUsers(_ context.Context, since time.Time) (int, error) {
	s.activeSince = since
	return s.active, nil
}

func (s *stubRepo) MonthlyCounts(_ context.Context, since time.Time) ([]MonthStat, error) {
	s.monthlySince = since
	return s.monthly, nil
}

func (s *stubRepo) DailyCounts(context.Context, time.Time) ([]DayStat, error) {
	return s.daily, nil
}

func (s *stubRepo) RecentResults(context.Context, int) ([]RecentResult, error) {
	return s.recent, nil
}

var fixedNow = time.Date(2026, 5, 20, 15, 0, 0, 0, time.UTC)

func newTestService(repo Repository) *AnalyticsService {
	s := NewAnalyticsService(repo)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestOverview(t *testing.T) {
	t.Parallel()

	svc := newTestService(&stubRepo{users: 12, results: 40, avgScore: 81.249})

	out, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if out.TotalUsers != 12 || out.TotalResumes != 40 || out.AverageMatchScore != 81.2 {
		t.Fatalf("overview = %+v", out)
	}
}

func TestOverviewPropagatesFailure(t *testing.T) {
	t.Parallel()

	svc := newTestService(&stubRepo{failResults: errors.New("db down")})
	if _, err := svc.Overview(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestAnalyticsWindow(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{results: 9, avgImprove: 27.36, active: 4}
	out, err := newTestService(repo).Analytics(context.Background())
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if out.TotalAnalyses != 9 || out.AvgImprovement != 27.4 || out.ActiveUsers != 4 {
		t.Fatalf("analytics = %+v", out)
	}
	if want := fixedNow.AddDate(0, 0, -30); !repo.activeSince.Equal(want) {
		t.Fatalf("active since = %s, want %s", repo.activeSince, want)
	}
}

func TestActivityFillsTwelveMonths(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{monthly: []MonthStat{
		{Month: "2025-07", Count: 2, AvgScore: 70},
		{Month: "2026-05", Count: 5, AvgScore: 88.26},
	}}
	svc := newTestService(repo)

	out, err := svc.Activity(context.Background())
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if len(out) != 12 {
		t.Fatalf("months = %d", len(out))
	}
	if out[0].Month != "2025-06" || out[0].Count != 0 {
		t.Fatalf("first = %+v", out[0])
	}
	if out[1].Count != 2 || out[11].Month != "2026-05" || out[11].Count != 5 {
		t.Fatalf("activity = %+v", out)
	}
	if want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC); !repo.monthlySince.Equal(want) {
		t.Fatalf("since = %s", repo.monthlySince)
	}

	monthly, err := svc.Monthly(context.Background())
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if monthly[11].AvgScore != 88.3 {
		t.Fatalf("avg = %v", monthly[11].AvgScore)
	}
}

func TestUsageFillsThirtyDays(t *testing.T) {
	t.Parallel()

	svc := newTestService(&stubRepo{daily: []DayStat{{Day: "2026-05-20", Count: 3}}})

	out, err := svc.Usage(context.Background())
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if len(out) != 30 || out[0].Day != "2026-04-21" || out[29].Count != 3 {
		t.Fatalf("usage first=%+v last=%+v len=%d", out[0], out[29], len(out))
	}
}

func TestHandlerRecentEmptyList(t *testing.T) {
	t.Parallel()

	h := NewHandler(HandlerConfig{Analytics: newTestService(&stubRepo{})})
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats/recent", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Data []RecentResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data == nil {
		t.Fatal("recent should encode as an empty list")
	}
}
