// AngelaMos | 2026
// entity.go

package admin

import (
	"time"
)

type MonthStat struct {
	Month    string  `db:"month"     json:"month"`
	Count    int     `db:"count"     json:"count"`
	AvgScore float64 `db:"avg_score" json:"avg_score"`
}

type DayStat struct {
	Day   string `db:"day"   json:"day"`
	Count int    `db:"count" json:"count"`
}

type RecentResult struct {
	ID            string    `db:"id"             json:"id"`
	UserID        string    `db:"user_id"        json:"user_id"`
	UserName      string    `db:"user_name"      json:"user_name"`
	UserEmail     string    `db:"user_email"     json:"user_email"`
	OriginalScore float64   `db:"original_score" json:"original_score"`
	EnhancedScore float64   `db:"enhanced_score" json:"enhanced_score"`
	CreatedAt     time.Time `db:"created_at"     json:"created_at"`
}

type Overview struct {
	TotalUsers        int     `json:"total_users"`
	TotalResumes      int     `json:"total_resumes"`
	AverageMatchScore float64 `json:"average_match_score"`
}

type Analytics struct {
	TotalAnalyses  int     `json:"total_analyses"`
	AvgImprovement float64 `json:"avg_improvement"`
	ActiveUsers    int     `json:"active_users"`
}

const (
	activityMonths = 12
	usageDays      = 30
	recentLimit    = 10
	monthLayout    = "2006-01"
	dayLayout      = "2006-01-02"
)
