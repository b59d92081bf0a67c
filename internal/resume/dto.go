// AngelaMos | 2026
// dto.go

package resume

import (
	"math"
	"time"
)

type UploadResponse struct {
	ResumeID       string    `json:"resume_id"`
	FileName       string    `json:"file_name"`
	ResumeText     string    `json:"resume_text"`
	JobDescription string    `json:"job_description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type QuotaResponse struct {
	Limit     int        `json:"limit"`
	Used      int        `json:"used"`
	Remaining int        `json:"remaining"`
	ResetAt   *time.Time `json:"reset_at,omitempty"`
}

// LimitDetails rides along with a 429 so the client can show when the next
// upload opens up.
type LimitDetails struct {
	Limit             int        `json:"limit"`
	Remaining         int        `json:"remaining"`
	ResetAt           *time.Time `json:"reset_at,omitempty"`
	RetryAfterSeconds int        `json:"retry_after_seconds"`
	DaysUntilReset    int        `json:"days_until_reset"`
	HoursUntilReset   int        `json:"hours_until_reset"`
}

func ToUploadResponse(r *Resume) UploadResponse {
	return UploadResponse{
		ResumeID:       r.ID,
		FileName:       r.FileName,
		ResumeText:     r.ResumeText,
		JobDescription: r.JobDescription,
		CreatedAt:      r.CreatedAt,
	}
}

func ToQuotaResponse(q Quota) QuotaResponse {
	return QuotaResponse{
		Limit:     q.Limit,
		Used:      q.Used,
		Remaining: q.Remaining,
		ResetAt:   q.ResetAt,
	}
}

func toLimitDetails(e *LimitError) LimitDetails {
	return LimitDetails{
		Limit:             e.Quota.Limit,
		Remaining:         0,
		ResetAt:           e.Quota.ResetAt,
		RetryAfterSeconds: ceilUnits(e.RetryAfter, time.Second),
		DaysUntilReset:    ceilUnits(e.RetryAfter, 24*time.Hour),
		HoursUntilReset:   ceilUnits(e.RetryAfter, time.Hour),
	}
}

func ceilUnits(d, unit time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(float64(d) / float64(unit)))
}
