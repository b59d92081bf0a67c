// AngelaMos | 2026
// entity.go

package resume

import (
	"time"
)

// Resume is one upload event. FilePath is cleared once the stored original
// has been discarded after an optimization.
type Resume struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	FileName       string    `db:"file_name"`
	FilePath       *string   `db:"file_path"`
	ContentType    string    `db:"content_type"`
	ResumeText     string    `db:"resume_text"`
	JobDescription string    `db:"job_description"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r *Resume) HasOriginal() bool {
	return r.FilePath != nil && *r.FilePath != ""
}

// Quota is the upload allowance inside the rolling window at a point in time.
type Quota struct {
	Limit     int
	Used      int
	Remaining int
	ResetAt   *time.Time
}
