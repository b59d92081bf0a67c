// AngelaMos | 2026
// entity.go

package history

import (
	"time"
)

// Entry is a result the user chose to keep. Scores are copied at save time
// so the list never needs to open the result documents.
type Entry struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	ResultID       string    `db:"result_id"`
	OriginalScore  float64   `db:"original_score"`
	EnhancedScore  float64   `db:"enhanced_score"`
	JobDescription string    `db:"job_description"`
	CreatedAt      time.Time `db:"created_at"`
}

func (e *Entry) Improvement() float64 {
	return e.EnhancedScore - e.OriginalScore
}

const ListLimit = 50
