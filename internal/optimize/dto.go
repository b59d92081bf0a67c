// AngelaMos | 2026
// dto.go

package optimize

import (
	"time"
)

type OptimizeRequest struct {
	ResumeID       string `json:"resume_id"       validate:"omitempty,uuid"`
	ResumeText     string `json:"resume_text"     validate:"omitempty,max=15000"`
	JobDescription string `json:"job_description" validate:"omitempty,max=20000"`
}

type ResultResponse struct {
	ID             string          `json:"id"`
	ResumeID       *string         `json:"resume_id,omitempty"`
	JobDescription string          `json:"job_description,omitempty"`
	OriginalResume *OriginalResume `json:"originalResume"`
	EnhancedResume *EnhancedResume `json:"enhancedResume"`
	Improvements   []Improvement   `json:"improvements"`
	ATSScore       *ATSScore       `json:"atsScore"`
	DownloadURL    string          `json:"download_url"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type Summary struct {
	ID            string    `json:"id"            db:"id"`
	OriginalScore float64   `json:"original_score" db:"original_score"`
	EnhancedScore float64   `json:"enhanced_score" db:"enhanced_score"`
	CandidateName string    `json:"candidate_name" db:"candidate_name"`
	CreatedAt     time.Time `json:"created_at"    db:"created_at"`
}

func downloadURL(id string) string {
	return "/v1/optimizations/" + id + "/download"
}

func ToResultResponse(r *Result) ResultResponse {
	improvements := r.Analysis.Improvements
	if improvements == nil {
		improvements = []Improvement{}
	}

	return ResultResponse{
		ID:             r.ID,
		ResumeID:       r.ResumeID,
		JobDescription: r.JobDescription,
		OriginalResume: r.Analysis.OriginalResume,
		EnhancedResume: r.Analysis.EnhancedResume,
		Improvements:   improvements,
		ATSScore:       r.Analysis.ATSScore,
		DownloadURL:    downloadURL(r.ID),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
