// AngelaMos | 2026
// entity.go

package optimize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Result struct {
	ID             string
	UserID         string
	ResumeID       *string
	JobDescription string
	Analysis       Analysis
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Analysis is the document the model is asked to produce.
type Analysis struct {
	OriginalResume *OriginalResume `json:"originalResume" validate:"required"`
	EnhancedResume *EnhancedResume `json:"enhancedResume" validate:"required"`
	Improvements   []Improvement   `json:"improvements" validate:"dive"`
	ATSScore       *ATSScore       `json:"atsScore" validate:"required"`
}

type OriginalContact struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type EnhancedContact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`
}

type Experience struct {
	Position         string   `json:"position"`
	Company          string   `json:"company"`
	Period           string   `json:"period"`
	Responsibilities []string `json:"responsibilities"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Period      string `json:"period"`
	Relevant    string `json:"relevant,omitempty"`
}

type OriginalResume struct {
	Contact    OriginalContact `json:"contact"`
	Summary    string          `json:"summary"`
	Experience []Experience    `json:"experience"`
	Education  []Education     `json:"education"`
	Skills     []string        `json:"skills"`
	Languages  []string        `json:"languages"`
}

type Skills struct {
	Technical []string `json:"technical"`
	Soft      []string `json:"soft"`
}

type EnhancedResume struct {
	Contact        EnhancedContact `json:"contact"`
	Summary        string          `json:"summary"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Skills         Skills          `json:"skills"`
	Languages      []string        `json:"languages"`
	Certifications Certifications  `json:"certifications"`
}

type Improvement struct {
	Category string   `json:"category" validate:"required"`
	Changes  []string `json:"changes"`
	Impact   string   `json:"impact" validate:"oneof=high critical"`
}

type ScoreCategory struct {
	Name     string  `json:"name" validate:"required"`
	Original float64 `json:"original" validate:"min=0,max=100"`
	Enhanced float64 `json:"enhanced" validate:"min=0,max=100"`
}

type ATSScore struct {
	Original   *float64        `json:"original" validate:"required,min=0,max=100"`
	Enhanced   *float64        `json:"enhanced" validate:"required,min=0,max=100"`
	Categories []ScoreCategory `json:"categories" validate:"dive"`
}

// Certifications decodes either a string or a list of strings. A list is
// filtered of placeholders and joined with CertificationSeparator.
type Certifications string

const CertificationSeparator = " • "

func (c *Certifications) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}

	if len(data) > 0 && data[0] == '[' {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("certifications list: %w", err)
		}
		*c = Certifications(NormalizeCertificationList(items))
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("certifications: %w", err)
	}
	*c = Certifications(s)
	return nil
}

var placeholders = []string{"n/a", "none", "to be added"}

// IsPlaceholder reports blank text or text containing a known filler
// phrase, compared case-insensitively.
func IsPlaceholder(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	if lower == "" {
		return true
	}
	for _, p := range placeholders {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// NormalizeCertifications scrubs a scalar certifications value. It is
// idempotent.
func NormalizeCertifications(s string) string {
	if IsPlaceholder(s) {
		return ""
	}
	return strings.TrimSpace(s)
}

func NormalizeCertificationList(items []string) string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if IsPlaceholder(item) {
			continue
		}
		kept = append(kept, strings.TrimSpace(item))
	}
	return strings.Join(kept, CertificationSeparator)
}

func NormalizeLinkedIn(s string) string {
	if IsPlaceholder(s) {
		return ""
	}
	return strings.TrimSpace(s)
}

// Normalize applies the placeholder rules to the enhanced resume in place.
func (e *EnhancedResume) Normalize() {
	e.Certifications = Certifications(NormalizeCertifications(string(e.Certifications)))
	e.Contact.LinkedIn = NormalizeLinkedIn(e.Contact.LinkedIn)
}

func (a *Analysis) Scores() (original, enhanced float64) {
	if a.ATSScore == nil {
		return 0, 0
	}
	if a.ATSScore.Original != nil {
		original = *a.ATSScore.Original
	}
	if a.ATSScore.Enhanced != nil {
		enhanced = *a.ATSScore.Enhanced
	}
	return original, enhanced
}
