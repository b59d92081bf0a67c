// AngelaMos | 2026
// validator.go

package resume

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	MinTextLength = 100
	MaxTextLength = 15000
)

var (
	ErrTooShort   = errors.New("resume text too short")
	ErrTooLong    = errors.New("resume text too long")
	ErrNotAResume = errors.New("text does not look like a resume")
)

var resumeKeywords = []string{
	"experience",
	"education",
	"skills",
	"projects",
	"work",
	"employment",
	"qualification",
	"certification",
}

// ValidateText is a heuristic gate on extracted text. Length is counted in
// characters, not bytes.
func ValidateText(text string) error {
	n := utf8.RuneCountInString(text)

	if n < MinTextLength {
		return ErrTooShort
	}
	if n > MaxTextLength {
		return ErrTooLong
	}

	lower := strings.ToLower(text)
	for _, kw := range resumeKeywords {
		if strings.Contains(lower, kw) {
			return nil
		}
	}

	return ErrNotAResume
}
