// AngelaMos | 2026
// parse.go

package optimize

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrMalformedOutput = errors.New("malformed model output")

var fencePattern = regexp.MustCompile("(?i)```(?:json)?[ \t]*")

// StripFences removes markdown code fences around a model reply.
func StripFences(raw string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
}

// ParseAnalysis turns a raw model reply into a checked, normalized
// Analysis. Any decode or schema failure wraps ErrMalformedOutput.
func ParseAnalysis(raw string, v *validator.Validate) (*Analysis, error) {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrMalformedOutput)
	}

	var a Analysis
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	for i := range a.Improvements {
		a.Improvements[i].Impact = strings.ToLower(strings.TrimSpace(a.Improvements[i].Impact))
	}

	if err := v.Struct(&a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	a.EnhancedResume.Normalize()

	return &a, nil
}
