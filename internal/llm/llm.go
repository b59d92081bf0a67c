// AngelaMos | 2026
// llm.go

package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrProviderRateLimited = errors.New("llm provider rate limited")
	ErrProviderAuth        = errors.New("llm provider rejected credentials")
	ErrEmptyCompletion     = errors.New("llm returned no text")
)

// Completer sends one prompt and returns the raw text of the reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// RateLimitError carries the provider's suggested wait.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("llm provider rate limited, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return ErrProviderRateLimited
}
