// AngelaMos | 2026
// llm_test.go

package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestClassifyProviderErrors(t *testing.T) {
	t.Parallel()

	limited := &anthropic.Error{
		StatusCode: http.StatusTooManyRequests,
		Response:   &http.Response{Header: http.Header{"Retry-After": []string{"30"}}},
	}
	err := classify(limited)

	var rl *RateLimitError
	if !errors.As(err, &rl) || !errors.Is(err, ErrProviderRateLimited) {
		t.Fatalf("429 err = %v", err)
	}
	if rl.RetryAfter != 30*time.Second {
		t.Fatalf("retry after = %s", rl.RetryAfter)
	}

	unauthorized := &anthropic.Error{StatusCode: http.StatusUnauthorized}
	if err := classify(unauthorized); !errors.Is(err, ErrProviderAuth) {
		t.Fatalf("401 err = %v", err)
	}

	plain := errors.New("dial tcp: connection refused")
	if err := classify(plain); !errors.Is(err, plain) || errors.Is(err, ErrProviderAuth) {
		t.Fatalf("transport err = %v", err)
	}
}

func TestRetryAfterDefaults(t *testing.T) {
	t.Parallel()

	if got := retryAfter(nil); got != defaultRetryAfter {
		t.Fatalf("nil response = %s", got)
	}

	resp := &http.Response{Header: http.Header{"Retry-After": []string{"soon"}}}
	if got := retryAfter(resp); got != defaultRetryAfter {
		t.Fatalf("unparseable header = %s", got)
	}
}

func TestMockClientReturnsFencedJSON(t *testing.T) {
	t.Parallel()

	out, err := (&MockClient{}).Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !strings.HasPrefix(out, "```json") || !strings.Contains(out, `"atsScore"`) {
		t.Fatalf("unexpected mock output prefix: %.40q", out)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (&MockClient{Delay: time.Second}).Complete(ctx, "prompt"); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled ctx err = %v", err)
	}
}
