// AngelaMos | 2026
// core_test.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format %q", hash)
	}

	ok, err := VerifyPassword("correct horse battery", hash)
	if err != nil || !ok {
		t.Fatalf("verify correct password: ok=%v err=%v", ok, err)
	}

	ok, err = VerifyPassword("wrong", hash)
	if err != nil || ok {
		t.Fatalf("verify wrong password: ok=%v err=%v", ok, err)
	}
}

func TestVerifyPasswordTimingSafeWithoutHash(t *testing.T) {
	t.Parallel()

	ok, _, err := VerifyPasswordTimingSafe("anything", nil)
	if err != nil || ok {
		t.Fatalf("nil hash must never verify: ok=%v err=%v", ok, err)
	}
}

func TestGenerateResetTokenIsHex64(t *testing.T) {
	t.Parallel()

	token, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(token) != 64 {
		t.Fatalf("token length = %d, want 64", len(token))
	}
	if HashToken(token) == token {
		t.Fatalf("hash must differ from token")
	}
	if HashToken(token) != HashToken(token) {
		t.Fatalf("hash must be deterministic")
	}
}

func TestJSONErrorEnvelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	JSONError(rec, UsageLimitError("Daily limit reached").WithDetails(map[string]any{
		"upgrade_required": true,
	}))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	var body Response
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success {
		t.Fatalf("success must be false")
	}
	if body.Error == nil || body.Error.Code != "USAGE_LIMIT_REACHED" {
		t.Fatalf("unexpected error body %+v", body.Error)
	}
	if body.Error.Details == nil {
		t.Fatalf("details missing")
	}
}

func TestJSONErrorHidesUnexpectedErrors(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	JSONError(rec, fmt.Errorf("insert row: %w", errors.New("pq: connection refused")))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
}

func TestAppErrorUnwrapsToSentinel(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("gate: %w", UsageLimitError("limit"))
	if !errors.Is(err, ErrUsageLimitReached) {
		t.Fatalf("errors.Is should reach the sentinel")
	}
	if !IsAppError(err) {
		t.Fatalf("IsAppError should see through wrapping")
	}
}

func TestPaginatedMeta(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	Paginated(rec, []int{1, 2}, 2, 10, 21)

	var body Response
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Meta == nil || body.Meta.TotalPages != 3 {
		t.Fatalf("meta = %+v, want 3 pages", body.Meta)
	}
}

func TestFormatValidationError(t *testing.T) {
	t.Parallel()

	type req struct {
		FirstName string `validate:"required"`
		Email     string `validate:"required,email"`
	}

	err := validator.New().Struct(req{Email: "nope"})
	msg := FormatValidationError(err)

	if !strings.Contains(msg, "first_name is required") {
		t.Errorf("message %q missing first_name", msg)
	}
	if !strings.Contains(msg, "email must be a valid email address") {
		t.Errorf("message %q missing email", msg)
	}
}
