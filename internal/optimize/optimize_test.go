// AngelaMos | 2026
// optimize_test.go

package optimize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/carterperez-dev/enhancify/internal/core"
	"github.com/carterperez-dev/enhancify/internal/document"
	"github.com/carterperez-dev/enhancify/internal/llm"
	"github.com/carterperez-dev/enhancify/internal/middleware"
	"github.com/carterperez-dev/enhancify/internal/resume"
	"github.com/carterperez-dev/enhancify/internal/usage"
)

type memResults struct {
	mu   sync.Mutex
	rows map[string]*Result
}

func newMemResults() *memResults {
	return &memResults{rows: make(map[string]*Result)}
}

func (m *memResults) Create(_ context.Context, r *Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	m.rows[r.ID] = &cp
	return nil
}

func (m *memResults) GetByID(_ context.Context, id string) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memResults) ListByUser(_ context.Context, userID string, limit, offset int) ([]Summary, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Summary
	for _, r := range m.rows {
		if r.UserID != userID {
			continue
		}
		orig, enh := r.Analysis.Scores()
		out = append(out, Summary{ID: r.ID, OriginalScore: orig, EnhancedScore: enh, CreatedAt: r.CreatedAt})
	}
	total := len(out)
	if offset >= total {
		return nil, total, nil
	}
	end := min(offset+limit, total)
	return out[offset:end], total, nil
}

func (m *memResults) UpdateEnhanced(_ context.Context, id, userID string, e *EnhancedResume) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok || r.UserID != userID {
		return time.Time{}, core.ErrNotFound
	}
	r.Analysis.EnhancedResume = e
	r.UpdatedAt = time.Now()
	return r.UpdatedAt, nil
}

func (m *memResults) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// dayGate allows one use until released, like a freemium user on one day.
type dayGate struct {
	mu       sync.Mutex
	used     bool
	premium  bool
	released int
}

func (g *dayGate) Check(_ context.Context, userID string) (usage.Decision, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.premium {
		return usage.Decision{State: usage.StatePremiumActive}, nil
	}
	if g.used {
		return usage.Decision{State: usage.StateFreemiumUsed}, &usage.LimitError{
			ResetAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		}
	}
	g.used = true
	return usage.Decision{
		State: usage.StateFreemiumUnused,
		Claim: &usage.Claim{UserID: userID, At: time.Now()},
	}, nil
}

func (g *dayGate) Release(_ context.Context, claim *usage.Claim) {
	if claim == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.used = false
	g.released++
}

type stubCompleter struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

type stubResumes struct {
	mu        sync.Mutex
	items     map[string]*resume.Resume
	discarded chan string
}

func (s *stubResumes) GetOwned(_ context.Context, userID, id string) (*resume.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok || r.UserID != userID {
		return nil, core.ErrNotFound
	}
	return r, nil
}

func (s *stubResumes) DiscardOriginal(_ context.Context, r *resume.Resume) error {
	s.discarded <- r.ID
	return nil
}

const sampleResume = "Jane Doe\nExperience: Backend Engineer at Acme 2020-2024, built payment services.\nEducation: BS Computer Science\nSkills: Go, SQL"

func mockReply() string {
	out, _ := llm.NewMockClient().Complete(context.Background(), "")
	return out
}

func newTestService(c llm.Completer, gate UsageGate, resumes ResumeSource, requireJD bool) (*Service, *memResults) {
	repo := newMemResults()
	if resumes == nil {
		resumes = &stubResumes{items: map[string]*resume.Resume{}, discarded: make(chan string, 1)}
	}
	svc := NewService(repo, gate, c, resumes, ServiceConfig{RequireJobDescription: requireJD}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, repo
}

func TestNormalizersAreIdempotent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"N/A", ""},
		{"  none ", ""},
		{"To be added", ""},
		{"", ""},
		{"AWS Certified • PMP", "AWS Certified • PMP"},
		{"  CKA  ", "CKA"},
	}

	for _, tc := range cases {
		once := NormalizeCertifications(tc.in)
		if once != tc.want {
			t.Fatalf("NormalizeCertifications(%q) = %q, want %q", tc.in, once, tc.want)
		}
		if twice := NormalizeCertifications(once); twice != once {
			t.Fatalf("second pass changed %q to %q", once, twice)
		}
		if got := NormalizeLinkedIn(NormalizeLinkedIn(tc.in)); got != NormalizeLinkedIn(tc.in) {
			t.Fatalf("NormalizeLinkedIn not idempotent for %q", tc.in)
		}
	}
}

func TestCertificationsDecoding(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		`null`:                             "",
		`["N/A"]`:                          "",
		`[]`:                               "",
		`["AWS Certified", "none", "PMP"]`: "AWS Certified • PMP",
		`"AWS Certified • PMP"`:            "AWS Certified • PMP",
	}

	for raw, want := range cases {
		var c Certifications
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		if string(c) != want {
			t.Fatalf("decode %s = %q, want %q", raw, c, want)
		}
	}
}

func TestParseAnalysisMockReply(t *testing.T) {
	t.Parallel()

	a, err := ParseAnalysis(mockReply(), validator.New(validator.WithRequiredStructEnabled()))
	if err != nil {
		t.Fatalf("ParseAnalysis: %v", err)
	}

	if a.EnhancedResume.Certifications != "" {
		t.Fatalf("certifications = %q, want empty", a.EnhancedResume.Certifications)
	}
	if a.EnhancedResume.Contact.LinkedIn != "" {
		t.Fatalf("linkedin = %q, want empty", a.EnhancedResume.Contact.LinkedIn)
	}
	orig, enh := a.Scores()
	if orig != 48 || enh != 82 {
		t.Fatalf("scores = %v/%v, want 48/82", orig, enh)
	}
}

func TestParseAnalysisRejectsMalformed(t *testing.T) {
	t.Parallel()

	v := validator.New(validator.WithRequiredStructEnabled())

	cases := map[string]string{
		"empty":         "```json\n```",
		"not json":      "Sure! Here is your resume.",
		"missing score": `{"originalResume":{},"enhancedResume":{},"improvements":[]}`,
		"bad impact":    `{"originalResume":{},"enhancedResume":{},"improvements":[{"category":"x","impact":"low"}],"atsScore":{"original":1,"enhanced":2}}`,
		"out of range":  `{"originalResume":{},"enhancedResume":{},"atsScore":{"original":10,"enhanced":140}}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseAnalysis(raw, v); !errors.Is(err, ErrMalformedOutput) {
				t.Fatalf("err = %v, want ErrMalformedOutput", err)
			}
		})
	}
}

func TestParseAnalysisImpactCase(t *testing.T) {
	t.Parallel()

	raw := "```JSON\n" + `{"originalResume":{},"enhancedResume":{"certifications":"AWS Certified • PMP"},` +
		`"improvements":[{"category":"Skills","changes":[],"impact":"High"}],` +
		`"atsScore":{"original":0,"enhanced":100}}` + "\n```"

	a, err := ParseAnalysis(raw, validator.New(validator.WithRequiredStructEnabled()))
	if err != nil {
		t.Fatalf("ParseAnalysis: %v", err)
	}
	if a.Improvements[0].Impact != "high" {
		t.Fatalf("impact = %q", a.Improvements[0].Impact)
	}
	if a.EnhancedResume.Certifications != "AWS Certified • PMP" {
		t.Fatalf("certifications = %q", a.EnhancedResume.Certifications)
	}
}

func TestBuildPromptModes(t *testing.T) {
	t.Parallel()

	general := BuildPrompt(sampleResume, "  ")
	if strings.Contains(general, "<JOB_DESCRIPTION>") {
		t.Fatal("general prompt carries a job description block")
	}
	if !strings.Contains(general, "general ATS compatibility") {
		t.Fatal("general prompt missing general mode instructions")
	}

	targeted := BuildPrompt(sampleResume, "Senior Go engineer")
	if !strings.Contains(targeted, "<JOB_DESCRIPTION>\nSenior Go engineer\n</JOB_DESCRIPTION>") {
		t.Fatal("targeted prompt missing job description block")
	}
	if !strings.Contains(targeted, "<RESUME_TEXT_VERSION>\n"+sampleResume) {
		t.Fatal("prompt missing resume block")
	}
}

func TestOptimizeOncePerDay(t *testing.T) {
	t.Parallel()

	gate := &dayGate{}
	svc, repo := newTestService(&stubCompleter{reply: mockReply()}, gate, nil, false)
	ctx := context.Background()

	first, err := svc.Optimize(ctx, "u1", OptimizeRequest{ResumeText: sampleResume})
	if err != nil {
		t.Fatalf("first Optimize: %v", err)
	}
	if first.ID == "" {
		t.Fatal("result has no id")
	}

	_, err = svc.Optimize(ctx, "u1", OptimizeRequest{ResumeText: sampleResume})
	var limitErr *usage.LimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("second Optimize err = %v, want LimitError", err)
	}
	if repo.count() != 1 {
		t.Fatalf("stored results = %d, want 1", repo.count())
	}
}

func TestOptimizeReleasesOnFailure(t *testing.T) {
	t.Parallel()

	cases := map[string]*stubCompleter{
		"provider error": {err: &llm.RateLimitError{RetryAfter: time.Minute}},
		"malformed":      {reply: "I cannot help with that"},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			gate := &dayGate{}
			svc, repo := newTestService(c, gate, nil, false)

			if _, err := svc.Optimize(context.Background(), "u1", OptimizeRequest{ResumeText: sampleResume}); err == nil {
				t.Fatal("expected error")
			}
			if gate.released != 1 || gate.used {
				t.Fatalf("claim not released: released=%d used=%v", gate.released, gate.used)
			}
			if repo.count() != 0 {
				t.Fatalf("stored results = %d, want 0", repo.count())
			}
		})
	}
}

func TestOptimizeInputChecks(t *testing.T) {
	t.Parallel()

	t.Run("no text", func(t *testing.T) {
		t.Parallel()
		c := &stubCompleter{reply: mockReply()}
		svc, _ := newTestService(c, &dayGate{}, nil, false)
		_, err := svc.Optimize(context.Background(), "u1", OptimizeRequest{ResumeText: "   "})
		if !errors.Is(err, ErrResumeTextRequired) {
			t.Fatalf("err = %v", err)
		}
		if len(c.prompts) != 0 {
			t.Fatal("model called without resume text")
		}
	})

	t.Run("job description required", func(t *testing.T) {
		t.Parallel()
		gate := &dayGate{}
		svc, _ := newTestService(&stubCompleter{reply: mockReply()}, gate, nil, true)
		_, err := svc.Optimize(context.Background(), "u1", OptimizeRequest{ResumeText: sampleResume})
		if !errors.Is(err, ErrJobDescriptionRequired) {
			t.Fatalf("err = %v", err)
		}
		if gate.used {
			t.Fatal("gate consumed on rejected input")
		}
	})
}

func TestOptimizeFromUploadedResume(t *testing.T) {
	t.Parallel()

	path := "/var/uploads/u1_1.pdf"
	res := &resume.Resume{
		ID:             uuid.NewString(),
		UserID:         "u1",
		FilePath:       &path,
		ResumeText:     sampleResume,
		JobDescription: "Platform engineer, Go and Postgres",
	}
	resumes := &stubResumes{
		items:     map[string]*resume.Resume{res.ID: res},
		discarded: make(chan string, 1),
	}
	c := &stubCompleter{reply: mockReply()}
	svc, _ := newTestService(c, &dayGate{premium: true}, resumes, true)

	result, err := svc.Optimize(context.Background(), "u1", OptimizeRequest{ResumeID: res.ID})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if result.ResumeID == nil || *result.ResumeID != res.ID {
		t.Fatalf("resume id not linked: %v", result.ResumeID)
	}
	if result.JobDescription != res.JobDescription {
		t.Fatalf("job description = %q", result.JobDescription)
	}
	if !strings.Contains(c.prompts[0], "Platform engineer, Go and Postgres") {
		t.Fatal("stored job description not sent to model")
	}

	select {
	case id := <-resumes.discarded:
		if id != res.ID {
			t.Fatalf("discarded %s", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("original upload not discarded")
	}

	_, err = svc.Optimize(context.Background(), "u2", OptimizeRequest{ResumeID: res.ID})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign resume err = %v, want not found", err)
	}
}

func TestUpdateEnhancedNormalizes(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(&stubCompleter{reply: mockReply()}, &dayGate{premium: true}, nil, false)
	ctx := context.Background()

	r, err := svc.Optimize(ctx, "u1", OptimizeRequest{ResumeText: sampleResume})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	edited := *r.Analysis.EnhancedResume
	edited.Certifications = "None"
	edited.Contact.LinkedIn = "https://linkedin.com/in/juan"

	updated, err := svc.UpdateEnhanced(ctx, "u1", r.ID, edited)
	if err != nil {
		t.Fatalf("UpdateEnhanced: %v", err)
	}
	if updated.Analysis.EnhancedResume.Certifications != "" {
		t.Fatalf("certifications = %q", updated.Analysis.EnhancedResume.Certifications)
	}
	if updated.Analysis.EnhancedResume.Contact.LinkedIn != "https://linkedin.com/in/juan" {
		t.Fatalf("linkedin = %q", updated.Analysis.EnhancedResume.Contact.LinkedIn)
	}

	if _, err := svc.UpdateEnhanced(ctx, "u2", r.ID, edited); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign update err = %v", err)
	}
}

func TestHandlerUpdateEnhancedRejectsEmptyResume(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(&stubCompleter{reply: mockReply()}, &dayGate{premium: true}, nil, false)
	router := newTestRouter(NewHandler(svc, &captureRenderer{}), "u1")

	r, err := svc.Optimize(context.Background(), "u1", OptimizeRequest{ResumeText: sampleResume})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	for _, body := range []string{`{}`, `{"contact":{"name":"   "}}`} {
		req := httptest.NewRequest(http.MethodPut, "/optimizations/"+r.ID+"/enhanced", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", body, rec.Code)
		}
	}

	stored, err := svc.Get(context.Background(), "u1", r.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Analysis.EnhancedResume.Contact.Name != "Juan Dela Cruz" {
		t.Fatalf("enhanced resume was replaced: %+v", stored.Analysis.EnhancedResume.Contact)
	}
}

func TestHandlerUnknownResumeID(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(&stubCompleter{reply: mockReply()}, &dayGate{}, nil, false)
	router := newTestRouter(NewHandler(svc, &captureRenderer{}), "u1")
	body, _ := json.Marshal(OptimizeRequest{ResumeID: uuid.NewString()})

	rec := postOptimize(t, router, string(body))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if e := decodeError(t, rec); e.Message != "resume not found" {
		t.Fatalf("message = %q, want resume not found", e.Message)
	}
}

type captureRenderer struct {
	got document.Resume
}

func (c *captureRenderer) Render(w io.Writer, res document.Resume) error {
	c.got = res
	_, err := w.Write([]byte("%PDF-1.3 stub"))
	return err
}

func newTestRouter(h *Handler, userID string) http.Handler {
	r := chi.NewRouter()
	auth := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithClaims(req.Context(), &middleware.SessionClaims{UserID: userID})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
	passthrough := func(next http.Handler) http.Handler { return next }
	h.RegisterRoutes(r, auth, passthrough)
	return r
}

func postOptimize(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/optimizations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) core.ErrorBody {
	t.Helper()
	var resp core.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Error == nil {
		t.Fatalf("no error in body: %s", rec.Body.String())
	}
	return *resp.Error
}

func TestHandlerUsageLimit(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(&stubCompleter{reply: mockReply()}, &dayGate{}, nil, false)
	router := newTestRouter(NewHandler(svc, &captureRenderer{}), "u1")
	body, _ := json.Marshal(OptimizeRequest{ResumeText: sampleResume})

	if rec := postOptimize(t, router, string(body)); rec.Code != http.StatusCreated {
		t.Fatalf("first status = %d: %s", rec.Code, rec.Body.String())
	}

	rec := postOptimize(t, router, string(body))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("second status = %d, want 403", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != "USAGE_LIMIT_REACHED" {
		t.Fatalf("code = %s", e.Code)
	}
	if !strings.Contains(rec.Body.String(), usage.UpgradePath) {
		t.Fatal("upgrade path missing from details")
	}
	if repo.count() != 1 {
		t.Fatalf("stored results = %d", repo.count())
	}
}

func TestHandlerProviderErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		c      *stubCompleter
		status int
		code   string
	}{
		{"rate limited", &stubCompleter{err: &llm.RateLimitError{RetryAfter: 30 * time.Second}}, http.StatusTooManyRequests, "RATE_LIMITED_BY_PROVIDER"},
		{"auth", &stubCompleter{err: llm.ErrProviderAuth}, http.StatusInternalServerError, "PROVIDER_AUTH_ERROR"},
		{"malformed", &stubCompleter{reply: "{not json"}, http.StatusInternalServerError, "MALFORMED_MODEL_OUTPUT"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, _ := newTestService(tc.c, &dayGate{}, nil, false)
			router := newTestRouter(NewHandler(svc, &captureRenderer{}), "u1")
			body, _ := json.Marshal(OptimizeRequest{ResumeText: sampleResume})

			rec := postOptimize(t, router, string(body))
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if e := decodeError(t, rec); e.Code != tc.code {
				t.Fatalf("code = %s, want %s", e.Code, tc.code)
			}
			if tc.status == http.StatusTooManyRequests && rec.Header().Get("Retry-After") != "30" {
				t.Fatalf("Retry-After = %q", rec.Header().Get("Retry-After"))
			}
		})
	}
}

func TestHandlerDownload(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(&stubCompleter{reply: mockReply()}, &dayGate{premium: true}, nil, false)
	renderer := &captureRenderer{}
	h := NewHandler(svc, renderer)
	h.now = func() time.Time { return time.Unix(1767225600, 0) }
	router := newTestRouter(h, "u1")

	r, err := svc.Optimize(context.Background(), "u1", OptimizeRequest{ResumeText: sampleResume})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/optimizations/"+r.ID+"/download", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "optimized-resume-1767225600.pdf") {
		t.Fatalf("content disposition = %s", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("body is not a pdf")
	}
	if renderer.got.Name != "Juan Dela Cruz" || renderer.got.Certifications != "" {
		t.Fatalf("rendered view = %+v", renderer.got)
	}

	foreign := newTestRouter(h, "u2")
	rec = httptest.NewRecorder()
	foreign.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/optimizations/"+r.ID+"/download", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign download status = %d", rec.Code)
	}
}

func TestHandlerListPaginates(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(&stubCompleter{reply: mockReply()}, &dayGate{premium: true}, nil, false)
	router := newTestRouter(NewHandler(svc, &captureRenderer{}), "u1")

	for range 3 {
		if _, err := svc.Optimize(context.Background(), "u1", OptimizeRequest{ResumeText: sampleResume}); err != nil {
			t.Fatalf("Optimize: %v", err)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/optimizations?page=2&page_size=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Data []Summary      `json:"data"`
		Meta core.Pagination `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || resp.Meta.Total != 3 || resp.Meta.TotalPages != 2 {
		t.Fatalf("page = %d items, meta %+v", len(resp.Data), resp.Meta)
	}
}
