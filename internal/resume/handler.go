// AngelaMos | 2026
// handler.go

package resume

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/enhancify/internal/core"
	"github.com/carterperez-dev/enhancify/internal/extract"
	"github.com/carterperez-dev/enhancify/internal/middleware"
)

const (
	formFile           = "resume"
	formJobDescription = "job_description"
	multipartOverhead  = 1 << 20
)

type Handler struct {
	service  *Service
	maxBytes int64
}

func NewHandler(service *Service, maxBytes int64) *Handler {
	return &Handler{
		service:  service,
		maxBytes: maxBytes,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/resumes", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.Upload)
		r.Get("/quota", h.Quota)
		r.Get("/{resumeID}/original", h.DownloadOriginal)
	})
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			core.BadRequest(w, h.sizeMessage())
			return
		}
		core.BadRequest(w, "expected a multipart form with a resume file")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll() //nolint:errcheck // temp files only
	}()

	file, header, err := r.FormFile(formFile)
	if err != nil {
		core.BadRequest(w, "resume file is required")
		return
	}
	defer file.Close() //nolint:errcheck // read-only

	if header.Size > h.maxBytes {
		core.BadRequest(w, h.sizeMessage())
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		core.BadRequest(w, "could not read uploaded file")
		return
	}
	if int64(len(data)) > h.maxBytes {
		core.BadRequest(w, h.sizeMessage())
		return
	}
	if len(data) == 0 {
		core.BadRequest(w, "uploaded file is empty")
		return
	}

	res, err := h.service.Upload(r.Context(), middleware.GetUserID(r.Context()), UploadInput{
		FileName:       filepath.Base(header.Filename),
		ContentType:    resolveContentType(header.Header.Get("Content-Type"), header.Filename, data),
		Data:           data,
		JobDescription: r.FormValue(formJobDescription),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToUploadResponse(res))
}

func (h *Handler) Quota(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.Quota(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToQuotaResponse(q))
}

func (h *Handler) DownloadOriginal(w http.ResponseWriter, r *http.Request) {
	res, f, err := h.service.OpenOriginal(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "resumeID"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer f.Close() //nolint:errcheck // read-only

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(
		"attachment",
		map[string]string{"filename": res.FileName},
	))
	if info, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	}

	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, f) //nolint:errcheck // client may disconnect
}

func (h *Handler) sizeMessage() string {
	return fmt.Sprintf("file exceeds the maximum size of %d MB", h.maxBytes>>20)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var limitErr *LimitError

	switch {
	case errors.As(err, &limitErr):
		details := toLimitDetails(limitErr)
		w.Header().Set("Retry-After", strconv.Itoa(details.RetryAfterSeconds))
		core.JSONError(w, core.RateLimitedError(fmt.Sprintf(
			"you can upload %d resumes per %s; try again in %d hour(s)",
			limitErr.Quota.Limit,
			windowLabel(h.service.LimitWindow()),
			details.HoursUntilReset,
		)).WithDetails(details))
	case errors.Is(err, ErrJobDescriptionRequired):
		core.BadRequest(w, "job description is required")
	case errors.Is(err, extract.ErrUnsupportedFormat):
		core.BadRequest(w, "only PDF and DOCX files are allowed")
	case errors.Is(err, extract.ErrExtraction):
		core.BadRequest(w, "could not read text from the uploaded file")
	case errors.Is(err, ErrTooShort):
		core.BadRequest(w, fmt.Sprintf(
			"resume text is too short; at least %d characters are required", MinTextLength))
	case errors.Is(err, ErrTooLong):
		core.BadRequest(w, fmt.Sprintf(
			"resume text is too long; at most %d characters are allowed", MaxTextLength))
	case errors.Is(err, ErrNotAResume):
		core.BadRequest(w, "the uploaded file does not look like a resume")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "resume")
	default:
		core.InternalServerError(w, err)
	}
}

// resolveContentType trusts the file bytes over the client header when the
// bytes are recognizably PDF or DOCX.
func resolveContentType(declared, filename string, data []byte) string {
	detected := mimetype.Detect(data)
	for _, known := range []string{extract.TypePDF, extract.TypeDOCX} {
		if detected.Is(known) {
			return known
		}
	}

	declared = strings.ToLower(strings.TrimSpace(declared))
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extract.TypePDF
	case ".docx":
		return extract.TypeDOCX
	}

	return detected.String()
}

func windowLabel(d time.Duration) string {
	switch {
	case d%(24*time.Hour) == 0 && d >= 48*time.Hour:
		return fmt.Sprintf("%d days", d/(24*time.Hour))
	case d == 24*time.Hour:
		return "day"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	default:
		return d.String()
	}
}
