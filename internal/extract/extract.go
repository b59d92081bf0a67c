// AngelaMos | 2026
// extract.go

package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/enhancify/internal/config"
	"github.com/carterperez-dev/enhancify/internal/core"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrExtraction        = errors.New("text extraction failed")
)

const (
	TypePDF  = "application/pdf"
	TypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// OCR recognizes text in a PDF that has no usable text layer.
type OCR interface {
	Recognize(ctx context.Context, pdfData []byte) (string, error)
}

type Extractor struct {
	allowed      map[string]struct{}
	ocr          OCR
	ocrThreshold int
	pdfText      func(data []byte) (string, error)
}

// New builds an extractor for the configured content types. ocr may be nil,
// in which case scanned PDFs yield whatever the text layer holds.
func New(cfg config.UploadConfig, ocr OCR) *Extractor {
	allowed := make(map[string]struct{}, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	return &Extractor{
		allowed:      allowed,
		ocr:          ocr,
		ocrThreshold: cfg.OCRThreshold,
		pdfText:      readPDFText,
	}
}

func (e *Extractor) Accepts(contentType string) bool {
	_, ok := e.allowed[normalizeType(contentType)]
	return ok
}

// Extract turns an uploaded document into normalized plain text.
func (e *Extractor) Extract(
	ctx context.Context,
	data []byte,
	contentType string,
) (string, error) {
	ct := normalizeType(contentType)
	if !e.Accepts(ct) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
	}

	switch ct {
	case TypePDF:
		return e.extractPDF(ctx, data)
	case TypeDOCX:
		text, err := readDOCXText(data)
		if err != nil {
			return "", fmt.Errorf("%w: docx: %v", ErrExtraction, err)
		}
		return dedupeLines(text), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
	}
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte) (string, error) {
	text, err := e.pdfText(data)
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %v", ErrExtraction, err)
	}

	text = CollapseWhitespace(text)
	if utf8.RuneCountInString(text) > e.ocrThreshold || e.ocr == nil {
		return text, nil
	}

	ctx, span := core.StartSpan(ctx, "extract.ocr", attribute.Int("pdf.bytes", len(data)))
	defer span.End()

	recognized, err := e.ocr.Recognize(ctx, data)
	if err != nil {
		core.SetSpanError(ctx, err)
		return "", fmt.Errorf("%w: ocr: %v", ErrExtraction, err)
	}

	return CollapseWhitespace(recognized), nil
}

func readPDFText(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed cross reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// CollapseWhitespace folds every whitespace run into one space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// dedupeLines keeps the first appearance of each distinct trimmed line and
// joins the survivors with paragraph breaks.
func dedupeLines(text string) string {
	seen := make(map[string]struct{})
	var out []string

	for _, line := range strings.Split(text, "\n") {
		line = CollapseWhitespace(line)
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}

	return strings.Join(out, "\n\n")
}

func normalizeType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}
