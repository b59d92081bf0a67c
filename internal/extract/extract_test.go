// AngelaMos | 2026
// extract_test.go

package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/carterperez-dev/enhancify/internal/config"
)

type stubOCR struct {
	calls int
	text  string
	err   error
}

func (s *stubOCR) Recognize(_ context.Context, _ []byte) (string, error) {
	s.calls++
	return s.text, s.err
}

func newTestExtractor(ocr OCR) *Extractor {
	return New(config.UploadConfig{
		AllowedTypes: []string{TypePDF, TypeDOCX},
		OCRThreshold: 100,
	}, ocr)
}

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body +
		`</w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func para(text string) string {
	return `<w:p><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

func TestExtractDOCXDeduplicatesLines(t *testing.T) {
	t.Parallel()

	data := buildDOCX(t,
		para("Jane Doe")+
			para("Experience")+
			para("  Backend   Engineer ")+
			para("Experience")+
			para("")+
			para("Backend Engineer")+
			para("Education"),
	)

	got, err := newTestExtractor(nil).Extract(context.Background(), data, TypeDOCX)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	want := "Jane Doe\n\nExperience\n\nBackend Engineer\n\nEducation"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractRejectsUnsupportedType(t *testing.T) {
	t.Parallel()

	_, err := newTestExtractor(nil).Extract(context.Background(), []byte("hello"), "text/plain")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want unsupported format", err)
	}

	pdfOnly := New(config.UploadConfig{AllowedTypes: []string{TypePDF}}, nil)
	_, err = pdfOnly.Extract(context.Background(), buildDOCX(t, para("x")), TypeDOCX)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("docx on a pdf-only deployment: err = %v", err)
	}
}

func TestExtractCorruptInputIsExtractionError(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(nil)

	_, err := e.Extract(context.Background(), []byte("%PDF-1.4 garbage"), TypePDF)
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("pdf err = %v, want extraction error", err)
	}

	_, err = e.Extract(context.Background(), []byte("not a zip"), TypeDOCX)
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("docx err = %v, want extraction error", err)
	}
}

func TestExtractPDFFallsBackToOCR(t *testing.T) {
	t.Parallel()

	ocr := &stubOCR{text: "Scanned   resume\nExperience  at ACME"}
	e := newTestExtractor(ocr)
	e.pdfText = func([]byte) (string, error) { return "   ", nil }

	got, err := e.Extract(context.Background(), []byte("%PDF"), "application/pdf; charset=binary")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if ocr.calls != 1 {
		t.Fatalf("ocr calls = %d, want 1", ocr.calls)
	}
	if got != "Scanned resume Experience at ACME" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractPDFSkipsOCRWhenTextLayerIsLongEnough(t *testing.T) {
	t.Parallel()

	ocr := &stubOCR{}
	e := newTestExtractor(ocr)
	layer := strings.Repeat("experience ", 20)
	e.pdfText = func([]byte) (string, error) { return layer, nil }

	got, err := e.Extract(context.Background(), []byte("%PDF"), TypePDF)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if ocr.calls != 0 {
		t.Fatalf("ocr must not run for a text pdf")
	}
	if got != strings.TrimSpace(layer) {
		t.Fatalf("text not collapsed: %q", got)
	}
}

func TestExtractPDFThresholdCountsCharacters(t *testing.T) {
	t.Parallel()

	ocr := &stubOCR{text: "Karanasan sa Maynila"}
	e := newTestExtractor(ocr)
	// 60 characters, 180 bytes
	layer := strings.Repeat("日本語", 20)
	e.pdfText = func([]byte) (string, error) { return layer, nil }

	got, err := e.Extract(context.Background(), []byte("%PDF"), TypePDF)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if ocr.calls != 1 {
		t.Fatalf("ocr calls = %d, want 1 for a short text layer", ocr.calls)
	}
	if got != "Karanasan sa Maynila" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractOCRFailureIsExtractionError(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(&stubOCR{err: errors.New("tesseract missing")})
	e.pdfText = func([]byte) (string, error) { return "", nil }

	_, err := e.Extract(context.Background(), []byte("%PDF"), TypePDF)
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("err = %v", err)
	}
}
