// AngelaMos | 2026
// ocr.go

package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// CommandOCR rasterizes PDF pages with a poppler style tool and feeds each
// page image to tesseract.
type CommandOCR struct {
	rasterCommand string
	ocrCommand    string
	language      string
}

func NewCommandOCR(rasterCommand, ocrCommand string) *CommandOCR {
	return &CommandOCR{
		rasterCommand: rasterCommand,
		ocrCommand:    ocrCommand,
		language:      "eng",
	}
}

// Available reports whether both binaries resolve on PATH.
func (o *CommandOCR) Available() bool {
	if _, err := exec.LookPath(o.rasterCommand); err != nil {
		return false
	}
	_, err := exec.LookPath(o.ocrCommand)
	return err == nil
}

func (o *CommandOCR) Recognize(ctx context.Context, pdfData []byte) (string, error) {
	dir, err := os.MkdirTemp("", "enhancify-ocr-*")
	if err != nil {
		return "", fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, pdfData, 0o600); err != nil {
		return "", fmt.Errorf("write input: %w", err)
	}

	prefix := filepath.Join(dir, "page")
	if _, err := o.run(ctx, o.rasterCommand, "-r", "300", "-png", input, prefix); err != nil {
		return "", fmt.Errorf("rasterize: %w", err)
	}

	pages, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return "", fmt.Errorf("list pages: %w", err)
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("rasterize: no pages produced")
	}
	sort.Strings(pages)

	var out strings.Builder
	for _, page := range pages {
		text, err := o.run(ctx, o.ocrCommand, page, "stdout", "-l", o.language)
		if err != nil {
			return "", fmt.Errorf("recognize %s: %w", filepath.Base(page), err)
		}
		out.WriteString(text)
		out.WriteByte('\n')
	}

	return out.String(), nil
}

func (o *CommandOCR) run(ctx context.Context, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer

	//nolint:gosec // G204: binaries come from operator config, args are temp paths
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return "", fmt.Errorf("%s: %w: %s", name, err, msg)
	}

	return stdout.String(), nil
}
