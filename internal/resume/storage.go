// AngelaMos | 2026
// storage.go

package resume

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/carterperez-dev/enhancify/internal/extract"
)

var ErrOutsideStorage = errors.New("path outside upload directory")

// DiskStore keeps uploaded originals on local disk, one file per upload.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: abs}, nil
}

// Save writes data as <userID>_<unixmillis><ext> and returns the full path.
func (s *DiskStore) Save(userID, contentType string, data []byte, at time.Time) (string, error) {
	name := fmt.Sprintf("%s_%d%s", userID, at.UnixMilli(), extensionFor(contentType))
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return path, nil
}

func (s *DiskStore) Open(path string) (*os.File, error) {
	if !s.contains(path) {
		return nil, ErrOutsideStorage
	}
	return os.Open(path) //nolint:gosec // G304: path checked against the upload dir
}

// Remove deletes a stored original. A file that is already gone is not an
// error.
func (s *DiskStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	if !s.contains(path) {
		return ErrOutsideStorage
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

func (s *DiskStore) contains(path string) bool {
	rel, err := filepath.Rel(s.dir, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)
}

func extensionFor(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, extract.TypePDF):
		return ".pdf"
	case strings.HasPrefix(contentType, extract.TypeDOCX):
		return ".docx"
	default:
		return ""
	}
}
