package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"talkdocs/internal/domain"
)

// Extractor turns a stored document into plain text.
type Extractor interface {
	Extract(path string) (string, error)
}

// Loader validates uploads, persists them and dispatches text extraction by
// file extension.
type Loader struct {
	uploadDir     string
	maxFileSizeMB int
	extractors    map[string]Extractor
	logger        *slog.Logger
}

func New(uploadDir string, maxFileSizeMB int, logger *slog.Logger) *Loader {
	return &Loader{
		uploadDir:     uploadDir,
		maxFileSizeMB: maxFileSizeMB,
		extractors: map[string]Extractor{
			".txt":  TextExtractor{},
			".pdf":  PDFExtractor{},
			".docx": DocxExtractor{},
		},
		logger: logger,
	}
}

// Allowed reports whether fileName has a supported extension.
func (l *Loader) Allowed(fileName string) bool {
	_, ok := l.extractors[strings.ToLower(filepath.Ext(fileName))]
	return ok
}

// MaxBytes is the upload size limit.
func (l *Loader) MaxBytes() int64 {
	return int64(l.maxFileSizeMB) * 1024 * 1024
}

// Validate checks extension and size. It never reads file content.
func (l *Loader) Validate(fileName string, size int64) error {
	if !l.Allowed(fileName) {
		return fmt.Errorf("%w: Unsupported file type: %s. Allowed: PDF, TXT, DOCX", domain.ErrValidation, filepath.Ext(fileName))
	}
	if size > l.MaxBytes() {
		return fmt.Errorf("%w: File '%s' exceeds max size of %d MB", domain.ErrValidation, fileName, l.maxFileSizeMB)
	}
	return nil
}

// SaveUpload writes data to the upload directory under the base name of
// fileName, replacing any previous upload with the same name.
func (l *Loader) SaveUpload(fileName string, data []byte) (string, error) {
	base := filepath.Base(fileName)
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("%w: invalid file name %q", domain.ErrValidation, fileName)
	}
	if err := os.MkdirAll(l.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	dst := filepath.Join(l.uploadDir, base)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	l.logger.Info("saved uploaded file", "path", dst)
	return dst, nil
}

// Load extracts the text of the document at path.
func (l *Loader) Load(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	ex, ok := l.extractors[ext]
	if !ok {
		return "", fmt.Errorf("%w: Unsupported file extension: %s", domain.ErrValidation, ext)
	}
	text, err := ex.Extract(path)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}
	return text, nil
}
