// Package decoder turns document bytes into positioned, font-annotated text
// spans. It is the only package that knows about file formats.
package decoder

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docrank/internal/span"
)

// ErrUnsupported is returned by ForFile for unknown extensions.
var ErrUnsupported = errors.New("unsupported file extension")

// Decoder converts raw document bytes into spans.
type Decoder interface {
	Decode(r io.Reader, filename string) (*Document, error)
}

// Document is a decoded document. Pages that failed to decode are listed in
// PageErrors and contribute no spans.
type Document struct {
	Name       string
	Pages      int
	Spans      []span.TextSpan
	PageErrors []PageError
}

// PageError records a page the decoder had to skip.
type PageError struct {
	Page int
	Err  error
}

func (e PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

// Options tune decoder behavior.
type Options struct {
	// PDFFallbackPdftotext runs pdftotext when the Go PDF reader yields no
	// text at all.
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".csv":      true,
}

// ForFile returns the appropriate decoder for a filename.
func ForFile(filename string, opts Options) (Decoder, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextDecoder{}, nil
	case ".md", ".markdown":
		return &MarkdownDecoder{}, nil
	case ".html", ".htm":
		return &HTMLDecoder{}, nil
	case ".pdf":
		return &PDFDecoder{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXDecoder{}, nil
	case ".csv":
		return &CSVDecoder{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
