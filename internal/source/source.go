// Package source extracts raw text from uploaded document files. Extractors
// keep the line structure of the original because the structure parser is
// line based; block boundaries become blank lines.
package source

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for file types with no extractor.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Extractor converts raw document bytes into plain text.
type Extractor interface {
	Extract(r io.Reader, filename string) (string, error)
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
}

type options struct {
	pdftotext bool
}

// Option configures extractors returned by ForFile.
type Option func(*options)

// WithPdftotext enables the pdftotext fallback for PDFs the Go reader
// cannot decode.
func WithPdftotext(enabled bool) Option {
	return func(o *options) {
		o.pdftotext = enabled
	}
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string, opts ...Option) (Extractor, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: o.pdftotext}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// ExtractFile is a convenience wrapper around ForFile and Extract.
func ExtractFile(r io.Reader, filename string, opts ...Option) (string, error) {
	ex, err := ForFile(filename, opts...)
	if err != nil {
		return "", err
	}
	return ex.Extract(r, filename)
}

// blockWriter joins extracted blocks with blank lines.
type blockWriter struct {
	buf strings.Builder
}

func (w *blockWriter) block(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if w.buf.Len() > 0 {
		w.buf.WriteString("\n\n")
	}
	w.buf.WriteString(text)
}

func (w *blockWriter) String() string {
	return w.buf.String()
}
