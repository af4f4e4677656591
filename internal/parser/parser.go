package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/paperdigest/internal/document"
	"golang.org/x/text/unicode/norm"
)

// ErrNoText means the file parsed but contained no extractable text, as
// with scanned PDFs.
var ErrNoText = errors.New("no extractable text")

// Parser converts raw document bytes into plain text.
type Parser interface {
	Parse(r io.Reader, filename string) (*document.Document, error)
}

// Options tunes parser selection.
type Options struct {
	PdftotextFallback bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PdftotextFallback}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Extract picks a parser for filename, parses r and NFC-normalizes the
// text. A document whose text is blank is reported as ErrNoText.
func Extract(r io.Reader, filename string, opts Options) (*document.Document, error) {
	p, err := ForFile(filename, opts)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(r, filename)
	if err != nil {
		return nil, err
	}
	doc.Text = norm.NFC.String(doc.Text)
	if strings.TrimSpace(doc.Text) == "" {
		return nil, fmt.Errorf("%s: %w", filename, ErrNoText)
	}
	return doc, nil
}

// lineWriter accumulates text one line at a time. Headings are written as
// lines of their own so the section segmenter can find them.
type lineWriter struct {
	sb strings.Builder
}

func (w *lineWriter) line(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	w.sb.WriteString(s)
	w.sb.WriteByte('\n')
}

func (w *lineWriter) String() string {
	return strings.TrimRight(w.sb.String(), "\n")
}

func trimExt(filename string, exts ...string) string {
	for _, ext := range exts {
		if strings.HasSuffix(strings.ToLower(filename), ext) {
			return filename[:len(filename)-len(ext)]
		}
	}
	return filename
}
