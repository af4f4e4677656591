package document

import (
	"crypto/sha256"
	"fmt"
)

// Document is the raw text of one uploaded paper. It is produced once by a
// parser and read-only afterwards.
type Document struct {
	Title string // From metadata or the file name.
	Text  string // Plain text, newline-delimited lines.
	Pages int    // Source pages, 0 if not paged.
}

// ContentHash returns the SHA-256 of the extracted text as hex.
func (d *Document) ContentHash() string {
	return ContentHashHex([]byte(d.Text))
}

// Preview returns at most n bytes of the text for logging.
func (d *Document) Preview(n int) string {
	if len(d.Text) <= n {
		return d.Text
	}
	return d.Text[:n]
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
