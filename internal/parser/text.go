package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/paperdigest/internal/document"
)

// TextParser handles plain text files. The text is kept as is apart from
// normalizing line endings.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return &document.Document{
		Title: trimExt(filename, ".txt"),
		Text:  text,
	}, nil
}
