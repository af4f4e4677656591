package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/paperdigest/internal/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Heading markers are
// dropped so "## Results" becomes the line "Results".
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var w lineWriter
	title := ""
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 && title == "" {
			title = strings.TrimSpace(inlineText(h, src))
		}
		writeBlock(&w, n, src)
	}

	if title == "" {
		title = trimExt(filename, ".md", ".markdown")
	}
	return &document.Document{Title: title, Text: w.String()}, nil
}

// writeBlock emits the lines of a block node. Soft line breaks inside a
// paragraph are kept as line breaks.
func writeBlock(w *lineWriter, n ast.Node, src []byte) {
	switch n.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			w.line(string(seg.Value(src)))
		}
		return
	}
	if c := n.FirstChild(); c != nil && c.Type() == ast.TypeInline {
		for _, l := range strings.Split(inlineText(n, src), "\n") {
			w.line(l)
		}
		return
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		writeBlock(w, c, src)
	}
}

func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Segment.Value(src))
				if t.HardLineBreak() || t.SoftLineBreak() {
					buf.WriteByte('\n')
				}
			case *ast.String:
				buf.Write(t.Value)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return buf.String()
}
