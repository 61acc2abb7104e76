package decoder

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownDecoder handles Markdown files using goldmark. ATX/setext headings
// become bold spans sized by depth; a thematic break starts a new page.
type MarkdownDecoder struct{}

func (d *MarkdownDecoder) Decode(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	f := newFlow()
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			f.add(string(node.Text(src)), style{size: headingSize(node.Level), bold: true})
		case *ast.ThematicBreak:
			f.breakPage()
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				f.add(extractText(item, src), style{size: bodySize})
			}
		case *ast.Paragraph:
			f.add(extractText(node, src), style{size: bodySize, bold: wholly(node, ast.KindEmphasis, 2)})
		default:
			f.add(extractText(n, src), style{size: bodySize})
		}
	}
	return f.document(filename), nil
}

// wholly reports whether the only child of n is an emphasis node of the given
// level (2 = strong).
func wholly(n ast.Node, kind ast.NodeKind, level int) bool {
	c := n.FirstChild()
	if c == nil || c.NextSibling() != nil || c.Kind() != kind {
		return false
	}
	e, ok := c.(*ast.Emphasis)
	return ok && e.Level == level
}

// extractText gets the text content of a goldmark AST node. Leaf blocks
// (code blocks) contribute their raw lines; everything else is the
// concatenation of its inline text.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && !n.HasChildren() {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
			continue
		}
		if str, ok := c.(*ast.String); ok {
			buf.Write(str.Value)
			continue
		}
		if buf.Len() > 0 && c.Type() == ast.TypeBlock {
			buf.WriteByte(' ')
		}
		buf.WriteString(extractText(c, src))
	}
	return strings.TrimSpace(buf.String())
}
