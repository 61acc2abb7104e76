package decoder

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXDecoder handles .docx files. Heading and Title paragraph styles become
// bold spans sized by depth; other paragraphs take bold/italic from their runs.
type DOCXDecoder struct{}

func (d *DOCXDecoder) Decode(r io.Reader, filename string) (*Document, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "docrank-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	f := newFlow()
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text, bold, italic := docxParagraphText(para)
		if level := docxHeadingLevel(para); level > 0 {
			f.add(text, style{size: headingSize(level), bold: true})
			continue
		}
		f.add(text, style{size: bodySize, bold: bold, italic: italic})
	}
	return f.document(filename), nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if style == "title" {
		return 1
	}
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	switch strings.TrimPrefix(style, "heading") {
	case "1":
		return 1
	case "2":
		return 2
	case "3":
		return 3
	case "4":
		return 4
	case "5":
		return 5
	case "6":
		return 6
	}
	return 0
}

// docxParagraphText joins a paragraph's run text and reports whether every
// non-empty run is bold or italic.
func docxParagraphText(para *docx.Paragraph) (text string, bold, italic bool) {
	var buf strings.Builder
	bold, italic = true, true
	runs := 0
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		var rb strings.Builder
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				rb.WriteString(t.Text)
			}
		}
		if strings.TrimSpace(rb.String()) == "" {
			buf.WriteString(rb.String())
			continue
		}
		runs++
		props := run.RunProperties
		if props == nil || props.Bold == nil {
			bold = false
		}
		if props == nil || props.Italic == nil {
			italic = false
		}
		buf.WriteString(rb.String())
	}
	if runs == 0 {
		return strings.TrimSpace(buf.String()), false, false
	}
	return strings.TrimSpace(buf.String()), bold, italic
}
