package decoder

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/docrank/internal/span"
)

// PDFDecoder handles PDF files. Glyphs from each page's content stream are
// merged into runs of identical font on one baseline. It falls back to
// pdftotext, when enabled, if the Go reader finds no text at all.
type PDFDecoder struct {
	FallbackPdftotext bool
}

func (d *PDFDecoder) Decode(r io.Reader, filename string) (*Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docrank-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	doc, err := extractPDFSpans(tmpPath, filename)
	if (err != nil || len(doc.Spans) == 0) && d.FallbackPdftotext {
		if fb, fbErr := extractPdftotext(tmpPath, filename); fbErr == nil && len(fb.Spans) > 0 {
			return fb, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return doc, nil
}

func extractPDFSpans(path, name string) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc = &Document{Name: name, Pages: reader.NumPage()}
	for i := 1; i <= doc.Pages; i++ {
		spans, err := pageSpans(reader.Page(i), i)
		if err != nil {
			doc.PageErrors = append(doc.PageErrors, PageError{Page: i, Err: err})
			continue
		}
		doc.Spans = append(doc.Spans, spans...)
	}
	return doc, nil
}

// pageSpans decodes one page. The content-stream interpreter panics on
// malformed input, so the panic is turned into the page's error.
func pageSpans(p pdflib.Page, pageNum int) (spans []span.TextSpan, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode content: %v", r)
		}
	}()
	if p.V.IsNull() {
		return nil, nil
	}
	glyphs := p.Content().Text
	return mergeGlyphs(glyphs, pageNum, pageHeightOf(p, glyphs)), nil
}

// pageHeightOf reads the MediaBox height, falling back to the highest glyph.
func pageHeightOf(p pdflib.Page, glyphs []pdflib.Text) float64 {
	mb := p.V.Key("MediaBox")
	if mb.Kind() == pdflib.Array && mb.Len() == 4 {
		if h := mb.Index(3).Float64() - mb.Index(1).Float64(); h > 0 {
			return h
		}
	}
	var h float64
	for _, g := range glyphs {
		h = math.Max(h, g.Y+g.FontSize)
	}
	return h
}

// mergeGlyphs joins consecutive glyphs sharing font, size and baseline into
// spans, converting PDF's bottom-up coordinates to top-down.
func mergeGlyphs(glyphs []pdflib.Text, pageNum int, height float64) []span.TextSpan {
	var out []span.TextSpan
	var cur *pdflib.Text
	var buf strings.Builder
	var x0, x1 float64

	flush := func() {
		if cur == nil {
			return
		}
		y0 := math.Max(0, height-cur.Y-cur.FontSize)
		out = append(out, span.TextSpan{
			Text:     strings.TrimSpace(buf.String()),
			Page:     pageNum,
			FontSize: cur.FontSize,
			IsBold:   isBoldFont(cur.Font),
			IsItalic: isItalicFont(cur.Font),
			BBox:     span.BBox{X0: x0, Y0: y0, X1: x1, Y1: y0 + cur.FontSize},
		})
		cur = nil
		buf.Reset()
	}

	for i := range glyphs {
		g := glyphs[i]
		if cur != nil && continuesRun(*cur, x1, g) {
			if gap := g.X - x1; gap > g.FontSize*0.15 && !strings.HasSuffix(buf.String(), " ") && g.S != " " {
				buf.WriteByte(' ')
			}
			buf.WriteString(g.S)
			x1 = math.Max(x1, g.X+g.W)
			continue
		}
		flush()
		cur = &glyphs[i]
		x0, x1 = g.X, g.X+g.W
		buf.WriteString(g.S)
	}
	flush()
	return out
}

func continuesRun(prev pdflib.Text, prevEnd float64, g pdflib.Text) bool {
	if g.Font != prev.Font || math.Abs(g.FontSize-prev.FontSize) > 0.01 {
		return false
	}
	if math.Abs(g.Y-prev.Y) > prev.FontSize*0.3 {
		return false
	}
	gap := g.X - prevEnd
	return gap > -prev.FontSize && gap < prev.FontSize*3
}

func isBoldFont(name string) bool {
	n := strings.ToLower(name)
	for _, k := range []string{"bold", "black", "heavy", "semibold", "demi"} {
		if strings.Contains(n, k) {
			return true
		}
	}
	return false
}

func isItalicFont(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "italic") || strings.Contains(n, "oblique")
}

// extractPdftotext decodes pdftotext's layout output as plain text: every
// line a body span, form feeds as page breaks.
func extractPdftotext(path, name string) (*Document, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return (&TextDecoder{}).Decode(bytes.NewReader(out), name)
}
