package decoder

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docrank/internal/span"
)

// Flow formats (markdown, HTML, DOCX, text) have no page geometry, so their
// blocks are laid out on US Letter pages with fixed margins.
const (
	pageWidth  = 612.0
	pageHeight = 792.0
	margin     = 72.0

	bodySize = 11.0
)

// headingSizes maps heading depth (1-6) to the font size used for it.
var headingSizes = [...]float64{1: 24, 2: 18, 3: 15, 4: 13, 5: 12, 6: 12}

func headingSize(level int) float64 {
	if level < 1 || level >= len(headingSizes) {
		return bodySize
	}
	return headingSizes[level]
}

// flow places blocks top to bottom, starting a new page when one overflows.
type flow struct {
	spans []span.TextSpan
	page  int
	y     float64
}

func newFlow() *flow {
	return &flow{page: 1, y: margin}
}

type style struct {
	size   float64
	bold   bool
	italic bool
}

func (f *flow) add(text string, st style) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if st.size <= 0 {
		st.size = bodySize
	}

	perLine := (pageWidth - 2*margin) / (st.size * 0.5)
	lines := math.Max(1, math.Ceil(float64(utf8.RuneCountInString(text))/perLine))
	h := lines * st.size * 1.2

	if f.y+h > pageHeight-margin && f.y > margin {
		f.breakPage()
	}

	f.spans = append(f.spans, span.TextSpan{
		Text:     text,
		Page:     f.page,
		FontSize: st.size,
		IsBold:   st.bold,
		IsItalic: st.italic,
		BBox:     span.BBox{X0: margin, Y0: f.y, X1: pageWidth - margin, Y1: f.y + h},
	})
	f.y += h + st.size*0.5
}

func (f *flow) breakPage() {
	f.page++
	f.y = margin
}

func (f *flow) document(name string) *Document {
	pages := 0
	if len(f.spans) > 0 {
		pages = f.page
	}
	return &Document{Name: name, Pages: pages, Spans: f.spans}
}
