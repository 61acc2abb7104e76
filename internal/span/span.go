// Package span holds the positioned, font-annotated text runs produced by the
// decoders and the two plumbing steps every analysis path starts with:
// normalization and grouping by page.
package span

import (
	"sort"
	"strings"
)

// BBox is a span's bounding box in top-down page coordinates (Y grows downward).
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// TextSpan is one styled run of text on a page.
type TextSpan struct {
	Text     string  `json:"text"`
	Page     int     `json:"page"` // 1-indexed
	FontSize float64 `json:"font_size"`
	IsBold   bool    `json:"is_bold"`
	IsItalic bool    `json:"is_italic"`
	BBox     BBox    `json:"bbox"`
}

// PageSpans are the spans of a single page ordered top to bottom.
type PageSpans struct {
	Page  int
	Spans []TextSpan
}

// Height is the page height inferred from its spans: the largest Y1.
func (p PageSpans) Height() float64 {
	var h float64
	for _, s := range p.Spans {
		if s.BBox.Y1 > h {
			h = s.BBox.Y1
		}
	}
	return h
}

// Normalize trims span text and drops empty fragments and spans without a
// valid page. Decoder order is preserved.
func Normalize(spans []TextSpan) []TextSpan {
	out := make([]TextSpan, 0, len(spans))
	for _, s := range spans {
		s.Text = strings.TrimSpace(s.Text)
		if s.Text == "" || s.Page < 1 {
			continue
		}
		out = append(out, s)
	}
	return out
}

// GroupPages partitions spans by page and orders each page by BBox.Y0.
// Pages come back in ascending page order; spans with equal Y0 keep their
// decoder order.
func GroupPages(spans []TextSpan) []PageSpans {
	byPage := make(map[int][]TextSpan)
	for _, s := range spans {
		byPage[s.Page] = append(byPage[s.Page], s)
	}

	pages := make([]PageSpans, 0, len(byPage))
	for page, ss := range byPage {
		sort.SliceStable(ss, func(i, j int) bool { return ss[i].BBox.Y0 < ss[j].BBox.Y0 })
		pages = append(pages, PageSpans{Page: page, Spans: ss})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Page < pages[j].Page })
	return pages
}
