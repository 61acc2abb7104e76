// Package section splits a document's spans into contiguous sections, each
// starting at a heading-like span. Sections are the unit of cross-document
// ranking.
package section

import (
	"strings"

	"github.com/dgallion1/docrank/internal/heading"
	"github.com/dgallion1/docrank/internal/span"
)

// Section is a run of spans on one page.
type Section struct {
	Text      string    `json:"text"`
	Page      int       `json:"page"`
	FontSizes []float64 `json:"font_sizes"`
	IsHeading bool      `json:"is_heading"`
	Document  string    `json:"document"`
}

// MeanFontSize averages FontSizes; ok is false when there are none.
func (s Section) MeanFontSize() (mean float64, ok bool) {
	if len(s.FontSizes) == 0 {
		return 0, false
	}
	var sum float64
	for _, f := range s.FontSizes {
		sum += f
	}
	return sum / float64(len(s.FontSizes)), true
}

// Segment scans each page top to bottom and returns its sections in order,
// tagged with document.
func Segment(pages []span.PageSpans, document string) []Section {
	var out []Section
	for _, p := range pages {
		out = append(out, segmentPage(p, document)...)
	}
	return out
}

func segmentPage(p span.PageSpans, document string) []Section {
	var out []Section
	cur := Section{Page: p.Page, Document: document}

	flush := func() {
		if strings.TrimSpace(cur.Text) != "" {
			out = append(out, cur)
		}
	}

	for _, s := range p.Spans {
		if heading.HeadingLike(s) {
			flush()
			cur = Section{
				Text:      s.Text,
				Page:      p.Page,
				FontSizes: []float64{s.FontSize},
				IsHeading: true,
				Document:  document,
			}
			continue
		}
		if cur.Text == "" {
			cur.Text = s.Text
		} else {
			cur.Text += " " + s.Text
		}
		cur.FontSizes = append(cur.FontSizes, s.FontSize)
	}
	flush()
	return out
}
