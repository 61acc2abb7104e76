// Package heading classifies text spans as document headings, assigning each
// a level and a confidence score.
package heading

import (
	"sort"
	"strings"

	"github.com/dgallion1/docrank/internal/span"
)

// Level is a heading's place in the outline hierarchy.
type Level string

const (
	H1 Level = "H1"
	H2 Level = "H2"
	H3 Level = "H3"
)

// rank orders levels so that H1 is the highest.
func (l Level) rank() int {
	switch l {
	case H1:
		return 3
	case H2:
		return 2
	case H3:
		return 1
	}
	return 0
}

// Higher returns whichever of a and b sits higher in the hierarchy.
func Higher(a, b Level) Level {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// Heading is a span classified as structural.
type Heading struct {
	Level      Level   `json:"level"`
	Text       string  `json:"text"`
	Page       int     `json:"page"`
	FontSize   float64 `json:"font_size"`
	Confidence float64 `json:"confidence"`

	y0 float64
}

// noise holds lower-cased texts that are never headings.
var noise = map[string]bool{
	"page":      true,
	"continued": true,
	"...":       true,
}

// Classifier detects headings page by page.
type Classifier struct {
	// PositionOverrides makes the first-span-on-page signal force H1 even
	// when typography or a pattern chose another level. When false, the
	// position signal only supplies H1 if nothing else set a level.
	PositionOverrides bool
}

// Classify runs the classifier over every page and returns the headings in
// (page, vertical position) order.
func (c Classifier) Classify(pages []span.PageSpans) []Heading {
	var out []Heading
	for _, p := range pages {
		out = append(out, c.ClassifyPage(p)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		return out[i].y0 < out[j].y0
	})
	return out
}

// ClassifyPage classifies one page's spans, which must already be in
// top-to-bottom order.
func (c Classifier) ClassifyPage(p span.PageSpans) []Heading {
	var out []Heading
	height := p.Height()

	for i, s := range p.Spans {
		n := Len(s.Text)
		if n < 3 || noise[strings.ToLower(s.Text)] {
			continue
		}

		fired := false
		var level Level

		typoLevel, typo := typographyLevel(s)
		if typo {
			fired = true
			level = typoLevel
		}

		pattern := MatchPattern(s.Text)
		if pattern != PatternNone {
			fired = true
			if pl := pattern.level(); pl != "" {
				level = Higher(level, pl)
			}
		}

		if i == 0 && n > 5 && !IsNumeric(s.Text) {
			fired = true
			if level == "" || c.PositionOverrides {
				level = H1
			}
		}

		if i+1 < len(p.Spans) {
			next := p.Spans[i+1]
			if next.FontSize < s.FontSize && Len(next.Text) > 20 {
				fired = true
			}
		}

		if !fired {
			continue
		}
		if level == "" {
			level = H3
		}
		out = append(out, Heading{
			Level:      level,
			Text:       s.Text,
			Page:       p.Page,
			FontSize:   s.FontSize,
			Confidence: Confidence(s, height),
			y0:         s.BBox.Y0,
		})
	}
	return out
}

// Confidence scores how heading-like s is on a page of the given height.
// The result is in [0, 1].
func Confidence(s span.TextSpan, pageHeight float64) float64 {
	var c float64
	switch {
	case s.FontSize > 14:
		c += 0.3
	case s.FontSize > 12:
		c += 0.2
	}
	if s.IsBold {
		c += 0.3
	}
	if MatchPattern(s.Text) != PatternNone {
		c += 0.2
	}
	if n := Len(s.Text); n >= 3 && n <= 100 {
		c += 0.1
	}
	if pageHeight > 0 && s.BBox.Y0 < pageHeight*0.3 {
		c += 0.1
	}
	if c > 1 {
		c = 1
	}
	return c
}
