// Package outline turns classified headings into a document's title and
// persisted outline.
package outline

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docrank/internal/heading"
	"github.com/dgallion1/docrank/internal/span"
)

const (
	// Untitled is returned when a document offers nothing usable as a title.
	Untitled = "Untitled Document"
	// NoTextTitle marks a document whose decoder produced no spans.
	NoTextTitle = "Error: Could not extract text"

	// MinConfidence is the lowest heading confidence kept in the outline.
	MinConfidence = 0.3

	maxTitleLen = 100
)

// Entry is one persisted outline line.
type Entry struct {
	Level heading.Level `json:"level"`
	Text  string        `json:"text"`
	Page  int           `json:"page"`
}

// Result is the single-document output.
type Result struct {
	Title   string  `json:"title"`
	Outline []Entry `json:"outline"`
}

// Build runs classification, title selection and outline refinement over a
// document's spans in decoder order. A document without spans yields the
// NoTextTitle result.
func Build(c heading.Classifier, spans []span.TextSpan) Result {
	spans = span.Normalize(spans)
	if len(spans) == 0 {
		return Failed(NoTextTitle)
	}
	headings := c.Classify(span.GroupPages(spans))
	return Result{
		Title:   Title(spans, headings),
		Outline: Refine(headings),
	}
}

// Failed is the degraded result for a document that could not be processed.
func Failed(title string) Result {
	return Result{Title: title, Outline: []Entry{}}
}

// FailedFile is the degraded result naming the file that failed.
func FailedFile(name string) Result {
	return Failed(fmt.Sprintf("Error processing %s", name))
}

// Title picks the first H1 heading, falling back to the first substantial
// span. It never returns an empty string.
func Title(spans []span.TextSpan, headings []heading.Heading) string {
	if len(spans) == 0 {
		return Untitled
	}
	for _, h := range headings {
		if h.Level == heading.H1 {
			return h.Text
		}
	}
	for _, s := range spans {
		text := strings.TrimSpace(s.Text)
		lower := strings.ToLower(text)
		if heading.Len(text) > 5 && !heading.IsNumeric(text) &&
			!strings.HasPrefix(lower, "page") && !strings.HasPrefix(lower, "continued") {
			return truncate(text, maxTitleLen)
		}
	}
	return Untitled
}

// Refine drops low-confidence and blank headings, keeping order.
func Refine(headings []heading.Heading) []Entry {
	out := make([]Entry, 0, len(headings))
	for _, h := range headings {
		text := strings.TrimSpace(h.Text)
		if text == "" || h.Confidence < MinConfidence {
			continue
		}
		out = append(out, Entry{Level: h.Level, Text: text, Page: h.Page})
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
