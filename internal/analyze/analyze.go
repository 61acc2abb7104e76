// Package analyze wires decoding, classification, segmentation and ranking
// into the two document paths: a single document's outline and a
// collection's persona-ranked sections.
package analyze

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dgallion1/docrank/internal/decoder"
	"github.com/dgallion1/docrank/internal/heading"
	"github.com/dgallion1/docrank/internal/outline"
	"github.com/dgallion1/docrank/internal/relevance"
	"github.com/dgallion1/docrank/internal/span"
)

// Options configure an Analyzer.
type Options struct {
	Decoder decoder.Options

	// MaxConcurrentDocs bounds how many documents of a collection are decoded at once.
	MaxConcurrentDocs int
	// ExtractedLimit and SubsectionLimit cap the two collection output lists.
	ExtractedLimit  int
	SubsectionLimit int

	Classifier heading.Classifier
}

// Analyzer runs both analysis paths. It holds no per-document state and is
// safe for concurrent use.
type Analyzer struct {
	opts   Options
	scorer *relevance.Scorer
	log    *slog.Logger
	now    func() time.Time
}

// New creates an Analyzer that scores against table. Zero limits in opts take defaults.
func New(table *relevance.Table, opts Options, log *slog.Logger) *Analyzer {
	if opts.MaxConcurrentDocs <= 0 {
		opts.MaxConcurrentDocs = 4
	}
	if opts.ExtractedLimit <= 0 {
		opts.ExtractedLimit = 10
	}
	if opts.SubsectionLimit <= 0 {
		opts.SubsectionLimit = 15
	}
	return &Analyzer{
		opts:   opts,
		scorer: relevance.NewScorer(table),
		log:    log,
		now:    time.Now,
	}
}

// Scorer exposes the relevance scorer the analyzer ranks with.
func (a *Analyzer) Scorer() *relevance.Scorer {
	return a.scorer
}

// decode runs the right decoder for filename and normalizes its spans.
// Skipped pages are logged; they never fail the document.
func (a *Analyzer) decode(r io.Reader, filename string) (*decoder.Document, error) {
	dec, err := decoder.ForFile(filename, a.opts.Decoder)
	if err != nil {
		return nil, err
	}
	doc, err := dec.Decode(r, filename)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	for _, pe := range doc.PageErrors {
		a.log.Warn("page skipped", "document", filename, "page", pe.Page, "error", pe.Err)
	}
	doc.Spans = span.Normalize(doc.Spans)
	return doc, nil
}

// Outline decodes one document and builds its title and outline. Failures
// produce the degraded result rather than an error.
func (a *Analyzer) Outline(r io.Reader, filename string) outline.Result {
	start := time.Now()
	doc, err := a.decode(r, filename)
	if err != nil {
		a.log.Warn("decode failed", "document", filename, "error", err)
		return outline.FailedFile(filename)
	}

	res := outline.Build(a.opts.Classifier, doc.Spans)
	a.log.Info("outline built",
		"document", filename,
		"pages", doc.Pages,
		"spans", len(doc.Spans),
		"entries", len(res.Outline),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res
}
