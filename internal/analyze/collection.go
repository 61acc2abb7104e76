package analyze

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docrank/internal/refine"
	"github.com/dgallion1/docrank/internal/section"
	"github.com/dgallion1/docrank/internal/span"
)

const maxSectionTitle = 200

// Source opens the documents a collection refers to by filename.
type Source interface {
	Open(filename string) (io.ReadCloser, error)
}

// DirSource reads documents from a directory.
type DirSource string

// Open reads the base name of filename from the directory.
func (d DirSource) Open(filename string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(string(d), filepath.Base(filename)))
}

// MemSource serves uploaded documents held in memory, keyed by CleanFilename.
type MemSource map[string][]byte

// Add stores data under the cleaned form of filename.
func (m MemSource) Add(filename string, data []byte) {
	m[CleanFilename(filename)] = data
}

// Open looks filename up by its cleaned form, so an input filename matches
// the upload it names.
func (m MemSource) Open(filename string) (io.ReadCloser, error) {
	data, ok := m[CleanFilename(filename)]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", filename, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// CleanFilename reduces an uploaded filename to a safe base name: directory
// parts are dropped and ".." becomes "_".
func CleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}

// Result is the persona-ranked output for one collection.
type Result struct {
	Metadata           Metadata           `json:"metadata"`
	ExtractedSections  []ExtractedSection `json:"extracted_sections"`
	SubsectionAnalysis []Subsection       `json:"subsection_analysis"`

	// Skipped lists documents that contributed no sections because they failed.
	Skipped []DocumentError `json:"-"`
}

// Metadata echoes the collection input and stamps when it was processed.
type Metadata struct {
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
}

// ExtractedSection is one top-ranked section summary.
type ExtractedSection struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
	PageNumber     int    `json:"page_number"`
}

// Subsection is the refined text of one top-ranked section.
type Subsection struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// ErrorResult is written in place of a Result when a collection cannot run.
type ErrorResult struct {
	Error string `json:"error"`
}

// DocumentError records a document that failed inside a collection.
type DocumentError struct {
	Document string `json:"document"`
	Err      error  `json:"-"`
}

func (e DocumentError) Error() string {
	return fmt.Sprintf("document %s: %v", e.Document, e.Err)
}

func (e DocumentError) Unwrap() error { return e.Err }

// Collection decodes every input document, segments and ranks the sections
// against the input's persona and task, and assembles the output record.
// A failing document is logged and contributes nothing. The only error
// returned is ctx's.
func (a *Analyzer) Collection(ctx context.Context, in *Input, src Source) (*Result, error) {
	start := time.Now()
	names := in.Filenames()
	perDoc := make([][]section.Section, len(names))
	failures := make([]error, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.MaxConcurrentDocs)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			secs, err := a.documentSections(src, name)
			if err != nil {
				failures[i] = err
				return nil
			}
			perDoc[i] = secs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var sections []section.Section
	res := &Result{}
	for i, name := range names {
		if failures[i] != nil {
			a.log.Warn("document skipped", "document", name, "error", failures[i])
			res.Skipped = append(res.Skipped, DocumentError{Document: name, Err: failures[i]})
			continue
		}
		sections = append(sections, perDoc[i]...)
	}

	persona, task := in.Persona.Role, in.JobToBeDone.Task
	ranked := a.scorer.Rank(sections, persona, task)

	res.Metadata = Metadata{
		InputDocuments:      names,
		Persona:             persona,
		JobToBeDone:         task,
		ProcessingTimestamp: a.now().Format(time.RFC3339),
	}
	res.ExtractedSections = make([]ExtractedSection, 0, min(len(ranked), a.opts.ExtractedLimit))
	for i, r := range ranked[:min(len(ranked), a.opts.ExtractedLimit)] {
		res.ExtractedSections = append(res.ExtractedSections, ExtractedSection{
			Document:       r.Document,
			SectionTitle:   sectionTitle(r.Text),
			ImportanceRank: i + 1,
			PageNumber:     r.Page,
		})
	}
	res.SubsectionAnalysis = make([]Subsection, 0, a.opts.SubsectionLimit)
	for _, r := range ranked[:min(len(ranked), a.opts.SubsectionLimit)] {
		text := refine.Text(r.Text)
		if text == "" {
			continue
		}
		res.SubsectionAnalysis = append(res.SubsectionAnalysis, Subsection{
			Document:    r.Document,
			RefinedText: text,
			PageNumber:  r.Page,
		})
	}

	a.log.Info("collection ranked",
		"documents", len(names),
		"skipped", len(res.Skipped),
		"sections", len(ranked),
		"persona", persona,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (a *Analyzer) documentSections(src Source, name string) ([]section.Section, error) {
	rc, err := src.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	doc, err := a.decode(rc, name)
	if err != nil {
		return nil, err
	}
	return section.Segment(span.GroupPages(doc.Spans), name), nil
}

func sectionTitle(text string) string {
	if utf8.RuneCountInString(text) <= maxSectionTitle {
		return text
	}
	return string([]rune(text)[:maxSectionTitle]) + "..."
}
