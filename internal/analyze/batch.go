package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgallion1/docrank/internal/decoder"
	"github.com/dgallion1/docrank/internal/outline"
)

// File names used by collection directories.
const (
	InputFile      = "challenge1b_input.json"
	OutputFile     = "challenge1b_output.json"
	DocumentsDir   = "PDFs"
	CollectionGlob = "Collection*"
)

// OutlineDir writes <stem>.json for every supported document in inDir.
// A document that fails still gets a degraded record.
func (a *Analyzer) OutlineDir(ctx context.Context, inDir, outDir string) (int, error) {
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return 0, fmt.Errorf("read input dir: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}

	n := 0
	for _, e := range entries {
		if e.IsDir() || !decoder.IsSupportedExtension(e.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return n, err
		}

		res := a.outlineFile(filepath.Join(inDir, e.Name()))
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if err := writeJSON(filepath.Join(outDir, stem+".json"), res); err != nil {
			return n, err
		}
		n++
	}
	a.log.Info("outline batch complete", "input", inDir, "output", outDir, "documents", n)
	return n, nil
}

func (a *Analyzer) outlineFile(path string) outline.Result {
	f, err := os.Open(path)
	if err != nil {
		a.log.Warn("open failed", "path", path, "error", err)
		return outline.FailedFile(filepath.Base(path))
	}
	defer f.Close()
	return a.Outline(f, filepath.Base(path))
}

// CollectionsDir processes every Collection* directory under base, writing
// each one's output next to its input.
func (a *Analyzer) CollectionsDir(ctx context.Context, base string) (int, error) {
	dirs, err := filepath.Glob(filepath.Join(base, CollectionGlob))
	if err != nil {
		return 0, fmt.Errorf("list collections: %w", err)
	}
	sort.Strings(dirs)

	n := 0
	for _, dir := range dirs {
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			continue
		}
		if err := a.collectionDir(ctx, dir); err != nil {
			return n, err
		}
		n++
	}
	a.log.Info("collection batch complete", "base", base, "collections", n)
	return n, nil
}

func (a *Analyzer) collectionDir(ctx context.Context, dir string) error {
	out := filepath.Join(dir, OutputFile)
	inPath := filepath.Join(dir, InputFile)

	in, err := LoadInput(inPath)
	if errors.Is(err, ErrInputNotFound) {
		a.log.Warn("collection has no input", "collection", dir)
		return writeJSON(out, ErrorResult{Error: "Input file not found: " + inPath})
	}
	if err != nil {
		a.log.Warn("collection input invalid", "collection", dir, "error", err)
		return writeJSON(out, ErrorResult{Error: err.Error()})
	}

	res, err := a.Collection(ctx, in, DirSource(filepath.Join(dir, DocumentsDir)))
	if err != nil {
		return err
	}
	return writeJSON(out, res)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
