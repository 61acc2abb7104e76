package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docrank/internal/outline"
	"github.com/dgallion1/docrank/internal/relevance"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a := New(relevance.DefaultTable(), Options{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.now = func() time.Time { return fixedNow }
	return a
}

const travelGuide = "HOTELS IN NICE\n" +
	"Book a hotel near the beach and plan a city tour.\n" +
	"PACKING TIPS\n" +
	"Bring comfortable shoes.\n"

func travelInput(files ...string) *Input {
	in := &Input{
		Persona:     Persona{Role: "Travel Planner"},
		JobToBeDone: JobToBeDone{Task: "Plan a trip of 4 days"},
	}
	for _, f := range files {
		in.Documents = append(in.Documents, DocumentRef{Filename: f})
	}
	return in
}

func TestCollection_RanksByPersona(t *testing.T) {
	a := testAnalyzer(t)
	src := MemSource{"guide.txt": []byte(travelGuide)}

	res, err := a.Collection(context.Background(), travelInput("guide.txt"), src)
	require.NoError(t, err)

	require.Len(t, res.ExtractedSections, 2)
	top := res.ExtractedSections[0]
	assert.Equal(t, "guide.txt", top.Document)
	assert.True(t, strings.HasPrefix(top.SectionTitle, "HOTELS IN NICE"))
	assert.Equal(t, 1, top.ImportanceRank)
	assert.Equal(t, 1, top.PageNumber)
	assert.Equal(t, 2, res.ExtractedSections[1].ImportanceRank)

	require.Len(t, res.SubsectionAnalysis, 2)
	assert.Equal(t, "HOTELS IN NICE Book a hotel near the beach and plan a city tour.", res.SubsectionAnalysis[0].RefinedText)

	assert.Equal(t, []string{"guide.txt"}, res.Metadata.InputDocuments)
	assert.Equal(t, "Travel Planner", res.Metadata.Persona)
	assert.Equal(t, "Plan a trip of 4 days", res.Metadata.JobToBeDone)
	assert.Equal(t, "2026-03-01T12:00:00Z", res.Metadata.ProcessingTimestamp)
}

func TestCollection_NoDocuments(t *testing.T) {
	a := testAnalyzer(t)

	res, err := a.Collection(context.Background(), travelInput(), MemSource{})
	require.NoError(t, err)

	assert.Empty(t, res.ExtractedSections)
	assert.Empty(t, res.SubsectionAnalysis)
	assert.Empty(t, res.Metadata.InputDocuments)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"extracted_sections":[]`)
	assert.Contains(t, string(data), `"subsection_analysis":[]`)
}

func TestCollection_SkipsFailingDocuments(t *testing.T) {
	a := testAnalyzer(t)
	src := MemSource{
		"guide.txt":  []byte(travelGuide),
		"bad.pdf":    []byte("not a pdf"),
		"table.xlsx": []byte("a,b\n"),
	}

	res, err := a.Collection(context.Background(), travelInput("missing.txt", "bad.pdf", "guide.txt", "table.xlsx"), src)
	require.NoError(t, err)

	assert.Len(t, res.ExtractedSections, 2)
	assert.Equal(t, []string{"missing.txt", "bad.pdf", "guide.txt", "table.xlsx"}, res.Metadata.InputDocuments)

	var skipped []string
	for _, s := range res.Skipped {
		skipped = append(skipped, s.Document)
		assert.Error(t, s.Err)
	}
	assert.Equal(t, []string{"missing.txt", "bad.pdf", "table.xlsx"}, skipped)
}

func TestCollection_LengthBounds(t *testing.T) {
	a := testAnalyzer(t)
	var b strings.Builder
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, "HEADING NUMBER %c\nA hotel and beach tour for day %d.\n", 'A'+i, i)
	}
	src := MemSource{"many.txt": []byte(b.String())}

	res, err := a.Collection(context.Background(), travelInput("many.txt"), src)
	require.NoError(t, err)

	assert.Len(t, res.ExtractedSections, 10)
	assert.Len(t, res.SubsectionAnalysis, 12)
	for i, s := range res.ExtractedSections {
		assert.Equal(t, i+1, s.ImportanceRank)
	}
}

func TestCollection_SubsectionLimit(t *testing.T) {
	a := testAnalyzer(t)
	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "HEADING NUMBER %c\nA hotel and beach tour.\n", 'A'+i)
	}
	src := MemSource{"many.txt": []byte(b.String())}

	res, err := a.Collection(context.Background(), travelInput("many.txt"), src)
	require.NoError(t, err)

	assert.Len(t, res.ExtractedSections, 10)
	assert.Len(t, res.SubsectionAnalysis, 15)
}

func TestCollection_CanceledContext(t *testing.T) {
	a := testAnalyzer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Collection(ctx, travelInput("guide.txt"), MemSource{"guide.txt": []byte(travelGuide)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSectionTitle_Truncates(t *testing.T) {
	long := strings.Repeat("é", 250)
	title := sectionTitle(long)
	assert.Equal(t, maxSectionTitle+3, utf8.RuneCountInString(title))
	assert.True(t, strings.HasSuffix(title, "..."))

	assert.Equal(t, "short", sectionTitle("short"))
}

func TestOutline_DegradesOnFailure(t *testing.T) {
	a := testAnalyzer(t)

	res := a.Outline(strings.NewReader("not a pdf"), "bad.pdf")
	assert.Equal(t, "Error processing bad.pdf", res.Title)
	assert.Empty(t, res.Outline)

	res = a.Outline(strings.NewReader(""), "empty.txt")
	assert.Equal(t, outline.NoTextTitle, res.Title)
}

func TestOutline_Markdown(t *testing.T) {
	a := testAnalyzer(t)
	md := "# Annual Report\n\nSome opening text for the report.\n\n## Financial Results\n\nNumbers follow.\n"

	res := a.Outline(strings.NewReader(md), "report.md")
	assert.Equal(t, "Annual Report", res.Title)
	require.NotEmpty(t, res.Outline)
	assert.Equal(t, "Annual Report", res.Outline[0].Text)
	assert.Equal(t, 1, res.Outline[0].Page)
}

func TestParseInput(t *testing.T) {
	in, err := ParseInput([]byte(`{
		"challenge_info": {"challenge_id": "round_1b_002", "test_case_name": "travel_planner"},
		"documents": [{"filename": "a.pdf", "title": "A"}, {"filename": "b.pdf"}],
		"persona": {"role": "Travel Planner"},
		"job_to_be_done": {"task": "Plan a trip"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, in.Filenames())
	assert.Equal(t, "round_1b_002", in.ChallengeInfo.ChallengeID)
	assert.Equal(t, "Travel Planner", in.Persona.Role)
}

func TestParseInput_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"no documents", `{"persona": {"role": "x"}}`},
		{"documents not array", `{"documents": "a.pdf"}`},
		{"missing filename", `{"documents": [{"title": "A"}]}`},
		{"empty filename", `{"documents": [{"filename": ""}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInput([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParseInput_PersonaOptional(t *testing.T) {
	in, err := ParseInput([]byte(`{"documents": []}`))
	require.NoError(t, err)
	assert.Empty(t, in.Persona.Role)
	assert.Empty(t, in.Filenames())
}

func TestLoadInput_NotFound(t *testing.T) {
	_, err := LoadInput(filepath.Join(t.TempDir(), InputFile))
	assert.ErrorIs(t, err, ErrInputNotFound)
}

func TestOutlineDir(t *testing.T) {
	a := testAnalyzer(t)
	in, out := t.TempDir(), filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(in, "notes.md"), "# Field Notes\n\nBody text here.\n")
	writeFile(t, filepath.Join(in, "broken.pdf"), "garbage")
	writeFile(t, filepath.Join(in, "data.xlsx"), "a,b\n")

	n, err := a.OutlineDir(context.Background(), in, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var notes outline.Result
	readJSON(t, filepath.Join(out, "notes.json"), &notes)
	assert.Equal(t, "Field Notes", notes.Title)

	var broken outline.Result
	readJSON(t, filepath.Join(out, "broken.json"), &broken)
	assert.Equal(t, "Error processing broken.pdf", broken.Title)
	assert.NotNil(t, broken.Outline)

	assert.NoFileExists(t, filepath.Join(out, "data.json"))
}

func TestCollectionsDir(t *testing.T) {
	a := testAnalyzer(t)
	base := t.TempDir()

	good := filepath.Join(base, "Collection 1")
	writeFile(t, filepath.Join(good, DocumentsDir, "guide.txt"), travelGuide)
	writeFile(t, filepath.Join(good, InputFile), `{
		"documents": [{"filename": "guide.txt"}],
		"persona": {"role": "Travel Planner"},
		"job_to_be_done": {"task": "Plan a trip"}
	}`)
	empty := filepath.Join(base, "Collection 2")
	require.NoError(t, os.MkdirAll(empty, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "Other"), 0o755))

	n, err := a.CollectionsDir(context.Background(), base)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var res Result
	readJSON(t, filepath.Join(good, OutputFile), &res)
	assert.Len(t, res.ExtractedSections, 2)
	assert.Equal(t, "Travel Planner", res.Metadata.Persona)

	var errRes ErrorResult
	readJSON(t, filepath.Join(empty, OutputFile), &errRes)
	assert.Equal(t, "Input file not found: "+filepath.Join(empty, InputFile), errRes.Error)

	assert.NoFileExists(t, filepath.Join(base, "Other", OutputFile))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestCleanFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":         "report.pdf",
		"../../etc/passwd":   "passwd",
		`C:\docs\report.pdf`: "report.pdf",
		"":                   "unnamed",
		"a..b.txt":           "a_b.txt",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanFilename(in), "CleanFilename(%q)", in)
	}
}

func TestMemSource_OpenMatchesAddedName(t *testing.T) {
	src := MemSource{}
	src.Add("v1..final.txt", []byte("one"))
	src.Add("guide.txt", []byte("two"))

	for name, want := range map[string]string{
		"v1..final.txt":  "one",
		"docs/guide.txt": "two",
	} {
		rc, err := src.Open(name)
		require.NoError(t, err, name)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}

	_, err := src.Open("missing.txt")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
