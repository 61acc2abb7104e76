package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/docrank/internal/analyze"
)

func testInput(files ...string) *analyze.Input {
	in := &analyze.Input{
		Persona:     analyze.Persona{Role: "Travel Planner"},
		JobToBeDone: analyze.JobToBeDone{Task: "Plan a trip"},
	}
	for _, f := range files {
		in.Documents = append(in.Documents, analyze.DocumentRef{Filename: f})
	}
	return in
}

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob(testInput("a.pdf", "b.pdf"), analyze.MemSource{}, []byte(`{}`))

	if job.ID == "" {
		t.Fatal("expected job ID")
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if job.Persona != "Travel Planner" || job.JobToBeDone != "Plan a trip" {
		t.Errorf("unexpected persona/task %q/%q", job.Persona, job.JobToBeDone)
	}
	if job.Progress.TotalDocuments != 2 {
		t.Errorf("expected 2 documents, got %d", job.Progress.TotalDocuments)
	}
	if job.InputHash != ContentHashHex([]byte(`{}`)) {
		t.Errorf("unexpected input hash %q", job.InputHash)
	}

	other := NewJob(testInput(), analyze.MemSource{}, nil)
	if other.ID == job.ID {
		t.Error("expected unique job IDs")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusProcessing, "ranking"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJobStatus_Done(t *testing.T) {
	for _, s := range []JobStatus{StatusCompleted, StatusFailed, StatusPartial} {
		if !s.Done() {
			t.Errorf("expected %q to be done", s)
		}
	}
	for _, s := range []JobStatus{StatusQueued, StatusProcessing} {
		if s.Done() {
			t.Errorf("expected %q not to be done", s)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("document a.pdf failed")
	job.AddError("document b.pdf failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "document a.pdf failed" {
		t.Errorf("expected first error %q, got %q", "document a.pdf failed", snap.Progress.Errors[0])
	}
}

func TestJob_SetResultReleasesFiles(t *testing.T) {
	job := NewJob(testInput("a.txt"), analyze.MemSource{"a.txt": []byte("x")}, nil)
	if job.Result() != nil {
		t.Fatal("expected no result before processing")
	}

	res := &analyze.Result{
		ExtractedSections: make([]analyze.ExtractedSection, 3),
		Skipped:           []analyze.DocumentError{{Document: "b.txt"}},
	}
	job.SetResult(res)

	if job.Result() != res {
		t.Error("expected stored result")
	}
	if _, files := job.work(); files != nil {
		t.Error("expected uploaded files to be released")
	}
	snap := job.Snapshot()
	if snap.Progress.ExtractedSections != 3 || snap.Progress.SkippedDocuments != 1 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}
