package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dgallion1/docrank/internal/analyze"
	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/relevance"
)

func testOrchestrator(t *testing.T, workers, queue int) *Orchestrator {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := analyze.New(relevance.DefaultTable(), analyze.Options{}, log)
	cfg := config.Config{WorkerCount: workers, MaxQueueSize: queue, JobTTL: time.Hour}
	return NewOrchestrator(cfg, a, NewStats(time.Hour), log)
}

func waitDone(t *testing.T, job *Job) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap := job.Snapshot()
		if snap.Status.Done() {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", job.ID)
	return JobSnapshot{}
}

func TestOrchestrator_ProcessesJob(t *testing.T) {
	o := testOrchestrator(t, 2, 10)
	o.Start(context.Background())
	defer o.Stop()

	files := analyze.MemSource{
		"guide.txt": []byte("HOTELS IN NICE\nBook a hotel near the beach.\n"),
	}
	job := NewJob(testInput("guide.txt"), files, nil)
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}

	snap := waitDone(t, job)
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (errors %v)", snap.Status, snap.Progress.Errors)
	}
	res := job.Result()
	if res == nil || len(res.ExtractedSections) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if o.GetJob(job.ID) != job {
		t.Error("expected job to be retrievable")
	}
	if o.Stats().Snapshot(KindCollection).Count != 1 {
		t.Error("expected one collection sample")
	}
}

func TestOrchestrator_PartialAndFailed(t *testing.T) {
	o := testOrchestrator(t, 1, 10)
	o.Start(context.Background())
	defer o.Stop()

	files := analyze.MemSource{"guide.txt": []byte("HOTELS IN NICE\nBook a hotel.\n")}
	partial := NewJob(testInput("guide.txt", "missing.pdf"), files, nil)
	failed := NewJob(testInput("missing.pdf"), analyze.MemSource{}, nil)
	for _, j := range []*Job{partial, failed} {
		if err := o.Submit(j); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	if snap := waitDone(t, partial); snap.Status != StatusPartial || len(snap.Progress.Errors) != 1 {
		t.Errorf("expected partial with one error, got %q %v", snap.Status, snap.Progress.Errors)
	}
	if snap := waitDone(t, failed); snap.Status != StatusFailed {
		t.Errorf("expected failed, got %q", snap.Status)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	// No workers are started, so the queue only fills.
	o := testOrchestrator(t, 1, 1)

	if err := o.Submit(NewJob(testInput(), analyze.MemSource{}, nil)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	rejected := NewJob(testInput(), analyze.MemSource{}, nil)
	if err := o.Submit(rejected); err == nil {
		t.Fatal("expected queue full error")
	}
	if rejected.Snapshot().Status != StatusFailed {
		t.Error("expected rejected job to be marked failed")
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	o := testOrchestrator(t, 1, 10)
	o.Start(context.Background())
	o.Stop()
	o.Stop()

	if err := o.Submit(NewJob(testInput(), analyze.MemSource{}, nil)); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}
