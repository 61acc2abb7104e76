package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docrank/internal/analyze"
)

// JobStatus represents the state of a collection job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
)

// Done reports whether the job has reached a final state.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusPartial
}

// Job tracks the state of one uploaded collection.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Persona     string   `json:"persona"`
	JobToBeDone string   `json:"job_to_be_done"`
	Documents   []string `json:"documents"`

	Progress Progress `json:"progress"`

	InputHash string    `json:"input_hash,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	input  *analyze.Input
	files  analyze.MemSource
	result *analyze.Result
	errors []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalDocuments    int      `json:"total_documents"`
	SkippedDocuments  int      `json:"skipped_documents"`
	ExtractedSections int      `json:"extracted_sections"`
	Errors            []string `json:"errors"`
}

// NewJob creates a queued job for a validated input and its uploaded files.
// raw is the input as uploaded and only feeds the input hash.
func NewJob(in *analyze.Input, files analyze.MemSource, raw []byte) *Job {
	now := time.Now()
	names := in.Filenames()
	return &Job{
		ID:          uuid.NewString(),
		Status:      StatusQueued,
		Phase:       "queued",
		Persona:     in.Persona.Role,
		JobToBeDone: in.JobToBeDone.Task,
		Documents:   names,
		Progress:    Progress{TotalDocuments: len(names)},
		InputHash:   ContentHashHex(raw),
		CreatedAt:   now,
		UpdatedAt:   now,
		input:       in,
		files:       files,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetResult stores the ranked output and releases the uploaded files.
func (j *Job) SetResult(res *analyze.Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = res
	j.files = nil
	j.Progress.SkippedDocuments = len(res.Skipped)
	j.Progress.ExtractedSections = len(res.ExtractedSections)
	j.UpdatedAt = time.Now()
}

// Result returns the ranked output, or nil until the job completes.
func (j *Job) Result() *analyze.Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

func (j *Job) work() (*analyze.Input, analyze.MemSource) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.input, j.files
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Persona     string    `json:"persona"`
	JobToBeDone string    `json:"job_to_be_done"`
	Documents   []string  `json:"documents"`
	Progress    Progress  `json:"progress"`
	InputHash   string    `json:"input_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	docs := append([]string{}, j.Documents...)
	return JobSnapshot{
		ID:          j.ID,
		Status:      j.Status,
		Phase:       j.Phase,
		Persona:     j.Persona,
		JobToBeDone: j.JobToBeDone,
		Documents:   docs,
		Progress: Progress{
			TotalDocuments:    j.Progress.TotalDocuments,
			SkippedDocuments:  j.Progress.SkippedDocuments,
			ExtractedSections: j.Progress.ExtractedSections,
			Errors:            errs,
		},
		InputHash: j.InputHash,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
