package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docrank/internal/analyze"
	"github.com/dgallion1/docrank/internal/pipeline"
)

// handleSubmitCollection queues a collection: the input record in the
// "input" part and its documents in "files".
func (s *Server) handleSubmitCollection(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	raw, err := formBytes(r, "input", s.cfg.MaxUploadBytes)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	in, err := analyze.ParseInput(raw)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := analyze.MemSource{}
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			jsonError(w, "failed to open file "+fh.Filename, http.StatusBadRequest)
			return
		}
		data, err := readLimited(f, s.cfg.MaxUploadBytes)
		f.Close()
		if err != nil {
			jsonError(w, fmt.Sprintf("%s: %s", fh.Filename, err), http.StatusRequestEntityTooLarge)
			return
		}
		files.Add(fh.Filename, data)
	}

	job := pipeline.NewJob(in, files, raw)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	s.log.Info("collection queued",
		"job_id", job.ID,
		"documents", len(in.Documents),
		"uploaded", len(files),
		"persona", in.Persona.Role,
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/collections/%s/status", job.ID),
	})
}

// formBytes returns a multipart field uploaded either as a file or as a
// plain value.
func formBytes(r *http.Request, field string, max int64) ([]byte, error) {
	if f, _, err := r.FormFile(field); err == nil {
		defer f.Close()
		return readLimited(f, max)
	}
	if v := r.FormValue(field); v != "" {
		return []byte(v), nil
	}
	return nil, fmt.Errorf("%s is required", field)
}

func (s *Server) handleCollectionStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleCollectionResult(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	res := job.Result()
	if res == nil {
		if snap.Status.Done() {
			jsonError(w, fmt.Sprintf("job %s produced no result", snap.Status), http.StatusUnprocessableEntity)
			return
		}
		jsonError(w, fmt.Sprintf("job is %s", snap.Status), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

