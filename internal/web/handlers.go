package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"spotsync/internal/catalog"
	"spotsync/internal/pipeline"
)

type SyncRequest struct {
	URL    string `json:"url"`
	DryRun bool   `json:"dry_run"`
}

type JobResponse struct {
	ID          string            `json:"id"`
	URL         string            `json:"url"`
	Status      JobStatus         `json:"status"`
	Progress    int               `json:"progress"`
	Total       int               `json:"total"`
	Error       string            `json:"error,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"`
	Summary     *pipeline.Summary `json:"summary,omitempty"`
	CreatedAt   string            `json:"created_at"`
	StartedAt   *string           `json:"started_at,omitempty"`
	CompletedAt *string           `json:"completed_at,omitempty"`
}

const timeLayout = "2006-01-02 15:04:05"

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.URL) == "" {
		http.Error(w, "URL is required", http.StatusBadRequest)
		return
	}

	jobConfig := s.config
	jobConfig.SpotifyURL = strings.TrimSpace(req.URL)
	jobConfig.CatalogFile = ""
	jobConfig.DryRun = jobConfig.DryRun || req.DryRun
	if err := jobConfig.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := s.jobMgr.CreateJob(jobConfig.SpotifyURL, jobConfig)
	s.logger.Info("Created job %s for URL: %s", job.ID, job.URL)

	go s.processJob(job)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(jobToResponse(job))
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobs := s.jobMgr.ListJobs()
	responses := make([]*JobResponse, len(jobs))
	for i, job := range jobs {
		responses[i] = jobToResponse(job)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

func (s *Server) handleJobAction(w http.ResponseWriter, r *http.Request) {
	// /api/jobs/{id} or /api/jobs/{id}/cancel
	path := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	jobID := parts[0]

	if r.Method == http.MethodGet && len(parts) == 1 {
		job, err := s.jobMgr.GetJob(jobID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(jobToResponse(job))
		return
	}

	if r.Method == http.MethodPost && len(parts) == 2 && parts[1] == "cancel" {
		var cancel func()
		err := s.jobMgr.UpdateJob(jobID, func(j *Job) {
			cancel = j.Cancel
			j.Status = StatusCancelled
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if cancel != nil {
			cancel()
		}

		job, _ := s.jobMgr.GetJob(jobID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": string(job.Status)})
		return
	}

	http.Error(w, "Invalid request", http.StatusBadRequest)
}

func (s *Server) processJob(job Job) {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	if !s.startJob(job.ID, func(j *Job) { j.Cancel = cancel }) {
		return
	}

	cancelled := func() {
		s.jobMgr.UpdateJob(job.ID, func(j *Job) {
			j.Cancel = nil
			j.Status = StatusCancelled
		})
	}

	// Queued jobs stay pending until the running one finishes.
	select {
	case s.slot <- struct{}{}:
		defer func() { <-s.slot }()
	case <-ctx.Done():
		cancelled()
		return
	}

	if ctx.Err() != nil {
		cancelled()
		return
	}
	if !s.startJob(job.ID, func(j *Job) { j.Status = StatusRunning }) {
		return
	}

	s.logger.Info("Starting job %s", job.ID)

	hooks := pipeline.Hooks{
		OnMissing: func(total int) {
			s.jobMgr.UpdateJob(job.ID, func(j *Job) {
				j.Total = total
			})
		},
		OnProgress: func(catalog.Track) {
			s.jobMgr.UpdateJob(job.ID, func(j *Job) {
				j.Progress++
			})
		},
		OnWarning: func(msg string) {
			s.jobMgr.UpdateJob(job.ID, func(j *Job) {
				j.Warnings = append(j.Warnings, msg)
			})
		},
	}

	summary, err := s.newRunner(job.Config, s.logger, hooks).Run(ctx)

	s.jobMgr.UpdateJob(job.ID, func(j *Job) {
		j.Summary = &summary
		j.Cancel = nil
		switch {
		case err == nil:
			j.Status = StatusCompleted
		case errors.Is(err, context.Canceled) || ctx.Err() != nil:
			j.Status = StatusCancelled
		default:
			j.Status = StatusFailed
			j.Error = err.Error()
		}
	})

	if err != nil {
		s.logger.Error("Job %s: %v", job.ID, err)
		return
	}
	s.logger.Info("Job %s completed: %d organized, %d missing", job.ID, summary.Organized, len(summary.Missing))
}

// startJob applies fn unless the job was cancelled in the meantime, and
// reports whether the job should go on.
func (s *Server) startJob(id string, fn func(*Job)) bool {
	proceed := false
	s.jobMgr.UpdateJob(id, func(j *Job) {
		if j.Status.Finished() {
			return
		}
		fn(j)
		proceed = true
	})
	if !proceed {
		s.logger.Info("Job %s cancelled before it started", id)
	}
	return proceed
}

func jobToResponse(job Job) *JobResponse {
	resp := &JobResponse{
		ID:        job.ID,
		URL:       job.URL,
		Status:    job.Status,
		Progress:  job.Progress,
		Total:     job.Total,
		Error:     job.Error,
		Warnings:  job.Warnings,
		Summary:   job.Summary,
		CreatedAt: job.CreatedAt.Format(timeLayout),
	}

	if job.StartedAt != nil {
		started := job.StartedAt.Format(timeLayout)
		resp.StartedAt = &started
	}

	if job.CompletedAt != nil {
		completed := job.CompletedAt.Format(timeLayout)
		resp.CompletedAt = &completed
	}

	return resp
}
