package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"spotsync/internal/catalog"
	"spotsync/internal/config"
	"spotsync/internal/logger"
	"spotsync/internal/pipeline"
)

// runTracker records how many runs happened and how many overlapped.
type runTracker struct {
	mu     sync.Mutex
	active int
	peak   int
	runs   int
}

func (r *runTracker) enter() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	r.active++
	r.peak = max(r.peak, r.active)
}

func (r *runTracker) leave() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active--
}

func (r *runTracker) counts() (runs, peak int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs, r.peak
}

type fakeRunner struct {
	hooks   pipeline.Hooks
	err     error
	block   bool
	delay   time.Duration
	tracker *runTracker
}

func (f *fakeRunner) Run(ctx context.Context) (pipeline.Summary, error) {
	if f.tracker != nil {
		f.tracker.enter()
		defer f.tracker.leave()
	}
	time.Sleep(f.delay)
	if f.block {
		<-ctx.Done()
		return pipeline.Summary{}, ctx.Err()
	}
	f.hooks.OnMissing(2)
	f.hooks.OnProgress(catalog.NewTrack("A", "X", "", 1))
	f.hooks.OnProgress(catalog.NewTrack("B", "X", "", 2))
	f.hooks.OnWarning("1 file(s) could not be moved")
	return pipeline.Summary{Folder: "/music/Mix", Tracks: 5, Organized: 1}, f.err
}

func newTestServer(t *testing.T, run func(pipeline.Hooks) *fakeRunner) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.BaseDir = t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s := NewServer(ctx, NewJobManager(), cfg, logger.Discard())
	s.newRunner = func(_ config.Config, _ *logger.Logger, hooks pipeline.Hooks) SyncRunner {
		return run(hooks)
	}
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

func postSync(t *testing.T, ts *httptest.Server, body string) (*http.Response, JobResponse) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/sync", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/sync: %v", err)
	}
	defer resp.Body.Close()

	var job JobResponse
	if resp.StatusCode == http.StatusAccepted {
		if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp, job
}

func waitFinished(t *testing.T, jm *JobManager, id string) Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := jm.GetJob(id)
		if err == nil && job.Status.Finished() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return Job{}
}

func TestSyncJobCompletes(t *testing.T) {
	s, ts := newTestServer(t, func(h pipeline.Hooks) *fakeRunner { return &fakeRunner{hooks: h} })

	resp, created := postSync(t, ts, `{"url": "https://open.spotify.com/playlist/abc?si=1"}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	if !strings.HasPrefix(created.ID, "job_") {
		t.Errorf("job ID = %q", created.ID)
	}

	job := waitFinished(t, s.jobMgr, created.ID)
	if job.Status != StatusCompleted {
		t.Fatalf("status = %s, error = %s", job.Status, job.Error)
	}
	if job.Total != 2 || job.Progress != 2 {
		t.Errorf("progress = %d/%d, want 2/2", job.Progress, job.Total)
	}
	if len(job.Warnings) != 1 {
		t.Errorf("warnings = %v", job.Warnings)
	}
	if job.Summary == nil || job.Summary.Organized != 1 {
		t.Errorf("summary = %+v", job.Summary)
	}

	r, err := http.Get(ts.URL + "/api/jobs/" + created.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Body.Close()
	var got JobResponse
	json.NewDecoder(r.Body).Decode(&got)
	if got.Summary == nil || got.Summary.Folder != "/music/Mix" || got.CompletedAt == nil {
		t.Errorf("GET job = %+v", got)
	}
}

func TestSyncJobFails(t *testing.T) {
	s, ts := newTestServer(t, func(h pipeline.Hooks) *fakeRunner {
		return &fakeRunner{hooks: h, err: errors.New("catalog unreadable")}
	})

	_, created := postSync(t, ts, `{"url": "https://open.spotify.com/album/xyz"}`)
	job := waitFinished(t, s.jobMgr, created.ID)
	if job.Status != StatusFailed || job.Error != "catalog unreadable" {
		t.Errorf("job = %s %q", job.Status, job.Error)
	}
}

func TestSyncRejectsBadRequests(t *testing.T) {
	_, ts := newTestServer(t, func(h pipeline.Hooks) *fakeRunner { return &fakeRunner{hooks: h} })

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing url", `{}`},
		{"not spotify", `{"url": "https://www.youtube.com/playlist?list=x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postSync(t, ts, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}

	resp, err := http.Get(ts.URL + "/api/sync")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/sync = %d, want 405", resp.StatusCode)
	}
}

func TestCancelJob(t *testing.T) {
	s, ts := newTestServer(t, func(h pipeline.Hooks) *fakeRunner { return &fakeRunner{hooks: h, block: true} })

	_, created := postSync(t, ts, `{"url": "https://open.spotify.com/playlist/abc"}`)

	// Wait until the job has a cancel function.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if j, _ := s.jobMgr.GetJob(created.ID); j.Status == StatusRunning {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Post(ts.URL+"/api/jobs/"+created.ID+"/cancel", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel status = %d", resp.StatusCode)
	}

	job := waitFinished(t, s.jobMgr, created.ID)
	if job.Status != StatusCancelled {
		t.Errorf("status = %s, want cancelled", job.Status)
	}
}

func TestJobNotFound(t *testing.T) {
	_, ts := newTestServer(t, func(h pipeline.Hooks) *fakeRunner { return &fakeRunner{hooks: h} })

	resp, err := http.Get(ts.URL + "/api/jobs/job_missing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListJobsEndpoint(t *testing.T) {
	s, ts := newTestServer(t, func(h pipeline.Hooks) *fakeRunner { return &fakeRunner{hooks: h} })
	s.jobMgr.CreateJob("https://open.spotify.com/playlist/a", s.config)
	s.jobMgr.CreateJob("https://open.spotify.com/playlist/b", s.config)

	resp, err := http.Get(ts.URL + "/api/jobs")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var jobs []JobResponse
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 2 {
		t.Errorf("got %d jobs, want 2", len(jobs))
	}
}

func TestWebSocketStreamsFinishedJob(t *testing.T) {
	s, ts := newTestServer(t, func(h pipeline.Hooks) *fakeRunner { return &fakeRunner{hooks: h} })
	job := s.jobMgr.CreateJob("https://open.spotify.com/playlist/a", s.config)
	s.jobMgr.UpdateJob(job.ID, func(j *Job) { j.Status = StatusCompleted })

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?job_id=" + job.ID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var got JobResponse
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.ID != job.ID || got.Status != StatusCompleted {
		t.Errorf("got %+v", got)
	}
}

func TestJobsDoNotOverlap(t *testing.T) {
	tracker := &runTracker{}
	s, ts := newTestServer(t, func(h pipeline.Hooks) *fakeRunner {
		return &fakeRunner{hooks: h, delay: 50 * time.Millisecond, tracker: tracker}
	})

	_, first := postSync(t, ts, `{"url": "https://open.spotify.com/playlist/abc"}`)
	_, second := postSync(t, ts, `{"url": "https://open.spotify.com/playlist/abc"}`)

	for _, id := range []string{first.ID, second.ID} {
		if job := waitFinished(t, s.jobMgr, id); job.Status != StatusCompleted {
			t.Errorf("job %s status = %s", id, job.Status)
		}
	}

	runs, peak := tracker.counts()
	if runs != 2 || peak != 1 {
		t.Errorf("runs = %d, peak concurrent = %d, want 2 and 1", runs, peak)
	}
}

func TestCancelledBeforeStartDoesNotRun(t *testing.T) {
	tracker := &runTracker{}
	s, _ := newTestServer(t, func(h pipeline.Hooks) *fakeRunner {
		return &fakeRunner{hooks: h, tracker: tracker}
	})

	job := s.jobMgr.CreateJob("https://open.spotify.com/playlist/abc", s.config)
	s.jobMgr.UpdateJob(job.ID, func(j *Job) { j.Status = StatusCancelled })

	s.processJob(job)

	if runs, _ := tracker.counts(); runs != 0 {
		t.Errorf("cancelled job ran %d time(s)", runs)
	}
	if got, _ := s.jobMgr.GetJob(job.ID); got.Status != StatusCancelled || got.StartedAt != nil {
		t.Errorf("job = %s, started %v", got.Status, got.StartedAt)
	}
}

func TestCancelQueuedJob(t *testing.T) {
	tracker := &runTracker{}
	s, ts := newTestServer(t, func(h pipeline.Hooks) *fakeRunner {
		return &fakeRunner{hooks: h, tracker: tracker}
	})

	// Occupy the slot so the next job waits in the queue.
	s.slot <- struct{}{}
	defer func() { <-s.slot }()

	_, created := postSync(t, ts, `{"url": "https://open.spotify.com/playlist/abc"}`)

	resp, err := http.Post(ts.URL+"/api/jobs/"+created.ID+"/cancel", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	job := waitFinished(t, s.jobMgr, created.ID)
	if job.Status != StatusCancelled {
		t.Errorf("status = %s, want cancelled", job.Status)
	}

	// Give the job goroutine time to notice the cancellation.
	time.Sleep(50 * time.Millisecond)
	if runs, _ := tracker.counts(); runs != 0 {
		t.Errorf("queued job ran after cancel")
	}
}
