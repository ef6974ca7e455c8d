package web

import (
	"context"
	"net/http"

	"spotsync/internal/config"
	"spotsync/internal/logger"
	"spotsync/internal/pipeline"
)

// SyncRunner runs one sync job.
type SyncRunner interface {
	Run(ctx context.Context) (pipeline.Summary, error)
}

// RunnerFactory builds the runner for a job's configuration.
type RunnerFactory func(cfg config.Config, log *logger.Logger, hooks pipeline.Hooks) SyncRunner

func defaultRunner(cfg config.Config, log *logger.Logger, hooks pipeline.Hooks) SyncRunner {
	return pipeline.New(cfg, log, hooks)
}

type Server struct {
	ctx       context.Context
	jobMgr    *JobManager
	config    config.Config
	logger    *logger.Logger
	staticDir string
	newRunner RunnerFactory

	// slot admits one running job at a time. Runs against one playlist
	// folder must not overlap, and the folder is only known mid-run.
	slot chan struct{}
}

// NewServer creates a server whose jobs are cancelled with ctx.
func NewServer(ctx context.Context, jobMgr *JobManager, cfg config.Config, log *logger.Logger) *Server {
	return &Server{
		ctx:       ctx,
		jobMgr:    jobMgr,
		config:    cfg,
		logger:    log,
		staticDir: "web/static",
		newRunner: defaultRunner,
		slot:      make(chan struct{}, 1),
	}
}

// SetStaticDir changes the directory served at "/".
func (s *Server) SetStaticDir(dir string) {
	s.staticDir = dir
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))

	mux.HandleFunc("/api/sync", s.handleSync)
	mux.HandleFunc("/api/jobs", s.handleListJobs)
	mux.HandleFunc("/api/jobs/", s.handleJobAction)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return s.loggingMiddleware(mux)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
