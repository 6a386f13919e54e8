package web

import (
	"net/http"

	"songquiz/internal/cache"
	"songquiz/internal/logger"
	"songquiz/internal/pipeline"
)

type Server struct {
	builder *pipeline.Builder
	jobMgr  *JobManager
	cache   *cache.Cache
	logger  *logger.Logger
}

func NewServer(builder *pipeline.Builder, jobMgr *JobManager, quizCache *cache.Cache, log *logger.Logger) *Server {
	return &Server{
		builder: builder,
		jobMgr:  jobMgr,
		cache:   quizCache,
		logger:  log,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/", http.FileServer(http.Dir("web/static")))

	// API endpoints
	mux.HandleFunc("/api/generate-quiz", s.handleGenerateQuiz)
	mux.HandleFunc("/api/check-answer", s.handleCheckAnswer)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/jobs", s.handleListJobs)
	mux.HandleFunc("/api/jobs/", s.handleJobAction)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return s.loggingMiddleware(corsMiddleware(mux))
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
