package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"songquiz/internal/cache"
	"songquiz/internal/pipeline"
	"songquiz/internal/quiz"
	"songquiz/internal/suggest"
)

// A build must finish within this deadline; per-lookup timeouts inside the
// pipeline keep any single stalled call from eating the whole budget.
const buildTimeout = 60 * time.Second

const defaultSongCount = 50

type GenerateQuizRequest struct {
	Prompt     string `json:"prompt"`
	SongCount  int    `json:"songCount"`
	Difficulty string `json:"difficulty"`
}

type CheckAnswerRequest struct {
	Guess      string `json:"guess"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Difficulty string `json:"difficulty"`
}

type CheckAnswerResponse struct {
	Correct      bool   `json:"correct"`
	DisplayTitle string `json:"display_title"`
}

type JobResponse struct {
	ID          string    `json:"id"`
	Prompt      string    `json:"prompt"`
	Difficulty  string    `json:"difficulty"`
	Status      JobStatus `json:"status"`
	Round       int       `json:"round"`
	Resolved    int       `json:"resolved"`
	Target      int       `json:"target"`
	QuizID      string    `json:"quiz_id,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   string    `json:"created_at"`
	StartedAt   *string   `json:"started_at,omitempty"`
	CompletedAt *string   `json:"completed_at,omitempty"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req GenerateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if len(prompt) < 2 {
		writeError(w, http.StatusBadRequest, "Prompt must be at least 2 characters")
		return
	}

	difficulty, err := quiz.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	songCount := req.SongCount
	if songCount == 0 {
		songCount = defaultSongCount
	}
	songCount = quiz.ClampCount(songCount)

	cacheKey := cache.Key(prompt, songCount, difficulty)
	if cached := s.cache.Get(cacheKey); cached != nil {
		s.logger.Info("Cache hit for prompt: %s", prompt)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	job := s.jobMgr.CreateJob(prompt, songCount, difficulty)
	s.logger.Info("Created job %s for prompt: %s", job.ID, prompt)

	ctx, cancel := context.WithTimeout(r.Context(), buildTimeout)
	defer cancel()

	s.jobMgr.UpdateJob(job.ID, func(j *Job) {
		j.Cancel = cancel
		j.Status = StatusRunning
	})

	hooks := pipeline.Hooks{
		OnRound: func(round, requested, have, target int) {
			s.jobMgr.UpdateJob(job.ID, func(j *Job) {
				j.Round = round
				j.Resolved = have
			})
		},
		OnResolved: func(have, target int) {
			s.jobMgr.UpdateJob(job.ID, func(j *Job) {
				j.Resolved = have
			})
		},
	}

	songs, err := s.builder.Build(ctx, prompt, songCount, difficulty, hooks)
	if err != nil {
		detail, status := buildErrorDetail(err)
		s.logger.Error("Quiz build failed for job %s: %v", job.ID, err)
		s.jobMgr.UpdateJob(job.ID, func(j *Job) {
			j.Status = StatusFailed
			j.Error = detail
		})
		writeError(w, status, detail)
		return
	}

	result := &quiz.Quiz{
		ID:         quiz.NewID(),
		Prompt:     prompt,
		Songs:      songs,
		TotalSongs: len(songs),
		Difficulty: difficulty,
	}

	s.jobMgr.UpdateJob(job.ID, func(j *Job) {
		j.Status = StatusCompleted
		j.Resolved = len(songs)
		j.QuizID = result.ID
	})

	s.cache.Set(cacheKey, result)

	w.Header().Set("X-Quiz-Job", job.ID)
	writeJSON(w, http.StatusOK, result)
}

// buildErrorDetail maps pipeline failures to user-facing messages. Raw
// model output and internal errors never reach the client.
func buildErrorDetail(err error) (string, int) {
	switch {
	case errors.Is(err, suggest.ErrGenerationFailed):
		return "Failed to generate a song list. Please try again.", http.StatusInternalServerError
	case errors.Is(err, pipeline.ErrNoPlayableSongs):
		return "No songs with preview URLs found. Try a different genre.", http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return "Quiz generation timed out. Try a smaller song count.", http.StatusInternalServerError
	default:
		return "Failed to generate quiz", http.StatusInternalServerError
	}
}

func (s *Server) handleCheckAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req CheckAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}

	difficulty, err := quiz.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, CheckAnswerResponse{
		Correct:      quiz.IsCorrect(req.Guess, req.Title, req.Artist, difficulty),
		DisplayTitle: quiz.StripSuffix(req.Title),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	jobs := s.jobMgr.ListJobs()
	responses := make([]*JobResponse, len(jobs))
	for i, job := range jobs {
		responses[i] = jobToResponse(job)
	}

	writeJSON(w, http.StatusOK, responses)
}

func (s *Server) handleJobAction(w http.ResponseWriter, r *http.Request) {
	// Extract job ID from path: /api/jobs/{id} or /api/jobs/{id}/cancel
	path := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "Job ID required")
		return
	}

	jobID := parts[0]

	// Handle GET /api/jobs/{id}
	if r.Method == http.MethodGet && len(parts) == 1 {
		job, err := s.jobMgr.GetJob(jobID)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, jobToResponse(job))
		return
	}

	// Handle POST /api/jobs/{id}/cancel
	if r.Method == http.MethodPost && len(parts) == 2 && parts[1] == "cancel" {
		job, err := s.jobMgr.GetJob(jobID)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}

		if job.Cancel != nil {
			job.Cancel()
		}

		s.jobMgr.UpdateJob(jobID, func(j *Job) {
			j.Status = StatusCancelled
		})

		writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
		return
	}

	writeError(w, http.StatusBadRequest, "Invalid request")
}

func jobToResponse(job *Job) *JobResponse {
	resp := &JobResponse{
		ID:         job.ID,
		Prompt:     job.Prompt,
		Difficulty: string(job.Difficulty),
		Status:     job.Status,
		Round:      job.Round,
		Resolved:   job.Resolved,
		Target:     job.Target,
		QuizID:     job.QuizID,
		Error:      job.Error,
		CreatedAt:  job.CreatedAt.Format(time.RFC3339),
	}
	if job.StartedAt != nil {
		s := job.StartedAt.Format(time.RFC3339)
		resp.StartedAt = &s
	}
	if job.CompletedAt != nil {
		s := job.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &s
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
