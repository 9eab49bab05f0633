package http

import (
	"encoding/json"
	"net/http"
	"time"

	"wordclash/internal/domain"
)

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	ActiveMatches      int `json:"activeMatches"`
	QueuedParticipants int `json:"queuedParticipants"`
	DictionaryWords    int `json:"dictionaryWords"`
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{
		Status: "ok",
	})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &StatsResponse{
		ActiveMatches:      s.hub.ActiveMatches(),
		QueuedParticipants: s.hub.QueuedParticipants(),
		DictionaryWords:    s.hub.DictionaryWords(),
	})
}

// handleDaily handles GET /api/daily; ?date=YYYY-MM-DD previews a specific
// day's challenge (defaulting to today), ?mode= selects the game mode
// (defaulting to classic)
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			s.sendError(w, http.StatusBadRequest, "INVALID_DATE", "Date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	mode, err := domain.ModeByName(r.URL.Query().Get("mode"))
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "UNKNOWN_MODE", "Unknown game mode")
		return
	}

	s.sendSuccess(w, s.hub.Daily().GetOrCreate(date, mode))
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
