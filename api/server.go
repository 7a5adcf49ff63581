package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/machine"
	"github.com/wricardo/superslide/game/runs"
	"github.com/wricardo/superslide/game/service"
	"github.com/wricardo/superslide/game/session"
	"github.com/wricardo/superslide/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service          service.GameService
	hub              *websocket.Hub
	router           *mux.Router
	leaderboardLimit int
}

// NewServer creates a new API server. hub may be nil, which disables /ws.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service:          gameService,
		hub:              hub,
		router:           mux.NewRouter(),
		leaderboardLimit: runs.DefaultLeaderboardLimit,
	}

	s.setupRoutes()
	return s
}

// SetLeaderboardLimit changes how many entries a leaderboard request returns
// when it does not pass a limit. Values below one are ignored.
func (s *Server) SetLeaderboardLimit(limit int) {
	if limit > 0 {
		s.leaderboardLimit = limit
	}
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api", s.handleIndex).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Gestures and state
	api.HandleFunc("/sessions/{id}/state", s.handleGetState).Methods("GET")
	api.HandleFunc("/sessions/{id}/drag", s.handleDrag).Methods("POST")
	api.HandleFunc("/sessions/{id}/buttons/{button}/{action}", s.handleButton).Methods("POST")

	// Finished challenge runs
	api.HandleFunc("/sessions/{id}/runs", s.handleListRuns).Methods("GET")
	api.HandleFunc("/sessions/{id}/runs/{run_id}/submit", s.handleSubmitRun).Methods("POST")
	api.HandleFunc("/sessions/{id}/runs/{run_id}", s.handleDismissRun).Methods("DELETE")

	// Levels and leaderboards
	api.HandleFunc("/levels", s.handleListLevels).Methods("GET")
	api.HandleFunc("/levels/{level}", s.handleGetLevel).Methods("GET")
	api.HandleFunc("/levels/{level}/leaderboard", s.handleLeaderboard).Methods("GET")
	api.HandleFunc("/players/{player_id}/runs", s.handlePlayerRuns).Methods("GET")
	api.HandleFunc("/auth/token", s.handleIssueToken).Methods("POST")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError picks the status code for a service error.
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, service.ErrLevelNotFound),
		errors.Is(err, service.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrUnknownPiece),
		errors.Is(err, machine.ErrUnknownButton),
		errors.Is(err, service.ErrInvalidAction),
		errors.Is(err, session.ErrInvalidSessionID),
		errors.Is(err, runs.ErrInvalidRun):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSessionAlreadyExists),
		errors.Is(err, machine.ErrClosed):
		return http.StatusConflict
	case errors.Is(err, runs.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrRunsUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name": "superslide",
		"endpoints": []string{
			"POST /api/sessions",
			"GET /api/sessions",
			"GET /api/sessions/{id}/state",
			"POST /api/sessions/{id}/drag",
			"POST /api/sessions/{id}/buttons/{prev|next|reset}/{press|release|tap}",
			"GET /api/sessions/{id}/runs",
			"POST /api/sessions/{id}/runs/{run_id}/submit",
			"GET /api/levels",
			"GET /api/levels/{level}/leaderboard",
			"POST /api/auth/token",
			"GET /ws?session={id}",
		},
	})
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Level int `json:"level,omitempty"`
	}

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	info, err := s.service.CreateSession(r.Context(), req.Level)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Gesture Handlers

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.GetSnapshot(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.DragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Drag(r.Context(), sessionID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[DRAG] session=%s piece=%d offset=(%.2f,%.2f) outcome=%s cells=%d won=%v",
		sessionID, req.PieceID, req.X, req.Y, result.Outcome, result.Move.Cells, result.Won)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleButton(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	snap, err := s.service.Button(r.Context(), sessionID, vars["button"], service.ButtonAction(vars["action"]))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[BUTTON] session=%s %s %s screen=%s level=%d",
		sessionID, vars["action"], vars["button"], snap.Screen, snap.Level)

	respondJSON(w, http.StatusOK, snap)
}

// Run Handlers

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	pending, err := s.service.ListPendingRuns(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(pending),
		"runs":  pending,
	})
}

func (s *Server) handleSubmitRun(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	result, err := s.service.SubmitRun(r.Context(), vars["id"], vars["run_id"], bearerToken(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleDismissRun(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := s.service.DismissRun(r.Context(), vars["id"], vars["run_id"]); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Run %s dismissed", vars["run_id"]),
	})
}

// bearerToken extracts the token from an Authorization header.
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// Level Handlers

func (s *Server) handleListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := s.service.ListLevels(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, levels)
}

func (s *Server) handleGetLevel(w http.ResponseWriter, r *http.Request) {
	level, ok := levelVar(w, r)
	if !ok {
		return
	}

	info, err := s.service.GetLevel(r.Context(), level)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	level, ok := levelVar(w, r)
	if !ok {
		return
	}

	limit := s.leaderboardLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	entries, err := s.service.Leaderboard(r.Context(), level, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"level":   level,
		"limit":   limit,
		"entries": entries,
	})
}

func (s *Server) handlePlayerRuns(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["player_id"]

	history, err := s.service.PlayerRuns(r.Context(), playerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"player_id": playerID,
		"runs":      history,
	})
}

func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		respondError(w, http.StatusBadRequest, "username is required")
		return
	}

	token, err := s.service.IssueToken(r.Context(), req.Username)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, token)
}

func levelVar(w http.ResponseWriter, r *http.Request) (int, bool) {
	level, err := strconv.Atoi(mux.Vars(r)["level"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "level must be a number")
		return 0, false
	}
	return level, true
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "WebSocket not available", http.StatusServiceUnavailable)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	// Verify session exists
	if _, err := s.service.GetSession(context.Background(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID, s.service)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
