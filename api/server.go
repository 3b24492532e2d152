package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/roborally/game/config"
	"github.com/wricardo/mcp-training/roborally/game/engine"
	"github.com/wricardo/mcp-training/roborally/game/service"
	"github.com/wricardo/mcp-training/roborally/game/session"
	"github.com/wricardo/mcp-training/roborally/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil, in which case nothing
// is pushed to WebSocket clients.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/programming/start", s.handleStartProgramming).Methods("POST")
	api.HandleFunc("/sessions/{id}/programming/finish", s.handleFinishProgramming).Methods("POST")
	api.HandleFunc("/sessions/{id}/program", s.handleProgram).Methods("POST")
	api.HandleFunc("/sessions/{id}/cards/move", s.handleMoveCards).Methods("POST")
	api.HandleFunc("/sessions/{id}/step", s.handleExecuteStep).Methods("POST")
	api.HandleFunc("/sessions/{id}/run", s.handleExecutePrograms).Methods("POST")
	api.HandleFunc("/sessions/{id}/interactive", s.handleChooseCommand).Methods("POST")
	api.HandleFunc("/sessions/{id}/robots/{robot:[0-9]+}/actions", s.handleRobotAction).Methods("POST")

	// Board layouts
	api.HandleFunc("/boards", s.handleListBoards).Methods("GET")
	api.HandleFunc("/boards", s.handleSaveBoard).Methods("POST")
	api.HandleFunc("/boards/{name}", s.handleGetBoard).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors to HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, config.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrWrongPhase),
		errors.Is(err, session.ErrSessionAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCommand),
		errors.Is(err, service.ErrInvalidRobot),
		errors.Is(err, service.ErrInvalidSlot),
		errors.Is(err, service.ErrInvalidPosition),
		errors.Is(err, service.ErrInvalidPlayers),
		errors.Is(err, service.ErrCardMoveRejected),
		errors.Is(err, session.ErrInvalidSessionID),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, engine.ErrInvalidBoard),
		errors.Is(err, engine.ErrSpaceOccupied):
		return http.StatusBadRequest
	case errors.Is(err, config.ErrNoConfigDir):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSessionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	info, err := s.service.CreateSession(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	total := len(sessions)

	// Parse query parameters
	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return
	boardID := query.Get("board")  // only sessions on this board

	// Set defaults
	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	if boardID != "" {
		filtered := sessions[:0]
		for _, info := range sessions {
			if info.BoardID == boardID {
				filtered = append(filtered, info)
			}
		}
		sessions = filtered
	}

	sort.SliceStable(sessions, func(i, j int) bool {
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

	// Apply limit if specified
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
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetGameState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleStartProgramming(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	s.respondCommand(w, sessionID, "start_programming")(s.service.StartProgramming(r.Context(), sessionID))
}

func (s *Server) handleFinishProgramming(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	s.respondCommand(w, sessionID, "finish_programming")(s.service.FinishProgramming(r.Context(), sessionID))
}

func (s *Server) handleExecuteStep(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	s.respondCommand(w, sessionID, "execute_step")(s.service.ExecuteStep(r.Context(), sessionID))
}

func (s *Server) handleExecutePrograms(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	s.respondCommand(w, sessionID, "execute_programs")(s.service.ExecutePrograms(r.Context(), sessionID))
}

func (s *Server) handleProgram(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.ProgramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.respondCommand(w, sessionID, "program")(s.service.Program(r.Context(), sessionID, req))
}

func (s *Server) handleMoveCards(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.MoveCardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.respondCommand(w, sessionID, "move_cards")(s.service.MoveCards(r.Context(), sessionID, req))
}

func (s *Server) handleChooseCommand(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Command string `json:"command"`
		Resume  bool   `json:"resume,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Command == "" {
		respondError(w, http.StatusBadRequest, "command is required")
		return
	}

	s.respondCommand(w, sessionID, "choose_command")(s.service.ChooseCommand(r.Context(), sessionID, req.Command, req.Resume))
}

func (s *Server) handleRobotAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	robot, err := strconv.Atoi(vars["robot"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid robot index")
		return
	}

	var req service.RobotActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Robot = robot

	s.respondCommand(w, sessionID, "robot_action")(s.service.RobotAction(r.Context(), sessionID, req))
}

// respondCommand writes a command result, pushes the new state to WebSocket
// clients and logs a compact status line
func (s *Server) respondCommand(w http.ResponseWriter, sessionID, command string) func(*service.CommandResult, error) {
	return func(result *service.CommandResult, err error) {
		if err != nil {
			log.Debug().Err(err).Str("session", sessionID).Str("command", command).Msg("request rejected")
			respondServiceError(w, err)
			return
		}

		s.broadcast(sessionID, result)

		log.Info().
			Str("session", sessionID).
			Str("command", command).
			Bool("success", result.Success).
			Stringer("phase", result.State.Phase).
			Int("step", result.State.Step).
			Int("moves", result.State.MoveCounter).
			Int("events", len(result.Events)).
			Msg("command")

		respondJSON(w, http.StatusOK, result)
	}
}

func (s *Server) broadcast(sessionID string, result *service.CommandResult) {
	if s.hub == nil {
		return
	}

	// Session IDs are case-insensitive; the hub keys on the lower-case form
	sessionID = strings.ToLower(sessionID)
	s.hub.BroadcastToSession(sessionID, result.State)
	for _, event := range result.Events {
		if event.Type != service.EventGameFinished {
			continue
		}
		s.hub.BroadcastEvent(sessionID, websocket.EventGameFinished, map[string]interface{}{
			"winner":  event.Robot,
			"moves":   result.State.MoveCounter,
			"message": event.Message,
		})
	}
}

// Board Handlers

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := s.service.ListBoards(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, boards)
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	board, err := s.service.LoadBoard(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, board)
}

func (s *Server) handleSaveBoard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		// BoardID is the file name to save under; defaults to the layout name
		BoardID string `json:"board_id,omitempty"`
		engine.BoardConfig
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Board name is required")
		return
	}
	boardID := req.BoardID
	if boardID == "" {
		boardID = req.Name
	}

	if err := s.service.SaveBoard(r.Context(), boardID, &req.BoardConfig); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Board saved successfully",
		"board_id": boardID,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket updates are disabled", http.StatusServiceUnavailable)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	// Verify session exists
	state, err := s.service.GetGameState(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, strings.ToLower(sessionID), state)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
