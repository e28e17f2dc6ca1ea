// Package handlers provides HTTP handlers for the Pathio Guide API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/triptech-ai/pathio-guide/internal/observability"
	"github.com/triptech-ai/pathio-guide/internal/retrieval"
	"github.com/triptech-ai/pathio-guide/internal/storage"
)

// ChatHandler handles conversational turns.
type ChatHandler struct {
	logger   *observability.Logger
	engine   *retrieval.Engine
	sessions *retrieval.SessionStore
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(logger *observability.Logger, engine *retrieval.Engine, sessions *retrieval.SessionStore) *ChatHandler {
	return &ChatHandler{
		logger:   logger,
		engine:   engine,
		sessions: sessions,
	}
}

// ChatRequestDTO is the API request for one turn.
type ChatRequestDTO struct {
	SessionID string       `json:"sessionId,omitempty"`
	Message   string       `json:"message"`
	Location  *LocationDTO `json:"location,omitempty"`
}

// LocationDTO is an optional user position.
type LocationDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ChatResponseDTO is the API response for one turn.
type ChatResponseDTO struct {
	SessionID string          `json:"sessionId"`
	Reply     string          `json:"reply"`
	Mode      string          `json:"mode"`
	Places    []storage.Place `json:"places,omitempty"`
	Banned    []string        `json:"bannedCategories,omitempty"`
}

// Chat handles POST /v1/chat. An omitted session ID starts a fresh session;
// the assigned ID comes back in the response for the client to carry forward.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ChatRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Message == "" {
		h.writeError(w, http.StatusBadRequest, "message is required", "")
		return
	}

	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	sess := h.sessions.GetOrCreate(req.SessionID)

	var loc *retrieval.Location
	if req.Location != nil {
		loc = &retrieval.Location{
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
		}
	}

	res, err := h.engine.Answer(ctx, sess, req.Message, loc)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", req.SessionID).Msg("turn failed")
		h.writeError(w, http.StatusInternalServerError, "failed to answer", "")
		return
	}

	h.writeJSON(w, http.StatusOK, ChatResponseDTO{
		SessionID: req.SessionID,
		Reply:     res.Reply,
		Mode:      string(res.Mode),
		Places:    res.Places,
		Banned:    res.Bans,
	})
}

// EndSession handles DELETE /v1/sessions/{sessionID}.
func (h *ChatHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		h.writeError(w, http.StatusBadRequest, "session id is required", "")
		return
	}
	h.sessions.Delete(sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// errorDTO is the error response shape.
type errorDTO struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *ChatHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *ChatHandler) writeError(w http.ResponseWriter, status int, msg, details string) {
	h.writeJSON(w, status, errorDTO{Error: msg, Details: details})
}
