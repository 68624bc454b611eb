package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/webscout-ai/webscout/internal/agent"
)

// GenerateRequest is the body of POST /generate. Stream defaults to
// true; set it to false for a single JSON response.
type GenerateRequest struct {
	Prompt         string `json:"prompt"`
	ConversationID string `json:"conversationId,omitempty"`
	Stream         *bool  `json:"stream,omitempty"`
}

// GenerateResponse is the non-streaming response body.
type GenerateResponse struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
	ToolCycles     int    `json:"toolCycles"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version,omitempty"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	})
}

// handleGenerate runs one agent turn. The conversation id is always
// echoed in the X-Conversation-ID header so clients can continue the
// conversation regardless of response mode.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	// The id has to be known before the body starts, so resolve it up
	// front rather than waiting for the turn result.
	conv := s.store.GetOrCreate(req.ConversationID)
	w.Header().Set("X-Conversation-ID", conv.ID)

	ctx, cancel := context.WithTimeout(r.Context(), turnTimeout)
	defer cancel()

	if req.Stream != nil && !*req.Stream {
		res, err := s.runner.Run(ctx, req.Prompt, conv.ID)
		if err != nil {
			s.log.Error().Err(err).Str("conversation_id", conv.ID).Msg("turn failed")
			writeError(w, http.StatusBadGateway, "generation failed")
			return
		}
		writeJSON(w, http.StatusOK, GenerateResponse{
			ConversationID: res.ConversationID,
			Content:        res.Content,
			ToolCycles:     res.ToolCycles,
		})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	_, err := s.runner.RunStream(ctx, req.Prompt, conv.ID, func(ev agent.TurnEvent) {
		if ev.Type != agent.TurnEventDelta {
			return
		}
		w.Write([]byte(ev.Content))
		flusher.Flush()
	})
	if err != nil {
		// Headers are gone; the best we can do is log and cut the body.
		s.log.Error().Err(err).Str("conversation_id", conv.ID).Msg("streaming turn failed")
	}
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	conv, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.store.Delete(id) {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// handleNotFound returns a 404 for unknown routes.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{
		"error": "not found",
		"path":  r.URL.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
