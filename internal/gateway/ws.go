package gateway

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/webscout-ai/webscout/internal/agent"
)

// maxWSMessageBytes caps inbound WebSocket frames.
const maxWSMessageBytes = 1 << 20

// wsRequest is one inbound generation request on a WebSocket connection.
type wsRequest struct {
	Prompt         string `json:"prompt"`
	ConversationID string `json:"conversationId,omitempty"`
}

// wsFrame is one outbound event. Types mirror the runner's turn events,
// plus "done" carrying the final content and "error".
type wsFrame struct {
	Type           string `json:"type"`
	Content        string `json:"content,omitempty"`
	Tool           string `json:"tool,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	Error          string `json:"error,omitempty"`
}

// handleWebSocket upgrades the connection and serves generation requests
// one at a time. Each request streams delta and tool frames followed by
// a done frame; the connection stays open for the next request.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxWSMessageBytes)

	s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket connected")

	// Serializes writes between the delta callback and the final frames.
	var writeMu sync.Mutex
	send := func(f wsFrame) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(f)
	}

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket closed")
			} else {
				s.log.Warn().Err(err).Msg("websocket read error")
			}
			return
		}
		if req.Prompt == "" {
			send(wsFrame{Type: "error", Error: "prompt is required"})
			continue
		}

		conv := s.store.GetOrCreate(req.ConversationID)

		ctx, cancel := context.WithTimeout(r.Context(), turnTimeout)
		res, err := s.runner.RunStream(ctx, req.Prompt, conv.ID, func(ev agent.TurnEvent) {
			send(wsFrame{Type: ev.Type, Content: ev.Content, Tool: ev.Tool})
		})
		cancel()

		if err != nil {
			send(wsFrame{Type: "error", ConversationID: conv.ID, Error: err.Error()})
			continue
		}
		send(wsFrame{
			Type:           "done",
			Content:        res.Content,
			ConversationID: res.ConversationID,
		})
	}
}
