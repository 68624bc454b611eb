package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webscout-ai/webscout/internal/agent"
	"github.com/webscout-ai/webscout/internal/config"
	"github.com/webscout-ai/webscout/internal/domain"
	"github.com/webscout-ai/webscout/internal/llm"
	"github.com/webscout-ai/webscout/internal/logging"
	"github.com/webscout-ai/webscout/internal/store"
)

func newTestServer(t *testing.T, client llm.Client) (*httptest.Server, *store.ConversationStore) {
	t.Helper()
	st := store.New(20, logging.Discard())
	runner := agent.NewRunner(agent.Config{Model: "test-model", MaxToolIterations: 3},
		client, st, agent.NewToolRegistry(), logging.Discard())
	s := New(config.GatewayConfig{Port: 0, Bind: "loopback"}, runner, st, logging.Discard())
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return ts, st
}

func echoClient() llm.Client {
	return &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			last := req.Messages[len(req.Messages)-1]
			return &llm.CompletionResponse{Content: "echo: " + last.Content}, nil
		},
		StreamFunc: func(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamEvent, error) {
			last := req.Messages[len(req.Messages)-1]
			content := "echo: " + last.Content
			ch := make(chan llm.StreamEvent, 2)
			ch <- llm.StreamEvent{Type: llm.EventDelta, Content: content}
			ch <- llm.StreamEvent{Type: llm.EventDone, Response: &llm.CompletionResponse{Content: content}}
			close(ch)
			return ch, nil
		},
	}
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, echoClient())

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.GreaterOrEqual(t, body.UptimeSeconds, int64(0))
}

func TestGenerateStreamsTextAndEchoesConversationID(t *testing.T) {
	ts, _ := newTestServer(t, echoClient())

	resp, err := http.Post(ts.URL+"/generate", "application/json",
		strings.NewReader(`{"prompt":"hello"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	assert.NotEmpty(t, resp.Header.Get("X-Conversation-ID"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", string(body))
}

func TestGenerateNonStreaming(t *testing.T) {
	ts, st := newTestServer(t, echoClient())

	resp, err := http.Post(ts.URL+"/generate", "application/json",
		strings.NewReader(`{"prompt":"hello","stream":false}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body GenerateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "echo: hello", body.Content)
	assert.Equal(t, body.ConversationID, resp.Header.Get("X-Conversation-ID"))

	hist := st.History(body.ConversationID)
	require.Len(t, hist, 2)
	assert.Equal(t, "hello", hist[0].Content)
}

func TestGenerateContinuesConversation(t *testing.T) {
	ts, st := newTestServer(t, echoClient())
	st.GetOrCreate("conv-1")

	resp, err := http.Post(ts.URL+"/generate", "application/json",
		strings.NewReader(`{"prompt":"hi","conversationId":"conv-1","stream":false}`))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "conv-1", resp.Header.Get("X-Conversation-ID"))
	assert.Len(t, st.History("conv-1"), 2)
}

func TestGenerateRejectsBadRequests(t *testing.T) {
	ts, _ := newTestServer(t, echoClient())

	for _, body := range []string{`{}`, `{not json`, `{"prompt":""}`} {
		resp, err := http.Post(ts.URL+"/generate", "application/json", bytes.NewReader([]byte(body)))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body: %s", body)
	}
}

func TestGenerateSurfacesTurnFailure(t *testing.T) {
	client := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return nil, assert.AnError
		},
	}
	ts, _ := newTestServer(t, client)

	resp, err := http.Post(ts.URL+"/generate", "application/json",
		strings.NewReader(`{"prompt":"hi","stream":false}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestGetConversation(t *testing.T) {
	ts, st := newTestServer(t, echoClient())
	st.GetOrCreate("known")
	st.AppendTurn("known",
		domain.NewMessage(domain.RoleUser, "q"),
		domain.NewMessage(domain.RoleAssistant, "a"))

	resp, err := http.Get(ts.URL + "/conversations/known")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var conv domain.Conversation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&conv))
	assert.Equal(t, "known", conv.ID)
	assert.Len(t, conv.Messages, 2)

	resp, err = http.Get(ts.URL + "/conversations/unknown")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteConversation(t *testing.T) {
	ts, st := newTestServer(t, echoClient())
	st.GetOrCreate("doomed")

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/conversations/doomed", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, ok := st.Get("doomed")
	assert.False(t, ok)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	ts, _ := newTestServer(t, echoClient())

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocketTurn(t *testing.T) {
	ts, _ := newTestServer(t, echoClient())

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(wsRequest{Prompt: "hello"}))

	var deltas strings.Builder
	for {
		var frame wsFrame
		require.NoError(t, conn.ReadJSON(&frame))
		if frame.Type == "delta" {
			deltas.WriteString(frame.Content)
			continue
		}
		require.Equal(t, "done", frame.Type)
		assert.Equal(t, "echo: hello", frame.Content)
		assert.NotEmpty(t, frame.ConversationID)
		break
	}
	assert.Equal(t, "echo: hello", deltas.String())
}

func TestWebSocketRejectsEmptyPrompt(t *testing.T) {
	ts, _ := newTestServer(t, echoClient())

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(wsRequest{}))

	var frame wsFrame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "error", frame.Type)
}
