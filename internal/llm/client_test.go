package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webscout-ai/webscout/internal/config"
	"github.com/webscout-ai/webscout/internal/logging"
)

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry(logging.Discard())
	mock := &MockClient{ProviderName: "mock"}
	reg.Register("mock", mock)
	reg.SetFallback("mock")

	c, err := reg.Resolve("mock")
	require.NoError(t, err)
	assert.Equal(t, "mock", c.Name())

	// Unknown names fall back.
	c, err = reg.Resolve("something-else")
	require.NoError(t, err)
	assert.Equal(t, "mock", c.Name())
}

func TestRegistryResolveNoProviders(t *testing.T) {
	reg := NewRegistry(logging.Discard())
	_, err := reg.Resolve("gemini")
	assert.Error(t, err)
}

func TestNewRegistryFromConfig(t *testing.T) {
	reg, err := NewRegistryFromConfig(config.LLMConfig{
		Provider: "mistral",
		APIKey:   "key",
		Model:    "mistral-small-latest",
	}, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"mistral"}, reg.List())

	_, err = NewRegistryFromConfig(config.LLMConfig{Provider: "gemini"}, logging.Discard())
	assert.Error(t, err, "missing API key must fail")

	_, err = NewRegistryFromConfig(config.LLMConfig{Provider: "gpt", APIKey: "k"}, logging.Discard())
	assert.Error(t, err, "unknown provider must fail")
}

func TestGeminiComplete(t *testing.T) {
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"candidates": [{
				"content": {"parts": [{"text": "Paris is sunny."}], "role": "model"},
				"finishReason": "STOP"
			}],
			"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 4}
		}`)
	}))
	defer ts.Close()

	g := NewGeminiClient("test-key", "gemini-2.5-flash")
	g.baseURL = ts.URL

	resp, err := g.Complete(context.Background(), CompletionRequest{
		System:   "be helpful",
		Messages: []Message{{Role: RoleUser, Content: "weather in Paris"}},
		Tools: []ToolDefinition{{
			Name:        "retrieve_web_content",
			Description: "search the web",
			InputSchema: `{"type":"object","properties":{"query":{"type":"string"}},"required":["query"]}`,
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Paris is sunny.", resp.Content)
	assert.Equal(t, "STOP", resp.StopReason)
	assert.Equal(t, 12, resp.Usage.InputTokens)

	// Request shape: systemInstruction and functionDeclarations present.
	assert.Contains(t, gotBody, "systemInstruction")
	assert.Contains(t, gotBody, "tools")
	contents := gotBody["contents"].([]any)
	require.Len(t, contents, 1)
	assert.Equal(t, "user", contents[0].(map[string]any)["role"])
}

func TestGeminiCompleteToolCall(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"candidates": [{
				"content": {"parts": [{"functionCall": {"name": "retrieve_web_content", "args": {"query": "paris weather"}}}], "role": "model"}
			}]
		}`)
	}))
	defer ts.Close()

	g := NewGeminiClient("test-key", "gemini-2.5-flash")
	g.baseURL = ts.URL

	resp, err := g.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "weather?"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "retrieve_web_content", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"query":"paris weather"}`, resp.ToolCalls[0].Input)
}

func TestGeminiCompleteAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	g := NewGeminiClient("test-key", "gemini-2.5-flash")
	g.baseURL = ts.URL

	_, err := g.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusTooManyRequests, perr.Code)
}

func TestGeminiStream(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"Hel\"}]}}]}\n\n")
		io.WriteString(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"lo\"}]},\"finishReason\":\"STOP\"}]}\n\n")
	}))
	defer ts.Close()

	g := NewGeminiClient("test-key", "gemini-2.5-flash")
	g.baseURL = ts.URL

	ch, err := g.Stream(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)

	var deltas []string
	var done *CompletionResponse
	for evt := range ch {
		switch evt.Type {
		case EventDelta:
			deltas = append(deltas, evt.Content)
		case EventDone:
			done = evt.Response
		case EventError:
			t.Fatalf("unexpected stream error: %s", evt.Error)
		}
	}

	assert.Equal(t, []string{"Hel", "lo"}, deltas)
	require.NotNil(t, done)
	assert.Equal(t, "Hello", done.Content)
	assert.Equal(t, "STOP", done.StopReason)
}

func TestMistralCompleteToolCall(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		io.WriteString(w, `{
			"choices": [{
				"message": {
					"content": "",
					"tool_calls": [{"id": "call_1", "function": {"name": "retrieve_web_content", "arguments": "{\"query\":\"sky color\"}"}}]
				},
				"finish_reason": "tool_calls"
			}],
			"usage": {"prompt_tokens": 9, "completion_tokens": 3}
		}`)
	}))
	defer ts.Close()

	m := NewMistralClient("test-key", "mistral-small-latest")
	m.baseURL = ts.URL

	resp, err := m.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "why is the sky blue"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call_1", resp.ToolCalls[0].ID)
	assert.Equal(t, "tool_calls", resp.StopReason)
	assert.Equal(t, 9, resp.Usage.InputTokens)
}

func TestMistralStream(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"The sky \"}}]}\n\n")
		io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"is blue.\"},\"finish_reason\":\"stop\"}]}\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer ts.Close()

	m := NewMistralClient("test-key", "mistral-small-latest")
	m.baseURL = ts.URL

	ch, err := m.Stream(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "sky?"}},
	})
	require.NoError(t, err)

	var full string
	var done *CompletionResponse
	for evt := range ch {
		if evt.Type == EventDelta {
			full += evt.Content
		}
		if evt.Type == EventDone {
			done = evt.Response
		}
	}
	assert.Equal(t, "The sky is blue.", full)
	require.NotNil(t, done)
	assert.Equal(t, "The sky is blue.", done.Content)
}
