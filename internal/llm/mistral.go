package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultMistralBaseURL = "https://api.mistral.ai/v1"

// MistralClient is a direct HTTP client for the Mistral chat API.
type MistralClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewMistralClient creates a Mistral client for the given model.
func NewMistralClient(apiKey, model string) *MistralClient {
	return &MistralClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultMistralBaseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Name returns the provider name.
func (m *MistralClient) Name() string { return "mistral" }

// Complete sends a non-streaming chat completion request.
func (m *MistralClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	payload, err := json.Marshal(m.buildRequestBody(req, false))
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := m.newRequest(ctx, payload)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: "mistral", Code: resp.StatusCode, Message: string(body)}
	}

	var result mistralResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	out := result.toCompletion(m.model)
	out.Duration = time.Since(start)
	return out, nil
}

// Stream sends a streaming chat completion request and forwards deltas.
func (m *MistralClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error) {
	payload, err := json.Marshal(m.buildRequestBody(req, true))
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	events := make(chan StreamEvent)
	go m.streamRequest(ctx, events, payload)
	return events, nil
}

func (m *MistralClient) newRequest(ctx context.Context, payload []byte) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		m.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	return httpReq, nil
}

func (m *MistralClient) streamRequest(ctx context.Context, events chan StreamEvent, payload []byte) {
	defer close(events)

	httpReq, err := m.newRequest(ctx, payload)
	if err != nil {
		events <- StreamEvent{Type: EventError, Error: err.Error()}
		return
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		events <- StreamEvent{Type: EventError, Error: fmt.Sprintf("request failed: %v", err)}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		events <- StreamEvent{Type: EventError, Error: fmt.Sprintf("API error (%d): %s", resp.StatusCode, body)}
		return
	}

	var full bytes.Buffer
	toolCalls := map[int]*ToolCall{}
	stopReason := ""

	sc := newSSEScanner(resp.Body)
	for sc.Next() {
		if sc.Data() == "[DONE]" {
			break
		}
		var chunk mistralStreamChunk
		if err := json.Unmarshal([]byte(sc.Data()), &chunk); err != nil {
			continue
		}
		for _, choice := range chunk.Choices {
			if choice.FinishReason != "" {
				stopReason = choice.FinishReason
			}
			if choice.Delta.Content != "" {
				full.WriteString(choice.Delta.Content)
				select {
				case events <- StreamEvent{Type: EventDelta, Content: choice.Delta.Content}:
				case <-ctx.Done():
					return
				}
			}
			// Tool call fragments arrive indexed; arguments accumulate.
			for _, tc := range choice.Delta.ToolCalls {
				call, ok := toolCalls[tc.Index]
				if !ok {
					call = &ToolCall{}
					toolCalls[tc.Index] = call
				}
				if tc.ID != "" {
					call.ID = tc.ID
				}
				if tc.Function.Name != "" {
					call.Name = tc.Function.Name
				}
				call.Input += tc.Function.Arguments
			}
		}
	}

	calls := make([]ToolCall, 0, len(toolCalls))
	for i := 0; i < len(toolCalls); i++ {
		if c, ok := toolCalls[i]; ok {
			calls = append(calls, *c)
		}
	}

	events <- StreamEvent{
		Type: EventDone,
		Response: &CompletionResponse{
			Content:    full.String(),
			StopReason: stopReason,
			ToolCalls:  calls,
			Model:      m.model,
		},
	}
}

func (m *MistralClient) buildRequestBody(req CompletionRequest, stream bool) map[string]any {
	messages := make([]map[string]any, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, map[string]any{"role": "system", "content": req.System})
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleAssistant:
			entry := map[string]any{"role": "assistant", "content": msg.Content}
			if len(msg.ToolCalls) > 0 {
				tcs := make([]map[string]any, len(msg.ToolCalls))
				for i, tc := range msg.ToolCalls {
					tcs[i] = map[string]any{
						"id":   tc.ID,
						"type": "function",
						"function": map[string]any{
							"name":      tc.Name,
							"arguments": tc.Input,
						},
					}
				}
				entry["tool_calls"] = tcs
			}
			messages = append(messages, entry)
		case RoleTool:
			messages = append(messages, map[string]any{
				"role":         "tool",
				"name":         msg.ToolName,
				"content":      msg.Content,
				"tool_call_id": msg.ToolCallID,
			})
		default:
			messages = append(messages, map[string]any{"role": msg.Role, "content": msg.Content})
		}
	}

	body := map[string]any{
		"model":    m.model,
		"messages": messages,
	}
	if stream {
		body["stream"] = true
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}
	if req.Temperature != nil {
		body["temperature"] = *req.Temperature
	}
	if len(req.Tools) > 0 {
		tools := make([]map[string]any, len(req.Tools))
		for i, t := range req.Tools {
			tools[i] = map[string]any{
				"type": "function",
				"function": map[string]any{
					"name":        t.Name,
					"description": t.Description,
					"parameters":  parseJSONSchema(t.InputSchema),
				},
			}
		}
		body["tools"] = tools
		body["tool_choice"] = "auto"
		body["parallel_tool_calls"] = false
	}

	return body
}

// Wire structures

type mistralResponse struct {
	Choices []struct {
		Message struct {
			Content   string            `json:"content"`
			ToolCalls []mistralToolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type mistralToolCall struct {
	ID       string `json:"id"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type mistralStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (r *mistralResponse) toCompletion(model string) *CompletionResponse {
	out := &CompletionResponse{
		Model: model,
		Usage: Usage{
			InputTokens:  r.Usage.PromptTokens,
			OutputTokens: r.Usage.CompletionTokens,
		},
	}
	if len(r.Choices) > 0 {
		choice := r.Choices[0]
		out.Content = choice.Message.Content
		out.StopReason = choice.FinishReason
		for _, tc := range choice.Message.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:    tc.ID,
				Name:  tc.Function.Name,
				Input: tc.Function.Arguments,
			})
		}
	}
	return out
}
