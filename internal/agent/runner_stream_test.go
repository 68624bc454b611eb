package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webscout-ai/webscout/internal/llm"
)

func TestRunStreamForwardsDeltas(t *testing.T) {
	client := &llm.MockClient{
		StreamFunc: llm.StreamFromResponse(
			&llm.CompletionResponse{Content: "the full answer"},
			"the ", "full ", "answer"),
	}
	r, _ := newTestRunner(client)

	var events []TurnEvent
	res, err := r.RunStream(context.Background(), "question", "", func(ev TurnEvent) {
		events = append(events, ev)
	})
	require.NoError(t, err)
	assert.Equal(t, "the full answer", res.Content)

	var got strings.Builder
	for _, ev := range events {
		require.Equal(t, TurnEventDelta, ev.Type)
		got.WriteString(ev.Content)
	}
	assert.Equal(t, "the full answer", got.String())
}

func TestRunStreamAccumulatesWhenDoneHasNoContent(t *testing.T) {
	client := &llm.MockClient{
		StreamFunc: llm.StreamFromResponse(&llm.CompletionResponse{}, "a", "b", "c"),
	}
	r, _ := newTestRunner(client)

	res, err := r.RunStream(context.Background(), "q", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", res.Content)
}

func TestRunStreamEmitsToolEvents(t *testing.T) {
	tool := &echoTool{name: "retrieve_web_content", result: "evidence"}

	client := &llm.MockClient{
		StreamFunc: func(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamEvent, error) {
			ch := make(chan llm.StreamEvent, 2)
			last := req.Messages[len(req.Messages)-1]
			if last.Role == llm.RoleTool {
				ch <- llm.StreamEvent{Type: llm.EventDelta, Content: "final answer"}
				ch <- llm.StreamEvent{
					Type:     llm.EventDone,
					Response: &llm.CompletionResponse{Content: "final answer"},
				}
			} else {
				ch <- llm.StreamEvent{
					Type: llm.EventDone,
					Response: &llm.CompletionResponse{
						ToolCalls: []llm.ToolCall{{Name: "retrieve_web_content", Input: `{"query":"x"}`}},
					},
				}
			}
			close(ch)
			return ch, nil
		},
	}
	r, _ := newTestRunner(client, tool)

	var types []string
	res, err := r.RunStream(context.Background(), "q", "", func(ev TurnEvent) {
		types = append(types, ev.Type)
	})
	require.NoError(t, err)
	assert.Equal(t, "final answer", res.Content)
	assert.Equal(t, []string{TurnEventToolStart, TurnEventToolDone, TurnEventDelta}, types)
}

func TestRunStreamSurfacesStreamError(t *testing.T) {
	client := &llm.MockClient{
		StreamFunc: func(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamEvent, error) {
			ch := make(chan llm.StreamEvent, 1)
			ch <- llm.StreamEvent{Type: llm.EventError, Error: "upstream reset"}
			close(ch)
			return ch, nil
		},
	}
	r, _ := newTestRunner(client)

	_, err := r.RunStream(context.Background(), "q", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream reset")
}
