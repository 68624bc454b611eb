package agent

import (
	"context"
	"fmt"

	"github.com/webscout-ai/webscout/internal/domain"
	"github.com/webscout-ai/webscout/internal/llm"
	"github.com/webscout-ai/webscout/internal/logging"
	"github.com/webscout-ai/webscout/internal/store"
)

// turnState tracks where a turn is in its lifecycle. The tool iteration
// cap guards the transition into stateExecutingTool: once spent, a tool
// request from the model resolves the turn with whatever text the model
// produced.
type turnState int

const (
	stateComposing turnState = iota
	stateAwaitingModel
	stateExecutingTool
	stateDone
)

// Turn event types delivered to a StreamCallback.
const (
	TurnEventDelta     = "delta"
	TurnEventToolStart = "tool_start"
	TurnEventToolDone  = "tool_done"
)

// TurnEvent is one out-of-band notification during a streamed turn.
type TurnEvent struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"` // text delta
	Tool    string `json:"tool,omitempty"`    // tool name for tool events
}

// StreamCallback receives turn events as they happen. Callbacks run on
// the turn's goroutine; a slow callback slows the turn.
type StreamCallback func(ev TurnEvent)

// TurnResult is the outcome of one completed turn.
type TurnResult struct {
	ConversationID string    `json:"conversationId"`
	Content        string    `json:"content"`
	ToolCycles     int       `json:"toolCycles"`
	Usage          llm.Usage `json:"usage"`
}

// Config tunes the runner.
type Config struct {
	Model             string
	MaxTokens         int
	Temperature       *float64
	MaxToolIterations int
}

// Runner drives tool-augmented turns against one model client.
type Runner struct {
	cfg    Config
	client llm.Client
	store  *store.ConversationStore
	tools  *ToolRegistry
	log    *logging.Logger
}

func NewRunner(cfg Config, client llm.Client, st *store.ConversationStore, tools *ToolRegistry, log *logging.Logger) *Runner {
	if cfg.MaxToolIterations < 1 {
		cfg.MaxToolIterations = 3
	}
	return &Runner{
		cfg:    cfg,
		client: client,
		store:  st,
		tools:  tools,
		log:    log.Sub("agent"),
	}
}

// Run executes one turn and returns the final response once complete.
func (r *Runner) Run(ctx context.Context, prompt, conversationID string) (*TurnResult, error) {
	return r.runTurn(ctx, prompt, conversationID, nil)
}

// RunStream executes one turn, delivering deltas and tool notifications
// through cb as they happen. The returned result carries the accumulated
// final text.
func (r *Runner) RunStream(ctx context.Context, prompt, conversationID string, cb StreamCallback) (*TurnResult, error) {
	if cb == nil {
		cb = func(TurnEvent) {}
	}
	return r.runTurn(ctx, prompt, conversationID, cb)
}

// runTurn is the turn state machine. Tool exchanges are scratch state:
// only the user prompt and the final assistant text are persisted.
func (r *Runner) runTurn(ctx context.Context, prompt, conversationID string, cb StreamCallback) (*TurnResult, error) {
	conv := r.store.GetOrCreate(conversationID)
	unlock := r.store.LockTurn(conv.ID)
	defer unlock()

	scratch := historyToMessages(r.store.History(conv.ID))
	scratch = append(scratch, llm.Message{Role: llm.RoleUser, Content: prompt})

	var (
		state    = stateComposing
		cycles   int
		usage    llm.Usage
		finalTxt string
	)

	var req llm.CompletionRequest
	var resp *llm.CompletionResponse

	for state != stateDone {
		switch state {
		case stateComposing:
			req = llm.CompletionRequest{
				Model:       r.cfg.Model,
				System:      BuildSystemPrompt(),
				Messages:    scratch,
				Tools:       r.tools.Definitions(),
				MaxTokens:   r.cfg.MaxTokens,
				Temperature: r.cfg.Temperature,
			}
			state = stateAwaitingModel

		case stateAwaitingModel:
			var err error
			resp, err = r.complete(ctx, req, cb)
			if err != nil {
				return nil, fmt.Errorf("model call failed: %w", err)
			}
			usage.InputTokens += resp.Usage.InputTokens
			usage.OutputTokens += resp.Usage.OutputTokens

			switch {
			case len(resp.ToolCalls) == 0:
				finalTxt = resp.Content
				state = stateDone
			case cycles >= r.cfg.MaxToolIterations:
				r.log.Warn().
					Str("conversation_id", conv.ID).
					Int("cycles", cycles).
					Msg("tool iteration cap reached, resolving turn")
				finalTxt = resp.Content
				state = stateDone
			default:
				state = stateExecutingTool
			}

		case stateExecutingTool:
			scratch = append(scratch, llm.Message{
				Role:      llm.RoleAssistant,
				Content:   resp.Content,
				ToolCalls: resp.ToolCalls,
			})
			for _, call := range resp.ToolCalls {
				r.log.Info().
					Str("conversation_id", conv.ID).
					Str("tool", call.Name).
					Msg("executing tool")
				if cb != nil {
					cb(TurnEvent{Type: TurnEventToolStart, Tool: call.Name})
				}
				out := r.tools.Dispatch(ctx, call)
				if cb != nil {
					cb(TurnEvent{Type: TurnEventToolDone, Tool: call.Name})
				}
				scratch = append(scratch, llm.Message{
					Role:       llm.RoleTool,
					Content:    out,
					ToolName:   call.Name,
					ToolCallID: call.ID,
				})
			}
			cycles++
			state = stateComposing
		}
	}

	r.store.AppendTurn(conv.ID,
		domain.NewMessage(domain.RoleUser, prompt),
		domain.NewMessage(domain.RoleAssistant, finalTxt))

	return &TurnResult{
		ConversationID: conv.ID,
		Content:        finalTxt,
		ToolCycles:     cycles,
		Usage:          usage,
	}, nil
}

// complete runs one model call, streaming when a callback is present.
func (r *Runner) complete(ctx context.Context, req llm.CompletionRequest, cb StreamCallback) (*llm.CompletionResponse, error) {
	if cb == nil {
		return r.client.Complete(ctx, req)
	}

	events, err := r.client.Stream(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp *llm.CompletionResponse
	var accumulated string
	for ev := range events {
		switch ev.Type {
		case llm.EventDelta:
			accumulated += ev.Content
			cb(TurnEvent{Type: TurnEventDelta, Content: ev.Content})
		case llm.EventError:
			return nil, fmt.Errorf("stream error: %s", ev.Error)
		case llm.EventDone:
			resp = ev.Response
		}
	}
	if resp == nil {
		return nil, fmt.Errorf("stream closed without a final response")
	}
	if resp.Content == "" {
		resp.Content = accumulated
	}
	return resp, nil
}

// historyToMessages converts persisted history into model messages.
func historyToMessages(history []domain.Message) []llm.Message {
	out := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}
