// Package agent implements the tool-augmented conversation loop: it
// drives model turns, dispatches tool calls against a closed registry,
// and persists completed turns to the conversation store.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/webscout-ai/webscout/internal/llm"
)

// Tool is a capability the model can invoke by name.
type Tool interface {
	Name() string
	Description() string
	InputSchema() string
	Execute(ctx context.Context, input json.RawMessage) (string, error)
}

// ToolRegistry is the closed set of tools exposed to the model. Only
// registered names are dispatchable; anything else is rejected without
// execution.
type ToolRegistry struct {
	tools map[string]Tool
}

func NewToolRegistry(tools ...Tool) *ToolRegistry {
	r := &ToolRegistry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
	return r
}

// Register adds or replaces a tool.
func (r *ToolRegistry) Register(t Tool) {
	r.tools[t.Name()] = t
}

// Definitions returns the tool declarations to advertise to the model,
// sorted by name for stable request bodies.
func (r *ToolRegistry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, llm.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Dispatch executes one tool call. Unknown tools and execution failures
// come back as textual results the model can react to, never as errors.
func (r *ToolRegistry) Dispatch(ctx context.Context, call llm.ToolCall) string {
	t, ok := r.tools[call.Name]
	if !ok {
		return fmt.Sprintf("Error: unknown tool %q.", call.Name)
	}
	out, err := t.Execute(ctx, json.RawMessage(call.Input))
	if err != nil {
		return fmt.Sprintf("Error executing %s: %v", call.Name, err)
	}
	return out
}
