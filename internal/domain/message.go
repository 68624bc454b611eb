// Package domain holds the core data types shared across WebScout:
// conversation messages, conversations, and web evidence shapes.
package domain

import "time"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolInvocation records a tool call carried on a message.
type ToolInvocation struct {
	Name   string `json:"name"`
	Input  string `json:"input"`            // JSON-encoded arguments
	Output string `json:"output,omitempty"` // result text
}

// Message is a single turn entry in a conversation. Messages are treated
// as immutable once created.
type Message struct {
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Timestamp time.Time       `json:"timestamp"`
	Tool      *ToolInvocation `json:"tool,omitempty"`
}

// NewMessage builds a message stamped with the current time.
func NewMessage(role, content string) Message {
	return Message{Role: role, Content: content, Timestamp: time.Now()}
}
