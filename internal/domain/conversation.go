package domain

import "time"

// Conversation owns the ordered message history for one conversation id.
// History is bounded: once it grows past the configured cap the whole
// history is cleared, not trimmed to a window. Callers must tolerate that
// abrupt memory loss.
type Conversation struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewConversation creates an empty conversation with the given id.
func NewConversation(id string) *Conversation {
	now := time.Now()
	return &Conversation{ID: id, CreatedAt: now, UpdatedAt: now}
}

// Append adds messages to the history and bumps the update time.
func (c *Conversation) Append(msgs ...Message) {
	c.Messages = append(c.Messages, msgs...)
	c.UpdatedAt = time.Now()
}
