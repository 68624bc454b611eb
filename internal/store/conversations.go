// Package store holds in-memory conversation state. History is ephemeral
// and lives only for the lifetime of the process.
package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/webscout-ai/webscout/internal/domain"
	"github.com/webscout-ai/webscout/internal/logging"
)

// ConversationStore is a bounded, concurrency-safe conversation registry.
// When a conversation's message count exceeds maxMessages, the next
// appended turn clears the history and starts over with that turn.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]*domain.Conversation
	turnLocks     map[string]*sync.Mutex
	maxMessages   int
	log           *logging.Logger
}

func New(maxMessages int, log *logging.Logger) *ConversationStore {
	if maxMessages < 2 {
		maxMessages = 20
	}
	return &ConversationStore{
		conversations: make(map[string]*domain.Conversation),
		turnLocks:     make(map[string]*sync.Mutex),
		maxMessages:   maxMessages,
		log:           log.Sub("store"),
	}
}

// GetOrCreate returns the conversation for id, creating it if needed.
// An empty id gets a fresh UUID. The returned id is always non-empty.
func (s *ConversationStore) GetOrCreate(id string) *domain.Conversation {
	if id == "" {
		id = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if conv, ok := s.conversations[id]; ok {
		return conv
	}
	conv := domain.NewConversation(id)
	s.conversations[id] = conv
	s.log.Debug().Str("conversation_id", id).Msg("conversation created")
	return conv
}

// Get returns the conversation for id if it exists.
func (s *ConversationStore) Get(id string) (*domain.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	return conv, ok
}

// Delete removes a conversation. It reports whether the id was known.
func (s *ConversationStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return false
	}
	delete(s.conversations, id)
	delete(s.turnLocks, id)
	s.log.Debug().Str("conversation_id", id).Msg("conversation deleted")
	return true
}

// History returns a copy of the messages for id, oldest first.
func (s *ConversationStore) History(id string) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil
	}
	out := make([]domain.Message, len(conv.Messages))
	copy(out, conv.Messages)
	return out
}

// List returns the ids of all live conversations.
func (s *ConversationStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.conversations))
	for id := range s.conversations {
		ids = append(ids, id)
	}
	return ids
}

// AppendTurn records one completed user/assistant exchange. If the
// history is already at or over the cap, it is cleared first so the new
// turn becomes the start of a fresh window and no turn ever starts with
// more than maxMessages of history.
func (s *ConversationStore) AppendTurn(id string, user, assistant domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		conv = domain.NewConversation(id)
		s.conversations[id] = conv
	}

	if len(conv.Messages) >= s.maxMessages {
		s.log.Info().
			Str("conversation_id", id).
			Int("messages", len(conv.Messages)).
			Msg("history cap exceeded, clearing conversation")
		conv.Messages = conv.Messages[:0]
	}

	conv.Append(user, assistant)
}

// LockTurn serializes turns within a single conversation. Callers must
// pair it with the returned unlock. Turns on distinct conversations do
// not contend.
func (s *ConversationStore) LockTurn(id string) func() {
	s.mu.Lock()
	l, ok := s.turnLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.turnLocks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
