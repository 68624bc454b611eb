package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webscout-ai/webscout/internal/domain"
	"github.com/webscout-ai/webscout/internal/logging"
)

func newTestStore(maxMessages int) *ConversationStore {
	return New(maxMessages, logging.Discard())
}

func TestGetOrCreateAssignsID(t *testing.T) {
	s := newTestStore(20)

	conv := s.GetOrCreate("")
	require.NotEmpty(t, conv.ID)

	again := s.GetOrCreate(conv.ID)
	assert.Same(t, conv, again)
}

func TestGetUnknown(t *testing.T) {
	s := newTestStore(20)
	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	s := newTestStore(20)
	conv := s.GetOrCreate("abc")
	require.NotNil(t, conv)

	assert.True(t, s.Delete("abc"))
	_, ok := s.Get("abc")
	assert.False(t, ok)

	assert.False(t, s.Delete("abc"))
	assert.False(t, s.Delete("never-existed"))
}

func TestAppendTurnAccumulatesHistory(t *testing.T) {
	s := newTestStore(20)
	s.GetOrCreate("c1")

	s.AppendTurn("c1",
		domain.NewMessage(domain.RoleUser, "hello"),
		domain.NewMessage(domain.RoleAssistant, "hi there"))
	s.AppendTurn("c1",
		domain.NewMessage(domain.RoleUser, "how are you"),
		domain.NewMessage(domain.RoleAssistant, "fine"))

	hist := s.History("c1")
	require.Len(t, hist, 4)
	assert.Equal(t, "hello", hist[0].Content)
	assert.Equal(t, domain.RoleAssistant, hist[3].Role)
	assert.Equal(t, "fine", hist[3].Content)
}

func TestAppendTurnClearsWhenOverCap(t *testing.T) {
	s := newTestStore(20)
	conv := s.GetOrCreate("c1")

	// Seed past the cap: 21 messages.
	for i := 0; i < 21; i++ {
		conv.Append(domain.NewMessage(domain.RoleUser, fmt.Sprintf("m%d", i)))
	}

	s.AppendTurn("c1",
		domain.NewMessage(domain.RoleUser, "fresh question"),
		domain.NewMessage(domain.RoleAssistant, "fresh answer"))

	hist := s.History("c1")
	require.Len(t, hist, 2)
	assert.Equal(t, "fresh question", hist[0].Content)
	assert.Equal(t, "fresh answer", hist[1].Content)
}

func TestAppendTurnAtExactCapClears(t *testing.T) {
	s := newTestStore(20)
	conv := s.GetOrCreate("c1")

	for i := 0; i < 20; i++ {
		conv.Append(domain.NewMessage(domain.RoleUser, "m"))
	}

	s.AppendTurn("c1",
		domain.NewMessage(domain.RoleUser, "u"),
		domain.NewMessage(domain.RoleAssistant, "a"))

	hist := s.History("c1")
	require.Len(t, hist, 2)
	assert.Equal(t, "u", hist[0].Content)
}

func TestHistoryNeverExceedsCapAtTurnStart(t *testing.T) {
	s := newTestStore(20)
	s.GetOrCreate("c1")

	for i := 0; i < 12; i++ {
		assert.LessOrEqual(t, len(s.History("c1")), 20,
			"turn %d starts over the cap", i+1)
		s.AppendTurn("c1",
			domain.NewMessage(domain.RoleUser, fmt.Sprintf("q%d", i)),
			domain.NewMessage(domain.RoleAssistant, fmt.Sprintf("a%d", i)))
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	s := newTestStore(20)
	s.GetOrCreate("c1")
	s.AppendTurn("c1",
		domain.NewMessage(domain.RoleUser, "u"),
		domain.NewMessage(domain.RoleAssistant, "a"))

	hist := s.History("c1")
	hist[0].Content = "mutated"
	assert.Equal(t, "u", s.History("c1")[0].Content)
}

func TestList(t *testing.T) {
	s := newTestStore(20)
	s.GetOrCreate("a")
	s.GetOrCreate("b")
	assert.ElementsMatch(t, []string{"a", "b"}, s.List())
}

func TestConcurrentTurnsOnDistinctConversations(t *testing.T) {
	s := newTestStore(100)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("c%d", i)
		s.GetOrCreate(id)
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				unlock := s.LockTurn(id)
				s.AppendTurn(id,
					domain.NewMessage(domain.RoleUser, "q"),
					domain.NewMessage(domain.RoleAssistant, "a"))
				unlock()
			}
		}(id)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		assert.Len(t, s.History(fmt.Sprintf("c%d", i)), 20)
	}
}
