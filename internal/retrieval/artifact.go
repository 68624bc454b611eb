package retrieval

import (
	"os"
	"path/filepath"
	"sync"
)

// ArtifactSink persists the rendered evidence from the latest retrieval.
// Each call replaces whatever the previous call wrote.
type ArtifactSink interface {
	Persist(content string) error
}

// FileSink writes the evidence to a single file, overwriting it each time.
type FileSink struct {
	path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Persist(content string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(content), 0o644)
}

// MemorySink keeps the latest evidence in memory. Useful for tests and
// for callers that want to inspect what the agent last retrieved.
type MemorySink struct {
	mu   sync.Mutex
	last string
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Persist(content string) error {
	s.mu.Lock()
	s.last = content
	s.mu.Unlock()
	return nil
}

// Last returns the most recently persisted content.
func (s *MemorySink) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// DiscardSink drops everything.
type DiscardSink struct{}

func (DiscardSink) Persist(string) error { return nil }
