package llm

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// sseScanner reads data lines from a Server-Sent Events stream, stripping
// the "data:" field prefix and skipping comments and blank keep-alives.
type sseScanner struct {
	scanner *bufio.Scanner
	data    string
}

func newSSEScanner(r io.Reader) *sseScanner {
	sc := bufio.NewScanner(r)
	// Evidence-heavy prompts can come back as very long event lines.
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &sseScanner{scanner: sc}
}

// Next advances to the next data payload. Returns false at end of stream.
func (s *sseScanner) Next() bool {
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		s.data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if s.data == "" {
			continue
		}
		return true
	}
	return false
}

// Data returns the last payload.
func (s *sseScanner) Data() string {
	return s.data
}

// parseJSONSchema converts a JSON schema string to a generic map for
// embedding in a provider request body. Malformed schemas yield nil and
// let the API report the error.
func parseJSONSchema(schemaStr string) map[string]any {
	if schemaStr == "" {
		return nil
	}
	var schema map[string]any
	if err := json.Unmarshal([]byte(schemaStr), &schema); err != nil {
		return nil
	}
	return schema
}
