// Package config loads and validates WebScout configuration from YAML,
// environment variables, and defaults.
package config

import "fmt"

// Error represents a configuration error.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		LLM: LLMConfig{
			Provider:  "gemini",
			Model:     "gemini-2.5-flash",
			MaxTokens: 4096,
		},
		Search: SearchConfig{
			Depth:          5,
			BlockedDomains: []string{"twitter.com", "x.com"},
		},
		Retrieval: RetrievalConfig{
			SummaryCharLimit: 500,
			MaxPageTokens:    75000,
			Artifact:         "file",
		},
		Conversation: ConversationConfig{
			MaxMessages:       20,
			MaxToolIterations: 3,
		},
		Gateway: GatewayConfig{
			Port: 8089,
			Bind: "loopback",
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}
