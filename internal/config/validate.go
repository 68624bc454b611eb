package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	validProviders := []string{"gemini", "mistral"}
	if cfg.LLM.Provider != "" && !slices.Contains(validProviders, cfg.LLM.Provider) {
		issues = append(issues, ValidationIssue{
			Path:    "llm.provider",
			Message: fmt.Sprintf("must be one of %v, got %q", validProviders, cfg.LLM.Provider),
		})
	}
	if cfg.LLM.MaxTokens < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "llm.maxTokens",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.LLM.MaxTokens),
		})
	}

	if cfg.Search.Depth < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "search.depth",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Search.Depth),
		})
	}

	validArtifacts := []string{"file", "memory", "none"}
	if cfg.Retrieval.Artifact != "" && !slices.Contains(validArtifacts, cfg.Retrieval.Artifact) {
		issues = append(issues, ValidationIssue{
			Path:    "retrieval.artifact",
			Message: fmt.Sprintf("must be one of %v, got %q", validArtifacts, cfg.Retrieval.Artifact),
		})
	}
	if cfg.Retrieval.SummaryCharLimit < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "retrieval.summaryCharLimit",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.Retrieval.SummaryCharLimit),
		})
	}

	if cfg.Conversation.MaxMessages < 2 {
		issues = append(issues, ValidationIssue{
			Path:    "conversation.maxMessages",
			Message: fmt.Sprintf("must hold at least one full turn, got %d", cfg.Conversation.MaxMessages),
		})
	}
	if cfg.Conversation.MaxToolIterations < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "conversation.maxToolIterations",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Conversation.MaxToolIterations),
		})
	}

	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Gateway.Port),
		})
	}
	validBinds := []string{"loopback", "lan", "custom"}
	if cfg.Gateway.Bind != "" && !slices.Contains(validBinds, cfg.Gateway.Bind) {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, cfg.Gateway.Bind),
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	return issues
}
