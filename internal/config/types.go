package config

// Config is the root configuration for WebScout.
type Config struct {
	LLM          LLMConfig          `yaml:"llm,omitempty"`
	Search       SearchConfig       `yaml:"search,omitempty"`
	Retrieval    RetrievalConfig    `yaml:"retrieval,omitempty"`
	Conversation ConversationConfig `yaml:"conversation,omitempty"`
	Gateway      GatewayConfig      `yaml:"gateway,omitempty"`
	Logging      LoggingConfig      `yaml:"logging,omitempty"`
}

// LLMConfig selects and configures the model inference provider.
type LLMConfig struct {
	Provider     string   `yaml:"provider,omitempty"` // "gemini" | "mistral"
	APIKey       string   `yaml:"apiKey,omitempty"`
	Model        string   `yaml:"model,omitempty"`
	SummaryModel string   `yaml:"summaryModel,omitempty"` // model for per-source condensation; defaults to Model
	MaxTokens    int      `yaml:"maxTokens,omitempty"`
	Temperature  *float64 `yaml:"temperature,omitempty"`
}

// SearchConfig configures the Google Custom Search adapter.
type SearchConfig struct {
	APIKey         string   `yaml:"apiKey,omitempty"`
	EngineID       string   `yaml:"engineId,omitempty"`
	Depth          int      `yaml:"depth,omitempty"`      // requested result count, hard-capped at 10
	SiteFilter     string   `yaml:"siteFilter,omitempty"` // optional substring restriction
	BlockedDomains []string `yaml:"blockedDomains,omitempty"`
}

// RetrievalConfig controls the retrieval tool's shaping of evidence.
type RetrievalConfig struct {
	Condense         bool   `yaml:"condense,omitempty"`         // per-source model summarization
	SummaryCharLimit int    `yaml:"summaryCharLimit,omitempty"` // char budget per condensed source
	MaxPageTokens    int    `yaml:"maxPageTokens,omitempty"`    // per-page extract budget, chars = 4x
	Artifact         string `yaml:"artifact,omitempty"`         // "file" | "memory" | "none"
	ArtifactPath     string `yaml:"artifactPath,omitempty"`
}

// ConversationConfig bounds conversation memory and the tool loop.
type ConversationConfig struct {
	MaxMessages       int `yaml:"maxMessages,omitempty"`       // history cap before full clear
	MaxToolIterations int `yaml:"maxToolIterations,omitempty"` // decide/act cycles per turn
}

// GatewayConfig controls the HTTP/WebSocket server.
type GatewayConfig struct {
	Port           int      `yaml:"port,omitempty"`
	Bind           string   `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string   `yaml:"customBindHost,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"`        // "silent".."trace"
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}
