package config

import (
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} references in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes env references in credential fields so
// API keys can be stored as ${ENV_VAR} in the config file.
func expandSensitiveFields(cfg *Config) {
	cfg.LLM.APIKey = expandEnvVars(cfg.LLM.APIKey)
	cfg.Search.APIKey = expandEnvVars(cfg.Search.APIKey)
	cfg.Search.EngineID = expandEnvVars(cfg.Search.EngineID)
}

// Load reads the config file, applies defaults and environment overrides,
// and returns a merged Config. A missing file yields defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &Error{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields left empty by a partial config file.
func applyDefaults(cfg *Config) {
	def := Defaults()
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = def.LLM.Provider
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = def.LLM.Model
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = def.LLM.MaxTokens
	}
	if cfg.Search.Depth == 0 {
		cfg.Search.Depth = def.Search.Depth
	}
	if cfg.Search.BlockedDomains == nil {
		cfg.Search.BlockedDomains = def.Search.BlockedDomains
	}
	if cfg.Retrieval.SummaryCharLimit == 0 {
		cfg.Retrieval.SummaryCharLimit = def.Retrieval.SummaryCharLimit
	}
	if cfg.Retrieval.MaxPageTokens == 0 {
		cfg.Retrieval.MaxPageTokens = def.Retrieval.MaxPageTokens
	}
	if cfg.Retrieval.Artifact == "" {
		cfg.Retrieval.Artifact = def.Retrieval.Artifact
	}
	if cfg.Conversation.MaxMessages == 0 {
		cfg.Conversation.MaxMessages = def.Conversation.MaxMessages
	}
	if cfg.Conversation.MaxToolIterations == 0 {
		cfg.Conversation.MaxToolIterations = def.Conversation.MaxToolIterations
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = def.Gateway.Port
	}
	if cfg.Gateway.Bind == "" {
		cfg.Gateway.Bind = def.Gateway.Bind
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = def.Logging.ConsoleStyle
	}
}

// applyEnvOverrides lets environment variables override file values.
// Credentials in particular are commonly supplied this way.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WEBSCOUT_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("WEBSCOUT_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("MISTRAL_API_KEY"); v != "" && cfg.LLM.APIKey == "" && cfg.LLM.Provider == "mistral" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("WEBSCOUT_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("GOOGLE_SEARCH_API"); v != "" && cfg.Search.APIKey == "" {
		cfg.Search.APIKey = v
	}
	if v := os.Getenv("WEBSCOUT_SEARCH_API_KEY"); v != "" {
		cfg.Search.APIKey = v
	}
	if v := os.Getenv("CSE_ID"); v != "" && cfg.Search.EngineID == "" {
		cfg.Search.EngineID = v
	}
	if v := os.Getenv("WEBSCOUT_SEARCH_ENGINE_ID"); v != "" {
		cfg.Search.EngineID = v
	}
	if v := os.Getenv("WEBSCOUT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.Port = port
		}
	}
	if v := os.Getenv("WEBSCOUT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
