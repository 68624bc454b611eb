package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/webscout-ai/webscout/internal/agent"
	"github.com/webscout-ai/webscout/internal/config"
	"github.com/webscout-ai/webscout/internal/llm"
	"github.com/webscout-ai/webscout/internal/logging"
	"github.com/webscout-ai/webscout/internal/retrieval"
	"github.com/webscout-ai/webscout/internal/search"
	"github.com/webscout-ai/webscout/internal/store"
	"github.com/webscout-ai/webscout/internal/webpage"
)

// app holds the assembled runtime pieces shared by serve and ask.
type app struct {
	cfg    config.Config
	runner *agent.Runner
	store  *store.ConversationStore
}

// buildApp loads and validates config, then wires the full pipeline:
// provider registry, search, fetcher, retrieval tool, store, runner.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, err
	}

	issues := config.Validate(&cfg)
	if len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return nil, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}

	if logLevel == "" && cfg.Logging.Level != "" {
		log = logging.New(nil, cfg.Logging.Level, cfg.Logging.ConsoleStyle)
	}

	registry, err := llm.NewRegistryFromConfig(cfg.LLM, log)
	if err != nil {
		return nil, err
	}
	client, err := registry.Resolve(cfg.LLM.Provider)
	if err != nil {
		return nil, err
	}

	searcher, err := search.New(ctx, cfg.Search, log)
	if err != nil {
		return nil, fmt.Errorf("initializing search: %w", err)
	}
	fetcher := webpage.NewFetcher(cfg.Retrieval.MaxPageTokens, log)

	var condenser *retrieval.Condenser
	if cfg.Retrieval.Condense {
		model := cfg.LLM.SummaryModel
		if model == "" {
			model = cfg.LLM.Model
		}
		condenser = retrieval.NewCondenser(client, model, cfg.Retrieval.SummaryCharLimit, log)
	}

	var sink retrieval.ArtifactSink
	switch cfg.Retrieval.Artifact {
	case "file":
		path := cfg.Retrieval.ArtifactPath
		if path == "" {
			path = filepath.Join(paths.Data, "web_results.md")
		}
		sink = retrieval.NewFileSink(path)
	case "memory":
		sink = retrieval.NewMemorySink()
	default:
		sink = retrieval.DiscardSink{}
	}

	tool := retrieval.NewTool(searcher, fetcher, condenser, sink, log)
	tools := agent.NewToolRegistry(tool)

	st := store.New(cfg.Conversation.MaxMessages, log)
	runner := agent.NewRunner(
		agent.Config{
			Model:             cfg.LLM.Model,
			MaxTokens:         cfg.LLM.MaxTokens,
			Temperature:       cfg.LLM.Temperature,
			MaxToolIterations: cfg.Conversation.MaxToolIterations,
		},
		client, st, tools, log)

	log.Info().
		Str("provider", client.Name()).
		Str("model", cfg.LLM.Model).
		Bool("condense", cfg.Retrieval.Condense).
		Msg("agent ready")

	return &app{cfg: cfg, runner: runner, store: st}, nil
}
