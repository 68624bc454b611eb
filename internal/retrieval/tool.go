// Package retrieval implements the web evidence pipeline behind the
// retrieve_web_content tool: search, concurrent page fetch, extraction,
// optional condensation, and artifact persistence.
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/webscout-ai/webscout/internal/domain"
	"github.com/webscout-ai/webscout/internal/logging"
	"github.com/webscout-ai/webscout/internal/webpage"
)

// NoResultsSentinel is returned verbatim when a search produces no usable
// URLs. The system prompt tells the model how to react to it.
const NoResultsSentinel = "No URLs found from web search."

// ToolName is the name the model calls the pipeline by.
const ToolName = "retrieve_web_content"

const toolDescription = "Search the web for current information and return " +
	"the extracted text content of the top results. Use this whenever the " +
	"user asks about recent events, facts you are unsure of, or anything " +
	"that benefits from up-to-date sources."

const toolInputSchema = `{
  "type": "object",
  "properties": {
    "query": {
      "type": "string",
      "description": "The web search query."
    }
  },
  "required": ["query"]
}`

// Searcher yields filtered search results for a query.
type Searcher interface {
	Search(ctx context.Context, query string) []domain.SearchResult
}

// PageFetcher fetches and extracts a set of pages.
type PageFetcher interface {
	FetchAll(ctx context.Context, urls []string) []webpage.Page
}

// Tool runs the full retrieval pipeline for one query.
type Tool struct {
	searcher  Searcher
	fetcher   PageFetcher
	condenser *Condenser
	sink      ArtifactSink
	log       *logging.Logger
}

// NewTool wires the pipeline. condenser may be nil to skip condensation;
// sink may be nil to skip artifact persistence.
func NewTool(searcher Searcher, fetcher PageFetcher, condenser *Condenser, sink ArtifactSink, log *logging.Logger) *Tool {
	if sink == nil {
		sink = DiscardSink{}
	}
	return &Tool{
		searcher:  searcher,
		fetcher:   fetcher,
		condenser: condenser,
		sink:      sink,
		log:       log.Sub("retrieval"),
	}
}

func (t *Tool) Name() string        { return ToolName }
func (t *Tool) Description() string { return toolDescription }
func (t *Tool) InputSchema() string { return toolInputSchema }

type toolInput struct {
	Query string `json:"query"`
}

// Execute runs search, fetch, condense and persist for the given JSON
// input and returns the rendered evidence text the model will see.
func (t *Tool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var in toolInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid tool input: %w", err)
	}
	if in.Query == "" {
		return "", fmt.Errorf("tool input is missing the query field")
	}
	return t.Retrieve(ctx, in.Query)
}

// Retrieve runs the pipeline for a plain query string.
func (t *Tool) Retrieve(ctx context.Context, query string) (string, error) {
	results := t.searcher.Search(ctx, query)
	if len(results) == 0 {
		t.log.Info().Str("query", query).Msg("no URLs to fetch")
		return NoResultsSentinel, nil
	}

	urls := make([]string, len(results))
	titles := make(map[string]string, len(results))
	for i, r := range results {
		urls[i] = r.URL
		titles[r.URL] = r.Title
	}

	pages := t.fetcher.FetchAll(ctx, urls)
	if len(pages) == 0 {
		t.log.Warn().Str("query", query).Msg("every page fetch failed")
		return NoResultsSentinel, nil
	}

	bundle := domain.EvidenceBundle{Query: query}
	for i, p := range pages {
		title := p.Title
		if title == "" {
			title = titles[p.URL]
		}
		bundle.Items = append(bundle.Items, domain.EvidenceItem{
			Order: i + 1,
			URL:   p.URL,
			Title: title,
			Text:  p.Text,
		})
	}

	if t.condenser != nil {
		t.condenser.Condense(ctx, query, bundle.Items)
	}

	rendered := bundle.Render()
	if err := t.sink.Persist(rendered); err != nil {
		t.log.Warn().Err(err).Msg("failed to persist evidence artifact")
	}

	t.log.Info().
		Str("query", query).
		Int("sources", len(bundle.Items)).
		Msg("retrieval completed")
	return rendered, nil
}
