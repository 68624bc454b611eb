// Package search implements the evidence source adapter: a Google Custom
// Search client with post-filtering for domains that block automated
// fetching.
package search

import (
	"context"
	"strings"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/webscout-ai/webscout/internal/config"
	"github.com/webscout-ai/webscout/internal/domain"
	"github.com/webscout-ai/webscout/internal/logging"
)

// maxResults is the hard per-call cap the Custom Search API accepts.
const maxResults = 10

// searchTimeout bounds a single search call.
const searchTimeout = 10 * time.Second

// Service queries Google Custom Search and filters the results.
type Service struct {
	cse        *customsearch.Service
	engineID   string
	depth      int
	siteFilter string
	blocked    []string
	log        *logging.Logger
}

// New creates a search service from config. Extra client options are
// appended after the API key option; tests use them to point the client
// at a local server.
func New(ctx context.Context, cfg config.SearchConfig, log *logging.Logger, opts ...option.ClientOption) (*Service, error) {
	clientOpts := make([]option.ClientOption, 0, len(opts)+1)
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	}
	clientOpts = append(clientOpts, opts...)

	cse, err := customsearch.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, err
	}

	depth := cfg.Depth
	if depth < 1 {
		depth = maxResults
	}

	return &Service{
		cse:        cse,
		engineID:   cfg.EngineID,
		depth:      depth,
		siteFilter: cfg.SiteFilter,
		blocked:    cfg.BlockedDomains,
		log:        log.Sub("search"),
	}, nil
}

// Search runs a web search and returns filtered, URL-deduplicated results
// in API order. Any transport or API failure degrades to an empty result
// set with a logged warning; the caller never sees an error and no retry
// is attempted.
func (s *Service) Search(ctx context.Context, query string) []domain.SearchResult {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	n := s.depth
	if n > maxResults {
		n = maxResults
	}

	resp, err := s.cse.Cse.List().
		Q(query).
		Cx(s.engineID).
		Num(int64(n)).
		Context(ctx).
		Do()
	if err != nil {
		s.log.Warn().Err(err).Str("query", query).Msg("web search failed, returning no results")
		return nil
	}

	results := make([]domain.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Link == "" {
			continue
		}
		results = append(results, domain.SearchResult{
			URL:     item.Link,
			Title:   item.Title,
			Snippet: item.Snippet,
		})
	}

	filtered := Filter(results, s.siteFilter, s.blocked)
	s.log.Info().
		Str("query", query).
		Int("raw", len(results)).
		Int("kept", len(filtered)).
		Msg("search completed")
	return filtered
}

// Filter applies the site filter, the blocked-domain denylist, and URL
// deduplication, preserving first-seen order. Denylisted domains block
// automated fetching and must never reach the fetch set.
func Filter(results []domain.SearchResult, siteFilter string, blocked []string) []domain.SearchResult {
	seen := make(map[string]bool, len(results))
	out := make([]domain.SearchResult, 0, len(results))

	for _, r := range results {
		if siteFilter != "" && !strings.Contains(r.URL, siteFilter) {
			continue
		}
		if isBlocked(r.URL, blocked) {
			continue
		}
		if seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		out = append(out, r)
	}
	return out
}

func isBlocked(url string, blocked []string) bool {
	lower := strings.ToLower(url)
	for _, domain := range blocked {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}
