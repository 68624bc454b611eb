package retrieval

import (
	"context"
	"fmt"
	"sync"

	"github.com/webscout-ai/webscout/internal/domain"
	"github.com/webscout-ai/webscout/internal/llm"
	"github.com/webscout-ai/webscout/internal/logging"
	"github.com/webscout-ai/webscout/internal/webpage"
)

// Condenser rewrites each evidence item into a short summary focused on
// the query, using a secondary model call per source. A failed summary
// falls back to a hard truncation so one flaky call never drops a source.
type Condenser struct {
	client    llm.Client
	model     string
	charLimit int
	log       *logging.Logger
}

func NewCondenser(client llm.Client, model string, charLimit int, log *logging.Logger) *Condenser {
	if charLimit <= 0 {
		charLimit = 500
	}
	return &Condenser{
		client:    client,
		model:     model,
		charLimit: charLimit,
		log:       log.Sub("condenser"),
	}
}

// Condense summarizes every item in place, concurrently. Item order is
// unchanged.
func (c *Condenser) Condense(ctx context.Context, query string, items []domain.EvidenceItem) {
	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(item *domain.EvidenceItem) {
			defer wg.Done()
			item.Text = c.condenseOne(ctx, query, item)
		}(&items[i])
	}
	wg.Wait()
}

func (c *Condenser) condenseOne(ctx context.Context, query string, item *domain.EvidenceItem) string {
	prompt := fmt.Sprintf(
		"Summarize the following web page content in at most %d characters. "+
			"Keep only information relevant to the question: %q\n\n%s",
		c.charLimit, query, item.Text)

	resp, err := c.client.Complete(ctx, llm.CompletionRequest{
		Model: c.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
		},
	})
	if err != nil || resp.Content == "" {
		c.log.Warn().Err(err).Str("url", item.URL).Msg("condense failed, truncating instead")
		return webpage.Truncate(item.Text, c.charLimit)
	}
	// The same budget applies whether the model cooperated or not.
	return webpage.Truncate(resp.Content, c.charLimit)
}
