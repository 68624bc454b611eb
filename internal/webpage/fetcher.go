package webpage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/webscout-ai/webscout/internal/logging"
)

const (
	// fetchTimeout is the per-page deadline.
	fetchTimeout = 10 * time.Second

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 10 * 1024 * 1024

	// userAgent mimics a browser; many sites refuse obvious bots.
	userAgent = "Mozilla/5.0 (compatible; WebScout/1.0)"
)

// Page is the normalized result for one fetched URL.
type Page struct {
	URL   string
	Title string
	Text  string
}

// Fetcher retrieves pages and runs extraction on them.
type Fetcher struct {
	client   *http.Client
	maxChars int
	log      *logging.Logger
}

// NewFetcher creates a fetcher. maxPageTokens bounds each page's extracted
// text at maxPageTokens*4 characters, a rough token-to-character ratio;
// zero disables the cap.
func NewFetcher(maxPageTokens int, log *logging.Logger) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: fetchTimeout},
		maxChars: maxPageTokens * 4,
		log:      log.Sub("webpage"),
	}
}

// FetchOne fetches a single URL and returns its extracted text, truncated
// to the configured character budget.
func (f *Fetcher) FetchOne(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}

	text, err := Extract(string(body))
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", url, err)
	}

	return Truncate(text, f.maxChars), nil
}

// FetchAll fetches URLs concurrently and reassembles the extracted pages
// in the original URL order, which keeps citation numbering stable. A
// single page's failure is logged and skipped; it never aborts the batch.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []Page {
	type slot struct {
		page Page
		ok   bool
	}
	slots := make([]slot, len(urls))

	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				f.log.Warn().Err(err).Str("url", url).Msg("skipping page")
				return
			}
			req.Header.Set("User-Agent", userAgent)

			resp, err := f.client.Do(req)
			if err != nil {
				f.log.Warn().Err(err).Str("url", url).Msg("skipping page")
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				f.log.Warn().Int("status", resp.StatusCode).Str("url", url).Msg("skipping page")
				return
			}

			body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			if err != nil {
				f.log.Warn().Err(err).Str("url", url).Msg("skipping page")
				return
			}

			html := string(body)
			text, err := Extract(html)
			if err != nil {
				f.log.Warn().Err(err).Str("url", url).Msg("skipping unparseable page")
				return
			}

			slots[i] = slot{
				page: Page{URL: url, Title: Title(html), Text: Truncate(text, f.maxChars)},
				ok:   true,
			}
		}(i, url)
	}
	wg.Wait()

	pages := make([]Page, 0, len(urls))
	for _, s := range slots {
		if s.ok {
			pages = append(pages, s.page)
		}
	}
	return pages
}
