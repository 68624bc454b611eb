package domain

import (
	"fmt"
	"strings"
)

// SearchResult is one hit from the web search capability.
type SearchResult struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// EvidenceItem is the normalized text for one successfully fetched result.
// Order is the 1-based position within the retrieval call and drives stable
// citation numbering.
type EvidenceItem struct {
	Order int    `json:"order"`
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// EvidenceBundle is the ordered evidence for one retrieval call.
type EvidenceBundle struct {
	Query string         `json:"query"`
	Items []EvidenceItem `json:"items"`
}

// Render serializes the bundle into a single text blob for inclusion in a
// model prompt. Each item becomes a section prefixed with its source URL,
// in item order.
func (b EvidenceBundle) Render() string {
	var sb strings.Builder
	for _, item := range b.Items {
		fmt.Fprintf(&sb, "Source: %s\n\n", item.URL)
		if item.Title != "" {
			fmt.Fprintf(&sb, "Title: %s\n\n", item.Title)
		}
		sb.WriteString(item.Text)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}
