// Package webpage implements the content normalizer: it fetches raw pages
// and reduces them to clean, model-friendly markdown text.
package webpage

import (
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// chromeSelectors matches non-content markup stripped before extraction.
const chromeSelectors = "script, style, noscript, iframe, nav, header, footer, aside, form"

// Extract reduces an HTML document to markdown text. Main-article content
// is isolated when the page provides a structural hint (<main>, then
// <article>), falling back to the whole body otherwise.
func Extract(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find(chromeSelectors).Remove()

	sel := doc.Find("main")
	if sel.Length() == 0 {
		sel = doc.Find("article")
	}
	if sel.Length() == 0 {
		sel = doc.Selection
	}

	conv := md.NewConverter("", true, nil)
	text := conv.Convert(sel)
	return strings.TrimSpace(text), nil
}

// Title returns the document title, or an empty string.
func Title(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// Truncate clips text to at most limit bytes without splitting a UTF-8
// rune. A limit of zero or less means no cap.
func Truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}
