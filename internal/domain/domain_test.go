package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMessageStampsTime(t *testing.T) {
	m := NewMessage(RoleUser, "hello")
	assert.Equal(t, RoleUser, m.Role)
	assert.Equal(t, "hello", m.Content)
	assert.False(t, m.Timestamp.IsZero())
}

func TestBundleRenderSectionsInOrder(t *testing.T) {
	b := EvidenceBundle{
		Query: "sky color",
		Items: []EvidenceItem{
			{Order: 1, URL: "https://a.example/one", Text: "first"},
			{Order: 2, URL: "https://b.example/two", Title: "Two", Text: "second"},
		},
	}

	out := b.Render()

	// Each source URL appears exactly once, as a section header, in order.
	assert.Equal(t, 1, strings.Count(out, "Source: https://a.example/one"))
	assert.Equal(t, 1, strings.Count(out, "Source: https://b.example/two"))
	assert.Less(t,
		strings.Index(out, "https://a.example/one"),
		strings.Index(out, "https://b.example/two"))
	assert.Contains(t, out, "Title: Two")
}

func TestBundleRenderEmpty(t *testing.T) {
	assert.Empty(t, EvidenceBundle{}.Render())
}
