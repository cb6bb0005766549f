package doctree

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// RootBreadcrumb is the breadcrumb of paragraphs that have no ancestor heading.
const RootBreadcrumb = "Document Root"

// Paragraph is one indexed text unit of a document.
type Paragraph struct {
	Anchor     Anchor `json:"anchor"`
	Breadcrumb string `json:"breadcrumb"`
	Style      string `json:"style"`
	Text       string `json:"text"`
	Level      int    `json:"level"`
}

// StyleForLevel maps a heading level to its style label.
func StyleForLevel(level int) string {
	if level <= 0 {
		return "Normal"
	}
	return fmt.Sprintf("Heading %d", level)
}

// Index is an immutable, ordered snapshot of a document's paragraphs.
type Index struct {
	paragraphs []Paragraph
	byAnchor   map[Anchor]int
}

// NewIndex wraps paragraphs, which must already be in traversal order.
func NewIndex(paragraphs []Paragraph) *Index {
	ix := &Index{
		paragraphs: paragraphs,
		byAnchor:   make(map[Anchor]int, len(paragraphs)),
	}
	for i, p := range paragraphs {
		ix.byAnchor[p.Anchor] = i
	}
	return ix
}

// Len returns the number of paragraphs.
func (ix *Index) Len() int {
	return len(ix.paragraphs)
}

// Paragraphs returns a copy of all paragraphs in traversal order.
func (ix *Index) Paragraphs() []Paragraph {
	out := make([]Paragraph, len(ix.paragraphs))
	copy(out, ix.paragraphs)
	return out
}

// Outline returns the heading paragraphs in order.
func (ix *Index) Outline() []Paragraph {
	out := []Paragraph{}
	for _, p := range ix.paragraphs {
		if p.Level > 0 {
			out = append(out, p)
		}
	}
	return out
}

// FindByAnchor returns the paragraph at a, if it exists in this snapshot.
func (ix *Index) FindByAnchor(a Anchor) (Paragraph, bool) {
	i, ok := ix.byAnchor[a]
	if !ok {
		return Paragraph{}, false
	}
	return ix.paragraphs[i], true
}

// FindByText returns every paragraph whose text contains query.
func (ix *Index) FindByText(query string, caseSensitive bool) []Paragraph {
	if !caseSensitive {
		query = strings.ToLower(query)
	}
	out := []Paragraph{}
	for _, p := range ix.paragraphs {
		text := p.Text
		if !caseSensitive {
			text = strings.ToLower(text)
		}
		if strings.Contains(text, query) {
			out = append(out, p)
		}
	}
	return out
}

// Export writes the index as an indented JSON array.
func (ix *Index) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ix.Paragraphs()); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return nil
}
