package tools

import (
	"encoding/json"

	"github.com/dgallion1/docedit/internal/doctree"
)

// Failure is the result of any tool that could not complete.
type Failure struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Anchor  json.RawMessage `json:"anchor,omitempty"`
}

type IndexResult struct {
	Success         bool                `json:"success"`
	TotalParagraphs int                 `json:"total_paragraphs"`
	TotalHeadings   int                 `json:"total_headings"`
	Outline         []doctree.Paragraph `json:"outline"`
	Message         string              `json:"message"`
	ExportedTo      string              `json:"exported_to,omitempty"`
}

type EditResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Anchor  json.RawMessage `json:"anchor"`
	NewText string          `json:"new_text"`
}

type SearchResult struct {
	Matches []doctree.Paragraph `json:"matches"`
	Count   int                 `json:"count"`
	Query   string              `json:"query"`
}

type OutlineResult struct {
	Headings []doctree.Paragraph `json:"headings"`
	Count    int                 `json:"count"`
}

type TOCEntry struct {
	Level  int            `json:"level"`
	Text   string         `json:"text"`
	Anchor doctree.Anchor `json:"anchor"`
	Indent string         `json:"indent"`
}

type TOC struct {
	Title   string     `json:"title"`
	Entries []TOCEntry `json:"entries"`
}

type TOCResult struct {
	Success      bool   `json:"success"`
	TOC          TOC    `json:"toc"`
	TotalEntries int    `json:"total_entries"`
	Message      string `json:"message"`
}

type InsertResult struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	ContentLength   int    `json:"content_length"`
	ParagraphsAdded int    `json:"paragraphs_added"`
}

type ImageResult struct {
	Success     bool    `json:"success"`
	Message     string  `json:"message"`
	ImagePath   string  `json:"image_path"`
	WidthInches float64 `json:"width_inches"`
}
