package indexer

import (
	"strings"

	"github.com/dgallion1/docedit/internal/doctree"
)

// maxCrumbRunes is how much of a heading's text is kept in breadcrumbs.
const maxCrumbRunes = 50

// Indexer builds Index snapshots from document bodies.
type Indexer struct {
	rules []Rule
}

// New returns an Indexer using rules, or DefaultRules when none are given.
func New(rules ...Rule) *Indexer {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Indexer{rules: rules}
}

// Build indexes body with DefaultRules.
func Build(body doctree.Body) *doctree.Index {
	return New().Build(body)
}

// Build walks body in table, row, column, paragraph order and returns the
// index of its non-empty paragraphs. The result depends only on body.
func (ix *Indexer) Build(body doctree.Body) *doctree.Index {
	var (
		paragraphs []doctree.Paragraph
		stack      headingStack
	)
	for t, table := range body {
		for r, row := range table {
			for c, cell := range row {
				for p, raw := range cell {
					text := strings.TrimSpace(raw)
					if text == "" {
						continue
					}
					level := ClassifyWith(ix.rules, text)
					if level > 0 {
						stack.push(level, text)
					}
					paragraphs = append(paragraphs, doctree.Paragraph{
						Anchor:     doctree.NewAnchor(doctree.Location{Table: t, Row: r, Col: c, Para: p}),
						Breadcrumb: stack.breadcrumb(),
						Style:      doctree.StyleForLevel(level),
						Text:       text,
						Level:      level,
					})
				}
			}
		}
	}
	return doctree.NewIndex(paragraphs)
}

type headingEntry struct {
	level int
	text  string
}

type headingStack []headingEntry

// push drops every entry at or below level's depth, then records the heading.
func (s *headingStack) push(level int, text string) {
	st := *s
	for len(st) > 0 && st[len(st)-1].level >= level {
		st = st[:len(st)-1]
	}
	*s = append(st, headingEntry{level: level, text: truncateRunes(text, maxCrumbRunes)})
}

func (s headingStack) breadcrumb() string {
	if len(s) == 0 {
		return doctree.RootBreadcrumb
	}
	parts := make([]string, len(s))
	for i, h := range s {
		parts[i] = h.text
	}
	return strings.Join(parts, " > ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
