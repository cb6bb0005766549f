package indexer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/docedit/internal/doctree"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text  string
		level int
	}{
		{"1. Overview", 1},
		{"1.2. Scope", 2},
		{"2.3.4. Details", 3},
		{"2.3.4 Details without trailing dot", 3},
		{"1.2.3.4.5.6.7. Deep", 6},
		{"EXECUTIVE SUMMARY", 1},
		{"This is a normal sentence.", 0},
		{"Project Summary and scope", 2},
		{"Table of Contents", 2},
		{"In conclusion, we agree.", 2},
		{"1.2.3.", 0},
		{"1.", 0},
		{"2024 budget was approved", 0},
		{"12345", 0},
		{"", 0},
		{"   ", 0},
		{"A B C D E F G H I J K", 0},
		{"1. INTRODUCTION", 1},
		{"3.1. introduction", 2},
	}

	for _, tt := range tests {
		if got := Classify(tt.text); got != tt.level {
			t.Errorf("Classify(%q): expected level %d, got %d", tt.text, tt.level, got)
		}
	}
}

func TestRules_Individually(t *testing.T) {
	tests := []struct {
		rule string
		text string
		want int
	}{
		{"numbered", "4.1 Pricing", 2},
		{"numbered", "Pricing", 0},
		{"uppercase", "PRICING", 1},
		{"uppercase", "Pricing", 0},
		{"uppercase", "123 456", 0},
		{"keyword", "Summary of findings", 2},
		{"keyword", "Findings", 0},
	}

	byName := make(map[string]Rule)
	for _, r := range DefaultRules {
		byName[r.Name] = r
	}
	for _, tt := range tests {
		r, ok := byName[tt.rule]
		if !ok {
			t.Fatalf("rule %q not registered", tt.rule)
		}
		if got := r.Level(tt.text); got != tt.want {
			t.Errorf("%s(%q): expected %d, got %d", tt.rule, tt.text, tt.want, got)
		}
	}
}

func TestClassifyWith_CustomRules(t *testing.T) {
	onlyKeywords := []Rule{{Name: "keyword", Level: keywordLevel}}
	if got := ClassifyWith(onlyKeywords, "1. Overview"); got != 0 {
		t.Errorf("expected custom chain to ignore numbering, got %d", got)
	}
	if got := New(onlyKeywords...).Build(bodyOf("EXECUTIVE SUMMARY")).Paragraphs()[0].Level; got != 2 {
		t.Errorf("expected keyword level 2, got %d", got)
	}
}

func bodyOf(paragraphs ...string) doctree.Body {
	var b doctree.BodyBuilder
	for _, p := range paragraphs {
		b.Paragraph(p)
	}
	return b.Body()
}

func TestBuild_StylesAndBreadcrumbs(t *testing.T) {
	body := bodyOf(
		"Preface text.",
		"1. Overview",
		"Overview body.",
		"1.1. Goals",
		"Goals body.",
		"1.1.1. Detail",
		"1.2. Scope",
		"Scope body.",
		"2. Pricing",
		"Pricing body.",
	)
	ix := Build(body)

	want := []struct {
		text       string
		style      string
		breadcrumb string
	}{
		{"Preface text.", "Normal", "Document Root"},
		{"1. Overview", "Heading 1", "1. Overview"},
		{"Overview body.", "Normal", "1. Overview"},
		{"1.1. Goals", "Heading 2", "1. Overview > 1.1. Goals"},
		{"Goals body.", "Normal", "1. Overview > 1.1. Goals"},
		{"1.1.1. Detail", "Heading 3", "1. Overview > 1.1. Goals > 1.1.1. Detail"},
		{"1.2. Scope", "Heading 2", "1. Overview > 1.2. Scope"},
		{"Scope body.", "Normal", "1. Overview > 1.2. Scope"},
		{"2. Pricing", "Heading 1", "2. Pricing"},
		{"Pricing body.", "Normal", "2. Pricing"},
	}

	got := ix.Paragraphs()
	if len(got) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Text != w.text {
			t.Errorf("paragraph[%d]: expected text %q, got %q", i, w.text, got[i].Text)
		}
		if got[i].Style != w.style {
			t.Errorf("paragraph[%d]: expected style %q, got %q", i, w.style, got[i].Style)
		}
		if got[i].Breadcrumb != w.breadcrumb {
			t.Errorf("paragraph[%d]: expected breadcrumb %q, got %q", i, w.breadcrumb, got[i].Breadcrumb)
		}
	}
}

func TestBuild_BreadcrumbNeverKeepsDeeperOrEqualHeadings(t *testing.T) {
	ix := Build(bodyOf("1. A", "1.1. B", "1.1.1. C", "1.2. D", "text", "2. E", "more"))

	levelOf := make(map[string]int)
	for _, p := range ix.Outline() {
		levelOf[p.Text] = p.Level
	}

	var current int
	for _, p := range ix.Paragraphs() {
		if p.Level > 0 {
			current = p.Level
		}
		crumbs := strings.Split(p.Breadcrumb, " > ")
		for i, c := range crumbs[:len(crumbs)-1] {
			if levelOf[c] >= current {
				t.Errorf("%q: ancestor %q at level %d is not above current level %d", p.Text, c, levelOf[c], current)
			}
			if i > 0 && levelOf[crumbs[i-1]] >= levelOf[c] {
				t.Errorf("%q: breadcrumb out of order: %q", p.Text, p.Breadcrumb)
			}
		}
	}
}

func TestBuild_TruncatesBreadcrumbText(t *testing.T) {
	long := "1. " + strings.Repeat("x", 80)
	ix := Build(bodyOf(long, "body"))
	p := ix.Paragraphs()[1]
	if len([]rune(p.Breadcrumb)) != 50 {
		t.Errorf("expected breadcrumb of 50 runes, got %d: %q", len([]rune(p.Breadcrumb)), p.Breadcrumb)
	}
	if ix.Paragraphs()[0].Text != long {
		t.Error("expected paragraph text to stay untruncated")
	}
}

func TestBuild_TraversalOrderAndAnchors(t *testing.T) {
	var b doctree.BodyBuilder
	b.Paragraph("first")
	b.Paragraph("   ")
	b.Paragraph("third")
	b.StartTable()
	b.CellParagraph(0, 0, "r0c0")
	b.CellParagraph(0, 1, "r0c1")
	b.CellParagraph(1, 0, "r1c0")
	b.Paragraph("tail")

	ix := Build(b.Body())
	got := ix.Paragraphs()

	want := []struct {
		text string
		loc  doctree.Location
	}{
		{"first", doctree.Location{Table: 0, Para: 0}},
		{"third", doctree.Location{Table: 0, Para: 2}},
		{"r0c0", doctree.Location{Table: 1, Row: 0, Col: 0}},
		{"r0c1", doctree.Location{Table: 1, Row: 0, Col: 1}},
		{"r1c0", doctree.Location{Table: 1, Row: 1, Col: 0}},
		{"tail", doctree.Location{Table: 2, Para: 0}},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Text != w.text {
			t.Errorf("paragraph[%d]: expected %q, got %q", i, w.text, got[i].Text)
		}
		if got[i].Anchor != doctree.NewAnchor(w.loc) {
			t.Errorf("paragraph[%d]: expected anchor %v, got %v", i, doctree.NewAnchor(w.loc), got[i].Anchor)
		}
	}
}

func TestBuild_Idempotent(t *testing.T) {
	body := bodyOf("EXECUTIVE SUMMARY", "Intro text.", "1. Scope", "Details.")
	first := Build(body).Paragraphs()
	second := Build(body).Paragraphs()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical indexes, got %+v and %+v", first, second)
	}
}

func TestBuild_EmptyBody(t *testing.T) {
	ix := Build(nil)
	if ix.Len() != 0 {
		t.Errorf("expected empty index, got %d paragraphs", ix.Len())
	}
	if len(ix.Outline()) != 0 {
		t.Errorf("expected empty outline, got %d", len(ix.Outline()))
	}
}
