package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/docedit/internal/doctree"
)

func paragraphsOf(body doctree.Body) []string {
	var out []string
	for _, table := range body {
		for _, row := range table {
			for _, cell := range row {
				out = append(out, cell...)
			}
		}
	}
	return out
}

func TestTextParser_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextParser{}
	body, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := paragraphsOf(body)
	want := []string{
		"First paragraph line one.\nFirst paragraph line two.",
		"Second paragraph.",
		"Third paragraph.",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("paragraph[%d]: expected %q, got %q", i, w, got[i])
		}
	}
	if len(body) != 1 {
		t.Errorf("expected all paragraphs in one run, got %d tables", len(body))
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	body, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) != 0 {
		t.Errorf("expected empty body, got %d tables", len(body))
	}
}

func TestTextParser_MultipleBlankLines(t *testing.T) {
	p := &TextParser{}
	body, err := p.Parse(strings.NewReader("One\n\n\n\nTwo\n   \nThree"), "gaps.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := paragraphsOf(body)
	if len(got) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d: %q", len(got), got)
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
		editable bool
	}{
		{"report.docx", false, true},
		{"REPORT.DOCX", false, true},
		{"notes.txt", false, false},
		{"readme.md", false, false},
		{"data.csv", false, false},
		{"page.html", false, false},
		{"scan.pdf", false, false},
		{"image.png", true, false},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.filename)
		if (err != nil) != tt.wantErr {
			t.Errorf("ForFile(%q): expected error=%v, got %v", tt.filename, tt.wantErr, err)
		}
		if IsEditable(tt.filename) != tt.editable {
			t.Errorf("IsEditable(%q): expected %v", tt.filename, tt.editable)
		}
		if IsSupportedExtension(tt.filename) == tt.wantErr {
			t.Errorf("IsSupportedExtension(%q): expected %v", tt.filename, !tt.wantErr)
		}
	}
}
