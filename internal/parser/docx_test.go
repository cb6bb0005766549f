package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgallion1/docedit/internal/doctree"
	"github.com/fumiama/go-docx"
)

func buildDOCX(t *testing.T) []byte {
	t.Helper()
	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().AddText("EXECUTIVE SUMMARY")
	doc.AddParagraph()
	mixed := doc.AddParagraph()
	mixed.AddText("Plain ").Bold()
	mixed.AddText("text.")

	tbl := doc.AddTable(2, 2, 0, nil)
	tbl.TableRows[0].TableCells[0].AddParagraph().AddText("Item")
	tbl.TableRows[0].TableCells[1].AddParagraph().AddText("Cost")
	tbl.TableRows[1].TableCells[0].AddParagraph().AddText("Labor")
	tbl.TableRows[1].TableCells[1].AddParagraph().AddText("100")

	doc.AddParagraph().AddText("1. Closing")

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return buf.Bytes()
}

func TestDOCXParser_Structure(t *testing.T) {
	p := &DOCXParser{}
	body, err := p.Parse(bytes.NewReader(buildDOCX(t)), "plan.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		loc  doctree.Location
		want string
	}{
		{doctree.Location{Table: 0, Para: 0}, "EXECUTIVE SUMMARY"},
		{doctree.Location{Table: 0, Para: 1}, ""},
		{doctree.Location{Table: 0, Para: 2}, "Plain text."},
		{doctree.Location{Table: 1, Row: 0, Col: 1}, "Cost"},
		{doctree.Location{Table: 1, Row: 1, Col: 1}, "100"},
		{doctree.Location{Table: 2, Para: 0}, "1. Closing"},
	}
	for _, tt := range tests {
		got, ok := body.At(tt.loc)
		if !ok || got != tt.want {
			t.Errorf("at %v: expected %q, got %q (ok=%v)", tt.loc, tt.want, got, ok)
		}
	}
}

func TestFindDOCXParagraph(t *testing.T) {
	doc, err := OpenDOCX(buildDOCX(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	para := FindDOCXParagraph(doc, doctree.Location{Table: 1, Row: 1, Col: 0})
	if para == nil {
		t.Fatal("expected paragraph in table cell")
	}
	if got := DOCXParagraphText(para); got != "Labor" {
		t.Errorf("expected %q, got %q", "Labor", got)
	}

	if FindDOCXParagraph(doc, doctree.Location{Table: 7}) != nil {
		t.Error("expected nil for missing location")
	}
}

func TestOpenDOCX_Invalid(t *testing.T) {
	_, err := OpenDOCX([]byte("not a zip"))
	if err == nil || !strings.Contains(err.Error(), "parse docx") {
		t.Errorf("expected parse docx error, got %v", err)
	}
}
