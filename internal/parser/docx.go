package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docedit/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (doctree.Body, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := OpenDOCX(data)
	if err != nil {
		return nil, err
	}
	return DOCXBody(doc), nil
}

// OpenDOCX parses an in-memory .docx file.
func OpenDOCX(data []byte) (*docx.Docx, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}
	return doc, nil
}

// WalkDOCX visits every paragraph of doc in traversal order together with
// its structural location. Top-level paragraph runs become single-cell
// tables; nested tables inside cells are skipped.
func WalkDOCX(doc *docx.Docx, fn func(loc doctree.Location, para *docx.Paragraph)) doctree.Body {
	var b doctree.BodyBuilder
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			fn(b.Paragraph(DOCXParagraphText(it)), it)
		case *docx.Table:
			b.StartTable()
			for r, row := range it.TableRows {
				for c, cell := range row.TableCells {
					for _, para := range cell.Paragraphs {
						fn(b.CellParagraph(r, c, DOCXParagraphText(para)), para)
					}
				}
			}
		}
	}
	return b.Body()
}

// DOCXBody returns the structural body of doc.
func DOCXBody(doc *docx.Docx) doctree.Body {
	return WalkDOCX(doc, func(doctree.Location, *docx.Paragraph) {})
}

// FindDOCXParagraph returns the paragraph at loc, or nil.
func FindDOCXParagraph(doc *docx.Docx, loc doctree.Location) *docx.Paragraph {
	var found *docx.Paragraph
	WalkDOCX(doc, func(l doctree.Location, para *docx.Paragraph) {
		if found == nil && l == loc {
			found = para
		}
	})
	return found
}

// DOCXParagraphText returns the trimmed plain text of a paragraph.
func DOCXParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			writeRunText(&buf, c)
		case *docx.Hyperlink:
			writeRunText(&buf, &c.Run)
		}
	}
	return strings.TrimSpace(buf.String())
}

func writeRunText(buf *strings.Builder, run *docx.Run) {
	for _, rc := range run.Children {
		switch t := rc.(type) {
		case *docx.Text:
			buf.WriteString(t.Text)
		case *docx.Tab:
			buf.WriteByte('\t')
		case *docx.BarterRabbet:
			buf.WriteByte('\n')
		}
	}
}
