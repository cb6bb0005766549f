package docstore

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/dgallion1/docedit/internal/doctree"
	"github.com/dgallion1/docedit/internal/parser"
	"github.com/fumiama/go-docx"
)

const (
	emuPerInch = 914400
	// DefaultImageWidth is the width of inserted images when none is given.
	DefaultImageWidth = 4.0
	titleSize         = "36" // half-points
)

// paragraph styles applied to appended blocks.
var blockStyles = map[BlockKind]string{
	KindHeading1: "Heading1",
	KindHeading2: "Heading2",
	KindHeading3: "Heading3",
	KindBullet:   "ListBullet",
}

// DOCXStore reads and edits a Word document held in a Blob. Every write
// parses the current bytes, mutates them and persists the result before
// returning.
type DOCXStore struct {
	blob Blob
	mu   sync.Mutex
}

func NewDOCXStore(blob Blob) *DOCXStore {
	return &DOCXStore{blob: blob}
}

func (s *DOCXStore) Load(ctx context.Context) (doctree.Body, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	return parser.DOCXBody(doc), nil
}

func (s *DOCXStore) ReplaceParagraph(ctx context.Context, loc doctree.Location, expected, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.open(ctx)
	if err != nil {
		return err
	}
	para := parser.FindDOCXParagraph(doc, loc)
	if para == nil {
		return fmt.Errorf("replace paragraph at %v: %w", loc, ErrNotFound)
	}
	if parser.DOCXParagraphText(para) != expected {
		return fmt.Errorf("replace paragraph at %v: %w", loc, ErrStale)
	}
	setParagraphText(para, text)
	return s.save(ctx, doc)
}

func (s *DOCXStore) AppendParagraphs(ctx context.Context, blocks []Block) error {
	if len(blocks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.open(ctx)
	if err != nil {
		return err
	}
	for _, b := range blocks {
		appendBlock(doc, b)
	}
	keepSectionLast(doc)
	return s.save(ctx, doc)
}

// AppendImage adds img in its own paragraph, scaled to widthInches while
// keeping its aspect ratio.
func (s *DOCXStore) AppendImage(ctx context.Context, img []byte, widthInches float64) error {
	if widthInches <= 0 {
		widthInches = DefaultImageWidth
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.open(ctx)
	if err != nil {
		return err
	}
	para := doc.AddParagraph()
	run, err := para.AddInlineDrawing(img)
	if err != nil {
		doc.Document.Body.Items = doc.Document.Body.Items[:len(doc.Document.Body.Items)-1]
		return fmt.Errorf("add image: %w", err)
	}
	for _, child := range run.Children {
		d, ok := child.(*docx.Drawing)
		if !ok || d.Inline == nil || d.Inline.Extent == nil || d.Inline.Extent.CX == 0 {
			continue
		}
		w := int64(widthInches * emuPerInch)
		h := d.Inline.Extent.CY * w / d.Inline.Extent.CX
		d.Inline.Size(w, h)
	}
	keepSectionLast(doc)
	return s.save(ctx, doc)
}

func (s *DOCXStore) open(ctx context.Context) (*docx.Docx, error) {
	data, err := s.blob.Read(ctx)
	if err != nil {
		return nil, err
	}
	return parser.OpenDOCX(data)
}

func (s *DOCXStore) save(ctx context.Context, doc *docx.Docx) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode docx: %w", err)
	}
	if err := s.blob.Write(ctx, buf.Bytes()); err != nil {
		return fmt.Errorf("save %s: %w", s.blob.Name(), err)
	}
	return nil
}

// setParagraphText replaces the paragraph's runs with a single run carrying
// text, keeping the formatting of the first original run.
func setParagraphText(para *docx.Paragraph, text string) {
	var props *docx.RunProperties
	for _, child := range para.Children {
		if r, ok := child.(*docx.Run); ok && r.RunProperties != nil {
			props = r.RunProperties
			break
		}
	}
	para.Children = para.Children[:0]
	run := para.AddText(text)
	if props != nil {
		run.RunProperties = props
	}
}

func appendBlock(doc *docx.Docx, b Block) {
	para := doc.AddParagraph()
	if style, ok := blockStyles[b.Kind]; ok {
		para.Style(style)
	}
	run := para.AddText(b.Text)
	switch b.Kind {
	case KindBold:
		run.Bold()
	case KindItalic:
		run.Italic()
	case KindTitle:
		run.Bold().Size(titleSize)
		doc.AddParagraph()
	}
}

// keepSectionLast moves the body's section properties behind any items
// appended after them.
func keepSectionLast(doc *docx.Docx) {
	items := doc.Document.Body.Items
	for i, item := range items {
		if _, ok := item.(*docx.SectPr); ok && i != len(items)-1 {
			rest := append(items[:i:i], items[i+1:]...)
			doc.Document.Body.Items = append(rest, item)
			return
		}
	}
}
