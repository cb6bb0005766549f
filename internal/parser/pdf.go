package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docedit/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. Each page becomes one single-cell table
// holding the page's lines.
type PDFParser struct{}

func (p *PDFParser) Parse(r io.Reader, filename string) (doctree.Body, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	pages, err := extractPDFPages(data)
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	var b doctree.BodyBuilder
	for _, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		b.StartTable()
		for _, line := range strings.Split(page, "\n") {
			b.CellParagraph(0, 0, line)
		}
	}
	return b.Body(), nil
}

func extractPDFPages(data []byte) ([]string, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var pages []string
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}
