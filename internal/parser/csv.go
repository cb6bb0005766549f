package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/docedit/internal/doctree"
)

// CSVParser handles CSV files as a single table, one cell per field.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (doctree.Body, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var b doctree.BodyBuilder
	b.StartTable()
	for row, record := range records {
		for col, field := range record {
			b.CellParagraph(row, col, field)
		}
	}
	return b.Body(), nil
}
