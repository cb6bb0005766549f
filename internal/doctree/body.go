package doctree

// Body is the structural view of a document: tables of rows of cells of
// paragraph texts. A run of top-level paragraphs is represented as a
// single-cell table so every paragraph has a (table, row, col, par) path.
type Body []Table

// Table is a sequence of rows.
type Table []Row

// Row is a sequence of cells.
type Row []Cell

// Cell is a sequence of paragraph texts. Empty paragraphs are kept so
// paragraph ordinals match the underlying document.
type Cell []string

// At returns the paragraph text stored at loc.
func (b Body) At(loc Location) (string, bool) {
	if loc.Table < 0 || loc.Table >= len(b) {
		return "", false
	}
	t := b[loc.Table]
	if loc.Row < 0 || loc.Row >= len(t) {
		return "", false
	}
	r := t[loc.Row]
	if loc.Col < 0 || loc.Col >= len(r) {
		return "", false
	}
	c := r[loc.Col]
	if loc.Para < 0 || loc.Para >= len(c) {
		return "", false
	}
	return c[loc.Para], true
}

// BodyBuilder assembles a Body in traversal order and hands out the
// location of every paragraph it records.
type BodyBuilder struct {
	body  Body
	inRun bool
}

// Paragraph records a top-level paragraph. Consecutive top-level
// paragraphs share one single-cell table.
func (b *BodyBuilder) Paragraph(text string) Location {
	if !b.inRun {
		b.body = append(b.body, Table{Row{Cell{}}})
		b.inRun = true
	}
	t := len(b.body) - 1
	cell := &b.body[t][0][0]
	*cell = append(*cell, text)
	return Location{Table: t, Row: 0, Col: 0, Para: len(*cell) - 1}
}

// StartTable opens a new table and returns its index. Cells are filled
// with CellParagraph.
func (b *BodyBuilder) StartTable() int {
	b.body = append(b.body, Table{})
	b.inRun = false
	return len(b.body) - 1
}

// CellParagraph records a paragraph in cell (row, col) of the table opened
// by the last StartTable call.
func (b *BodyBuilder) CellParagraph(row, col int, text string) Location {
	if len(b.body) == 0 || b.inRun {
		b.StartTable()
	}
	t := len(b.body) - 1
	for len(b.body[t]) <= row {
		b.body[t] = append(b.body[t], Row{})
	}
	for len(b.body[t][row]) <= col {
		b.body[t][row] = append(b.body[t][row], Cell{})
	}
	cell := &b.body[t][row][col]
	*cell = append(*cell, text)
	return Location{Table: t, Row: row, Col: col, Para: len(*cell) - 1}
}

// Body returns the assembled body.
func (b *BodyBuilder) Body() Body {
	return b.body
}
