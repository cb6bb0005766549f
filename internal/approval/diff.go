package approval

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	DiffContext = "context"
	DiffAdded   = "added"
	DiffRemoved = "removed"
)

// DiffLine is one line of a before/after comparison.
type DiffLine struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// LineDiff compares before and after line by line.
func LineDiff(before, after string) []DiffLine {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []DiffLine
	for _, d := range diffs {
		typ := DiffContext
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			typ = DiffAdded
		case diffmatchpatch.DiffDelete:
			typ = DiffRemoved
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, DiffLine{Type: typ, Text: strings.TrimSuffix(line, "\n")})
		}
	}
	return out
}
