package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docedit/internal/doctree"
)

// TextParser handles plain text files. Blank lines separate paragraphs.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (doctree.Body, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var b doctree.BodyBuilder
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				b.Paragraph(current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		b.Paragraph(current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.Body(), nil
}
