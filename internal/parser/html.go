package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docedit/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Block elements become top-level
// paragraphs; <table> elements keep their row and cell structure.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (doctree.Body, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var b doctree.BodyBuilder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer", "header", "head":
				return
			case "table":
				addTable(&b, n)
				return
			case "p", "li", "blockquote", "pre", "h1", "h2", "h3", "h4", "h5", "h6", "dt", "dd", "caption":
				if t := textContent(n); t != "" {
					b.Paragraph(t)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findElement(doc, "body"); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return b.Body(), nil
}

// addTable records every row of table (including rows inside thead/tbody)
// with one paragraph per cell. Nested tables are flattened into their cell.
func addTable(b *doctree.BodyBuilder, table *html.Node) {
	b.StartTable()
	row := 0
	var walkRows func(*html.Node)
	walkRows = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead", "tbody", "tfoot":
				walkRows(c)
			case "tr":
				col := 0
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
						b.CellParagraph(row, col, textContent(cell))
						col++
					}
				}
				row++
			}
		}
	}
	walkRows(table)
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
