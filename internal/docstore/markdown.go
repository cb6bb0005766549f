package docstore

import "strings"

// ConvertMarkdown turns a restricted Markdown subset into blocks, one per
// non-empty line. Rules apply in order: "# ", "## ", "### " headings, lines
// containing "**" (bold), lines containing "*" (italic), "- " or "* "
// bullets, then normal text. Emphasis markers are removed, so "* item"
// becomes italic rather than a bullet.
func ConvertMarkdown(content string) []Block {
	var blocks []Block
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "# "):
			blocks = append(blocks, Block{Kind: KindHeading1, Text: line[2:]})
		case strings.HasPrefix(line, "## "):
			blocks = append(blocks, Block{Kind: KindHeading2, Text: line[3:]})
		case strings.HasPrefix(line, "### "):
			blocks = append(blocks, Block{Kind: KindHeading3, Text: line[4:]})
		case strings.Contains(line, "**"):
			blocks = append(blocks, Block{Kind: KindBold, Text: strings.ReplaceAll(line, "**", "")})
		case strings.Contains(line, "*"):
			blocks = append(blocks, Block{Kind: KindItalic, Text: strings.ReplaceAll(line, "*", "")})
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			blocks = append(blocks, Block{Kind: KindBullet, Text: line[2:]})
		default:
			blocks = append(blocks, Block{Kind: KindNormal, Text: line})
		}
	}
	return blocks
}

// SectionBlocks converts content and, when title is non-empty, prepends a
// title block.
func SectionBlocks(content, title string) []Block {
	blocks := ConvertMarkdown(content)
	if title = strings.TrimSpace(title); title != "" {
		blocks = append([]Block{{Kind: KindTitle, Text: title}}, blocks...)
	}
	return blocks
}
