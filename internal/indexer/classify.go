package indexer

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxHeadingLevel caps computed heading levels.
const MaxHeadingLevel = 6

// Rule is one heading heuristic. Level returns 0 when the rule does not
// apply to text.
type Rule struct {
	Name  string
	Level func(text string) int
}

// DefaultRules is the heading classification chain, evaluated in order.
// A numbered line wins over case and keyword heuristics.
var DefaultRules = []Rule{
	{Name: "numbered", Level: numberedLevel},
	{Name: "uppercase", Level: uppercaseLevel},
	{Name: "keyword", Level: keywordLevel},
}

// Classify returns the heading level of text under DefaultRules.
func Classify(text string) int {
	return ClassifyWith(DefaultRules, text)
}

// ClassifyWith returns the level from the first matching rule, or 0.
func ClassifyWith(rules []Rule, text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	for _, r := range rules {
		if level := r.Level(text); level > 0 {
			return min(level, MaxHeadingLevel)
		}
	}
	return 0
}

// "1. Overview", "1.2. Scope", "2.3.4 Details". Whitespace and content
// must follow the prefix.
var numberedRe = regexp.MustCompile(`^(\d+(?:\.\d+)*)(\.?)\s+\S`)

func numberedLevel(text string) int {
	m := numberedRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	groups := strings.Count(m[1], ".") + 1
	if groups == 1 && m[2] == "" {
		// A bare number ("2024 budget") is not a dotted prefix.
		return 0
	}
	return groups
}

const maxUppercaseTokens = 10

func uppercaseLevel(text string) int {
	if len(strings.Fields(text)) > maxUppercaseTokens {
		return 0
	}
	cased := false
	for _, r := range text {
		switch {
		case unicode.IsLower(r), unicode.IsTitle(r):
			return 0
		case unicode.IsUpper(r):
			cased = true
		}
	}
	if !cased {
		return 0
	}
	return 1
}

var headingKeywords = []string{"table of contents", "summary", "introduction", "conclusion"}

func keywordLevel(text string) int {
	lower := strings.ToLower(text)
	for _, kw := range headingKeywords {
		if strings.Contains(lower, kw) {
			return 2
		}
	}
	return 0
}
