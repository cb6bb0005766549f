// Package approval gates mutating tool calls behind a human decision and
// drives the model/tool loop as a two-phase, resumable state machine.
package approval

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy decides which tools need approval and which answers approve them.
type Policy struct {
	WriteTools  []string `yaml:"write_tools"`
	Affirmative []string `yaml:"affirmative"`
}

// DefaultPolicy gates every tool that changes the document.
func DefaultPolicy() Policy {
	return Policy{
		WriteTools:  []string{"apply_edit", "insert_content", "insert_image"},
		Affirmative: []string{"yes", "y", "approve", "approved", "true"},
	}
}

// LoadPolicy reads a YAML policy file. Omitted lists keep their defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy: %w", err)
	}
	var file Policy
	if err := yaml.Unmarshal(data, &file); err != nil {
		return p, fmt.Errorf("parse policy: %w", err)
	}
	if len(file.WriteTools) > 0 {
		p.WriteTools = file.WriteTools
	}
	if len(file.Affirmative) > 0 {
		p.Affirmative = make([]string, 0, len(file.Affirmative))
		for _, a := range file.Affirmative {
			p.Affirmative = append(p.Affirmative, Normalize(a))
		}
	}
	return p, nil
}

// RequiresApproval reports whether tool is in the write-tool set.
func (p Policy) RequiresApproval(tool string) bool {
	return slices.Contains(p.WriteTools, tool)
}

// Approves reports whether a human response is affirmative.
func (p Policy) Approves(response string) bool {
	return slices.Contains(p.Affirmative, Normalize(response))
}

// Normalize case-folds and trims a response.
func Normalize(response string) string {
	return strings.ToLower(strings.TrimSpace(response))
}
