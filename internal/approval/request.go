package approval

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgallion1/docedit/internal/llm"
	"github.com/dgallion1/docedit/internal/tools"
)

const previewRunes = 100

// Request is what a human sees before a gated tool call runs.
type Request struct {
	ToolName    string          `json:"tool_name"`
	ToolCallID  string          `json:"tool_call_id"`
	Args        json.RawMessage `json:"args"`
	Description string          `json:"description"`
	Diff        []DiffLine      `json:"diff,omitempty"`
}

// NewRequest describes call for the approver.
func NewRequest(call llm.ToolCall) Request {
	args := json.RawMessage(call.Function.Arguments)
	if !json.Valid(args) {
		args = json.RawMessage("{}")
	}
	return Request{
		ToolName:    call.Function.Name,
		ToolCallID:  call.ID,
		Args:        args,
		Description: Describe(call),
	}
}

// Describe renders a human-readable summary of call.
func Describe(call llm.ToolCall) string {
	if call.Function.Name == tools.ApplyEdit {
		var args struct {
			Anchor  json.RawMessage `json:"anchor"`
			NewText string          `json:"new_text"`
		}
		json.Unmarshal([]byte(call.Function.Arguments), &args)
		anchor := "unknown"
		if len(args.Anchor) > 0 {
			anchor = compactJSON(args.Anchor)
		}
		return fmt.Sprintf("**Edit Operation**\n- Location: %s\n- New text: %s\n\nDo you approve this change? (yes/no)",
			anchor, tools.Truncate(args.NewText, previewRunes))
	}
	return fmt.Sprintf("Approve %s with args: %s? (yes/no)", call.Function.Name, compactJSON([]byte(call.Function.Arguments)))
}

func compactJSON(raw []byte) string {
	var v any
	if json.Unmarshal(raw, &v) != nil {
		return strings.TrimSpace(string(raw))
	}
	out, _ := json.Marshal(v)
	return string(out)
}

// Rejections answers every call in a rejected batch, each keyed by its own
// call id.
func Rejections(calls []llm.ToolCall, reviewed llm.ToolCall) []llm.Message {
	out := make([]llm.Message, 0, len(calls))
	for _, c := range calls {
		text := fmt.Sprintf("Skipped due to user rejection of %s.", reviewed.Function.Name)
		if c.ID == reviewed.ID {
			text = fmt.Sprintf("Operation cancelled by user. The %s operation was not executed.", c.Function.Name)
		}
		out = append(out, llm.ToolMessage(c.ID, c.Function.Name, text))
	}
	return out
}
