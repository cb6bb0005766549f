package approval

import (
	"strings"
	"testing"

	"github.com/dgallion1/docedit/internal/llm"
)

func call(id, name, args string) llm.ToolCall {
	return llm.ToolCall{ID: id, Type: "function", Function: llm.FunctionCall{Name: name, Arguments: args}}
}

func TestDescribe_Edit(t *testing.T) {
	got := Describe(call("c1", "apply_edit", `{"anchor": ["body", 0, 0, 0, 5], "new_text": "Short text"}`))
	want := "**Edit Operation**\n- Location: [\"body\",0,0,0,5]\n- New text: Short text\n\nDo you approve this change? (yes/no)"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDescribe_EditTruncatesPreview(t *testing.T) {
	long := strings.Repeat("é", 140)
	got := Describe(call("c1", "apply_edit", `{"anchor":["body",0,0,0,1],"new_text":"`+long+`"}`))
	if !strings.Contains(got, strings.Repeat("é", 100)+"...\n") {
		t.Errorf("expected 100-rune preview with ellipsis, got %q", got)
	}
	if strings.Contains(got, strings.Repeat("é", 101)) {
		t.Error("expected preview capped at 100 runes")
	}
}

func TestDescribe_OtherTools(t *testing.T) {
	got := Describe(call("c1", "insert_content", `{"content": "# New"}`))
	want := `Approve insert_content with args: {"content":"# New"}? (yes/no)`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNewRequest(t *testing.T) {
	req := NewRequest(call("c9", "apply_edit", `not json`))
	if req.ToolName != "apply_edit" || req.ToolCallID != "c9" {
		t.Errorf("unexpected request %+v", req)
	}
	if string(req.Args) != "{}" {
		t.Errorf("expected invalid args replaced with {}, got %s", req.Args)
	}
	if !strings.Contains(req.Description, "Location: unknown") {
		t.Errorf("expected unknown location, got %q", req.Description)
	}
}

func TestRejections(t *testing.T) {
	batch := []llm.ToolCall{
		call("a", "search_document", `{"query":"x"}`),
		call("b", "apply_edit", `{}`),
		call("c", "get_document_outline", `{}`),
	}
	msgs := Rejections(batch, batch[1])
	if len(msgs) != len(batch) {
		t.Fatalf("expected %d messages, got %d", len(batch), len(msgs))
	}
	for i, m := range msgs {
		if m.Role != llm.RoleTool || m.ToolCallID != batch[i].ID {
			t.Errorf("message[%d]: expected tool result for %s, got %+v", i, batch[i].ID, m)
		}
	}
	if msgs[1].Content != "Operation cancelled by user. The apply_edit operation was not executed." {
		t.Errorf("unexpected reviewed message %q", msgs[1].Content)
	}
	if msgs[0].Content != "Skipped due to user rejection of apply_edit." {
		t.Errorf("unexpected sibling message %q", msgs[0].Content)
	}
}

func TestLineDiff(t *testing.T) {
	got := LineDiff("line one\nline two\nline three", "line one\nline 2\nline three")
	want := []DiffLine{
		{DiffContext, "line one"},
		{DiffRemoved, "line two"},
		{DiffAdded, "line 2"},
		{DiffContext, "line three"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line[%d]: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestLineDiff_SingleParagraph(t *testing.T) {
	got := LineDiff("The budget is $10,000.", "The budget is $12,500.")
	if len(got) != 2 || got[0].Type != DiffRemoved || got[1].Type != DiffAdded {
		t.Errorf("expected one removal and one addition, got %+v", got)
	}
}
