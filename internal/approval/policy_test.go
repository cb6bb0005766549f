package approval

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPolicy_Approves(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		response string
		want     bool
	}{
		{"  YES  ", true},
		{"y", true},
		{"Approve", true},
		{"approved", true},
		{"TRUE", true},
		{"no", false},
		{"yeah", false},
		{"", false},
		{"yes please", false},
	}
	for _, tt := range tests {
		if got := p.Approves(tt.response); got != tt.want {
			t.Errorf("Approves(%q): expected %v, got %v", tt.response, tt.want, got)
		}
	}
}

func TestPolicy_RequiresApproval(t *testing.T) {
	p := DefaultPolicy()
	for _, name := range []string{"apply_edit", "insert_content", "insert_image"} {
		if !p.RequiresApproval(name) {
			t.Errorf("expected %s to require approval", name)
		}
	}
	for _, name := range []string{"index_document", "search_document", "get_paragraph", "update_toc"} {
		if p.RequiresApproval(name) {
			t.Errorf("expected %s to run without approval", name)
		}
	}
}

func TestLoadPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	yaml := "write_tools:\n  - apply_edit\naffirmative:\n  - \" OK \"\n  - Ship It\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.RequiresApproval("insert_content") {
		t.Error("expected insert_content dropped from write tools")
	}
	if !p.Approves("ok") || !p.Approves("ship it") {
		t.Errorf("expected custom affirmatives, got %v", p.Affirmative)
	}
	if p.Approves("yes") {
		t.Error("expected default affirmatives replaced")
	}
}

func TestLoadPolicy_Defaults(t *testing.T) {
	p, err := LoadPolicy("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.WriteTools) != 3 || len(p.Affirmative) != 5 {
		t.Errorf("expected default policy, got %+v", p)
	}

	if _, err := LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
