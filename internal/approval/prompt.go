package approval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// PromptApprover asks for approval on a terminal.
type PromptApprover struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPromptApprover(in io.Reader, out io.Writer) *PromptApprover {
	return &PromptApprover{in: bufio.NewReader(in), out: out}
}

func (p *PromptApprover) Approve(ctx context.Context, req Request) (string, error) {
	fmt.Fprintln(p.out, req.Description)
	for _, d := range req.Diff {
		prefix := "  "
		switch d.Type {
		case DiffAdded:
			prefix = "+ "
		case DiffRemoved:
			prefix = "- "
		}
		fmt.Fprintln(p.out, prefix+d.Text)
	}
	fmt.Fprint(p.out, "> ")

	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read response: %w", err)
	}
	return strings.TrimSpace(line), nil
}
