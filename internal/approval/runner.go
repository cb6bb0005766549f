package approval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docedit/internal/llm"
	"github.com/dgallion1/docedit/internal/metrics"
	"github.com/dgallion1/docedit/internal/tools"
)

const (
	DefaultMaxSteps = 25

	// ApologyMessage replaces a reply that still asks for tools when no
	// steps remain.
	ApologyMessage = "Sorry, I could not find an answer to your question in the specified number of steps."
)

// Status is the state a run stopped in.
type Status string

const (
	StatusCompleted        Status = "completed"
	StatusAwaitingApproval Status = "awaiting_approval"
)

// Executor runs tool calls against a workspace.
type Executor interface {
	Execute(ctx context.Context, ws *tools.Workspace, call llm.ToolCall) llm.Message
}

// Previewer returns the current text a tool call would replace.
type Previewer interface {
	CurrentText(ctx context.Context, ws *tools.Workspace, call llm.ToolCall) (string, bool)
}

// Outcome is the result of one phase of a run.
type Outcome struct {
	Status   Status        `json:"status"`
	Document string        `json:"document"`
	Reply    string        `json:"reply,omitempty"`
	Messages []llm.Message `json:"messages"`
	Token    string        `json:"token,omitempty"`
	Approval *Request      `json:"approval,omitempty"`
}

// Runner drives model turns and tool execution. A turn whose tool calls
// include a write tool suspends the run: the pending batch is saved under a
// token and nothing executes until Resume supplies the human's answer.
type Runner struct {
	model     llm.ChatModel
	exec      Executor
	store     Store
	log       *slog.Logger
	policy    Policy
	maxSteps  int
	previewer Previewer
	toolDefs  []llm.Tool
	now       func() time.Time
}

type Option func(*Runner)

func WithPolicy(p Policy) Option {
	return func(r *Runner) { r.policy = p }
}

func WithMaxSteps(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxSteps = n
		}
	}
}

// WithPreviewer attaches a before/after diff to edit approval requests.
func WithPreviewer(p Previewer) Option {
	return func(r *Runner) { r.previewer = p }
}

func NewRunner(model llm.ChatModel, exec Executor, store Store, log *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		model:    model,
		exec:     exec,
		store:    store,
		log:      log,
		policy:   DefaultPolicy(),
		maxSteps: DefaultMaxSteps,
		toolDefs: tools.Definitions(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

type run struct {
	ws       *tools.Workspace
	messages []llm.Message
	step     int
}

// Start begins a run on document with the given conversation history. A
// system prompt is prepended unless history already starts with one.
func (r *Runner) Start(ctx context.Context, document string, history []llm.Message) (*Outcome, error) {
	msgs := make([]llm.Message, 0, len(history)+1)
	if len(history) == 0 || history[0].Role != llm.RoleSystem {
		msgs = append(msgs, llm.SystemMessage(llm.SystemPrompt(r.now())))
	}
	msgs = append(msgs, history...)
	return r.loop(ctx, &run{ws: &tools.Workspace{Path: document}, messages: msgs})
}

// Resume continues the run saved under token. An affirmative response
// executes the pending batch unchanged; anything else answers every call in
// the batch with a rejection and hands control back to the model.
func (r *Runner) Resume(ctx context.Context, token, response string) (*Outcome, error) {
	c, err := r.store.Take(ctx, token)
	if err != nil {
		return nil, err
	}
	st := &run{ws: &tools.Workspace{Path: c.Document}, messages: c.Messages, step: c.Step}
	if len(st.messages) == 0 {
		return nil, fmt.Errorf("resume %s: empty conversation", token)
	}
	pending := st.messages[len(st.messages)-1]

	log := r.log.With("token", token, "tool", c.Request.ToolName)
	if r.policy.Approves(response) {
		metrics.Approvals.WithLabelValues("approved").Inc()
		log.Info("approval resolved", "decision", "approved")
		r.executeAll(ctx, st, pending.ToolCalls)
	} else {
		metrics.Approvals.WithLabelValues("rejected").Inc()
		log.Info("approval resolved", "decision", "rejected")
		reviewed := llm.ToolCall{ID: c.Request.ToolCallID, Function: llm.FunctionCall{Name: c.Request.ToolName}}
		st.messages = append(st.messages, Rejections(pending.ToolCalls, reviewed)...)
	}
	return r.loop(ctx, st)
}

// Approver answers approval requests synchronously.
type Approver interface {
	Approve(ctx context.Context, req Request) (string, error)
}

// RunWith runs to completion, asking approver whenever the run suspends.
func (r *Runner) RunWith(ctx context.Context, document string, history []llm.Message, approver Approver) (*Outcome, error) {
	out, err := r.Start(ctx, document, history)
	for err == nil && out.Status == StatusAwaitingApproval {
		var answer string
		answer, err = approver.Approve(ctx, *out.Approval)
		if err != nil {
			return nil, fmt.Errorf("approval: %w", err)
		}
		out, err = r.Resume(ctx, out.Token, answer)
	}
	return out, err
}

func (r *Runner) loop(ctx context.Context, st *run) (*Outcome, error) {
	for {
		reply, err := r.model.Chat(ctx, st.messages, r.toolDefs)
		st.step++
		if err != nil {
			metrics.ModelTurns.WithLabelValues("error").Inc()
			r.log.Error("model call failed", "step", st.step, "error", err)
			return r.finish(st, fmt.Sprintf("An error occurred while calling the model: %v", err)), nil
		}
		reply.Role = llm.RoleAssistant

		if len(reply.ToolCalls) == 0 {
			metrics.ModelTurns.WithLabelValues("text").Inc()
			return r.finish(st, reply.Content), nil
		}
		metrics.ModelTurns.WithLabelValues("tool_calls").Inc()
		if st.step >= r.maxSteps {
			r.log.Warn("step limit reached", "steps", st.step)
			return r.finish(st, ApologyMessage), nil
		}
		st.messages = append(st.messages, reply)

		if call, ok := r.firstGated(reply.ToolCalls); ok {
			return r.suspend(ctx, st, call)
		}
		r.executeAll(ctx, st, reply.ToolCalls)
	}
}

func (r *Runner) firstGated(calls []llm.ToolCall) (llm.ToolCall, bool) {
	for _, c := range calls {
		if r.policy.RequiresApproval(c.Function.Name) {
			return c, true
		}
	}
	return llm.ToolCall{}, false
}

func (r *Runner) executeAll(ctx context.Context, st *run, calls []llm.ToolCall) {
	for _, c := range calls {
		st.messages = append(st.messages, r.exec.Execute(ctx, st.ws, c))
	}
}

func (r *Runner) suspend(ctx context.Context, st *run, call llm.ToolCall) (*Outcome, error) {
	req := NewRequest(call)
	if r.previewer != nil && call.Function.Name == tools.ApplyEdit {
		if before, ok := r.previewer.CurrentText(ctx, st.ws, call); ok {
			var args struct {
				NewText string `json:"new_text"`
			}
			if json.Unmarshal([]byte(call.Function.Arguments), &args) == nil {
				req.Diff = LineDiff(before, args.NewText)
			}
		}
	}

	c := &Continuation{
		Token:     uuid.NewString(),
		Document:  st.ws.Path,
		Messages:  st.messages,
		Step:      st.step,
		Request:   req,
		CreatedAt: r.now(),
	}
	if err := r.store.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save continuation: %w", err)
	}
	r.log.Info("approval requested", "token", c.Token, "tool", req.ToolName, "document", c.Document)
	return &Outcome{
		Status:   StatusAwaitingApproval,
		Document: st.ws.Path,
		Messages: st.messages,
		Token:    c.Token,
		Approval: &req,
	}, nil
}

func (r *Runner) finish(st *run, reply string) *Outcome {
	st.messages = append(st.messages, llm.AssistantMessage(reply))
	return &Outcome{
		Status:   StatusCompleted,
		Document: st.ws.Path,
		Reply:    reply,
		Messages: st.messages,
	}
}
