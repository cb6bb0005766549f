package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var editTool = FunctionTool("apply_edit", "Replace a paragraph", `{"type":"object","properties":{"anchor":{"type":"array"},"new_text":{"type":"string"}}}`)

func TestOpenAIClient_ToolCalls(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","object":"chat.completion","model":"gpt-test","choices":[{"index":0,"finish_reason":"tool_calls","message":{"role":"assistant","content":"","tool_calls":[{"id":"call_1","type":"function","function":{"name":"apply_edit","arguments":"{\"new_text\":\"x\"}"}}]}}]}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient("key", "gpt-test", srv.URL+"/v1")
	history := []Message{
		SystemMessage("sys"),
		UserMessage("edit it"),
	}
	reply, err := c.Chat(context.Background(), history, []Tool{editTool})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reply.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(reply.ToolCalls))
	}
	tc := reply.ToolCalls[0]
	if tc.ID != "call_1" || tc.Function.Name != "apply_edit" || tc.Function.Arguments != `{"new_text":"x"}` {
		t.Errorf("unexpected tool call %+v", tc)
	}
	if got["model"] != "gpt-test" {
		t.Errorf("expected model in request, got %v", got["model"])
	}
	if tools, _ := got["tools"].([]any); len(tools) != 1 {
		t.Errorf("expected 1 tool in request, got %v", got["tools"])
	}
}

func TestOpenAIClient_ServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient("key", "gpt-test", srv.URL+"/v1")
	_, err := c.Chat(context.Background(), []Message{UserMessage("hi")}, nil)
	if !IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestAnthropicClient_ToolUseRoundTrip(t *testing.T) {
	var req anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "key" {
			t.Errorf("expected api key header")
		}
		json.NewDecoder(r.Body).Decode(&req)
		io.WriteString(w, `{"content":[{"type":"text","text":"Looking."},{"type":"tool_use","id":"tu_1","name":"search_document","input":{"query":"budget"}}]}`)
	}))
	defer srv.Close()

	c := NewAnthropicClient("key", "claude-test", srv.URL)
	history := []Message{
		SystemMessage("sys"),
		UserMessage("find the budget"),
		{Role: RoleAssistant, ToolCalls: []ToolCall{
			{ID: "a", Type: "function", Function: FunctionCall{Name: "index_document", Arguments: "{}"}},
			{ID: "b", Type: "function", Function: FunctionCall{Name: "get_document_outline", Arguments: ""}},
		}},
		ToolMessage("a", "index_document", `{"success":true}`),
		ToolMessage("b", "get_document_outline", `{"count":0}`),
	}
	reply, err := c.Chat(context.Background(), history, []Tool{editTool})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.System != "sys" {
		t.Errorf("expected system prompt lifted, got %q", req.System)
	}
	if len(req.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(req.Messages))
	}
	if results := req.Messages[2].Content; len(results) != 2 || results[1].ToolUseID != "b" {
		t.Errorf("expected tool results folded into one turn, got %+v", results)
	}
	if string(req.Messages[1].Content[1].Input) != "{}" {
		t.Errorf("expected empty arguments sent as {}, got %s", req.Messages[1].Content[1].Input)
	}
	if len(req.Tools) != 1 || req.Tools[0].Name != "apply_edit" {
		t.Errorf("expected tool definitions, got %+v", req.Tools)
	}

	if reply.Content != "Looking." {
		t.Errorf("expected text content, got %q", reply.Content)
	}
	if len(reply.ToolCalls) != 1 || reply.ToolCalls[0].Function.Arguments != `{"query":"budget"}` {
		t.Errorf("unexpected tool calls %+v", reply.ToolCalls)
	}
}

func TestAnthropicClient_RateLimitIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewAnthropicClient("key", "claude-test", srv.URL)
	if _, err := c.Chat(context.Background(), []Message{UserMessage("hi")}, nil); !IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestSystemPromptStampsTime(t *testing.T) {
	p := SystemPrompt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	if !strings.Contains(p, "2025-03-01T09:00:00Z") || strings.Contains(p, "{time}") {
		t.Errorf("expected stamped prompt, got %q", p[len(p)-40:])
	}
}

func TestNew_Providers(t *testing.T) {
	if _, err := New(Config{Provider: "openai"}); err == nil {
		t.Error("expected error without openai key")
	}
	if m, err := New(Config{Provider: "anthropic", AnthropicKey: "k"}); err != nil || m == nil {
		t.Errorf("expected anthropic model, got %v", err)
	}
	if _, err := New(Config{Provider: "other"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
