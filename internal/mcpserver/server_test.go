package mcpserver

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flemzord/careerai/internal/planner"
)

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(res.Content) != 1 {
		t.Fatalf("content = %d items, want 1", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T", res.Content[0])
	}
	return text.Text, res.IsError
}

func history(n int) []any {
	out := make([]any, 0, n)
	for i := range n {
		role, content := "user", "I want to become a data scientist and learn python"
		if i%2 == 1 {
			role, content = "assistant", "Start with statistics and SQL."
		}
		out = append(out, map[string]any{"role": role, "content": content})
	}
	return out
}

func TestClassifyPhase(t *testing.T) {
	t.Parallel()
	s := New(Options{})

	tests := []struct {
		count float64
		want  string
	}{
		{0, "opening"},
		{4, "exploring"},
		{10, "deep_dive"},
		{11, "follow_up"},
		{-3, "opening"},
		{4.9, "exploring"},
		{1e300, "follow_up"},
		{-1e300, "opening"},
	}
	for _, tt := range tests {
		out, isErr := call(t, s.classifyPhase, map[string]any{"count": tt.count})
		if isErr {
			t.Fatalf("count %v: tool error %s", tt.count, out)
		}
		var got struct{ Phase string }
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatal(err)
		}
		if got.Phase != tt.want {
			t.Errorf("count %v: phase = %q, want %q", tt.count, got.Phase, tt.want)
		}
	}

	if _, isErr := call(t, s.classifyPhase, map[string]any{}); !isErr {
		t.Error("missing count should be a tool error")
	}
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, isErr := call(t, s.classifyPhase, map[string]any{"count": bad}); !isErr {
			t.Errorf("count %v should be a tool error", bad)
		}
		if _, isErr := call(t, s.planParameters, map[string]any{"count": bad}); !isErr {
			t.Errorf("plan with count %v should be a tool error", bad)
		}
	}
}

func TestPlanParameters(t *testing.T) {
	t.Parallel()
	s := New(Options{})

	out, isErr := call(t, s.planParameters, map[string]any{"count": 2.0, "intent": "interview-prep", "confidence": "high"})
	if isErr {
		t.Fatalf("tool error: %s", out)
	}
	var got struct {
		Phase      string
		Parameters planner.Parameters
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if got.Phase != "exploring" || got.Parameters.MaxTokens <= 0 {
		t.Errorf("plan = %+v", got)
	}

	if out, isErr := call(t, s.planParameters, map[string]any{"count": 1.0, "intent": "astrology"}); !isErr {
		t.Errorf("unknown intent accepted: %s", out)
	}
}

func TestCompressContext(t *testing.T) {
	t.Parallel()
	s := New(Options{})

	out, isErr := call(t, s.compressContext, map[string]any{"messages": history(14), "window": 4.0})
	if isErr {
		t.Fatalf("tool error: %s", out)
	}
	var got struct {
		RecentMessages   []json.RawMessage `json:"recent_messages"`
		MemorySummary    string            `json:"memory_summary"`
		RelevantEntities struct {
			Skills []string `json:"mentioned_skills"`
		} `json:"relevant_entities"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.RecentMessages) != 4 {
		t.Errorf("recent = %d, want 4", len(got.RecentMessages))
	}
	if got.MemorySummary == "" {
		t.Error("summary is empty")
	}
	if !strings.Contains(strings.Join(got.RelevantEntities.Skills, ","), "python") {
		t.Errorf("skills = %v", got.RelevantEntities.Skills)
	}
}

func TestSerializeMemory(t *testing.T) {
	t.Parallel()
	s := New(Options{})

	out, isErr := call(t, s.serializeMemory, map[string]any{"messages": history(14)})
	if isErr {
		t.Fatalf("tool error: %s", out)
	}
	var got struct {
		Block  string
		Tokens int
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got.Block, "<conversation_memory>") || got.Tokens <= 0 {
		t.Errorf("result = %+v", got)
	}

	out, _ = call(t, s.serializeMemory, map[string]any{"messages": []any{}})
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if got.Block != "" || got.Tokens != 0 {
		t.Errorf("empty history result = %+v", got)
	}
}

func TestExtractEntities(t *testing.T) {
	t.Parallel()
	s := New(Options{})

	msgs := []any{
		map[string]any{"role": "user", "content": "I'd like a remote job at Google using Kubernetes"},
	}
	out, isErr := call(t, s.extractEntities, map[string]any{"messages": msgs})
	if isErr {
		t.Fatalf("tool error: %s", out)
	}
	for _, want := range []string{`"google"`, `"kubernetes"`, `"remote"`} {
		if !strings.Contains(out, want) {
			t.Errorf("entities %s missing %s", out, want)
		}
	}

	bad := []any{map[string]any{"role": "system", "content": "x"}}
	if _, isErr := call(t, s.extractEntities, map[string]any{"messages": bad}); !isErr {
		t.Error("invalid role accepted")
	}
}

func TestServer_ListsTools(t *testing.T) {
	t.Parallel()
	s := New(Options{Version: "test"})

	resp := s.MCP().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"classify_phase", "plan_parameters", "compress_context", "serialize_memory", "extract_entities"} {
		if !strings.Contains(string(data), `"`+name+`"`) {
			t.Errorf("tools/list missing %s: %s", name, data)
		}
	}
}
