package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	ctxengine "github.com/flemzord/careerai/internal/context"
	"github.com/flemzord/careerai/internal/intent"
	"github.com/flemzord/careerai/internal/phase"
	"github.com/flemzord/careerai/pkg/message"
)

var errBadRole = errors.New("role must be \"user\" or \"assistant\"")

// historyItem is one message as supplied by a tool caller.
type historyItem struct {
	Role    message.Role `json:"role"`
	Content string       `json:"content"`
}

type historyArgs struct {
	Messages []historyItem `json:"messages"`
	Window   int           `json:"window"`
}

func (a historyArgs) history() ([]message.Message, error) {
	out := make([]message.Message, 0, len(a.Messages))
	for i, m := range a.Messages {
		if !m.Role.Valid() {
			return nil, fmt.Errorf("messages[%d]: %w", i, errBadRole)
		}
		out = append(out, message.New(m.Role, m.Content))
	}
	return out, nil
}

var messagesSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"role":    map[string]any{"type": "string", "enum": []string{"user", "assistant"}},
		"content": map[string]any{"type": "string"},
	},
	"required": []string{"role", "content"},
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("classify_phase",
		mcp.WithDescription("Return the conversation phase for a history of the given length."),
		mcp.WithNumber("count", mcp.Required(), mcp.Description("Messages already in the conversation, excluding the new one.")),
	), s.classifyPhase)

	intents := make([]string, 0, len(intent.All()))
	for _, in := range intent.All() {
		intents = append(intents, string(in))
	}
	s.mcp.AddTool(mcp.NewTool("plan_parameters",
		mcp.WithDescription("Plan max_tokens, temperature, top_p and penalties for the next turn."),
		mcp.WithNumber("count", mcp.Required(), mcp.Description("Messages already in the conversation.")),
		mcp.WithString("intent", mcp.Description("Detected intent, if any."), mcp.Enum(intents...)),
		mcp.WithString("confidence", mcp.Description("Confidence of the intent."), mcp.Enum("high", "medium", "low")),
	), s.planParameters)

	s.mcp.AddTool(mcp.NewTool("compress_context",
		mcp.WithDescription("Split a history into the recent window, a summary of older turns and extracted entities."),
		mcp.WithArray("messages", mcp.Required(), mcp.Items(messagesSchema)),
		mcp.WithNumber("window", mcp.Description("Recent messages kept verbatim. Defaults to 10.")),
	), s.compressContext)

	s.mcp.AddTool(mcp.NewTool("serialize_memory",
		mcp.WithDescription("Compress a history and render the <conversation_memory> block sent in the system prompt."),
		mcp.WithArray("messages", mcp.Required(), mcp.Items(messagesSchema)),
		mcp.WithNumber("window", mcp.Description("Recent messages kept verbatim. Defaults to 10.")),
	), s.serializeMemory)

	s.mcp.AddTool(mcp.NewTool("extract_entities",
		mcp.WithDescription("List jobs, skills, companies, courses and preferences mentioned in a history."),
		mcp.WithArray("messages", mcp.Required(), mcp.Items(messagesSchema)),
	), s.extractEntities)
}

// messageCount reads the "count" argument as an int. Fractions are
// truncated and magnitudes beyond int32 are clamped.
func messageCount(req mcp.CallToolRequest) (int, error) {
	f, err := req.RequireFloat("count")
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("count must be a finite number")
	}
	return int(max(min(f, math.MaxInt32), math.MinInt32)), nil
}

func (s *Server) classifyPhase(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count, err := messageCount(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ph := phase.Classify(count)
	return jsonResult(map[string]any{
		"phase":        ph,
		"instructions": ph.Instructions(),
	})
}

func (s *Server) planParameters(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count, err := messageCount(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var in *intent.Result
	if name := req.GetString("intent", ""); name != "" {
		label, ok := intent.Parse(name)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown intent %q", name)), nil
		}
		conf := intent.Confidence(req.GetString("confidence", string(intent.High)))
		in = &intent.Result{Intent: label, Confidence: conf}
	}

	ph := phase.Classify(count)
	return jsonResult(map[string]any{
		"phase":      ph,
		"parameters": s.planner.Plan(ph, in),
	})
}

func (s *Server) compressContext(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cc, errResult := s.compress(req)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(cc)
}

func (s *Server) serializeMemory(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cc, errResult := s.compress(req)
	if errResult != nil {
		return errResult, nil
	}
	block := ctxengine.SerializeMemory(cc)
	return jsonResult(map[string]any{
		"block":  block,
		"tokens": ctxengine.MemoryTokens(s.estimator, block),
	})
}

func (s *Server) extractEntities(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args historyArgs
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	history, err := args.history()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.extractor.Extract(history))
}

// compress binds the history arguments and compresses them. A non-nil
// result is a tool error to hand back to the caller.
func (s *Server) compress(req mcp.CallToolRequest) (ctxengine.CompressedContext, *mcp.CallToolResult) {
	var args historyArgs
	if err := req.BindArguments(&args); err != nil {
		return ctxengine.CompressedContext{}, mcp.NewToolResultError("invalid arguments: " + err.Error())
	}
	history, err := args.history()
	if err != nil {
		return ctxengine.CompressedContext{}, mcp.NewToolResultError(err.Error())
	}
	s.logger.Debug("compressing history", "messages", len(history), "window", args.Window)
	return s.compressor.CompressWindow(history, args.Window), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcpserver: encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
