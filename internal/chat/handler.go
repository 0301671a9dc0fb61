// Package chat runs one conversation turn end to end: admission checks,
// history, phase and intent, parameter planning, context assembly, the
// model call and persistence.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	ctxengine "github.com/flemzord/careerai/internal/context"
	"github.com/flemzord/careerai/internal/intent"
	"github.com/flemzord/careerai/internal/memory"
	"github.com/flemzord/careerai/internal/phase"
	"github.com/flemzord/careerai/internal/planner"
	"github.com/flemzord/careerai/internal/provider"
	"github.com/flemzord/careerai/internal/security"
	"github.com/flemzord/careerai/internal/telemetry"
	"github.com/flemzord/careerai/pkg/message"
)

// ErrMissingDependency is returned by New when Store or Provider is nil.
var ErrMissingDependency = errors.New("chat: store and provider are required")

// emptyReplyFallback replaces a blank model answer before it is stored.
const emptyReplyFallback = "Sorry, I couldn't put an answer together just now. Could you rephrase your question?"

// Deps are the collaborators of a Handler. Store and Provider are required;
// every other field has a working default or is disabled when nil.
type Deps struct {
	Store    memory.HistoryStore
	Provider provider.Provider

	Classifier intent.Classifier
	Planner    *planner.Planner
	Assembler  *ctxengine.Assembler

	Guardrails *security.Guardrails
	Limiter    *security.RateLimiter
	Audit      *security.AuditLogger

	Metrics *telemetry.Metrics
	Tracer  trace.Tracer
	Logger  *slog.Logger

	Config Config
}

// Handler processes chat turns. It is safe for concurrent use.
type Handler struct {
	store      memory.HistoryStore
	provider   provider.Provider
	classifier intent.Classifier
	engine     atomic.Pointer[engine]
	guardrails *security.Guardrails
	limiter    *security.RateLimiter
	audit      *security.AuditLogger
	metrics    *telemetry.Metrics
	tracer     trace.Tracer
	logger     *slog.Logger
	config     Config
}

// New creates a Handler from d.
func New(d Deps) (*Handler, error) {
	if d.Store == nil || d.Provider == nil {
		return nil, ErrMissingDependency
	}
	h := &Handler{
		store:      d.Store,
		provider:   d.Provider,
		classifier: d.Classifier,
		guardrails: d.Guardrails,
		limiter:    d.Limiter,
		audit:      d.Audit,
		metrics:    d.Metrics,
		tracer:     d.Tracer,
		logger:     d.Logger,
		config:     d.Config.withDefaults(),
	}
	if h.classifier == nil {
		h.classifier = intent.NewKeywordClassifier(intent.DefaultCatalog())
	}
	h.Reconfigure(d.Planner, d.Assembler)
	if h.tracer == nil {
		h.tracer = noop.NewTracerProvider().Tracer(telemetry.TracerName)
	}
	if h.logger == nil {
		h.logger = slog.New(slog.DiscardHandler)
	}
	return h, nil
}

// engine is the tunable part of a turn, swapped as a whole on reload.
type engine struct {
	planner   *planner.Planner
	assembler *ctxengine.Assembler
}

// Reconfigure replaces the planner and assembler used by subsequent turns.
// Turns already in flight keep the previous pair. Nil arguments select the
// defaults.
func (h *Handler) Reconfigure(p *planner.Planner, a *ctxengine.Assembler) {
	if p == nil {
		p = planner.New(planner.DefaultTables())
	}
	if a == nil {
		a = ctxengine.NewAssembler(nil, nil, ctxengine.Defaults())
	}
	h.engine.Store(&engine{planner: p, assembler: a})
}

// Handle runs one turn and returns the complete reply.
func (h *Handler) Handle(ctx context.Context, req message.ChatRequest) (message.ChatReply, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	ctx, span := h.tracer.Start(ctx, "chat.turn", trace.WithAttributes(
		attribute.String("chat.student_id", req.StudentID),
		attribute.Bool("chat.stream", false),
	))
	defer span.End()

	t, err := h.prepare(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return message.ChatReply{}, err
	}
	if t.blocked != nil {
		return *t.blocked, nil
	}
	t.annotate(span)

	resp, err := h.complete(ctx, t)
	if err != nil {
		h.metrics.RecordTurn(string(t.phase), string(t.intent.Intent), telemetry.OutcomeError)
		telemetry.RecordError(span, err)
		return message.ChatReply{}, err
	}

	reply, err := h.finish(ctx, t, resp)
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return reply, err
}

// EmitFunc receives streamed frames. Returning an error aborts the turn.
type EmitFunc func(message.StreamFrame) error

// Stream runs one turn and passes each content delta to emit as it
// arrives. The final reply is returned rather than emitted so the caller
// controls the closing frame. Blocked turns emit nothing.
func (h *Handler) Stream(ctx context.Context, req message.ChatRequest, emit EmitFunc) (message.ChatReply, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	ctx, span := h.tracer.Start(ctx, "chat.turn", trace.WithAttributes(
		attribute.String("chat.student_id", req.StudentID),
		attribute.Bool("chat.stream", true),
	))
	defer span.End()

	t, err := h.prepare(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return message.ChatReply{}, err
	}
	if t.blocked != nil {
		return *t.blocked, nil
	}
	t.annotate(span)

	resp, err := h.stream(ctx, t, emit)
	if err != nil {
		h.metrics.RecordTurn(string(t.phase), string(t.intent.Intent), telemetry.OutcomeError)
		telemetry.RecordError(span, err)
		return message.ChatReply{}, err
	}

	reply, err := h.finish(ctx, t, resp)
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return reply, err
}

// turn carries the state of one request between prepare and finish.
type turn struct {
	conv     memory.Conversation
	isNew    bool
	user     message.Message
	phase    phase.Phase
	intent   intent.Result
	params   planner.Parameters
	assembly ctxengine.AssemblyResult
	request  provider.CompletionRequest
	blocked  *message.ChatReply
	started  time.Time
}

func (t *turn) annotate(span trace.Span) {
	span.SetAttributes(
		attribute.String("chat.conversation_id", t.conv.ID),
		attribute.String("chat.phase", string(t.phase)),
		attribute.String("chat.intent", string(t.intent.Intent)),
		attribute.String("chat.confidence", string(t.intent.Confidence)),
		attribute.Int("chat.max_tokens", t.params.MaxTokens),
		attribute.Float64("chat.temperature", t.params.Temperature),
		attribute.Bool("chat.compressed", t.assembly.Compressed),
	)
}

// prepare runs admission checks and builds the model request.
func (h *Handler) prepare(ctx context.Context, req message.ChatRequest) (*turn, error) {
	t := &turn{started: time.Now()}

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	if h.limiter != nil {
		if err := h.limiter.Allow(req.StudentID); err != nil {
			h.audit.Log(security.AuditEvent{
				Type:           security.EventRateLimit,
				StudentID:      req.StudentID,
				ConversationID: req.ConversationID,
				Detail:         err.Error(),
			})
			h.metrics.RecordTurn("", "", telemetry.OutcomeRateLimited)
			return nil, err
		}
	}

	text, err := security.SanitizeInput(req.Message)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	if h.guardrails != nil {
		res := h.guardrails.Check(text)
		for _, f := range res.Flags {
			h.metrics.RecordFlag(string(f))
		}
		if flag, blocked := res.Blocked(); blocked {
			h.audit.Log(security.AuditEvent{
				Type:           security.EventMessageBlocked,
				StudentID:      req.StudentID,
				ConversationID: req.ConversationID,
				Flags:          res.Flags,
			})
			h.metrics.RecordTurn("", "", telemetry.OutcomeBlocked)
			h.logger.Info("message blocked",
				"student_id", req.StudentID,
				"flag", string(flag),
			)
			t.blocked = &message.ChatReply{
				ConversationID: req.ConversationID,
				Reply:          security.BlockedResponse(flag),
				Blocked:        true,
			}
			return t, nil
		}
		if res.SanitizedInput != text {
			h.audit.Log(security.AuditEvent{
				Type:           security.EventContactMasked,
				StudentID:      req.StudentID,
				ConversationID: req.ConversationID,
				Flags:          res.Flags,
			})
			text = res.SanitizedInput
		}
	}

	var history []message.Message
	if req.IsNewConversation() {
		t.isNew = true
		t.conv = memory.Conversation{
			ID:        uuid.NewString(),
			StudentID: req.StudentID,
			Title:     Title(text),
		}
	} else {
		conv, err := h.store.Get(ctx, req.ConversationID)
		if err != nil {
			return nil, fmt.Errorf("loading conversation: %w", err)
		}
		if conv.StudentID != req.StudentID {
			return nil, ErrForbidden
		}
		t.conv = conv
		if history, err = h.store.Messages(ctx, conv.ID); err != nil {
			return nil, fmt.Errorf("loading history: %w", err)
		}
	}

	t.user = message.NewUser(text)
	t.phase = phase.Classify(len(history))
	t.intent = h.classifier.Classify(text, req.SelectedChips, history)
	eng := h.engine.Load()
	t.params = eng.planner.Plan(t.phase, &t.intent)
	t.assembly = eng.assembler.Assemble(ctxengine.AssemblyRequest{
		SystemParts: systemParts(h.config.SystemPrompt, t.phase, t.intent.Intent),
		History:     history,
	})
	t.request = buildRequest(t)
	return t, nil
}

// buildRequest converts the assembled context into a provider request.
func buildRequest(t *turn) provider.CompletionRequest {
	msgs := make([]provider.LLMMessage, 0, len(t.assembly.Messages)+2)
	msgs = append(msgs, provider.LLMMessage{Role: provider.MessageRoleSystem, Content: t.assembly.SystemPrompt})
	for _, m := range t.assembly.Messages {
		role := provider.MessageRoleAssistant
		if m.IsUser() {
			role = provider.MessageRoleUser
		}
		msgs = append(msgs, provider.LLMMessage{Role: role, Content: m.Content})
	}
	msgs = append(msgs, provider.LLMMessage{Role: provider.MessageRoleUser, Content: t.user.Content})

	p := t.params
	return provider.CompletionRequest{
		Messages:         msgs,
		MaxTokens:        p.MaxTokens,
		Temperature:      &p.Temperature,
		TopP:             &p.TopP,
		FrequencyPenalty: &p.FrequencyPenalty,
		PresencePenalty:  &p.PresencePenalty,
	}
}

// retry runs op with exponential backoff while it fails with a retryable
// provider error. Key-scoped failures are retried too since the provider
// has already moved on to its next key.
func retry[T any](ctx context.Context, h *Handler, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = h.config.RetryDelay

	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !provider.IsRetryable(err) && !provider.IsKeyScoped(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(h.config.MaxAttempts)),
		backoff.WithNotify(func(err error, d time.Duration) {
			h.metrics.RecordRetry()
			h.logger.Warn("retrying model request", "error", err, "delay", d)
		}),
	)
}

func (h *Handler) complete(ctx context.Context, t *turn) (provider.CompletionResponse, error) {
	ctx, span := h.tracer.Start(ctx, "chat.model", trace.WithAttributes(
		attribute.String("llm.model", h.provider.ModelName()),
	))
	defer span.End()

	start := time.Now()
	resp, err := retry(ctx, h, func() (provider.CompletionResponse, error) {
		return h.provider.Complete(ctx, t.request)
	})
	h.metrics.ObserveLLM(h.provider.ModelName(), time.Since(start), err, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	if err != nil {
		telemetry.RecordError(span, err)
		return resp, fmt.Errorf("%w: %w", ErrModel, err)
	}
	span.SetAttributes(
		attribute.Int("llm.prompt_tokens", resp.Usage.PromptTokens),
		attribute.Int("llm.completion_tokens", resp.Usage.CompletionTokens),
	)
	return resp, nil
}

// stream retries only the opening of the stream. Once deltas have been
// emitted a failure ends the turn.
func (h *Handler) stream(ctx context.Context, t *turn, emit EmitFunc) (provider.CompletionResponse, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctx, span := h.tracer.Start(ctx, "chat.model", trace.WithAttributes(
		attribute.String("llm.model", h.provider.ModelName()),
		attribute.Bool("llm.stream", true),
	))
	defer span.End()

	start := time.Now()
	ch, err := retry(ctx, h, func() (<-chan provider.StreamChunk, error) {
		return h.provider.Stream(ctx, t.request)
	})
	if err != nil {
		h.metrics.ObserveLLM(h.provider.ModelName(), time.Since(start), err, 0, 0)
		telemetry.RecordError(span, err)
		return provider.CompletionResponse{}, fmt.Errorf("%w: %w", ErrModel, err)
	}

	var resp provider.CompletionResponse
	var content []byte
	for chunk := range ch {
		if chunk.Err != nil {
			err = fmt.Errorf("%w: %w", ErrModel, chunk.Err)
			break
		}
		if chunk.Content != "" {
			content = append(content, chunk.Content...)
			if emitErr := emit(message.StreamFrame{Type: message.FrameDelta, Content: chunk.Content}); emitErr != nil {
				err = emitErr
				break
			}
		}
		if chunk.FinishReason != "" {
			resp.FinishReason = chunk.FinishReason
		}
		if chunk.Usage != nil {
			resp.Usage = *chunk.Usage
		}
	}
	if err != nil {
		cancel()
		for range ch { //nolint:revive // drain so the provider goroutine exits
		}
	}
	resp.Content = string(content)

	h.metrics.ObserveLLM(h.provider.ModelName(), time.Since(start), err, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	if err != nil {
		telemetry.RecordError(span, err)
		return resp, err
	}
	return resp, nil
}

// finish validates the reply, persists the turn and builds the response.
func (h *Handler) finish(ctx context.Context, t *turn, resp provider.CompletionResponse) (message.ChatReply, error) {
	content := resp.Content
	if flags := security.ValidateResponse(content); len(flags) > 0 {
		for _, f := range flags {
			h.metrics.RecordFlag(string(f))
		}
		h.audit.Log(security.AuditEvent{
			Type:           security.EventResponseFlagged,
			StudentID:      t.conv.StudentID,
			ConversationID: t.conv.ID,
			Flags:          flags,
		})
		h.logger.Warn("response flagged", "conversation_id", t.conv.ID, "flags", flags)
		if slices.Contains(flags, security.FlagEmptyResponse) {
			content = emptyReplyFallback
		}
	}

	if t.isNew {
		if err := h.store.Create(ctx, t.conv); err != nil {
			return message.ChatReply{}, fmt.Errorf("creating conversation: %w", err)
		}
		h.audit.Log(security.AuditEvent{
			Type:           security.EventConversationCreate,
			StudentID:      t.conv.StudentID,
			ConversationID: t.conv.ID,
		})
	}
	if err := h.store.Append(ctx, t.conv.ID, t.user, message.NewAssistant(content)); err != nil {
		return message.ChatReply{}, fmt.Errorf("saving turn: %w", err)
	}

	memoryTokens := t.assembly.Budget.Memory
	if t.assembly.Compressed {
		h.metrics.ObserveMemoryTokens(memoryTokens)
	}
	h.metrics.RecordTurn(string(t.phase), string(t.intent.Intent), telemetry.OutcomeOK)
	h.logger.Info("turn completed",
		"conversation_id", t.conv.ID,
		"phase", string(t.phase),
		"intent", string(t.intent.Intent),
		"confidence", string(t.intent.Confidence),
		"max_tokens", t.params.MaxTokens,
		"temperature", t.params.Temperature,
		"memory_tokens", memoryTokens,
		"duration", time.Since(t.started),
	)

	reply := message.ChatReply{
		ConversationID: t.conv.ID,
		Reply:          content,
		Phase:          string(t.phase),
		Intent:         string(t.intent.Intent),
		Confidence:     string(t.intent.Confidence),
		Parameters:     t.params.AsMap(),
	}
	if t.isNew {
		reply.Title = t.conv.Title
	}
	return reply, nil
}
