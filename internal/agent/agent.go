// Package agent implements the conversational control loop: a bounded
// state machine alternating between a reasoning step (one language model
// call over the thread history) and a tool-execution step.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/scholarbot/library-assistant/internal/llm"
	"github.com/scholarbot/library-assistant/internal/memory"
	"github.com/scholarbot/library-assistant/internal/model"
	"github.com/scholarbot/library-assistant/internal/tool"
	"github.com/scholarbot/library-assistant/pkg/logger"
	"github.com/scholarbot/library-assistant/pkg/metrics"
)

// Turn-terminal responses for failure paths. Errors never escape Advance as
// faults; every failure ends in one of these.
const (
	modelFailureReply = "I'm sorry, I ran into a problem while thinking about your request. " +
		"Please try again in a moment."
	loopBoundReply = "I couldn't finish researching that within a reasonable number of search steps. " +
		"Try narrowing your question and I'll give it another go."
	emptyReply = "I'm not sure how to respond to that. Could you rephrase your question?"
)

// ErrEmptyThreadID reports programmer misuse of Advance.
var ErrEmptyThreadID = errors.New("thread id must not be empty")

// Config holds the agent's model and loop settings.
type Config struct {
	Model         string
	Temperature   float64
	MaxTokens     int
	MaxIterations int
}

// Agent owns the per-turn control loop and the lifecycle of thread
// transcripts in the memory store.
type Agent struct {
	llm    llm.Client
	tools  *tool.Registry
	memory *memory.Store
	cfg    Config
	logger *logger.Logger
	tracer trace.Tracer
}

// New creates an agent.
func New(client llm.Client, registry *tool.Registry, store *memory.Store, cfg Config, log *logger.Logger) *Agent {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 5
	}
	return &Agent{
		llm:    client,
		tools:  registry,
		memory: store,
		cfg:    cfg,
		logger: log,
		tracer: otel.Tracer("agent"),
	}
}

// Advance processes one user turn: it appends the user message, then loops
// reasoning and tool execution until the model produces a final response or
// the iteration bound is hit. Every message is appended to memory before the
// next state transition, so an interrupted turn leaves a consistent prefix.
func (a *Agent) Advance(ctx context.Context, threadID, userText string) (string, error) {
	if threadID == "" {
		return "", ErrEmptyThreadID
	}

	ctx, span := a.tracer.Start(ctx, "agent.advance", trace.WithAttributes(
		attribute.String("thread.id", threadID),
	))
	defer span.End()

	log := a.logger.With(zap.String("thread_id", threadID))
	log.Info("advancing thread", zap.Int("history_len", a.memory.Len(threadID)))

	a.memory.Append(threadID, model.Message{
		Role:    model.RoleUser,
		Content: userText,
	})

	for iteration := 1; iteration <= a.cfg.MaxIterations; iteration++ {
		resp, err := a.reason(ctx, threadID)
		if err != nil {
			log.Error("model call failed", zap.Error(err), zap.Int("iteration", iteration))
			a.finishTurn(threadID, "model_error", iteration)
			return a.appendFinal(threadID, modelFailureReply), nil
		}

		assistantMsg := model.Message{
			Role:      model.RoleAssistant,
			Content:   resp.Content,
			Model:     &resp.Model,
			TokensIn:  &resp.TokensIn,
			TokensOut: &resp.TokensOut,
			LatencyMs: &resp.LatencyMs,
		}
		for _, call := range resp.ToolCalls {
			assistantMsg.ToolCalls = append(assistantMsg.ToolCalls, model.ToolCall{
				ID:        call.ID,
				Name:      call.Name,
				Arguments: call.Arguments,
			})
		}
		a.memory.Append(threadID, assistantMsg)

		if len(resp.ToolCalls) == 0 {
			a.finishTurn(threadID, "success", iteration)
			if resp.Content == "" {
				return a.appendFinal(threadID, emptyReply), nil
			}
			return resp.Content, nil
		}

		// Tool execution: invocations run in emission order, and every
		// result is appended before the next reasoning step.
		for _, call := range resp.ToolCalls {
			outcome := a.tools.Dispatch(ctx, call.Name, json.RawMessage(call.Arguments))
			log.Info("tool executed",
				zap.String("tool", call.Name),
				zap.Bool("failed", outcome.Failed()),
				zap.Int("iteration", iteration),
			)
			a.memory.Append(threadID, model.Message{
				Role:       model.RoleTool,
				Content:    outcome.Text(),
				ToolCallID: call.ID,
			})
		}
	}

	log.Warn("iteration bound exceeded", zap.Int("max_iterations", a.cfg.MaxIterations))
	a.finishTurn(threadID, "loop_bound_exceeded", a.cfg.MaxIterations)
	return a.appendFinal(threadID, loopBoundReply), nil
}

// Reset clears a thread's history without affecting other threads.
func (a *Agent) Reset(threadID string) {
	a.logger.Info("resetting thread", zap.String("thread_id", threadID))
	a.memory.Reset(threadID)
}

// reason performs one language model invocation over the full history.
func (a *Agent) reason(ctx context.Context, threadID string) (*llm.CompletionResponse, error) {
	ctx, span := a.tracer.Start(ctx, "agent.reason")
	defer span.End()

	start := time.Now()
	resp, err := a.llm.Complete(ctx, &llm.CompletionRequest{
		Model:       a.cfg.Model,
		Messages:    a.buildInput(threadID),
		Tools:       a.tools.Definitions(),
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		metrics.RecordModelCall(a.cfg.Model, "error", time.Since(start).Seconds(), 0, 0)
		span.RecordError(err)
		return nil, err
	}

	metrics.RecordModelCall(resp.Model, "success", time.Since(start).Seconds(), resp.TokensIn, resp.TokensOut)
	span.SetAttributes(attribute.Int("llm.tool_calls", len(resp.ToolCalls)))
	return resp, nil
}

// buildInput assembles the model input: system prompt plus the thread's
// ordered transcript.
func (a *Agent) buildInput(threadID string) []llm.ChatMessage {
	history := a.memory.Read(threadID)

	input := make([]llm.ChatMessage, 0, len(history)+1)
	input = append(input, llm.ChatMessage{
		Role:    string(model.RoleSystem),
		Content: systemPrompt,
	})

	for _, msg := range history {
		converted := llm.ChatMessage{
			Role:       string(msg.Role),
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}
		for _, call := range msg.ToolCalls {
			converted.ToolCalls = append(converted.ToolCalls, llm.ToolCall{
				ID:        call.ID,
				Name:      call.Name,
				Arguments: call.Arguments,
			})
		}
		input = append(input, converted)
	}

	return input
}

// appendFinal records a synthesized terminal response in the transcript and
// returns it.
func (a *Agent) appendFinal(threadID, text string) string {
	a.memory.Append(threadID, model.Message{
		Role:    model.RoleAssistant,
		Content: text,
	})
	return text
}

func (a *Agent) finishTurn(threadID, outcome string, iterations int) {
	metrics.TurnsTotal.WithLabelValues(outcome).Inc()
	metrics.TurnIterations.Observe(float64(iterations))
	a.logger.Debug("turn finished",
		zap.String("thread_id", threadID),
		zap.String("outcome", outcome),
		zap.Int("iterations", iterations),
	)
}
