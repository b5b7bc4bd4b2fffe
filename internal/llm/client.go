// Package llm provides LLM client interfaces and implementations.
package llm

import (
	"context"
)

// ChatMessage represents a chat message for the LLM.
type ChatMessage struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolCall is a structured tool invocation emitted by the model.
// Arguments is the raw JSON argument payload.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolDefinition declares one callable tool to the model. Parameters is a
// JSON-schema-shaped value the provider serializes as-is.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  any
}

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	Tools       []ToolDefinition
	MaxTokens   int
	Temperature float64
}

// CompletionResponse represents a completion response. ToolCalls is
// non-empty when the model requests tool execution instead of (or in
// addition to) free text.
type CompletionResponse struct {
	Content    string
	ToolCalls  []ToolCall
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface for LLM providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string

	// Models returns available models.
	Models() []string
}
