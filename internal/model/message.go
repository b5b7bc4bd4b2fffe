// Package model defines data structures for the library assistant.
package model

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a structured tool invocation requested by the assistant.
// Arguments holds the raw JSON payload exactly as the model emitted it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message represents one entry in a conversation thread.
//
// A tool-role message answers a specific assistant tool call; its ToolCallID
// must match an entry in the ToolCalls of a preceding assistant message in
// the same thread.
type Message struct {
	// Identity
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`

	// Content
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`

	// LLM metadata (nil for non-assistant messages)
	Model     *string `json:"model,omitempty"`
	TokensIn  *int    `json:"tokens_in,omitempty"`
	TokensOut *int    `json:"tokens_out,omitempty"`
	LatencyMs *int64  `json:"latency_ms,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ChatRequest is the request to advance a thread with a new user message.
type ChatRequest struct {
	Content string `json:"content"`
}

// ChatResponse is the assistant's final response for one turn.
type ChatResponse struct {
	ThreadID string `json:"thread_id"`
	Reply    string `json:"reply"`
}

// ListMessagesResponse is the response for listing a thread's transcript.
type ListMessagesResponse struct {
	ThreadID string    `json:"thread_id"`
	Messages []Message `json:"messages"`
}
