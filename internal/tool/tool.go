// Package tool provides the agent's callable capabilities and their
// dispatch.
package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/scholarbot/library-assistant/internal/llm"
	"github.com/scholarbot/library-assistant/pkg/metrics"
)

// Failure kinds carried by an Outcome.
const (
	FailureValidation = "validation"
	FailureUpstream   = "upstream"
)

// Failure describes a recoverable tool failure: a kind plus an explanation
// written for the model to act on.
type Failure struct {
	Kind    string
	Message string
}

// Outcome is the result of one tool invocation: either formatted content
// ready for model consumption, or a failure descriptor. Never a raw error.
type Outcome struct {
	Content string
	Failure *Failure
}

// Text returns the message body fed back to the model.
func (o Outcome) Text() string {
	if o.Failure != nil {
		return o.Failure.Message
	}
	return o.Content
}

// Failed reports whether the invocation produced a failure descriptor.
func (o Outcome) Failed() bool {
	return o.Failure != nil
}

func validationFailure(format string, args ...any) Outcome {
	return Outcome{Failure: &Failure{Kind: FailureValidation, Message: fmt.Sprintf(format, args...)}}
}

func upstreamFailure(format string, args ...any) Outcome {
	return Outcome{Failure: &Failure{Kind: FailureUpstream, Message: fmt.Sprintf(format, args...)}}
}

// Tool is one capability the model can invoke.
type Tool interface {
	// Name identifies the tool to the model.
	Name() string
	// Description tells the model when to use the tool.
	Description() string
	// Parameters declares the JSON schema of the tool's arguments.
	Parameters() jsonschema.Definition
	// Invoke runs the tool against raw JSON arguments.
	Invoke(ctx context.Context, args json.RawMessage) Outcome
}

// Registry binds tool names to implementations at construction time.
// The set is fixed for the registry's lifetime; dispatch never resolves
// tool identity dynamically.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry creates a registry over a fixed tool set.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if _, exists := r.tools[t.Name()]; exists {
			continue
		}
		r.tools[t.Name()] = t
		r.order = append(r.order, t.Name())
	}
	return r
}

// Definitions declares the registered tools for the model request.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, llm.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

// Dispatch invokes the named tool. An unknown name produces a corrective
// failure outcome rather than an error.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) Outcome {
	t, ok := r.tools[name]
	if !ok {
		metrics.ToolInvocationsTotal.WithLabelValues(name, "unknown").Inc()
		return validationFailure("Unknown tool %q. The available tools are: %s.", name, r.names())
	}

	outcome := t.Invoke(ctx, args)

	status := "success"
	if outcome.Failed() {
		status = outcome.Failure.Kind
	}
	metrics.ToolInvocationsTotal.WithLabelValues(name, status).Inc()

	return outcome
}

func (r *Registry) names() string {
	out := ""
	for i, name := range r.order {
		if i > 0 {
			out += ", "
		}
		out += name
	}
	return out
}
