// Package tools enumerates the operations a reasoning driver may invoke
// against an interview session. The registry is an explicit mapping from
// operation name to handler with a declared input schema, so the driver
// boundary is a static, inspectable contract.
package tools

import (
	"context"
	"strings"

	"github.com/prepwise/interview-gateway/pkg/agent"
)

const (
	ToolStoreUserDetails          = "store_user_details"
	ToolRequestQuestionGeneration = "request_question_generation"
	ToolSaveAnswer                = "save_answer"
)

type JSONSchema struct {
	Type                 string                `json:"type"`
	Description          string                `json:"description,omitempty"`
	Properties           map[string]JSONSchema `json:"properties,omitempty"`
	Required             []string              `json:"required,omitempty"`
	AdditionalProperties *bool                 `json:"additionalProperties,omitempty"`
}

type Definition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema JSONSchema `json:"input_schema"`
}

type Executor interface {
	Name() string
	Definition() Definition
	Execute(ctx context.Context, input map[string]any) (map[string]any, *agent.Error)
}

type Registry struct {
	byName map[string]Executor
	order  []string
}

func NewRegistry(executors ...Executor) *Registry {
	r := &Registry{byName: make(map[string]Executor, len(executors))}
	for _, ex := range executors {
		if ex == nil {
			continue
		}
		if _, exists := r.byName[ex.Name()]; !exists {
			r.order = append(r.order, ex.Name())
		}
		r.byName[ex.Name()] = ex
	}
	return r
}

// ForAgent builds the full tool surface bound to one session's agent.
func ForAgent(a *agent.InterviewAgent) *Registry {
	return NewRegistry(
		&StoreUserDetailsExecutor{Agent: a},
		&RequestQuestionGenerationExecutor{Agent: a},
		&SaveAnswerExecutor{Agent: a},
	)
}

func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.byName[strings.TrimSpace(name)]
	return ok
}

// Names returns operation names in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

func (r *Registry) Definitions() []Definition {
	if r == nil {
		return nil
	}
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.byName[name].Definition())
	}
	return defs
}

func (r *Registry) Execute(ctx context.Context, name string, input map[string]any) (map[string]any, *agent.Error) {
	if r == nil {
		return nil, agent.NewError(agent.ErrBadInput, "tool registry is not configured")
	}
	ex, ok := r.byName[strings.TrimSpace(name)]
	if !ok {
		return nil, agent.Errorf(agent.ErrBadInput, "unknown tool %q", name)
	}
	return ex.Execute(ctx, input)
}
