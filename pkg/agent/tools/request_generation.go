package tools

import (
	"context"

	"github.com/prepwise/interview-gateway/pkg/agent"
	"github.com/prepwise/interview-gateway/pkg/generation"
)

type RequestQuestionGenerationExecutor struct {
	Agent *agent.InterviewAgent
}

func (e *RequestQuestionGenerationExecutor) Name() string { return ToolRequestQuestionGeneration }

func (e *RequestQuestionGenerationExecutor) Definition() Definition {
	return Definition{
		Name: ToolRequestQuestionGeneration,
		Description: "Trigger external question generation with the stored setup, " +
			"then announce the close and end the session. Call immediately after store_user_details succeeds.",
		InputSchema: objectSchema(map[string]JSONSchema{
			"type":      {Type: "string", Description: "Interview type"},
			"role":      {Type: "string", Description: "Target role"},
			"level":     {Type: "string", Description: "Seniority level"},
			"techstack": {Type: "string", Description: "Comma-separated technologies"},
			"amount":    {Type: "integer", Description: "Number of questions"},
			"userid":    {Type: "string", Description: "Candidate user id; blank falls back to session identity"},
		}, "type", "role", "level", "techstack", "amount"),
	}
}

func (e *RequestQuestionGenerationExecutor) Execute(ctx context.Context, input map[string]any) (map[string]any, *agent.Error) {
	typ, err := stringField(input, "type", true)
	if err != nil {
		return nil, err
	}
	role, err := stringField(input, "role", true)
	if err != nil {
		return nil, err
	}
	level, err := stringField(input, "level", true)
	if err != nil {
		return nil, err
	}
	techStack, err := stringField(input, "techstack", true)
	if err != nil {
		return nil, err
	}
	amount, err := intField(input, "amount")
	if err != nil {
		return nil, err
	}
	userID, err := stringField(input, "userid", false)
	if err != nil {
		return nil, err
	}

	return e.Agent.RequestQuestionGeneration(ctx, generation.Request{
		Type:      typ,
		Role:      role,
		Level:     level,
		TechStack: techStack,
		Amount:    amount,
		UserID:    userID,
	})
}
