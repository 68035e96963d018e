package tools

import (
	"context"

	"github.com/prepwise/interview-gateway/pkg/agent"
)

type StoreUserDetailsExecutor struct {
	Agent *agent.InterviewAgent
}

func (e *StoreUserDetailsExecutor) Name() string { return ToolStoreUserDetails }

func (e *StoreUserDetailsExecutor) Definition() Definition {
	return Definition{
		Name:        ToolStoreUserDetails,
		Description: "Persist the interview setup provided by the candidate.",
		InputSchema: objectSchema(map[string]JSONSchema{
			"role":           {Type: "string", Description: "Target role, e.g. Backend Engineer"},
			"level":          {Type: "string", Description: "Seniority level"},
			"tech_stack":     {Type: "string", Description: "Comma-separated technologies"},
			"interview_type": {Type: "string", Description: "Interview type, e.g. technical or behavioral"},
			"question_count": {Type: "integer", Description: "Number of questions to generate"},
		}, "role", "level", "tech_stack", "interview_type", "question_count"),
	}
}

func (e *StoreUserDetailsExecutor) Execute(ctx context.Context, input map[string]any) (map[string]any, *agent.Error) {
	role, err := stringField(input, "role", true)
	if err != nil {
		return nil, err
	}
	level, err := stringField(input, "level", true)
	if err != nil {
		return nil, err
	}
	techStack, err := stringField(input, "tech_stack", true)
	if err != nil {
		return nil, err
	}
	interviewType, err := stringField(input, "interview_type", true)
	if err != nil {
		return nil, err
	}
	questionCount, err := intField(input, "question_count")
	if err != nil {
		return nil, err
	}

	interviewID, err := e.Agent.StoreUserDetails(ctx, agent.UserDetails{
		Role:          role,
		Level:         level,
		TechStack:     techStack,
		InterviewType: interviewType,
		QuestionCount: questionCount,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"interviewId": interviewID}, nil
}
