package tools

import (
	"context"

	"github.com/prepwise/interview-gateway/pkg/agent"
)

type SaveAnswerExecutor struct {
	Agent *agent.InterviewAgent
}

func (e *SaveAnswerExecutor) Name() string { return ToolSaveAnswer }

func (e *SaveAnswerExecutor) Definition() Definition {
	return Definition{
		Name:        ToolSaveAnswer,
		Description: "Save the candidate's answer transcript for later feedback.",
		InputSchema: objectSchema(map[string]JSONSchema{
			"question": {Type: "string", Description: "Question text as asked"},
			"answer":   {Type: "string", Description: "Answer transcript"},
			"sequence": {Type: "integer", Description: "Question position; rewrites replace the same position"},
		}, "question", "answer", "sequence"),
	}
}

func (e *SaveAnswerExecutor) Execute(ctx context.Context, input map[string]any) (map[string]any, *agent.Error) {
	question, err := rawStringField(input, "question")
	if err != nil {
		return nil, err
	}
	answer, err := rawStringField(input, "answer")
	if err != nil {
		return nil, err
	}
	sequence, err := intField(input, "sequence")
	if err != nil {
		return nil, err
	}

	return e.Agent.SaveAnswer(ctx, agent.Answer{
		Question: question,
		Answer:   answer,
		Sequence: sequence,
	})
}
