package services

import (
	"context"
	"fmt"

	"github.com/yungbote/roadmapper-backend/internal/logger"
)

type QuestionAgent interface {
	Generate(ctx context.Context, projectDescription string) ([]GeneratedQuestion, error)
}

type questionAgent struct {
	log    *logger.Logger
	client OpenAIClient
}

func NewQuestionAgent(log *logger.Logger, client OpenAIClient) QuestionAgent {
	return &questionAgent{log: log.With("agent", "QuestionAgent"), client: client}
}

func (a *questionAgent) Generate(ctx context.Context, projectDescription string) ([]GeneratedQuestion, error) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text":    map[string]any{"type": "string"},
						"choices": stringArraySchema(),
					},
					"required":             []string{"text", "choices"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"questions"},
		"additionalProperties": false,
	}

	system := "You generate clarifying questions for a coding project. Each question carries at least two multiple-choice options."
	user := fmt.Sprintf("Project description:\n%s\n\nGenerate clarifying questions with choices.", projectDescription)

	raw, err := a.client.GenerateJSON(ctx, system, user, "clarifying_questions", schema)
	if err != nil {
		return nil, err
	}
	var out struct {
		Questions []GeneratedQuestion `json:"questions"`
	}
	if err := decodeAgentResult(raw, &out); err != nil {
		return nil, fmt.Errorf("questions result decode: %w", err)
	}

	// Questions with fewer than two choices give the user nothing to pick
	// between; drop them rather than persisting unanswerable rows.
	questions := make([]GeneratedQuestion, 0, len(out.Questions))
	for _, q := range out.Questions {
		if q.Text == "" || len(q.Choices) < 2 {
			a.log.Warn("Dropping generated question with insufficient choices", "text", q.Text, "choices", len(q.Choices))
			continue
		}
		questions = append(questions, q)
	}
	return questions, nil
}
