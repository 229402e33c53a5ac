package services

import (
	"context"
	"fmt"

	"github.com/yungbote/roadmapper-backend/internal/logger"
)

type TaskHelpAgent interface {
	Generate(ctx context.Context, taskDescription string, projectContext string) (*TaskHelp, error)
}

type taskHelpAgent struct {
	log    *logger.Logger
	client OpenAIClient
}

func NewTaskHelpAgent(log *logger.Logger, client OpenAIClient) TaskHelpAgent {
	return &taskHelpAgent{log: log.With("agent", "TaskHelpAgent"), client: client}
}

func (a *taskHelpAgent) Generate(ctx context.Context, taskDescription string, projectContext string) (*TaskHelp, error) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overview": map[string]any{"type": "string"},
			"steps":    stringArraySchema(),
			"code_examples": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"language": map[string]any{"type": "string"},
						"code":     map[string]any{"type": "string"},
					},
					"required":             []string{"language", "code"},
					"additionalProperties": false,
				},
			},
			"resources": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{"type": "string"},
						"url":   map[string]any{"type": "string"},
					},
					"required":             []string{"title", "url"},
					"additionalProperties": false,
				},
			},
			"tips": stringArraySchema(),
		},
		"required":             []string{"overview", "steps", "code_examples", "resources", "tips"},
		"additionalProperties": false,
	}

	system := "You help a learner complete a development task. Give a short overview, concrete steps, code examples, useful resources and practical tips."
	user := fmt.Sprintf("%s\n\nTask:\n%s", projectContext, taskDescription)

	raw, err := a.client.GenerateJSON(ctx, system, user, "task_help", schema)
	if err != nil {
		return nil, err
	}
	var help TaskHelp
	if err := decodeAgentResult(raw, &help); err != nil {
		return nil, fmt.Errorf("task help result decode: %w", err)
	}
	return &help, nil
}
