package services

import (
	"context"
	"fmt"

	"github.com/yungbote/roadmapper-backend/internal/logger"
)

type RoadmapAgent interface {
	Generate(ctx context.Context, description string, qaContext string) ([]RoadmapModule, error)
}

type roadmapAgent struct {
	log    *logger.Logger
	client OpenAIClient
}

func NewRoadmapAgent(log *logger.Logger, client OpenAIClient) RoadmapAgent {
	return &roadmapAgent{log: log.With("agent", "RoadmapAgent"), client: client}
}

func (a *roadmapAgent) Generate(ctx context.Context, description string, qaContext string) ([]RoadmapModule, error) {
	moduleSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":        map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"tasks":       stringArraySchema(),
			"sub_modules": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":        map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
						"tasks":       stringArraySchema(),
						"sub_modules": map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
					},
					"required":             []string{"name", "description", "tasks"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"name", "description", "tasks"},
		"additionalProperties": false,
	}
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"modules": map[string]any{"type": "array", "items": moduleSchema},
		},
		"required":             []string{"modules"},
		"additionalProperties": false,
	}

	system := "You plan coding projects. Break the project into ordered modules; each module has a name, a detailed description, a list of actionable tasks, and optionally sub-modules of the same shape."
	user := fmt.Sprintf("Project description:\n%s", description)
	if qaContext != "" {
		user = fmt.Sprintf("%s\n\nClarifications from the user:\n%s", user, qaContext)
	}

	raw, err := a.client.GenerateJSON(ctx, system, user, "project_roadmap", schema)
	if err != nil {
		return nil, err
	}
	var out struct {
		Modules []RoadmapModule `json:"modules"`
	}
	if err := decodeAgentResult(raw, &out); err != nil {
		return nil, fmt.Errorf("roadmap result decode: %w", err)
	}
	if len(out.Modules) == 0 {
		return nil, fmt.Errorf("roadmap generation returned no modules")
	}
	return out.Modules, nil
}
