package services

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/yungbote/roadmapper-backend/internal/logger"
)

// Topics used to seed idea generation so repeated calls don't converge on the
// same handful of project ideas.
var ideaTopics = []string{
	"sustainable energy solutions", "mental health and wellness apps", "gamified education platforms",
	"community-based social networks", "AI-powered creative tools", "blockchain for supply chain transparency",
	"personalized healthcare assistants", "smart home automation for accessibility", "virtual reality travel experiences",
	"decentralized finance (DeFi) applications", "e-commerce for local artisans", "cybersecurity for small businesses",
	"language learning through storytelling", "augmented reality for interior design", "fitness apps with personalized plans",
	"recipe generators for dietary restrictions", "music composition with AI", "automated gardening systems",
	"chatbot for customer support", "disaster relief coordination platform",
}

type IdeaAgent interface {
	Generate(ctx context.Context) (*ProjectIdea, error)
}

type ideaAgent struct {
	log    *logger.Logger
	client OpenAIClient
}

func NewIdeaAgent(log *logger.Logger, client OpenAIClient) IdeaAgent {
	return &ideaAgent{log: log.With("agent", "IdeaAgent"), client: client}
}

func (a *ideaAgent) Generate(ctx context.Context) (*ProjectIdea, error) {
	topic := ideaTopics[rand.Intn(len(ideaTopics))]

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":       map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
		},
		"required":             []string{"title", "description"},
		"additionalProperties": false,
	}

	system := "You generate coding project ideas a learner can realistically build. Answer with a short title and a concrete description."
	user := fmt.Sprintf("Generate a coding project idea on the topic: %s", topic)

	raw, err := a.client.GenerateJSON(ctx, system, user, "project_idea", schema)
	if err != nil {
		return nil, err
	}
	var idea ProjectIdea
	if err := decodeAgentResult(raw, &idea); err != nil {
		return nil, fmt.Errorf("idea result decode: %w", err)
	}
	return &idea, nil
}
