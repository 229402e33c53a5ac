package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/roadmapper-backend/internal/logger"
)

type ProgressAgent interface {
	Analyze(ctx context.Context, taskDescription string, commits []RepoCommit, filesChanged []string) (*CommitAnalysis, error)
}

type progressAgent struct {
	log    *logger.Logger
	client OpenAIClient
}

func NewProgressAgent(log *logger.Logger, client OpenAIClient) ProgressAgent {
	return &progressAgent{log: log.With("agent", "ProgressAgent"), client: client}
}

func (a *progressAgent) Analyze(ctx context.Context, taskDescription string, commits []RepoCommit, filesChanged []string) (*CommitAnalysis, error) {
	commitLines := make([]string, 0, len(commits))
	for _, commit := range commits {
		commitLines = append(commitLines, fmt.Sprintf("- %s (by %s on %s)", commit.Message, commit.Author, commit.Date.Format("2006-01-02")))
	}
	commitBlock := strings.Join(commitLines, "\n")
	if commitBlock == "" {
		commitBlock = "No recent commits"
	}

	fileLines := make([]string, 0, len(filesChanged))
	for _, f := range filesChanged {
		fileLines = append(fileLines, "- "+f)
	}
	fileBlock := strings.Join(fileLines, "\n")
	if fileBlock == "" {
		fileBlock = "No files changed"
	}

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"task_completed":   map[string]any{"type": "boolean"},
			"confidence":       map[string]any{"type": "number", "minimum": 0, "maximum": 1},
			"reasoning":        map[string]any{"type": "string"},
			"relevant_commits": stringArraySchema(),
		},
		"required":             []string{"task_completed", "confidence", "reasoning", "relevant_commits"},
		"additionalProperties": false,
	}

	system := "You review a repository's recent commit activity and judge whether a specific development task has been completed. Be conservative: only report completion when the commits clearly cover the task."
	user := fmt.Sprintf("Task:\n%s\n\nRecent commits:\n%s\n\nFiles changed:\n%s", taskDescription, commitBlock, fileBlock)

	raw, err := a.client.GenerateJSON(ctx, system, user, "commit_analysis", schema)
	if err != nil {
		return nil, err
	}
	var analysis CommitAnalysis
	if err := decodeAgentResult(raw, &analysis); err != nil {
		return nil, fmt.Errorf("progress result decode: %w", err)
	}

	if analysis.Confidence < 0 {
		analysis.Confidence = 0
	}
	if analysis.Confidence > 1 {
		analysis.Confidence = 1
	}
	if len(analysis.RelevantCommits) > 5 {
		analysis.RelevantCommits = analysis.RelevantCommits[:5]
	}
	return &analysis, nil
}
