package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/repos"
)

const (
	// commitWindowDays bounds how far back the commit fetch looks.
	commitWindowDays = 30
	// maxCommitsToInspect caps the per-commit file-list fetches.
	maxCommitsToInspect = 10
	// autoCompleteThreshold is the fixed confidence above which a positive
	// verdict marks the task complete. Not user-configurable.
	autoCompleteThreshold = 0.7
)

type ProgressReport struct {
	TaskID          uuid.UUID `json:"task_id"`
	TaskDescription string    `json:"task_description"`
	Completed       bool      `json:"completed"`
	AutoCompleted   bool      `json:"auto_completed"`
	TaskCompleted   bool      `json:"task_completed"`
	Confidence      float64   `json:"confidence"`
	Reasoning       string    `json:"reasoning"`
	RelevantCommits []string  `json:"relevant_commits"`
}

// ProgressService checks a task's real progress against the project's
// connected repository and auto-completes the task on a confident verdict.
type ProgressService interface {
	CheckTask(ctx context.Context, taskID, userID uuid.UUID) (*ProgressReport, error)
}

type progressService struct {
	db          *gorm.DB
	log         *logger.Logger
	taskRepo    repos.TaskRepo
	moduleRepo  repos.ModuleRepo
	projectRepo repos.ProjectRepo
	userRepo    repos.UserRepo
	github      GitHubClient
	agent       ProgressAgent
	completion  CompletionService
}

func NewProgressService(
	db *gorm.DB,
	baseLog *logger.Logger,
	taskRepo repos.TaskRepo,
	moduleRepo repos.ModuleRepo,
	projectRepo repos.ProjectRepo,
	userRepo repos.UserRepo,
	github GitHubClient,
	agent ProgressAgent,
	completion CompletionService,
) ProgressService {
	return &progressService{
		db:          db,
		log:         baseLog.With("service", "ProgressService"),
		taskRepo:    taskRepo,
		moduleRepo:  moduleRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		github:      github,
		agent:       agent,
		completion:  completion,
	}
}

func (ps *progressService) CheckTask(ctx context.Context, taskID, userID uuid.UUID) (*ProgressReport, error) {
	tasks, err := ps.taskRepo.GetByIDs(ctx, nil, []uuid.UUID{taskID})
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, notFoundErr("task")
	}
	task := tasks[0]

	modules, err := ps.moduleRepo.GetByIDs(ctx, nil, []uuid.UUID{task.ModuleID})
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		return nil, notFoundErr("module")
	}

	projects, err := ps.projectRepo.GetByIDs(ctx, nil, []uuid.UUID{modules[0].ProjectID})
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, notFoundErr("project")
	}
	project := projects[0]
	if project.UserID != userID {
		return nil, ErrForbidden
	}
	if project.RepoName == "" || project.RepoURL == "" {
		return nil, validationErr("project has no connected repository")
	}

	users, err := ps.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, notFoundErr("user")
	}
	user := users[0]
	if user.GithubAccessToken == "" {
		return nil, validationErr("github account not connected")
	}

	owner, repoName, err := splitRepoURL(project.RepoURL)
	if err != nil {
		return nil, validationErr("invalid repository url %q", project.RepoURL)
	}

	commits, err := ps.github.ListRecentCommits(ctx, user.GithubAccessToken, owner, repoName, commitWindowDays)
	if err != nil {
		return nil, externalErr("list commits", err)
	}

	inspect := commits
	if len(inspect) > maxCommitsToInspect {
		inspect = inspect[:maxCommitsToInspect]
	}
	seen := make(map[string]struct{})
	var filesChanged []string
	for _, commit := range inspect {
		files, err := ps.github.ListChangedFiles(ctx, user.GithubAccessToken, owner, repoName, commit.SHA)
		if err != nil {
			return nil, externalErr("list changed files", err)
		}
		for _, f := range files {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			filesChanged = append(filesChanged, f)
		}
	}

	analysis, err := ps.agent.Analyze(ctx, task.Description, commits, filesChanged)
	if err != nil {
		return nil, externalErr("progress analysis", err)
	}

	autoCompleted := false
	completed := task.Completed
	if analysis.TaskCompleted && analysis.Confidence >= autoCompleteThreshold {
		if err := ps.completion.MarkTaskComplete(ctx, taskID); err != nil {
			return nil, err
		}
		autoCompleted = true
		completed = true
	}

	return &ProgressReport{
		TaskID:          task.ID,
		TaskDescription: task.Description,
		Completed:       completed,
		AutoCompleted:   autoCompleted,
		TaskCompleted:   analysis.TaskCompleted,
		Confidence:      analysis.Confidence,
		Reasoning:       analysis.Reasoning,
		RelevantCommits: analysis.RelevantCommits,
	}, nil
}

// splitRepoURL derives (owner, repo) from a stored repository URL by taking
// the last two path segments.
func splitRepoURL(repoURL string) (string, string, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(repoURL), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 {
		return "", "", validationErr("repository url has no owner/name segments")
	}
	owner := parts[len(parts)-2]
	repo := strings.TrimSuffix(parts[len(parts)-1], ".git")
	if owner == "" || repo == "" {
		return "", "", validationErr("repository url has empty owner or name")
	}
	return owner, repo, nil
}
