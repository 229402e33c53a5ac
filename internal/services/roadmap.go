package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/repos"
	"github.com/yungbote/roadmapper-backend/internal/types"
)

// RoadmapService turns the roadmap agent's output into persisted Module and
// Task rows under a project.
type RoadmapService interface {
	// Generate builds the QA context, calls the roadmap agent and ingests the
	// result. Returns the persisted top-level modules.
	Generate(ctx context.Context, projectID, userID uuid.UUID) ([]*types.Module, error)
	// Ingest persists a roadmap. Each top-level module commits together with
	// its tasks and sub-tree, but the roadmap as a whole is not atomic: a
	// failure partway leaves the previously inserted modules in place.
	Ingest(ctx context.Context, projectID uuid.UUID, modules []RoadmapModule) ([]*types.Module, error)
	BuildQAContext(ctx context.Context, projectID uuid.UUID) (string, error)
}

type roadmapService struct {
	db           *gorm.DB
	log          *logger.Logger
	projectRepo  repos.ProjectRepo
	moduleRepo   repos.ModuleRepo
	taskRepo     repos.TaskRepo
	questionRepo repos.QuestionRepo
	answerRepo   repos.AnswerRepo
	agent        RoadmapAgent
}

func NewRoadmapService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projectRepo repos.ProjectRepo,
	moduleRepo repos.ModuleRepo,
	taskRepo repos.TaskRepo,
	questionRepo repos.QuestionRepo,
	answerRepo repos.AnswerRepo,
	agent RoadmapAgent,
) RoadmapService {
	return &roadmapService{
		db:           db,
		log:          baseLog.With("service", "RoadmapService"),
		projectRepo:  projectRepo,
		moduleRepo:   moduleRepo,
		taskRepo:     taskRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		agent:        agent,
	}
}

func (rs *roadmapService) Generate(ctx context.Context, projectID, userID uuid.UUID) ([]*types.Module, error) {
	projects, err := rs.projectRepo.GetByIDs(ctx, nil, []uuid.UUID{projectID})
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

	qaContext, err := rs.BuildQAContext(ctx, projectID)
	if err != nil {
		return nil, err
	}

	roadmap, err := rs.agent.Generate(ctx, project.Description, qaContext)
	if err != nil {
		return nil, externalErr("roadmap generation", err)
	}

	return rs.Ingest(ctx, projectID, roadmap)
}

func (rs *roadmapService) Ingest(ctx context.Context, projectID uuid.UUID, modules []RoadmapModule) ([]*types.Module, error) {
	created := make([]*types.Module, 0, len(modules))
	for i, entry := range modules {
		if strings.TrimSpace(entry.Name) == "" {
			return created, validationErr("roadmap module %d has no name", i)
		}
		var top *types.Module
		err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var txErr error
			top, txErr = rs.ingestModule(ctx, tx, projectID, nil, entry, i)
			return txErr
		})
		if err != nil {
			rs.log.Warn("Roadmap ingestion stopped partway", "error", err, "project_id", projectID, "modules_persisted", len(created))
			return created, fmt.Errorf("failed to ingest roadmap module %q: %w", entry.Name, err)
		}
		created = append(created, top)
	}
	return created, nil
}

// ingestModule persists one module, its tasks, then its sub-modules. The
// module row is inserted first so children can reference its id.
func (rs *roadmapService) ingestModule(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, parentID *uuid.UUID, entry RoadmapModule, position int) (*types.Module, error) {
	module := &types.Module{
		ID:             uuid.New(),
		ProjectID:      projectID,
		ParentModuleID: parentID,
		Name:           entry.Name,
		Description:    entry.Description,
		Position:       position,
	}
	if _, err := rs.moduleRepo.Create(ctx, tx, []*types.Module{module}); err != nil {
		return nil, err
	}

	tasks := make([]*types.Task, 0, len(entry.Tasks))
	for j, description := range entry.Tasks {
		tasks = append(tasks, &types.Task{
			ID:          uuid.New(),
			ModuleID:    module.ID,
			Description: description,
			Position:    j,
		})
	}
	if _, err := rs.taskRepo.Create(ctx, tx, tasks); err != nil {
		return nil, err
	}
	module.Tasks = make([]types.Task, 0, len(tasks))
	for _, task := range tasks {
		module.Tasks = append(module.Tasks, *task)
	}

	for k, sub := range entry.SubModules {
		child, err := rs.ingestModule(ctx, tx, projectID, &module.ID, sub, k)
		if err != nil {
			return nil, err
		}
		module.SubModules = append(module.SubModules, *child)
	}
	return module, nil
}

// BuildQAContext renders the project's answered questions as
// "Question: ...\nAnswer: ..." pairs. Questions without an answer are
// skipped; an empty context is not an error.
func (rs *roadmapService) BuildQAContext(ctx context.Context, projectID uuid.UUID) (string, error) {
	questions, err := rs.questionRepo.GetByProjectIDs(ctx, nil, []uuid.UUID{projectID})
	if err != nil {
		return "", err
	}
	if len(questions) == 0 {
		return "", nil
	}

	questionIDs := make([]uuid.UUID, 0, len(questions))
	for _, q := range questions {
		questionIDs = append(questionIDs, q.ID)
	}
	answers, err := rs.answerRepo.GetByQuestionIDs(ctx, nil, questionIDs)
	if err != nil {
		return "", err
	}
	byQuestion := make(map[uuid.UUID]*types.Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	var b strings.Builder
	for _, q := range questions {
		answer, ok := byQuestion[q.ID]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "Question: %s\nAnswer: %s\n", q.Text, answer.SelectedChoice)
	}
	return b.String(), nil
}
