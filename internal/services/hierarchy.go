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

// HierarchyService covers the manual create/read surface of the roadmap
// hierarchy plus per-task help generation.
type HierarchyService interface {
	CreateModule(ctx context.Context, projectID, userID uuid.UUID, name, description string, parentModuleID *uuid.UUID) (*types.Module, error)
	ListModules(ctx context.Context, projectID, userID uuid.UUID) ([]*types.Module, error)
	CreateTask(ctx context.Context, moduleID, userID uuid.UUID, description string) (*types.Task, error)
	ListTasks(ctx context.Context, moduleID, userID uuid.UUID) ([]*types.Task, error)
	GetTask(ctx context.Context, taskID, userID uuid.UUID) (*types.Task, error)
	TaskHelp(ctx context.Context, taskID, userID uuid.UUID) (*TaskHelp, error)
}

type hierarchyService struct {
	db            *gorm.DB
	log           *logger.Logger
	projectRepo   repos.ProjectRepo
	moduleRepo    repos.ModuleRepo
	taskRepo      repos.TaskRepo
	taskHelpAgent TaskHelpAgent
}

func NewHierarchyService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projectRepo repos.ProjectRepo,
	moduleRepo repos.ModuleRepo,
	taskRepo repos.TaskRepo,
	taskHelpAgent TaskHelpAgent,
) HierarchyService {
	return &hierarchyService{
		db:            db,
		log:           baseLog.With("service", "HierarchyService"),
		projectRepo:   projectRepo,
		moduleRepo:    moduleRepo,
		taskRepo:      taskRepo,
		taskHelpAgent: taskHelpAgent,
	}
}

func (s *hierarchyService) ownedProject(ctx context.Context, projectID, userID uuid.UUID) (*types.Project, error) {
	projects, err := s.projectRepo.GetByIDs(ctx, nil, []uuid.UUID{projectID})
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, notFoundErr("project")
	}
	if projects[0].UserID != userID {
		return nil, ErrForbidden
	}
	return projects[0], nil
}

func (s *hierarchyService) ownedModule(ctx context.Context, moduleID, userID uuid.UUID) (*types.Module, *types.Project, error) {
	modules, err := s.moduleRepo.GetByIDs(ctx, nil, []uuid.UUID{moduleID})
	if err != nil {
		return nil, nil, err
	}
	if len(modules) == 0 {
		return nil, nil, notFoundErr("module")
	}
	project, err := s.ownedProject(ctx, modules[0].ProjectID, userID)
	if err != nil {
		return nil, nil, err
	}
	return modules[0], project, nil
}

func (s *hierarchyService) CreateModule(ctx context.Context, projectID, userID uuid.UUID, name, description string, parentModuleID *uuid.UUID) (*types.Module, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationErr("module name is required")
	}
	if _, err := s.ownedProject(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if parentModuleID != nil {
		parents, err := s.moduleRepo.GetByIDs(ctx, nil, []uuid.UUID{*parentModuleID})
		if err != nil {
			return nil, err
		}
		if len(parents) == 0 || parents[0].ProjectID != projectID {
			return nil, notFoundErr("parent module")
		}
	}

	count, err := s.moduleRepo.CountByProjectID(ctx, nil, projectID, false)
	if err != nil {
		return nil, err
	}
	module := &types.Module{
		ID:             uuid.New(),
		ProjectID:      projectID,
		ParentModuleID: parentModuleID,
		Name:           name,
		Description:    description,
		Position:       int(count),
	}
	if _, err := s.moduleRepo.Create(ctx, nil, []*types.Module{module}); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *hierarchyService) ListModules(ctx context.Context, projectID, userID uuid.UUID) ([]*types.Module, error) {
	if _, err := s.ownedProject(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.moduleRepo.GetByProjectIDs(ctx, nil, []uuid.UUID{projectID})
}

func (s *hierarchyService) CreateTask(ctx context.Context, moduleID, userID uuid.UUID, description string) (*types.Task, error) {
	if strings.TrimSpace(description) == "" {
		return nil, validationErr("task description is required")
	}
	if _, _, err := s.ownedModule(ctx, moduleID, userID); err != nil {
		return nil, err
	}

	count, err := s.taskRepo.CountByModuleID(ctx, nil, moduleID, false)
	if err != nil {
		return nil, err
	}
	task := &types.Task{
		ID:          uuid.New(),
		ModuleID:    moduleID,
		Description: description,
		Position:    int(count),
	}
	if _, err := s.taskRepo.Create(ctx, nil, []*types.Task{task}); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *hierarchyService) ListTasks(ctx context.Context, moduleID, userID uuid.UUID) ([]*types.Task, error) {
	if _, _, err := s.ownedModule(ctx, moduleID, userID); err != nil {
		return nil, err
	}
	return s.taskRepo.GetByModuleIDs(ctx, nil, []uuid.UUID{moduleID})
}

// GetTask loads a task and enforces ownership through its module's project.
func (s *hierarchyService) GetTask(ctx context.Context, taskID, userID uuid.UUID) (*types.Task, error) {
	tasks, err := s.taskRepo.GetByIDs(ctx, nil, []uuid.UUID{taskID})
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, notFoundErr("task")
	}
	if _, _, err := s.ownedModule(ctx, tasks[0].ModuleID, userID); err != nil {
		return nil, err
	}
	return tasks[0], nil
}

func (s *hierarchyService) TaskHelp(ctx context.Context, taskID, userID uuid.UUID) (*TaskHelp, error) {
	task, err := s.GetTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	_, project, err := s.ownedModule(ctx, task.ModuleID, userID)
	if err != nil {
		return nil, err
	}

	projectContext := fmt.Sprintf("Project: %s\nDescription: %s", project.Title, project.Description)
	help, err := s.taskHelpAgent.Generate(ctx, task.Description, projectContext)
	if err != nil {
		return nil, externalErr("task help generation", err)
	}
	return help, nil
}
