package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/repos"
)

// CompletionService propagates completion upward through the hierarchy:
// marking a task complete recounts its module, marking a module complete
// recounts its ancestors, and a fully completed module chain flips the
// project. Completion is always recomputed from a full re-count rather than
// decremented, so repeated calls are idempotent and drift self-heals.
type CompletionService interface {
	MarkTaskComplete(ctx context.Context, taskID uuid.UUID) error
	MarkModuleComplete(ctx context.Context, moduleID uuid.UUID) error
}

type completionService struct {
	db          *gorm.DB
	log         *logger.Logger
	projectRepo repos.ProjectRepo
	moduleRepo  repos.ModuleRepo
	taskRepo    repos.TaskRepo
}

func NewCompletionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projectRepo repos.ProjectRepo,
	moduleRepo repos.ModuleRepo,
	taskRepo repos.TaskRepo,
) CompletionService {
	return &completionService{
		db:          db,
		log:         baseLog.With("service", "CompletionService"),
		projectRepo: projectRepo,
		moduleRepo:  moduleRepo,
		taskRepo:    taskRepo,
	}
}

// MarkTaskComplete sets the task complete and recomputes every ancestor in a
// single transaction: either the task, its module chain and the project all
// commit together or nothing does.
func (cs *completionService) MarkTaskComplete(ctx context.Context, taskID uuid.UUID) error {
	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks, err := cs.taskRepo.GetByIDs(ctx, tx, []uuid.UUID{taskID})
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			return notFoundErr("task")
		}
		task := tasks[0]

		if err := cs.taskRepo.SetCompleted(ctx, tx, taskID, true); err != nil {
			return err
		}

		return cs.recomputeUpward(ctx, tx, task.ModuleID)
	})
}

// MarkModuleComplete is the manual override: it completes the module directly,
// bypassing its tasks, then recomputes the ancestors above it.
func (cs *completionService) MarkModuleComplete(ctx context.Context, moduleID uuid.UUID) error {
	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		module, err := cs.moduleRepo.GetByIDForUpdate(ctx, tx, moduleID)
		if err != nil {
			return err
		}
		if module == nil {
			return notFoundErr("module")
		}

		if err := cs.moduleRepo.SetCompleted(ctx, tx, moduleID, true); err != nil {
			return err
		}

		if module.ParentModuleID != nil {
			return cs.recomputeUpward(ctx, tx, *module.ParentModuleID)
		}
		return cs.recomputeProject(ctx, tx, module.ProjectID)
	})
}

// recomputeUpward walks from the given module to the hierarchy root,
// re-counting each level. The FOR UPDATE read serializes concurrent sibling
// completions on the same module so neither recount can miss the other's
// write.
func (cs *completionService) recomputeUpward(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) error {
	currentID := moduleID
	for {
		module, err := cs.moduleRepo.GetByIDForUpdate(ctx, tx, currentID)
		if err != nil {
			return err
		}
		if module == nil {
			return notFoundErr("module")
		}

		totalTasks, err := cs.taskRepo.CountByModuleID(ctx, tx, currentID, false)
		if err != nil {
			return err
		}
		completedTasks, err := cs.taskRepo.CountByModuleID(ctx, tx, currentID, true)
		if err != nil {
			return err
		}
		totalChildren, err := cs.moduleRepo.CountByParentID(ctx, tx, currentID, false)
		if err != nil {
			return err
		}
		completedChildren, err := cs.moduleRepo.CountByParentID(ctx, tx, currentID, true)
		if err != nil {
			return err
		}

		// A module with zero tasks and zero children counts complete (0 == 0).
		complete := totalTasks == completedTasks && totalChildren == completedChildren
		if module.Completed != complete {
			if err := cs.moduleRepo.SetCompleted(ctx, tx, currentID, complete); err != nil {
				return err
			}
		}

		if module.ParentModuleID == nil {
			return cs.recomputeProject(ctx, tx, module.ProjectID)
		}
		currentID = *module.ParentModuleID
	}
}

func (cs *completionService) recomputeProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) error {
	totalModules, err := cs.moduleRepo.CountByProjectID(ctx, tx, projectID, false)
	if err != nil {
		return err
	}
	completedModules, err := cs.moduleRepo.CountByProjectID(ctx, tx, projectID, true)
	if err != nil {
		return err
	}

	complete := totalModules == completedModules
	projects, err := cs.projectRepo.GetByIDs(ctx, tx, []uuid.UUID{projectID})
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		return notFoundErr("project")
	}
	if projects[0].Completed != complete {
		if err := cs.projectRepo.SetCompleted(ctx, tx, projectID, complete); err != nil {
			return err
		}
	}
	return nil
}
