package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/types"
)

type TaskRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tasks []*types.Task) ([]*types.Task, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, taskIDs []uuid.UUID) ([]*types.Task, error)
	GetByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.Task, error)
	CountByModuleID(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, completedOnly bool) (int64, error)
	SetCompleted(ctx context.Context, tx *gorm.DB, taskID uuid.UUID, completed bool) error
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return &taskRepo{db: db, log: baseLog.With("repo", "TaskRepo")}
}

func (tr *taskRepo) Create(ctx context.Context, tx *gorm.DB, tasks []*types.Task) ([]*types.Task, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	if len(tasks) == 0 {
		return []*types.Task{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (tr *taskRepo) GetByIDs(ctx context.Context, tx *gorm.DB, taskIDs []uuid.UUID) ([]*types.Task, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var results []*types.Task
	if len(taskIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", taskIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *taskRepo) GetByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.Task, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var results []*types.Task
	if len(moduleIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("module_id IN ?", moduleIDs).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *taskRepo) CountByModuleID(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, completedOnly bool) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	query := transaction.WithContext(ctx).
		Model(&types.Task{}).
		Where("module_id = ?", moduleID)
	if completedOnly {
		query = query.Where("completed = ?", true)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (tr *taskRepo) SetCompleted(ctx context.Context, tx *gorm.DB, taskID uuid.UUID, completed bool) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Task{}).
		Where("id = ?", taskID).
		Update("completed", completed).Error
}
