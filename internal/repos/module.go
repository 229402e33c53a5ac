package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/types"
)

type ModuleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, modules []*types.Module) ([]*types.Module, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.Module, error)
	// GetByIDForUpdate locks the module row for the rest of the transaction so
	// concurrent completion recounts on sibling tasks serialize.
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) (*types.Module, error)
	GetByProjectIDs(ctx context.Context, tx *gorm.DB, projectIDs []uuid.UUID) ([]*types.Module, error)
	GetByParentIDs(ctx context.Context, tx *gorm.DB, parentIDs []uuid.UUID) ([]*types.Module, error)
	CountByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, completedOnly bool) (int64, error)
	CountByParentID(ctx context.Context, tx *gorm.DB, parentID uuid.UUID, completedOnly bool) (int64, error)
	SetCompleted(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, completed bool) error
}

type moduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return &moduleRepo{db: db, log: baseLog.With("repo", "ModuleRepo")}
}

func (mr *moduleRepo) Create(ctx context.Context, tx *gorm.DB, modules []*types.Module) ([]*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if len(modules) == 0 {
		return []*types.Module{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

func (mr *moduleRepo) GetByIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*types.Module
	if len(moduleIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", moduleIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *moduleRepo) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) (*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	query := transaction.WithContext(ctx)
	// sqlite has no FOR UPDATE; its writes serialize on the database lock.
	if transaction.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var results []*types.Module
	if err := query.
		Where("id = ?", moduleID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (mr *moduleRepo) GetByProjectIDs(ctx context.Context, tx *gorm.DB, projectIDs []uuid.UUID) ([]*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*types.Module
	if len(projectIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("project_id IN ?", projectIDs).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *moduleRepo) GetByParentIDs(ctx context.Context, tx *gorm.DB, parentIDs []uuid.UUID) ([]*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*types.Module
	if len(parentIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("parent_module_id IN ?", parentIDs).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *moduleRepo) CountByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, completedOnly bool) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	query := transaction.WithContext(ctx).
		Model(&types.Module{}).
		Where("project_id = ?", projectID)
	if completedOnly {
		query = query.Where("completed = ?", true)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (mr *moduleRepo) CountByParentID(ctx context.Context, tx *gorm.DB, parentID uuid.UUID, completedOnly bool) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	query := transaction.WithContext(ctx).
		Model(&types.Module{}).
		Where("parent_module_id = ?", parentID)
	if completedOnly {
		query = query.Where("completed = ?", true)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (mr *moduleRepo) SetCompleted(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, completed bool) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Module{}).
		Where("id = ?", moduleID).
		Update("completed", completed).Error
}
