package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/types"
)

type AnswerRepo interface {
	Create(ctx context.Context, tx *gorm.DB, answers []*types.Answer) ([]*types.Answer, error)
	GetByQuestionIDs(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) ([]*types.Answer, error)
}

type answerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return &answerRepo{db: db, log: baseLog.With("repo", "AnswerRepo")}
}

func (ar *answerRepo) Create(ctx context.Context, tx *gorm.DB, answers []*types.Answer) ([]*types.Answer, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if len(answers) == 0 {
		return []*types.Answer{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (ar *answerRepo) GetByQuestionIDs(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) ([]*types.Answer, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.Answer
	if len(questionIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("question_id IN ?", questionIDs).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
