package types

import (
	"time"

	"github.com/google/uuid"
)

// Answer records the user's selected choice for one question. SelectedChoice
// must be one of the question's stored choices at creation time.
type Answer struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID     uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Question       *Question `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuestionID;references:ID" json:"question,omitempty"`
	SelectedChoice string    `gorm:"column:selected_choice;not null" json:"selected_choice"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (Answer) TableName() string {
	return "answer"
}
