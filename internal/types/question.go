package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Question is a clarifying question generated for a project. Choices holds an
// ordered JSON array of the offered answer strings (at least two).
type Question struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Project   *Project       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	Text      string         `gorm:"column:text;not null" json:"text"`
	Choices   datatypes.JSON `gorm:"column:choices;type:jsonb" json:"choices"`
	Answers   []Answer       `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuestionID;references:ID" json:"answers,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (Question) TableName() string {
	return "question"
}

func (q *Question) SetChoices(choices []string) error {
	raw, err := json.Marshal(choices)
	if err != nil {
		return err
	}
	q.Choices = datatypes.JSON(raw)
	return nil
}

func (q *Question) ChoiceStrings() []string {
	var choices []string
	if len(q.Choices) == 0 {
		return choices
	}
	_ = json.Unmarshal(q.Choices, &choices)
	return choices
}
