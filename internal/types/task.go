package types

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID    uuid.UUID `gorm:"type:uuid;not null;index" json:"module_id"`
	Module      *Module   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	Description string    `gorm:"column:description;not null" json:"description"`
	Position    int       `gorm:"column:position;not null;default:0" json:"position"`
	Completed   bool      `gorm:"column:completed;not null;default:false" json:"completed"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Task) TableName() string {
	return "task"
}
