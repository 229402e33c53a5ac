package types

import (
	"time"

	"github.com/google/uuid"
)

// Module groups tasks under a project. ParentModuleID is nil for top-level
// modules; sub-modules reference their parent and may nest to any depth.
// Completed holds iff every direct task and every child module is completed.
type Module struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"project_id"`
	Project        *Project   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	ParentModuleID *uuid.UUID `gorm:"type:uuid;index" json:"parent_module_id,omitempty"`
	ParentModule   *Module    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ParentModuleID;references:ID" json:"-"`
	Name           string     `gorm:"column:name;not null" json:"name"`
	Description    string     `gorm:"column:description" json:"description"`
	Position       int        `gorm:"column:position;not null;default:0" json:"position"`
	Completed      bool       `gorm:"column:completed;not null;default:false" json:"completed"`
	Tasks          []Task     `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"tasks,omitempty"`
	SubModules     []Module   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ParentModuleID;references:ID" json:"sub_modules,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}

func (Module) TableName() string {
	return "module"
}
