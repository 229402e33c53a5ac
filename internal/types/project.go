package types

import (
	"time"

	"github.com/google/uuid"
)

// Project is the root of the roadmap hierarchy. Completed is derived by the
// completion service from its modules and is never set directly by a client.
type Project struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Description string     `gorm:"column:description" json:"description"`
	RepoName    string     `gorm:"column:repo_name" json:"repo_name,omitempty"`
	RepoURL     string     `gorm:"column:repo_url" json:"repo_url,omitempty"`
	Completed   bool       `gorm:"column:completed;not null;default:false" json:"completed"`
	Modules     []Module   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"modules,omitempty"`
	Questions   []Question `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"questions,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (Project) TableName() string {
	return "project"
}
