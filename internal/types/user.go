package types

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username          string    `gorm:"uniqueIndex;not null;column:username" json:"username"`
	Email             string    `gorm:"column:email" json:"email"`
	Password          string    `gorm:"column:password" json:"-"`
	GithubID          *int64    `gorm:"column:github_id;uniqueIndex" json:"github_id,omitempty"`
	GithubUsername    string    `gorm:"column:github_username" json:"github_username,omitempty"`
	GithubAccessToken string    `gorm:"column:github_access_token" json:"-"`
	AvatarURL         string    `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}
