package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	ProviderEmail  = "email"
	ProviderGitHub = "github"
)

// User is an account. Email accounts carry a bcrypt hash; social accounts are
// keyed by their provider id and have no password.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password     string         `gorm:"not null;default:''" json:"-"`
	DisplayName  string         `gorm:"size:100" json:"display_name"`
	AvatarURL    string         `gorm:"size:500" json:"avatar_url"`
	Role         string         `gorm:"size:20;default:'user'" json:"role"`
	GitHubID     *string        `gorm:"column:github_id;size:50;uniqueIndex" json:"-"`
	AuthProvider string         `gorm:"size:50;default:'email'" json:"auth_provider"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
