package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account. PasswordHash is nil for accounts created
// through a federated identity provider.
type User struct {
	ID              uuid.UUID      `gorm:"type:text;primary_key" json:"id"`
	Email           string         `gorm:"uniqueIndex;not null" json:"email"`
	Name            string         `json:"name,omitempty"`
	AvatarURL       string         `json:"avatar_url,omitempty"`
	PasswordHash    *string        `json:"-"`
	Provider        string         `json:"provider,omitempty"`
	ProviderSubject string         `gorm:"index" json:"-"`
	EmailVerifiedAt *time.Time     `json:"email_verified_at,omitempty"`
	RoleID          *uint          `json:"role_id,omitempty"`
	Role            *Role          `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
