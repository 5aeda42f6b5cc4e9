package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is a server-side record of a live login. The ID is an opaque
// random value handed to the client as a cookie; a session whose expiry
// has passed is treated as nonexistent. Sessions are hard-deleted.
type Session struct {
	ID        string    `gorm:"primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:text;not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
