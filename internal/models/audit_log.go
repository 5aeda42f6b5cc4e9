package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records a sensitive action for later review.
type AuditLog struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      uuid.UUID `gorm:"type:text;index" json:"user_id"`
	Action      string    `gorm:"not null;index" json:"action"`
	Resource    string    `json:"resource"`
	DetailsJSON string    `gorm:"type:text" json:"details_json"`
	Timestamp   time.Time `gorm:"index" json:"timestamp"`
}
