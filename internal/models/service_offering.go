package models

import (
	"time"

	"gorm.io/gorm"
)

// ServiceOffering is a service entry shown on the public site.
type ServiceOffering struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Title     string         `gorm:"not null" json:"title"`
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`
	Summary   string         `json:"summary,omitempty"`
	Body      string         `gorm:"type:text" json:"body"`
	Icon      string         `json:"icon,omitempty"`
	SortOrder int            `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName keeps the table name short.
func (ServiceOffering) TableName() string {
	return "services"
}
