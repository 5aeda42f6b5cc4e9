package models

import (
	"time"

	"gorm.io/gorm"
)

// Recruitment is a job posting. Closed postings stay listable on admin
// routes but are hidden from the public feed.
type Recruitment struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	Title          string         `gorm:"not null" json:"title"`
	Location       string         `json:"location,omitempty"`
	EmploymentType string         `json:"employment_type,omitempty"`
	Description    string         `gorm:"type:text" json:"description"`
	Open           bool           `gorm:"default:true" json:"open"`
	ClosesAt       *time.Time     `json:"closes_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
