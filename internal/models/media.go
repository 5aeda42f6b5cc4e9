package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Media is an uploaded asset. StoredName is the on-disk file name under the
// media directory and is not exposed directly; clients fetch via /uploads.
type Media struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	FileName   string         `gorm:"not null" json:"file_name"`
	StoredName string         `gorm:"uniqueIndex;not null" json:"-"`
	MimeType   string         `json:"mime_type"`
	SizeBytes  int64          `json:"size_bytes"`
	URL        string         `gorm:"-" json:"url,omitempty"`
	UploaderID uuid.UUID      `gorm:"type:text;not null;index" json:"uploader_id"`
	Uploader   *User          `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
