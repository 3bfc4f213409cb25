package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadedFile is one version of the evidence uploaded into a slot. Versions
// form a linear chain: at most one row per slot is active, and every
// deactivated row points at its successor via ReplacedByFileID. Rows are
// never deleted.
//
// The unique index on (slot_id, version) is the arbiter of the next-version
// race between concurrent completions; the loser surfaces a conflict and
// retries with a freshly read version.
type UploadedFile struct {
	ID               string `gorm:"type:char(36);primaryKey"`
	SlotID           string `gorm:"type:char(36);not null;index;uniqueIndex:idx_file_slot_version,priority:1"`
	OriginalFilename string `gorm:"size:255;not null"`
	SystemFilename   string `gorm:"size:255;not null"`
	Version          uint   `gorm:"not null;uniqueIndex:idx_file_slot_version,priority:2"`
	StoragePath      string `gorm:"size:512;not null"`
	MimeType         string `gorm:"size:128"`
	SizeBytes        int64
	IsActive         bool    `gorm:"not null;default:true;index"`
	ReplacedByFileID *string `gorm:"type:char(36)"`
	UploadedBy       string  `gorm:"type:char(36);not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// BeforeCreate assigns a uuid primary key when none was provided.
func (f *UploadedFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for UploadedFile
func (UploadedFile) TableName() string {
	return "uploaded_files"
}
