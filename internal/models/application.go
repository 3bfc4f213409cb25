package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Application is the root of the ownership chain for supporting materials.
// Intake CRUD lives in the portal service; this service only needs the row
// as the anchor for incidents and for resolving the owning user.
type Application struct {
	ID            string `gorm:"type:char(36);primaryKey"`
	UserID        string `gorm:"type:char(36);not null;index"`
	ReferenceCode string `gorm:"size:32;uniqueIndex;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Incidents     []Incident `gorm:"foreignKey:ApplicationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// BeforeCreate assigns a uuid primary key when none was provided.
func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for Application
func (Application) TableName() string {
	return "applications"
}
