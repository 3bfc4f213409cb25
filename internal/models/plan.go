package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlanStatus is the coarse progress marker for materials generation. It is
// not authoritative over incident/slot state.
type PlanStatus string

const (
	PlanStatusDraft      PlanStatus = "draft"
	PlanStatusInProgress PlanStatus = "in_progress"
)

// MaterialsPlan is the single per-application record tracking whether
// supporting-materials generation has run. Answers holds the last normalized
// questionnaire snapshot for admin review.
type MaterialsPlan struct {
	ID            string     `gorm:"type:char(36);primaryKey"`
	ApplicationID string     `gorm:"type:char(36);not null;uniqueIndex"`
	Status        PlanStatus `gorm:"size:16;not null;default:draft"`
	Answers       JSON
	GeneratedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BeforeCreate assigns a uuid primary key when none was provided.
func (p *MaterialsPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for MaterialsPlan
func (MaterialsPlan) TableName() string {
	return "materials_plans"
}
