package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IncidentCategory classifies a disclosed matter. The set is closed; every
// category has a slot preset in the services package.
type IncidentCategory string

const (
	CategoryBackground IncidentCategory = "background"
	CategoryDiscipline IncidentCategory = "discipline"
	CategoryFinancial  IncidentCategory = "financial"
	CategoryBankruptcy IncidentCategory = "bankruptcy"
)

// IncidentSource records how an incident came to exist.
type IncidentSource string

const (
	// SourceQuestionnaire marks incidents derived from disclosure answers.
	// These are keyed by (application, source, source_key) and reconciled
	// on every plan recomputation.
	SourceQuestionnaire IncidentSource = "questionnaire"
	// SourceUserAdded marks incidents the applicant added by hand. They are
	// never auto-archived.
	SourceUserAdded IncidentSource = "user_added"
)

// Incident represents a disclosed background/discipline/financial/bankruptcy
// matter requiring supporting documentation. Incidents are archived
// (IsActive=false), never hard-deleted, so slot and file history survives an
// answer flipping back to "no".
type Incident struct {
	ID             string           `gorm:"type:char(36);primaryKey"`
	ApplicationID  string           `gorm:"type:char(36);not null;index;uniqueIndex:idx_incident_source_key,priority:1"`
	Category       IncidentCategory `gorm:"size:32;not null"`
	Subtype        string           `gorm:"size:64;not null"`
	Source         IncidentSource   `gorm:"size:16;not null;uniqueIndex:idx_incident_source_key,priority:2"`
	SourceKey      string           `gorm:"size:64;not null;uniqueIndex:idx_incident_source_key,priority:3"`
	Jurisdiction   string           `gorm:"size:128"`
	Agency         string           `gorm:"size:255"`
	Court          string           `gorm:"size:255"`
	CaseNumber     string           `gorm:"size:128"`
	IncidentDate   *time.Time
	ResolutionDate *time.Time
	Notes          string `gorm:"size:4000"`
	IsActive       bool   `gorm:"not null;default:true;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Slots          []DocumentSlot `gorm:"foreignKey:IncidentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// BeforeCreate assigns a uuid primary key, and a synthetic source key for
// user-added incidents so the composite unique index stays total without
// partial-index support across drivers.
func (i *Incident) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Source == SourceUserAdded && i.SourceKey == "" {
		i.SourceKey = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for Incident
func (Incident) TableName() string {
	return "incidents"
}
