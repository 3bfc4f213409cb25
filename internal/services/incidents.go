package services

import (
	"errors"
	"strings"
	"time"

	"github.com/caseworks/licensure-materials/internal/models"
	"github.com/caseworks/licensure-materials/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// UpsertQuestionnaireIncident creates or reactivates the incident for one
// disclosure question. (application, source, source_key) is the idempotency
// key: an archived incident for the same key gets its original identity back
// rather than a new row, and category/subtype are overwritten if the rules
// table changed since it was created.
func UpsertQuestionnaireIncident(tx *gorm.DB, applicationID string, category models.IncidentCategory, subtype, sourceKey string) (string, error) {
	var incident models.Incident
	err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
		Where("application_id = ? AND source = ? AND source_key = ?",
			applicationID, models.SourceQuestionnaire, sourceKey).
		First(&incident).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		incident = models.Incident{
			ApplicationID: applicationID,
			Category:      category,
			Subtype:       subtype,
			Source:        models.SourceQuestionnaire,
			SourceKey:     sourceKey,
			IsActive:      true,
		}
		if err := tx.Create(&incident).Error; err != nil {
			if !isUniqueViolation(err) {
				return "", err
			}
			// Lost a create race against an identical recomputation; the
			// winner's row is the one to reuse.
			if err := tx.Where("application_id = ? AND source = ? AND source_key = ?",
				applicationID, models.SourceQuestionnaire, sourceKey).
				First(&incident).Error; err != nil {
				return "", err
			}
		} else {
			return incident.ID, nil
		}
	} else if err != nil {
		return "", err
	}

	updates := map[string]interface{}{}
	if incident.Category != category {
		updates["category"] = category
	}
	if incident.Subtype != subtype {
		updates["subtype"] = subtype
	}
	if !incident.IsActive {
		updates["is_active"] = true
	}
	if len(updates) > 0 {
		if err := tx.Model(&incident).Updates(updates).Error; err != nil {
			return "", err
		}
	}
	return incident.ID, nil
}

// ArchiveQuestionnaireIncident deactivates the incident for a disclosure
// question whose answer reverted to "no". Child slots and files are left
// untouched. A missing incident is not an error; the call is idempotent.
func ArchiveQuestionnaireIncident(tx *gorm.DB, applicationID, sourceKey string) error {
	return tx.Model(&models.Incident{}).
		Where("application_id = ? AND source = ? AND source_key = ? AND is_active = ?",
			applicationID, models.SourceQuestionnaire, sourceKey, true).
		Update("is_active", false).Error
}

// UserIncidentInput is the applicant-supplied detail for a manually added
// incident.
type UserIncidentInput struct {
	Category       models.IncidentCategory `json:"category"`
	Subtype        string                  `json:"subtype"`
	Jurisdiction   string                  `json:"jurisdiction"`
	Agency         string                  `json:"agency"`
	Court          string                  `json:"court"`
	CaseNumber     string                  `json:"case_number"`
	IncidentDate   *time.Time              `json:"incident_date"`
	ResolutionDate *time.Time              `json:"resolution_date"`
	Notes          string                  `json:"notes"`
}

// CreateUserIncident records an incident the applicant added by hand and
// generates its required slots from the category preset. User-added
// incidents have no idempotency key and are never auto-archived.
func CreateUserIncident(db *gorm.DB, applicationID, userID string, input UserIncidentInput) (models.Incident, error) {
	if _, ok := slotPresets[input.Category]; !ok {
		return models.Incident{}, types.NewValidation("materials.incident.create",
			"unknown incident category: "+string(input.Category))
	}
	if strings.TrimSpace(input.Subtype) == "" {
		return models.Incident{}, types.NewValidation("materials.incident.create", "subtype is required")
	}

	var incident models.Incident
	err := db.Transaction(func(tx *gorm.DB) error {
		var app models.Application
		if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Where("id = ? AND user_id = ?", applicationID, userID).
			First(&app).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewNotFound("materials.incident.create", "application not found")
			}
			return err
		}

		incident = models.Incident{
			ApplicationID:  applicationID,
			Category:       input.Category,
			Subtype:        input.Subtype,
			Source:         models.SourceUserAdded,
			Jurisdiction:   input.Jurisdiction,
			Agency:         input.Agency,
			Court:          input.Court,
			CaseNumber:     input.CaseNumber,
			IncidentDate:   input.IncidentDate,
			ResolutionDate: input.ResolutionDate,
			Notes:          input.Notes,
			IsActive:       true,
		}
		if err := tx.Create(&incident).Error; err != nil {
			return err
		}
		return EnsureSlots(tx, incident.ID, SlotPreset(input.Category))
	})
	if err != nil {
		if types.KindOf(err) == "" {
			return models.Incident{}, types.NewUpstream("materials.incident.create", err)
		}
		return models.Incident{}, err
	}
	return incident, nil
}

// isUniqueViolation reports whether err is a uniqueness-constraint failure,
// matched textually so it works across all supported drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") ||
		strings.Contains(s, "Duplicate entry") ||
		strings.Contains(s, "UNIQUE constraint") ||
		strings.Contains(s, "unique constraint")
}
