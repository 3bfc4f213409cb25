package services

import (
	"errors"
	"time"

	"github.com/caseworks/licensure-materials/internal/models"
	"github.com/caseworks/licensure-materials/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ChecklistSlot is one slot in the applicant-facing checklist.
type ChecklistSlot struct {
	ID          string            `json:"id"`
	SlotCode    models.SlotCode   `json:"slot_code"`
	Required    bool              `json:"required"`
	Status      models.SlotStatus `json:"status"`
	WaiveReason string            `json:"waive_reason,omitempty"`
	ActiveFile  *FileSummary      `json:"active_file,omitempty"`
}

// ChecklistIncident groups a checklist by incident.
type ChecklistIncident struct {
	ID           string                  `json:"id"`
	Category     models.IncidentCategory `json:"category"`
	Subtype      string                  `json:"subtype"`
	Source       models.IncidentSource   `json:"source"`
	Jurisdiction string                  `json:"jurisdiction,omitempty"`
	CaseNumber   string                  `json:"case_number,omitempty"`
	Slots        []ChecklistSlot         `json:"slots"`
}

// Checklist is the full materials view for one application: every active
// incident with its slots and the currently active file per slot.
type Checklist struct {
	ApplicationID string              `json:"application_id"`
	PlanStatus    models.PlanStatus   `json:"plan_status"`
	GeneratedAt   *time.Time          `json:"generated_at,omitempty"`
	Incidents     []ChecklistIncident `json:"incidents"`
}

// FileSummary is the wire shape for one uploaded file version.
type FileSummary struct {
	ID               string    `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	SystemFilename   string    `json:"system_filename"`
	Version          uint      `json:"version"`
	MimeType         string    `json:"mime_type,omitempty"`
	SizeBytes        int64     `json:"size_bytes"`
	IsActive         bool      `json:"is_active"`
	ReplacedByFileID *string   `json:"replaced_by_file_id,omitempty"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// ApplicationChecklist builds the checklist for an application the caller
// owns. Archived incidents are excluded; their slots and files survive in the
// database but are not part of the active plan.
func ApplicationChecklist(db *gorm.DB, applicationID, userID string) (Checklist, error) {
	silent := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})

	var app models.Application
	if err := silent.Where("id = ? AND user_id = ?", applicationID, userID).
		First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Checklist{}, types.NewNotFound("materials.checklist", "application not found")
		}
		return Checklist{}, types.NewUpstream("materials.checklist", err)
	}

	out := Checklist{ApplicationID: applicationID, PlanStatus: models.PlanStatusDraft}

	var plan models.MaterialsPlan
	planErr := silent.Where("application_id = ?", applicationID).First(&plan).Error
	if planErr == nil {
		out.PlanStatus = plan.Status
		out.GeneratedAt = plan.GeneratedAt
	} else if !errors.Is(planErr, gorm.ErrRecordNotFound) {
		return Checklist{}, types.NewUpstream("materials.checklist", planErr)
	}

	var incidents []models.Incident
	if err := db.Where("application_id = ? AND is_active = ?", applicationID, true).
		Order("created_at ASC, id ASC").
		Find(&incidents).Error; err != nil {
		return Checklist{}, types.NewUpstream("materials.checklist", err)
	}

	out.Incidents = make([]ChecklistIncident, 0, len(incidents))
	for _, inc := range incidents {
		var slots []models.DocumentSlot
		if err := db.Where("incident_id = ?", inc.ID).
			Order("slot_code ASC").
			Find(&slots).Error; err != nil {
			return Checklist{}, types.NewUpstream("materials.checklist", err)
		}

		ci := ChecklistIncident{
			ID:           inc.ID,
			Category:     inc.Category,
			Subtype:      inc.Subtype,
			Source:       inc.Source,
			Jurisdiction: inc.Jurisdiction,
			CaseNumber:   inc.CaseNumber,
			Slots:        make([]ChecklistSlot, 0, len(slots)),
		}
		for _, slot := range slots {
			cs := ChecklistSlot{
				ID:          slot.ID,
				SlotCode:    slot.SlotCode,
				Required:    slot.Required,
				Status:      slot.Status,
				WaiveReason: slot.WaiveReason,
			}
			var active models.UploadedFile
			err := silent.Where("slot_id = ? AND is_active = ?", slot.ID, true).
				First(&active).Error
			if err == nil {
				summary := fileSummary(active)
				cs.ActiveFile = &summary
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return Checklist{}, types.NewUpstream("materials.checklist", err)
			}
			ci.Slots = append(ci.Slots, cs)
		}
		out.Incidents = append(out.Incidents, ci)
	}
	return out, nil
}

// SlotFiles returns the full version history for a slot the caller owns,
// oldest version first.
func SlotFiles(db *gorm.DB, slotID, userID string) ([]FileSummary, error) {
	if _, err := ResolveSlotOwnership(db, slotID, userID); err != nil {
		return nil, wrapUntyped("materials.slot.files", err)
	}

	var files []models.UploadedFile
	if err := db.Where("slot_id = ?", slotID).
		Order("version ASC").
		Find(&files).Error; err != nil {
		return nil, types.NewUpstream("materials.slot.files", err)
	}

	out := make([]FileSummary, 0, len(files))
	for _, f := range files {
		out = append(out, fileSummary(f))
	}
	return out, nil
}

func fileSummary(f models.UploadedFile) FileSummary {
	return FileSummary{
		ID:               f.ID,
		OriginalFilename: f.OriginalFilename,
		SystemFilename:   f.SystemFilename,
		Version:          f.Version,
		MimeType:         f.MimeType,
		SizeBytes:        f.SizeBytes,
		IsActive:         f.IsActive,
		ReplacedByFileID: f.ReplacedByFileID,
		UploadedAt:       f.CreatedAt,
	}
}
