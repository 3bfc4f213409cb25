package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caseworks/licensure-materials/internal/models"
	"github.com/caseworks/licensure-materials/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// slotPresets is the canonical mapping from incident category to required
// slot codes. The table is total over the category enumeration; SlotPreset
// panics on a category outside it because that is a programming error, not a
// runtime condition.
var slotPresets = map[models.IncidentCategory][]models.SlotCode{
	models.CategoryBackground: {
		models.SlotPoliceReport,
		models.SlotCourtRecords,
		models.SlotSupervisionProof,
		models.SlotPaymentProof,
		models.SlotRecordsUnavailableLetter,
		models.SlotNarrativeUploadOption,
	},
	models.CategoryDiscipline: {
		models.SlotDisciplinaryOrder,
		models.SlotReinstatementLetter,
		models.SlotNarrativeUploadOption,
	},
	models.CategoryFinancial: {
		models.SlotJudgmentRecords,
		models.SlotLienDocument,
		models.SlotPaymentProof,
		models.SlotNarrativeUploadOption,
	},
	models.CategoryBankruptcy: {
		models.SlotBankruptcyPetition,
		models.SlotDischargeOrder,
		models.SlotNarrativeUploadOption,
	},
}

// SlotPreset returns the canonical slot codes for a category.
func SlotPreset(category models.IncidentCategory) []models.SlotCode {
	preset, ok := slotPresets[category]
	if !ok {
		panic(fmt.Sprintf("services: no slot preset for incident category %q", category))
	}
	out := make([]models.SlotCode, len(preset))
	copy(out, preset)
	return out
}

// EnsureSlots inserts a "missing" slot for every code the incident does not
// already have. Existing slots keep their status and waive state, so
// recomputation never clobbers upload or waiver progress.
func EnsureSlots(tx *gorm.DB, incidentID string, codes []models.SlotCode) error {
	var existing []models.SlotCode
	if err := tx.Model(&models.DocumentSlot{}).
		Where("incident_id = ?", incidentID).
		Pluck("slot_code", &existing).Error; err != nil {
		return err
	}

	have := make(map[models.SlotCode]struct{}, len(existing))
	for _, code := range existing {
		have[code] = struct{}{}
	}

	for _, code := range codes {
		if _, ok := have[code]; ok {
			continue
		}
		slot := models.DocumentSlot{
			IncidentID: incidentID,
			SlotCode:   code,
			Required:   code != models.SlotNarrativeUploadOption,
			Status:     models.SlotStatusMissing,
		}
		if err := tx.Create(&slot).Error; err != nil {
			// A concurrent recomputation created the same slot; converge.
			if isUniqueViolation(err) {
				continue
			}
			return err
		}
	}
	return nil
}

// WaiveSlot marks a slot waived with the applicant's reason. A slot that
// already holds an uploaded file cannot be waived.
func WaiveSlot(db *gorm.DB, slotID, userID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return types.NewValidation("materials.slot.waive", "waive reason is required")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := ResolveSlotOwnership(tx, slotID, userID); err != nil {
			return err
		}

		var slot models.DocumentSlot
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Where("id = ?", slotID).
			First(&slot).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewNotFound("materials.slot.waive", "slot not found")
			}
			return err
		}
		if slot.Status == models.SlotStatusUploaded {
			return types.NewValidation("materials.slot.waive", "slot already has an uploaded file")
		}

		return tx.Model(&slot).Updates(map[string]interface{}{
			"status":       models.SlotStatusWaived,
			"waive_reason": reason,
		}).Error
	})
	if err != nil && types.KindOf(err) == "" {
		return types.NewUpstream("materials.slot.waive", err)
	}
	return err
}
