package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/caseworks/licensure-materials/internal/models"
	"github.com/caseworks/licensure-materials/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RecomputePlan derives the incident and slot state for an application from
// its disclosure answers. The whole derivation runs in one transaction:
// either the full plan lands or nothing changes.
//
// The operation is idempotent. Re-running with the same answers is a no-op;
// flipping an answer to "no" archives its incident; flipping it back
// reactivates the original incident with its slots and files intact.
func RecomputePlan(db *gorm.DB, applicationID string, answers DisclosureAnswers) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		var app models.Application
		if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Where("id = ?", applicationID).
			First(&app).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewNotFound("materials.plan.recompute", "application not found")
			}
			return err
		}

		activeKeys := make([]string, 0, len(disclosureQuestions))
		for _, q := range disclosureQuestions {
			if q.Answer(answers) {
				incidentID, err := UpsertQuestionnaireIncident(tx, applicationID, q.Category, q.Subtype, q.Key)
				if err != nil {
					return err
				}
				if err := EnsureSlots(tx, incidentID, SlotPreset(q.Category)); err != nil {
					return err
				}
				activeKeys = append(activeKeys, q.Key)
			} else {
				if err := ArchiveQuestionnaireIncident(tx, applicationID, q.Key); err != nil {
					return err
				}
			}
		}

		// Reconcile: archive active questionnaire incidents whose key is no
		// longer produced by the rules table (e.g. a retired question).
		stale := tx.Model(&models.Incident{}).
			Where("application_id = ? AND source = ? AND is_active = ?",
				applicationID, models.SourceQuestionnaire, true)
		if len(activeKeys) > 0 {
			stale = stale.Where("source_key NOT IN ?", activeKeys)
		}
		if err := stale.Update("is_active", false).Error; err != nil {
			return err
		}

		return upsertPlanRecord(tx, applicationID, answers)
	})
	if err != nil && types.KindOf(err) == "" {
		return types.NewUpstream("materials.plan.recompute", err)
	}
	return err
}

// upsertPlanRecord records the recomputation on the per-application plan row,
// snapshotting the normalized answers for later review.
func upsertPlanRecord(tx *gorm.DB, applicationID string, answers DisclosureAnswers) error {
	snapshot, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	var plan models.MaterialsPlan
	findErr := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
		Where("application_id = ?", applicationID).
		First(&plan).Error

	if errors.Is(findErr, gorm.ErrRecordNotFound) {
		plan = models.MaterialsPlan{
			ApplicationID: applicationID,
			Status:        models.PlanStatusInProgress,
			Answers:       models.JSON{JSON: snapshot},
			GeneratedAt:   &now,
		}
		if err := tx.Create(&plan).Error; err != nil {
			if !isUniqueViolation(err) {
				return err
			}
			// Concurrent first recomputation; fall through to update the
			// winner's row.
			if err := tx.Where("application_id = ?", applicationID).First(&plan).Error; err != nil {
				return err
			}
		} else {
			return nil
		}
	} else if findErr != nil {
		return findErr
	}

	return tx.Model(&plan).Updates(map[string]interface{}{
		"status":       models.PlanStatusInProgress,
		"answers":      models.JSON{JSON: snapshot},
		"generated_at": now,
	}).Error
}
