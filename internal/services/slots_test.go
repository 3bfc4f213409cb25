package services

import (
	"testing"

	"github.com/caseworks/licensure-materials/internal/models"
	"github.com/caseworks/licensure-materials/internal/types"
)

func TestSlotPresetCoversEveryCategory(t *testing.T) {
	categories := []models.IncidentCategory{
		models.CategoryBackground,
		models.CategoryDiscipline,
		models.CategoryFinancial,
		models.CategoryBankruptcy,
	}
	for _, cat := range categories {
		preset := SlotPreset(cat)
		if len(preset) == 0 {
			t.Errorf("Category %s has an empty slot preset", cat)
		}
		seen := make(map[models.SlotCode]struct{}, len(preset))
		for _, code := range preset {
			if _, dup := seen[code]; dup {
				t.Errorf("Category %s preset repeats slot %s", cat, code)
			}
			seen[code] = struct{}{}
		}
	}
}

func TestSlotPresetReturnsCopy(t *testing.T) {
	a := SlotPreset(models.CategoryDiscipline)
	a[0] = models.SlotCode("MUTATED")
	b := SlotPreset(models.CategoryDiscipline)
	if b[0] == "MUTATED" {
		t.Error("SlotPreset leaked its internal slice")
	}
}

func TestSlotPresetUnknownCategoryPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for unmapped category")
		}
	}()
	SlotPreset(models.IncidentCategory("astrology"))
}

func TestEnsureSlotsCreatesMissingOnly(t *testing.T) {
	db := setupTestDB(t)
	app := createTestApplication(t, db, "user-1", "REF-001")

	incident := models.Incident{
		ApplicationID: app.ID,
		Category:      models.CategoryBankruptcy,
		Subtype:       "chapter_filing",
		Source:        models.SourceQuestionnaire,
		SourceKey:     "bankruptcy_7yr",
		IsActive:      true,
	}
	if err := db.Create(&incident).Error; err != nil {
		t.Fatalf("Failed to create incident: %v", err)
	}

	preset := SlotPreset(models.CategoryBankruptcy)
	if err := EnsureSlots(db, incident.ID, preset); err != nil {
		t.Fatalf("EnsureSlots failed: %v", err)
	}

	slots := slotsForIncident(t, db, incident.ID)
	if len(slots) != len(preset) {
		t.Fatalf("Expected %d slots, got %d", len(preset), len(slots))
	}
	for _, slot := range slots {
		if slot.Status != models.SlotStatusMissing {
			t.Errorf("Slot %s created with status %s, expected missing", slot.SlotCode, slot.Status)
		}
		wantRequired := slot.SlotCode != models.SlotNarrativeUploadOption
		if slot.Required != wantRequired {
			t.Errorf("Slot %s required=%v, expected %v", slot.SlotCode, slot.Required, wantRequired)
		}
	}

	// Second run must not duplicate or reset anything.
	if err := db.Model(&models.DocumentSlot{}).
		Where("incident_id = ? AND slot_code = ?", incident.ID, models.SlotBankruptcyPetition).
		Updates(map[string]interface{}{"status": models.SlotStatusWaived, "waive_reason": "court sealed"}).Error; err != nil {
		t.Fatalf("Failed to waive slot: %v", err)
	}
	if err := EnsureSlots(db, incident.ID, preset); err != nil {
		t.Fatalf("Second EnsureSlots failed: %v", err)
	}

	slots = slotsForIncident(t, db, incident.ID)
	if len(slots) != len(preset) {
		t.Fatalf("Expected EnsureSlots to be idempotent, got %d slots", len(slots))
	}
	for _, slot := range slots {
		if slot.SlotCode == models.SlotBankruptcyPetition && slot.Status != models.SlotStatusWaived {
			t.Errorf("EnsureSlots clobbered waived status: %s", slot.Status)
		}
	}
}

func TestWaiveSlotRequiresReason(t *testing.T) {
	db := setupTestDB(t)
	err := WaiveSlot(db, "slot-x", "user-1", "   ")
	if !types.IsValidation(err) {
		t.Errorf("Expected validation error for blank reason, got %v", err)
	}
}

func TestWaiveSlotRejectsUploadedSlot(t *testing.T) {
	db := setupTestDB(t)
	app := createTestApplication(t, db, "user-1", "REF-002")

	if err := RecomputePlan(db, app.ID, DisclosureAnswers{FelonyEver: true}); err != nil {
		t.Fatalf("RecomputePlan failed: %v", err)
	}
	incident := activeIncidents(t, db, app.ID)[0]
	slot := slotsForIncident(t, db, incident.ID)[0]

	if err := db.Model(&models.DocumentSlot{}).
		Where("id = ?", slot.ID).
		Update("status", models.SlotStatusUploaded).Error; err != nil {
		t.Fatalf("Failed to mark slot uploaded: %v", err)
	}

	err := WaiveSlot(db, slot.ID, "user-1", "cannot obtain")
	if !types.IsValidation(err) {
		t.Errorf("Expected validation error waiving uploaded slot, got %v", err)
	}
}

func TestWaiveSlotHappyPath(t *testing.T) {
	db := setupTestDB(t)
	app := createTestApplication(t, db, "user-1", "REF-003")

	if err := RecomputePlan(db, app.ID, DisclosureAnswers{Misdemeanor10Yr: true}); err != nil {
		t.Fatalf("RecomputePlan failed: %v", err)
	}
	incident := activeIncidents(t, db, app.ID)[0]
	slot := slotsForIncident(t, db, incident.ID)[0]

	if err := WaiveSlot(db, slot.ID, "user-1", "records destroyed in 2015 flood"); err != nil {
		t.Fatalf("WaiveSlot failed: %v", err)
	}

	var reloaded models.DocumentSlot
	if err := db.First(&reloaded, "id = ?", slot.ID).Error; err != nil {
		t.Fatalf("Failed to reload slot: %v", err)
	}
	if reloaded.Status != models.SlotStatusWaived {
		t.Errorf("Expected waived status, got %s", reloaded.Status)
	}
	if reloaded.WaiveReason == "" {
		t.Error("Expected waive reason to be recorded")
	}
}

func TestWaiveSlotOtherUsersSlotIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	app := createTestApplication(t, db, "owner", "REF-004")

	if err := RecomputePlan(db, app.ID, DisclosureAnswers{Bankruptcy7Yr: true}); err != nil {
		t.Fatalf("RecomputePlan failed: %v", err)
	}
	incident := activeIncidents(t, db, app.ID)[0]
	slot := slotsForIncident(t, db, incident.ID)[0]

	err := WaiveSlot(db, slot.ID, "intruder", "trying anyway")
	if !types.IsNotFound(err) {
		t.Errorf("Expected not-found for foreign slot, got %v", err)
	}
}
