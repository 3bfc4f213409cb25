package services

import (
	"errors"

	"github.com/caseworks/licensure-materials/internal/models"
	"github.com/caseworks/licensure-materials/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Ownership is the resolved chain for a slot: which incident and application
// it hangs off, plus the identity fields path derivation needs.
type Ownership struct {
	ApplicationID string
	IncidentID    string
	SlotCode      models.SlotCode
}

// ResolveSlotOwnership walks slot -> incident -> application and verifies the
// application belongs to userID. Every failure along the chain, including an
// application owned by someone else, surfaces as the same not-found error so
// callers cannot probe for the existence of other users' slots.
func ResolveSlotOwnership(db *gorm.DB, slotID, userID string) (Ownership, error) {
	silent := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})

	var slot models.DocumentSlot
	if err := silent.Where("id = ?", slotID).First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Ownership{}, types.NewNotFound("materials.ownership", "slot not found")
		}
		return Ownership{}, err
	}

	var incident models.Incident
	if err := silent.Where("id = ?", slot.IncidentID).First(&incident).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Ownership{}, types.NewNotFound("materials.ownership", "slot not found")
		}
		return Ownership{}, err
	}

	var app models.Application
	if err := silent.Where("id = ? AND user_id = ?", incident.ApplicationID, userID).
		First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Ownership{}, types.NewNotFound("materials.ownership", "slot not found")
		}
		return Ownership{}, err
	}

	return Ownership{
		ApplicationID: app.ID,
		IncidentID:    incident.ID,
		SlotCode:      slot.SlotCode,
	}, nil
}
