package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/caseworks/licensure-materials/internal/models"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	// A single connection keeps every session on the same in-memory store.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying SQL DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Application{},
		&models.Incident{},
		&models.DocumentSlot{},
		&models.UploadedFile{},
		&models.MaterialsPlan{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// createTestApplication inserts an application owned by userID.
func createTestApplication(t *testing.T, db *gorm.DB, userID, referenceCode string) models.Application {
	t.Helper()
	app := models.Application{
		UserID:        userID,
		ReferenceCode: referenceCode,
	}
	if err := db.Create(&app).Error; err != nil {
		t.Fatalf("Failed to create test application: %v", err)
	}
	return app
}

// activeIncidents loads the active incidents for an application.
func activeIncidents(t *testing.T, db *gorm.DB, applicationID string) []models.Incident {
	t.Helper()
	var incidents []models.Incident
	if err := db.Where("application_id = ? AND is_active = ?", applicationID, true).
		Find(&incidents).Error; err != nil {
		t.Fatalf("Failed to load incidents: %v", err)
	}
	return incidents
}

// slotsForIncident loads all slots for an incident.
func slotsForIncident(t *testing.T, db *gorm.DB, incidentID string) []models.DocumentSlot {
	t.Helper()
	var slots []models.DocumentSlot
	if err := db.Where("incident_id = ?", incidentID).Find(&slots).Error; err != nil {
		t.Fatalf("Failed to load slots: %v", err)
	}
	return slots
}
