package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/caseworks/licensure-materials/internal/handlers"
	"github.com/caseworks/licensure-materials/internal/models"
	"github.com/caseworks/licensure-materials/internal/services"
	"github.com/caseworks/licensure-materials/tests/helpers"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type stubSigner struct{}

func (stubSigner) IssueUploadURL(_ context.Context, key, _ string) (string, error) {
	return "https://blob.test/put/" + key, nil
}

func (stubSigner) IssueDownloadURL(_ context.Context, key string) (string, error) {
	return "https://blob.test/get/" + key, nil
}

// setupTestDB creates an in-memory SQLite database for handler testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
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

// newTestApp wires the materials routes behind a stub auth middleware that
// authenticates every request as userID.
func newTestApp(db *gorm.DB, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})

	planHandler := &handlers.PlanHandler{DB: db}
	incidentHandler := &handlers.IncidentHandler{DB: db}
	uploadHandler := &handlers.UploadHandler{DB: db, Signer: stubSigner{}}

	app.Post("/api/materials/applications/:application/plan", planHandler.RecomputePlan)
	app.Get("/api/materials/applications/:application/checklist", planHandler.GetChecklist)
	app.Post("/api/materials/applications/:application/incidents", incidentHandler.CreateIncident)
	app.Post("/api/materials/slots/:slot/uploads", uploadHandler.BeginUpload)
	app.Post("/api/materials/slots/:slot/uploads/complete", uploadHandler.CompleteUpload)
	app.Get("/api/materials/slots/:slot/files", uploadHandler.ListSlotFiles)
	app.Post("/api/materials/slots/:slot/waive", uploadHandler.WaiveSlot)
	app.Get("/api/materials/files/:file/download", uploadHandler.DownloadFile)

	return app
}

func createApplication(t *testing.T, db *gorm.DB, userID, ref string) models.Application {
	t.Helper()
	app := models.Application{UserID: userID, ReferenceCode: ref}
	if err := db.Create(&app).Error; err != nil {
		t.Fatalf("Failed to create application: %v", err)
	}
	return app
}

func TestRecomputePlanEndpoint(t *testing.T) {
	db := setupTestDB(t)
	application := createApplication(t, db, "user-1", "REF-H1")
	app := newTestApp(db, "user-1")

	body := []byte(`{"felony_ever": "yes", "bankruptcy_7yr": true}`)
	req := httptest.NewRequest("POST", "/api/materials/applications/"+application.ID+"/plan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var checklist services.Checklist
	helpers.ParseJSON(t, resp, &checklist)
	if len(checklist.Incidents) != 2 {
		t.Errorf("Expected 2 incidents in checklist, got %d", len(checklist.Incidents))
	}
	if checklist.PlanStatus != models.PlanStatusInProgress {
		t.Errorf("Expected in_progress plan, got %s", checklist.PlanStatus)
	}
}

func TestRecomputePlanRejectsUnknownAnswerKey(t *testing.T) {
	db := setupTestDB(t)
	application := createApplication(t, db, "user-1", "REF-H2")
	app := newTestApp(db, "user-1")

	body := []byte(`{"felony_evar": true}`)
	req := httptest.NewRequest("POST", "/api/materials/applications/"+application.ID+"/plan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertErrorEnvelope(t, resp, 400)
}

func TestRecomputePlanForeignApplicationIs404(t *testing.T) {
	db := setupTestDB(t)
	application := createApplication(t, db, "owner", "REF-H3")
	app := newTestApp(db, "intruder")

	req := httptest.NewRequest("POST", "/api/materials/applications/"+application.ID+"/plan",
		bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertErrorEnvelope(t, resp, 404)
}

func TestUploadRoundTripEndpoints(t *testing.T) {
	db := setupTestDB(t)
	application := createApplication(t, db, "user-1", "REF-H4")
	app := newTestApp(db, "user-1")

	// Derive the plan.
	req := httptest.NewRequest("POST", "/api/materials/applications/"+application.ID+"/plan",
		bytes.NewReader([]byte(`{"misdemeanor_10yr": "yes"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to recompute plan: %v", err)
	}
	var checklist services.Checklist
	helpers.ParseJSON(t, resp, &checklist)
	if len(checklist.Incidents) != 1 {
		t.Fatalf("Expected 1 incident, got %d", len(checklist.Incidents))
	}
	slotID := checklist.Incidents[0].Slots[0].ID

	// Begin the upload.
	req = httptest.NewRequest("POST", "/api/materials/slots/"+slotID+"/uploads",
		bytes.NewReader([]byte(`{"original_filename": "citation.pdf", "mime_type": "application/pdf"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to begin upload: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)
	var begin services.BeginUploadResult
	helpers.ParseJSON(t, resp, &begin)
	if begin.Version != 1 {
		t.Fatalf("Expected version 1, got %d", begin.Version)
	}

	// Complete it.
	completion, _ := json.Marshal(services.CompleteUploadInput{
		OriginalFilename: "citation.pdf",
		SystemFilename:   begin.SystemFilename,
		StoragePath:      begin.StoragePath,
		MimeType:         "application/pdf",
		Version:          begin.Version,
		SizeBytes:        2048,
	})
	req = httptest.NewRequest("POST", "/api/materials/slots/"+slotID+"/uploads/complete",
		bytes.NewReader(completion))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to complete upload: %v", err)
	}
	helpers.AssertStatus(t, resp, 201)
	var file services.FileSummary
	helpers.ParseJSON(t, resp, &file)
	if !file.IsActive {
		t.Error("Completed file should be active")
	}

	// Completing the same version again conflicts.
	req = httptest.NewRequest("POST", "/api/materials/slots/"+slotID+"/uploads/complete",
		bytes.NewReader(completion))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute duplicate completion: %v", err)
	}
	env := helpers.AssertErrorEnvelope(t, resp, 409)
	if !env.ConflictError {
		t.Error("Expected conflictError flag in 409 envelope")
	}

	// History shows the single version.
	req = httptest.NewRequest("GET", "/api/materials/slots/"+slotID+"/files", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to list files: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)
	var files []services.FileSummary
	helpers.ParseJSON(t, resp, &files)
	if len(files) != 1 {
		t.Errorf("Expected 1 file in history, got %d", len(files))
	}

	// Download URL resolves through the stub signer.
	req = httptest.NewRequest("GET", "/api/materials/files/"+file.ID+"/download", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to fetch download URL: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)
	var download map[string]string
	helpers.ParseJSON(t, resp, &download)
	if download["download_url"] == "" {
		t.Error("Expected download_url in response")
	}
}

func TestWaiveEndpoint(t *testing.T) {
	db := setupTestDB(t)
	application := createApplication(t, db, "user-1", "REF-H5")
	app := newTestApp(db, "user-1")

	req := httptest.NewRequest("POST", "/api/materials/applications/"+application.ID+"/plan",
		bytes.NewReader([]byte(`{"prior_discipline": true}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to recompute plan: %v", err)
	}
	var checklist services.Checklist
	helpers.ParseJSON(t, resp, &checklist)
	slotID := checklist.Incidents[0].Slots[0].ID

	req = httptest.NewRequest("POST", "/api/materials/slots/"+slotID+"/waive",
		bytes.NewReader([]byte(`{"reason": "issuing board no longer exists"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to waive slot: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	// Blank reason is rejected.
	req = httptest.NewRequest("POST", "/api/materials/slots/"+slotID+"/waive",
		bytes.NewReader([]byte(`{"reason": ""}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute blank waive: %v", err)
	}
	helpers.AssertErrorEnvelope(t, resp, 400)
}

func TestCreateIncidentEndpoint(t *testing.T) {
	db := setupTestDB(t)
	application := createApplication(t, db, "user-1", "REF-H6")
	app := newTestApp(db, "user-1")

	body := []byte(`{"category": "financial", "subtype": "tax_lien", "jurisdiction": "Franklin County"}`)
	req := httptest.NewRequest("POST", "/api/materials/applications/"+application.ID+"/incidents",
		bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to create incident: %v", err)
	}
	helpers.AssertStatus(t, resp, 201)

	var incident models.Incident
	helpers.ParseJSON(t, resp, &incident)
	if incident.Source != models.SourceUserAdded {
		t.Errorf("Expected user_added source, got %s", incident.Source)
	}

	// Unknown category is rejected before any write.
	req = httptest.NewRequest("POST", "/api/materials/applications/"+application.ID+"/incidents",
		bytes.NewReader([]byte(`{"category": "astral", "subtype": "projection"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute bad create: %v", err)
	}
	helpers.AssertErrorEnvelope(t, resp, 400)
}
