package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/caseworks/licensure-materials/internal/blob"
	"github.com/caseworks/licensure-materials/internal/config"
	"github.com/caseworks/licensure-materials/internal/database"
	"github.com/caseworks/licensure-materials/internal/handlers"
	"github.com/caseworks/licensure-materials/internal/middleware"
	"github.com/caseworks/licensure-materials/internal/services"

	_ "github.com/caseworks/licensure-materials/docs/api" // Swagger docs
)

// @title Licensure Supporting Materials API
// @version 1.0.0
// @description Incident derivation, document slots, and versioned evidence uploads for licensing applications
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/caseworks/licensure-materials

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Blob store signer
	signer, err := blob.NewGCSSigner(context.Background(), cfg.BlobBucket, cfg.BlobCredentialsFile, cfg.BlobURLTTL)
	if err != nil {
		log.Fatalf("Failed to create blob signer: %v", err)
	}
	defer signer.Close()

	// Initialize Authorizer; a failure here is not fatal, sessions just fail
	// to validate until the service comes up.
	if err := services.InitAuthorizer(cfg, "http", "localhost:"+cfg.Port); err != nil {
		log.Printf("Authorizer initialization failed (continuing): %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("licensure_materials")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Materials routes
	materials := api.Group("/materials")

	// Create handlers
	planHandler := &handlers.PlanHandler{DB: db}
	incidentHandler := &handlers.IncidentHandler{DB: db}
	uploadHandler := &handlers.UploadHandler{DB: db, Signer: signer}

	// All materials routes require an authenticated applicant session
	materials.Use(middleware.AuthApplicant())

	materials.Post("/applications/:application/plan", planHandler.RecomputePlan)
	materials.Get("/applications/:application/checklist", planHandler.GetChecklist)
	materials.Post("/applications/:application/incidents", incidentHandler.CreateIncident)
	materials.Post("/slots/:slot/uploads", uploadHandler.BeginUpload)
	materials.Post("/slots/:slot/uploads/complete", uploadHandler.CompleteUpload)
	materials.Get("/slots/:slot/files", uploadHandler.ListSlotFiles)
	materials.Post("/slots/:slot/waive", uploadHandler.WaiveSlot)
	materials.Get("/files/:file/download", uploadHandler.DownloadFile)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	conflictError := code == fiber.StatusConflict
	if conflictError {
		errorType = "conflict"
	}

	return c.Status(code).JSON(fiber.Map{
		"status":        code,
		"message":       message,
		"ok":            false,
		"conflictError": conflictError,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"url":           c.OriginalURL(),
		"type":          errorType,
	})
}
