package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"compscout/server/config"
	"compscout/server/internal/api"
	"compscout/server/internal/database"
	"compscout/server/internal/geocoding"
	"compscout/server/internal/processor"
	"compscout/server/internal/queue"
	"compscout/server/internal/scheduler"
	"compscout/server/internal/valuation"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Resolve the database path relative to the working directory
	currentDir, err := os.Getwd()
	if err != nil {
		logger.WithError(err).Fatal("Failed to get current directory")
	}
	dbPath := cfg.Server.DatabasePath
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(currentDir, dbPath)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		logger.WithError(err).Fatal("Failed to create database directory")
	}
	logger.Infof("Using database at: %s", dbPath)

	db, err := database.NewDatabase(dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Valuation engine and recompute controller
	weights := valuation.DefaultWeights()
	if err := weights.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid scoring weights")
	}
	engine := valuation.NewEngine(weights)
	controller := valuation.NewController(engine, logger)

	recompute := func(subjectID int64) {
		subject, err := db.GetSubject(subjectID)
		if err != nil {
			logger.WithError(err).WithField("subject_id", subjectID).Error("Failed to load subject for recompute")
			return
		}
		comps, err := db.GetCompsBySubject(subjectID)
		if err != nil {
			logger.WithError(err).WithField("subject_id", subjectID).Error("Failed to load comps for recompute")
			return
		}
		controller.Recompute(*subject, comps)
	}

	// Ingestion pipeline: extracted comps flow queue -> batch processor
	// -> sqlite, then the owning subject's estimate is recomputed.
	gormDB, err := database.NewGormDB(dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open gorm database")
	}

	compQueue := queue.NewCompQueue(cfg.BatchProcessing.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(gormDB, compQueue, cfg, logger, recompute)
	batchProcessor.Start()
	defer batchProcessor.Stop()
	compQueue.Start()
	defer compQueue.Close()

	// Background geocoding of comps and subjects without coordinates.
	// New coordinates shift distance scores, so a pass that resolved any
	// recomputes every subject.
	cacheDir := filepath.Join(os.TempDir(), "compscout", "geocode_cache")
	geocoder := geocoding.NewGeocoder(logger, cacheDir)

	recomputeAll := func() {
		ids, err := db.ListSubjectIDs()
		if err != nil {
			logger.WithError(err).Error("Failed to list subjects for recompute")
			return
		}
		for _, id := range ids {
			recompute(id)
		}
	}

	geocodeScheduler := scheduler.NewScheduler(
		db, geocoder, logger,
		time.Duration(cfg.Geocoding.RefreshInterval)*time.Minute,
		recomputeAll,
	)
	geocodeScheduler.Start()
	defer geocodeScheduler.Stop()

	// HTTP API
	handler := api.NewHandler(db, compQueue, engine, controller, logger)

	router := gin.Default()
	router.Use(cors.Default())
	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
