package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"compscout/server/internal/database"
	"compscout/server/internal/extract"
	"compscout/server/internal/geocoding"
	"compscout/server/internal/models"
	"compscout/server/internal/queue"
	"compscout/server/internal/telegram"
	"compscout/server/internal/valuation"
)

type Handler struct {
	db              *database.Database
	logger          *logrus.Logger
	geocoder        *geocoding.Geocoder
	extractor       *extract.Extractor
	engine          *valuation.Engine
	controller      *valuation.Controller
	compQueue       *queue.CompQueue
	telegramService *telegram.Service
}

type ExtractRequest struct {
	Text string `json:"text" binding:"required"`
}

func NewHandler(db *database.Database, compQueue *queue.CompQueue, engine *valuation.Engine, controller *valuation.Controller, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	cacheDir := filepath.Join(os.TempDir(), "compscout", "geocode_cache")

	// Initialize the telegram service
	telegramService := telegram.NewService(logger)

	// Load existing Telegram configuration
	if cfg, err := db.GetTelegramConfig(); err == nil && cfg != nil {
		telegramService.UpdateConfig(cfg)
	}

	h := &Handler{
		db:              db,
		logger:          logger,
		geocoder:        geocoding.NewGeocoder(logger, cacheDir),
		extractor:       extract.NewExtractor(logger),
		engine:          engine,
		controller:      controller,
		compQueue:       compQueue,
		telegramService: telegramService,
	}

	// Push ARV changes out over Telegram
	controller.Subscribe(func(subjectID int64, est valuation.Estimate) {
		subject, err := db.GetSubject(subjectID)
		if err != nil {
			logger.WithError(err).Error("Failed to load subject for notification")
			return
		}
		telegramService.NotifyEstimateChange(subject, est)
	})

	return h
}

// recompute reloads a subject's comp set and runs a full valuation pass.
// Called after every mutation so the published ARV never goes stale.
func (h *Handler) recompute(subjectID int64) (valuation.Estimate, error) {
	subject, err := h.db.GetSubject(subjectID)
	if err != nil {
		return valuation.Estimate{}, err
	}
	comps, err := h.db.GetCompsBySubject(subjectID)
	if err != nil {
		return valuation.Estimate{}, err
	}
	return h.controller.Recompute(*subject, comps), nil
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) CreateSubject(c *gin.Context) {
	var subject models.SubjectProperty
	if err := c.ShouldBindJSON(&subject); err != nil {
		h.logger.WithError(err).Error("Failed to parse subject")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if strings.TrimSpace(subject.Address) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Address is required"})
		return
	}

	if err := h.db.CreateSubject(&subject); err != nil {
		h.logger.WithError(err).Error("Failed to create subject")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subject"})
		return
	}

	c.JSON(http.StatusCreated, subject)
}

func (h *Handler) GetSubject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	subject, err := h.db.GetSubject(id)
	if errors.Is(err, database.ErrSubjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get subject")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get subject"})
		return
	}

	c.JSON(http.StatusOK, subject)
}

// UpdateSubject rewrites the subject's fields and recomputes its ARV:
// changed sqft, beds or coordinates shift every comp's score.
func (h *Handler) UpdateSubject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var subject models.SubjectProperty
	if err := c.ShouldBindJSON(&subject); err != nil {
		h.logger.WithError(err).Error("Failed to parse subject")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	subject.ID = id

	err := h.db.UpdateSubject(&subject)
	if errors.Is(err, database.ErrSubjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to update subject")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subject"})
		return
	}

	est, err := h.recompute(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to recompute estimate")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recompute estimate"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subject": subject, "estimate": est})
}

func (h *Handler) GetEstimate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	est, err := h.recompute(id)
	if errors.Is(err, database.ErrSubjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute estimate")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute estimate"})
		return
	}

	c.JSON(http.StatusOK, est)
}

func (h *Handler) GetComps(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if _, err := h.db.GetSubject(id); errors.Is(err, database.ErrSubjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		return
	} else if err != nil {
		h.logger.WithError(err).Error("Failed to get subject")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get subject"})
		return
	}

	comps, err := h.db.GetCompsBySubject(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get comps")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get comps"})
		return
	}

	c.JSON(http.StatusOK, comps)
}

func (h *Handler) AddComp(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var comp models.ComparableSale
	if err := c.ShouldBindJSON(&comp); err != nil {
		h.logger.WithError(err).Error("Failed to parse comp")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	comp.SubjectID = id

	if _, err := h.db.GetSubject(id); errors.Is(err, database.ErrSubjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		return
	} else if err != nil {
		h.logger.WithError(err).Error("Failed to get subject")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get subject"})
		return
	}

	err := h.db.InsertComp(&comp)
	switch {
	case errors.Is(err, database.ErrInvalidComp):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comp requires a positive sold price and an address"})
		return
	case errors.Is(err, database.ErrDuplicateAddress):
		c.JSON(http.StatusConflict, gin.H{"error": "A comp with this address already exists for this subject"})
		return
	case err != nil:
		h.logger.WithError(err).Error("Failed to insert comp")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert comp"})
		return
	}

	est, err := h.recompute(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to recompute estimate")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recompute estimate"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comp": comp, "estimate": est})
}

func (h *Handler) UpdateComp(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	existing, err := h.db.GetComp(id)
	if errors.Is(err, database.ErrCompNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comp not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get comp")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get comp"})
		return
	}

	var comp models.ComparableSale
	if err := c.ShouldBindJSON(&comp); err != nil {
		h.logger.WithError(err).Error("Failed to parse comp")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	comp.ID = id
	comp.SubjectID = existing.SubjectID

	err = h.db.UpdateComp(&comp)
	if errors.Is(err, database.ErrInvalidComp) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comp requires a positive sold price and an address"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to update comp")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comp"})
		return
	}

	est, err := h.recompute(comp.SubjectID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to recompute estimate")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recompute estimate"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comp": comp, "estimate": est})
}

func (h *Handler) DeleteComp(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	comp, err := h.db.GetComp(id)
	if errors.Is(err, database.ErrCompNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comp not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get comp")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get comp"})
		return
	}

	if err := h.db.DeleteComp(id); err != nil {
		h.logger.WithError(err).Error("Failed to delete comp")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comp"})
		return
	}

	est, err := h.recompute(comp.SubjectID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to recompute estimate")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recompute estimate"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"estimate": est})
}

// AddPhoto attaches listing media to a comp. Photo rows are metadata
// only; the URL points at wherever the image actually lives.
func (h *Handler) AddPhoto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if _, err := h.db.GetComp(id); errors.Is(err, database.ErrCompNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comp not found"})
		return
	} else if err != nil {
		h.logger.WithError(err).Error("Failed to get comp")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get comp"})
		return
	}

	var photo models.Photo
	if err := c.ShouldBindJSON(&photo); err != nil || strings.TrimSpace(photo.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo URL is required"})
		return
	}
	photo.CompID = id

	if err := h.db.AddPhoto(&photo); err != nil {
		h.logger.WithError(err).Error("Failed to add photo")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add photo"})
		return
	}

	c.JSON(http.StatusCreated, photo)
}

func (h *Handler) DeletePhoto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	err := h.db.DeletePhoto(id)
	if errors.Is(err, database.ErrPhotoNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to delete photo")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete photo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GetBreakdown returns the per-comp diagnostic scores against the comp's
// own subject. Computed on demand, never persisted.
func (h *Handler) GetBreakdown(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	comp, err := h.db.GetComp(id)
	if errors.Is(err, database.ErrCompNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comp not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get comp")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get comp"})
		return
	}

	subject, err := h.db.GetSubject(comp.SubjectID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get subject")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get subject"})
		return
	}

	c.JSON(http.StatusOK, h.engine.Breakdown(*comp, *subject))
}

// ExtractComp parses a raw listing text into a comp and pushes it onto
// the ingestion queue. Storage and the ARV recompute happen downstream in
// the batch processor.
func (h *Handler) ExtractComp(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse extract request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	if _, err := h.db.GetSubject(id); errors.Is(err, database.ErrSubjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		return
	} else if err != nil {
		h.logger.WithError(err).Error("Failed to get subject")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get subject"})
		return
	}

	comp, err := h.extractor.ExtractComp(req.Text)
	if errors.Is(err, extract.ErrNoPrice) || errors.Is(err, extract.ErrNoAddress) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to extract comp")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to extract comp"})
		return
	}
	comp.SubjectID = id

	if err := h.compQueue.Push([]*models.ComparableSale{comp}); err != nil {
		h.logger.WithError(err).Error("Failed to queue extracted comp")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ingestion queue unavailable"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": "queued",
		"comp":   comp,
	})
}

// ExtractSubject parses subject property fields out of raw listing text
// without persisting anything.
func (h *Handler) ExtractSubject(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse extract request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	subject, err := h.extractor.ExtractSubject(req.Text)
	if errors.Is(err, extract.ErrNoAddress) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to extract subject")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to extract subject"})
		return
	}

	c.JSON(http.StatusOK, subject)
}

func (h *Handler) UpdateCoordinates(c *gin.Context) {
	updated, err := h.db.UpdateMissingCoordinates(h.geocoder)
	if err != nil {
		h.logger.WithError(err).Error("Failed to update coordinates")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update coordinates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "Coordinates updated",
		"updated": updated,
	})
}

// GetTelegramConfig returns the current Telegram configuration
func (h *Handler) GetTelegramConfig(c *gin.Context) {
	cfg, err := h.db.GetTelegramConfig()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get Telegram config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get Telegram config"})
		return
	}

	if cfg == nil {
		c.JSON(http.StatusOK, gin.H{
			"is_enabled": false,
			"chat_id":    "",
			"bot_token":  "",
		})
		return
	}

	// Don't send the full bot token back to the client
	if len(cfg.BotToken) > 4 {
		cfg.BotToken = "••••" + cfg.BotToken[len(cfg.BotToken)-4:]
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateTelegramConfig updates the Telegram configuration
func (h *Handler) UpdateTelegramConfig(c *gin.Context) {
	var request models.TelegramConfigRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.WithError(err).Error("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if len(request.BotToken) < 20 || !strings.Contains(request.BotToken, ":") {
		h.logger.Error("Invalid bot token format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bot token format. Please check your bot token from @BotFather"})
		return
	}

	if request.ChatID == "" {
		h.logger.Error("Chat ID is required")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat ID is required"})
		return
	}

	// Test the configuration before saving
	testService := telegram.NewService(h.logger)
	testService.UpdateConfig(&models.TelegramConfig{
		BotToken:  request.BotToken,
		ChatID:    request.ChatID,
		IsEnabled: true,
	})

	testMessage := "🔔 Test notification from CompScout\n\nIf you see this message, your Telegram configuration is working correctly!"
	if err := testService.SendMessage(testMessage); err != nil {
		h.logger.WithError(err).Error("Failed to send test message")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.UpdateTelegramConfig(&request); err != nil {
		h.logger.WithError(err).Error("Failed to update Telegram config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save configuration to database"})
		return
	}

	if cfg, err := h.db.GetTelegramConfig(); err == nil && cfg != nil {
		h.telegramService.UpdateConfig(cfg)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Telegram configuration updated successfully"})
}

// TestTelegramConfig sends a sample ARV notification to the configured chat
func (h *Handler) TestTelegramConfig(c *gin.Context) {
	cfg, err := h.db.GetTelegramConfig()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get Telegram config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get Telegram configuration"})
		return
	}

	if cfg == nil || !cfg.IsEnabled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Telegram is not configured or is disabled"})
		return
	}

	sampleService := telegram.NewService(h.logger)
	sampleService.UpdateConfig(cfg)
	sampleService.NotifyEstimateChange(
		&models.SubjectProperty{Address: "123 Test St, Fort Worth, TX 76102"},
		valuation.Estimate{
			ARV:         312500,
			HasEstimate: true,
			Method:      valuation.MethodWeighted,
			CompCount:   4,
		},
	)

	c.JSON(http.StatusOK, gin.H{"message": "Test notification sent successfully"})
}
