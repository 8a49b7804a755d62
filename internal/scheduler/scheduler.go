package scheduler

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"compscout/server/internal/database"
	"compscout/server/internal/geocoding"
)

// Scheduler periodically geocodes records that are missing coordinates.
// Coordinates trickle in after ingestion, so each pass that resolves any
// triggers a recompute through the onUpdated callback.
type Scheduler struct {
	db        *database.Database
	geocoder  *geocoding.Geocoder
	logger    *logrus.Logger
	interval  time.Duration
	onUpdated func()
	stopChan  chan struct{}
	wg        sync.WaitGroup
	jobMutex  sync.Mutex
}

// NewScheduler creates a new scheduler. onUpdated is called after any
// pass that resolved at least one coordinate; it may be nil.
func NewScheduler(db *database.Database, geocoder *geocoding.Geocoder, logger *logrus.Logger, interval time.Duration, onUpdated func()) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		db:        db,
		geocoder:  geocoder,
		logger:    logger,
		interval:  interval,
		onUpdated: onUpdated,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the scheduled geocoding passes
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop halts the scheduler and waits for any in-flight pass
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	// Run one pass at startup, then on the interval
	s.runGeocodingPass()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runGeocodingPass()
		}
	}
}

func (s *Scheduler) runGeocodingPass() {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	s.logger.Info("Starting geocoding pass")

	updated, err := s.db.UpdateMissingCoordinates(s.geocoder)
	if err != nil {
		s.logger.WithError(err).Error("Geocoding pass failed")
		return
	}

	s.logger.WithField("updated", updated).Info("Geocoding pass completed")

	if updated > 0 && s.onUpdated != nil {
		s.onUpdated()
	}
}
