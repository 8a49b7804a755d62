package valuation

import (
	"sync"

	"github.com/sirupsen/logrus"

	"compscout/server/internal/models"
)

// ChangeHandler is invoked when a subject's ARV actually changes.
type ChangeHandler func(subjectID int64, est Estimate)

// Controller is the reactive entry point around the engine. It recomputes
// an estimate from a consistent snapshot of (comps, subject) and notifies
// subscribers only when the ARV differs from the previously published
// value. Skipping identical results is what keeps a reactive host from
// looping: publishing can itself be observed as a trigger condition.
type Controller struct {
	engine   *Engine
	logger   *logrus.Logger
	mu       sync.Mutex
	last     map[int64]float64
	seeded   map[int64]bool
	handlers []ChangeHandler
}

// NewController creates a controller around the given engine.
func NewController(engine *Engine, logger *logrus.Logger) *Controller {
	if logger == nil {
		logger = logrus.New()
	}
	return &Controller{
		engine: engine,
		logger: logger,
		last:   make(map[int64]float64),
		seeded: make(map[int64]bool),
	}
}

// Subscribe registers a handler for ARV changes.
func (c *Controller) Subscribe(handler ChangeHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Recompute runs a full valuation pass and publishes the result to
// subscribers if the ARV changed. Always returns the fresh estimate.
func (c *Controller) Recompute(subject models.SubjectProperty, comps []models.ComparableSale) Estimate {
	est := c.engine.Estimate(comps, subject)

	c.mu.Lock()
	changed := !c.seeded[subject.ID] || c.last[subject.ID] != est.ARV
	c.last[subject.ID] = est.ARV
	c.seeded[subject.ID] = true
	handlers := c.handlers
	c.mu.Unlock()

	if !changed {
		return est
	}

	c.logger.WithFields(logrus.Fields{
		"subject_id": subject.ID,
		"arv":        est.ARV,
		"method":     est.Method,
		"comp_count": est.CompCount,
	}).Info("ARV changed")

	for _, handler := range handlers {
		handler(subject.ID, est)
	}
	return est
}

// Forget drops the published state for a subject, e.g. when the subject
// itself is deleted.
func (c *Controller) Forget(subjectID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.last, subjectID)
	delete(c.seeded, subjectID)
}
