package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"compscout/server/config"
	"compscout/server/internal/database"
	"compscout/server/internal/models"
	"compscout/server/internal/queue"
)

// BatchProcessor drains the comp queue into the database and reports
// which subjects gained comps so their estimates can be recomputed.
type BatchProcessor struct {
	db        *gorm.DB
	logger    *logrus.Logger
	config    *config.Config
	queue     *queue.CompQueue
	onStored  func(subjectID int64)
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewBatchProcessor creates a new batch processor instance. onStored is
// invoked once per distinct subject in each successfully stored batch;
// it may be nil.
func NewBatchProcessor(db *gorm.DB, queue *queue.CompQueue, config *config.Config, logger *logrus.Logger, onStored func(subjectID int64)) *BatchProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		db:       db,
		queue:    queue,
		config:   config,
		logger:   logger,
		onStored: onStored,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins processing batches from the queue
func (p *BatchProcessor) Start() {
	for i := 0; i < p.config.BatchProcessing.ProcessorCount; i++ {
		p.waitGroup.Add(1)
		go p.processLoop()
	}
}

// Stop gracefully shuts down the processor
func (p *BatchProcessor) Stop() {
	p.cancel()
	p.waitGroup.Wait()
}

// processLoop handles the continuous processing of batches
func (p *BatchProcessor) processLoop() {
	defer p.waitGroup.Done()

	p.queue.Subscribe(func(batch []*models.ComparableSale) error {
		return p.processBatch(batch)
	})
}

// processBatch handles a single batch of comps with transaction and retry logic
func (p *BatchProcessor) processBatch(batch []*models.ComparableSale) error {
	var err error
	for attempt := 0; attempt <= p.config.BatchProcessing.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch processing, attempt %d of %d", attempt, p.config.BatchProcessing.MaxRetries)
			time.Sleep(time.Duration(p.config.BatchProcessing.RetryDelay) * time.Second)
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := database.UpsertComps(tx, batch); err != nil {
				return fmt.Errorf("failed to upsert comp batch: %w", err)
			}
			return nil
		})

		if err == nil {
			p.logger.Infof("Successfully processed batch of %d comps", len(batch))
			p.notifyStored(batch)
			return nil
		}

		p.logger.Errorf("Batch processing failed: %v", err)
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", p.config.BatchProcessing.MaxRetries, err)
}

func (p *BatchProcessor) notifyStored(batch []*models.ComparableSale) {
	if p.onStored == nil {
		return
	}

	seen := make(map[int64]bool)
	for _, c := range batch {
		if !seen[c.SubjectID] {
			seen[c.SubjectID] = true
			p.onStored(c.SubjectID)
		}
	}
}
