package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"compscout/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// CompQueue is an in-memory queue of extracted comp batches waiting to
// be persisted and scored.
type CompQueue struct {
	items    chan []*models.ComparableSale
	done     chan struct{}
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func([]*models.ComparableSale) error
}

// NewCompQueue creates a new comp queue with the specified buffer size
func NewCompQueue(bufferSize int, logger *logrus.Logger) *CompQueue {
	return &CompQueue{
		items:    make(chan []*models.ComparableSale, bufferSize),
		done:     make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func([]*models.ComparableSale) error, 0),
	}
}

// Push adds a batch of comps to the queue
func (q *CompQueue) Push(comps []*models.ComparableSale) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	// Non-blocking send to prevent deadlocks
	select {
	case q.items <- comps:
		q.logger.WithField("batch_size", len(comps)).Debug("Pushed comp batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each batch
func (q *CompQueue) Subscribe(handler func([]*models.ComparableSale) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing items in the queue
func (q *CompQueue) Start() {
	go q.process()
}

// process handles the queue processing loop
func (q *CompQueue) process() {
	for {
		select {
		case <-q.done:
			return
		case batch := <-q.items:
			q.processBatch(batch)
		}
	}
}

// processBatch sends the batch to all subscribed handlers
func (q *CompQueue) processBatch(batch []*models.ComparableSale) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process comp batch")
		}
	}
}

// Close stops the queue and prevents new items from being added
func (q *CompQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.done)
	close(q.items)
	return nil
}

// Len returns the current number of batches in the queue
func (q *CompQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *CompQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
