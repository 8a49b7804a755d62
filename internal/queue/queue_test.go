package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"compscout/server/internal/models"
)

func TestNewCompQueue(t *testing.T) {
	logger := logrus.New()
	q := NewCompQueue(10, logger)
	assert.NotNil(t, q)
	assert.Equal(t, 10, q.maxSize)
	assert.False(t, q.IsClosed())
}

func TestCompQueue_Push(t *testing.T) {
	logger := logrus.New()
	q := NewCompQueue(2, logger)

	// Test successful push
	comps := []*models.ComparableSale{{Address: "100 Oak St", SoldPrice: 300000}}
	err := q.Push(comps)
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	// Test queue full
	for i := 0; i < 2; i++ {
		_ = q.Push([]*models.ComparableSale{{Address: "102 Oak St", SoldPrice: 310000}})
	}
	err = q.Push(comps)
	assert.Equal(t, ErrQueueFull, err)

	// Test closed queue
	q.Close()
	err = q.Push(comps)
	assert.Equal(t, ErrQueueClosed, err)
}

func TestCompQueue_Subscribe(t *testing.T) {
	logger := logrus.New()
	q := NewCompQueue(10, logger)

	var processed []*models.ComparableSale
	var mu sync.Mutex

	q.Subscribe(func(comps []*models.ComparableSale) error {
		mu.Lock()
		processed = append(processed, comps...)
		mu.Unlock()
		return nil
	})

	q.Start()

	batch := []*models.ComparableSale{
		{Address: "100 Oak St", SoldPrice: 300000},
		{Address: "102 Oak St", SoldPrice: 310000},
	}
	err := q.Push(batch)
	assert.NoError(t, err)

	// Wait for processing
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, 2, len(processed))
	assert.Equal(t, "100 Oak St", processed[0].Address)
	assert.Equal(t, "102 Oak St", processed[1].Address)
	mu.Unlock()
}

func TestCompQueue_Close(t *testing.T) {
	logger := logrus.New()
	q := NewCompQueue(10, logger)

	err := q.Close()
	assert.NoError(t, err)
	assert.True(t, q.IsClosed())

	// Second close should be a no-op
	err = q.Close()
	assert.NoError(t, err)
}

func TestCompQueue_MultipleHandlers(t *testing.T) {
	logger := logrus.New()
	q := NewCompQueue(10, logger)

	var wg sync.WaitGroup
	processedBatches := 0
	var mu sync.Mutex

	for i := 0; i < 3; i++ {
		wg.Add(1)
		q.Subscribe(func(comps []*models.ComparableSale) error {
			mu.Lock()
			processedBatches++
			mu.Unlock()
			wg.Done()
			return nil
		})
	}

	q.Start()

	err := q.Push([]*models.ComparableSale{{Address: "100 Oak St", SoldPrice: 300000}})
	assert.NoError(t, err)

	wg.Wait()

	mu.Lock()
	assert.Equal(t, 3, processedBatches)
	mu.Unlock()
}
