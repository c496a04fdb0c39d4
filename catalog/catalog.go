// Package catalog holds the restaurant record set. The set is fetched once
// from a Source and never mutated afterwards; a failed fetch leaves an empty
// set and is not retried.
package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"dinefind/logger"
	"dinefind/models"
)

var (
	loadCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dinefind_catalog_loads_total",
		Help: "Record set loads by source and outcome.",
	}, []string{"source", "outcome"})

	recordsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dinefind_catalog_records",
		Help: "Number of records in the loaded set.",
	})
)

// ErrNotLoaded is returned by Wait when the load has not finished.
var ErrNotLoaded = errors.New("catalog not loaded")

// Source produces the full record set in its base order.
type Source interface {
	Name() string
	Restaurants(ctx context.Context) ([]models.Restaurant, error)
}

type Status int

const (
	StatusLoading Status = iota
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "loading"
	}
}

// Snapshot is a consistent view of the catalog.
type Snapshot struct {
	Status  Status
	Records []models.Restaurant
	Err     error
}

type Catalog struct {
	source Source
	logger logger.Logger

	once sync.Once
	done chan struct{}

	mu      sync.RWMutex
	status  Status
	records []models.Restaurant
	err     error
}

func New(source Source, log logger.Logger) *Catalog {
	return &Catalog{
		source:  source,
		logger:  log,
		done:    make(chan struct{}),
		records: []models.Restaurant{},
	}
}

// NewLoaded returns a catalog already holding records.
func NewLoaded(records []models.Restaurant) *Catalog {
	c := New(nil, logger.NewNoopLogger())
	c.once.Do(func() {
		c.finish(records, nil)
	})
	return c
}

// Start runs Load in the background.
func (c *Catalog) Start(ctx context.Context) {
	go c.Load(ctx)
}

// Load fetches the record set. Only the first call does any work; later
// calls return once that load has finished.
func (c *Catalog) Load(ctx context.Context) {
	c.once.Do(func() {
		start := time.Now()
		records, err := c.source.Restaurants(ctx)
		if err != nil {
			loadCounter.WithLabelValues(c.source.Name(), "error").Inc()
			c.logger.Error("failed to fetch restaurants",
				zap.String("source", c.source.Name()),
				zap.Error(err))
			c.finish(nil, err)
			return
		}

		loadCounter.WithLabelValues(c.source.Name(), "ok").Inc()
		c.logger.Info("restaurants loaded",
			zap.String("source", c.source.Name()),
			zap.Int("count", len(records)),
			zap.Duration("took", time.Since(start)))
		c.finish(records, nil)
	})
	<-c.done
}

func (c *Catalog) finish(records []models.Restaurant, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.status = StatusFailed
		c.records = []models.Restaurant{}
		c.err = err
	} else {
		c.status = StatusLoaded
		if records == nil {
			records = []models.Restaurant{}
		}
		c.records = records
	}
	recordsGauge.Set(float64(len(c.records)))
	close(c.done)
}

// Snapshot returns the current state. Records must not be modified.
func (c *Catalog) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{Status: c.status, Records: c.records, Err: c.err}
}

// Wait blocks until the load finishes or ctx is done, returning the load
// error if any.
func (c *Catalog) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.Snapshot().Err
	case <-ctx.Done():
		return errors.Join(ErrNotLoaded, ctx.Err())
	}
}
