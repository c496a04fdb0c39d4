package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"dinefind/geo"
	"dinefind/logger"
	"dinefind/models"
)

const (
	DefaultBatchSize = 20
	DefaultPoolSize  = 4
	DefaultInterval  = 2 * time.Second
	DefaultDetailTTL = time.Hour

	// maxPending bounds the queue; requests beyond it are dropped and asked
	// for again by a later render.
	maxPending = 1000
	cacheSize  = 10000
)

var enrichCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dinefind_enrichment_requests_total",
	Help: "Place detail lookups by outcome.",
}, []string{"outcome"})

// DetailFetcher looks up the optional details of the restaurant at a
// coordinate.
type DetailFetcher interface {
	Detail(ctx context.Context, c geo.Coordinate) (models.Detail, error)
}

type Options struct {
	BatchSize int
	PoolSize  int
	Interval  time.Duration
	DetailTTL time.Duration
}

var DefaultOptions = Options{
	BatchSize: DefaultBatchSize,
	PoolSize:  DefaultPoolSize,
	Interval:  DefaultInterval,
	DetailTTL: DefaultDetailTTL,
}

// entry is a finished lookup; found is false when the lookup failed or
// returned nothing, so the coordinate is not queued again until it expires.
type entry struct {
	detail models.Detail
	found  bool
}

// Enricher fetches place details in the background. Renders queue the
// coordinates they show with Request and read whatever is already known
// with Lookup; neither ever waits on the network.
type Enricher struct {
	fetcher DetailFetcher
	opts    Options
	logger  logger.Logger
	cache   *ccache.Cache[*entry]

	mu      sync.Mutex
	pending map[string]geo.Coordinate
	queue   []string
}

func New(fetcher DetailFetcher, opts Options, log logger.Logger) *Enricher {
	return &Enricher{
		fetcher: fetcher,
		opts:    opts,
		logger:  log,
		cache:   ccache.New(ccache.Configure[*entry]().MaxSize(cacheSize)),
		pending: map[string]geo.Coordinate{},
	}
}

func key(c geo.Coordinate) string {
	return c.String()
}

// Request queues coordinates whose details are not known yet.
func (e *Enricher) Request(coords ...geo.Coordinate) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, c := range coords {
		if !c.Valid() {
			continue
		}
		k := key(c)
		if _, ok := e.pending[k]; ok {
			continue
		}
		if item := e.cache.Get(k); item != nil && !item.Expired() {
			continue
		}
		if len(e.pending) >= maxPending {
			return
		}
		e.pending[k] = c
		e.queue = append(e.queue, k)
	}
}

// Lookup returns the detail for c if one has been fetched.
func (e *Enricher) Lookup(c geo.Coordinate) (models.Detail, bool) {
	item := e.cache.Get(key(c))
	if item == nil || item.Expired() || !item.Value().found {
		return models.Detail{}, false
	}
	return item.Value().detail, true
}

// Pending returns the number of queued coordinates.
func (e *Enricher) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Run processes one batch per interval until ctx is done.
func (e *Enricher) Run(ctx context.Context) {
	e.logger.Info("starting enrichment worker",
		zap.Int("batch", e.opts.BatchSize),
		zap.Int("concurrency", e.opts.PoolSize),
		zap.Duration("interval", e.opts.Interval))

	ticker := time.NewTicker(e.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.processBatch(ctx)
		}
	}
}

// Stop releases the cache.
func (e *Enricher) Stop() {
	e.cache.Stop()
}

func (e *Enricher) take() []geo.Coordinate {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := min(e.opts.BatchSize, len(e.queue))
	batch := make([]geo.Coordinate, 0, n)
	for _, k := range e.queue[:n] {
		batch = append(batch, e.pending[k])
	}
	e.queue = e.queue[n:]
	return batch
}

func (e *Enricher) done(c geo.Coordinate) {
	e.mu.Lock()
	delete(e.pending, key(c))
	e.mu.Unlock()
}

func (e *Enricher) processBatch(ctx context.Context) {
	batch := e.take()
	if len(batch) == 0 {
		return
	}

	p := pool.New().WithContext(ctx).WithMaxGoroutines(e.opts.PoolSize)
	for _, c := range batch {
		p.Go(func(ctx context.Context) error {
			defer e.done(c)

			detail, err := e.fetcher.Detail(ctx, c)
			switch {
			case err == nil:
				enrichCounter.WithLabelValues("found").Inc()
				e.cache.Set(key(c), &entry{detail: detail, found: true}, e.opts.DetailTTL)
			case ctx.Err() != nil:
				// shutting down, leave it uncached
			default:
				outcome := "error"
				if errors.Is(err, context.DeadlineExceeded) {
					outcome = "timeout"
				}
				enrichCounter.WithLabelValues(outcome).Inc()
				e.logger.Debug("no place detail", zap.Stringer("coordinate", c), zap.Error(err))
				e.cache.Set(key(c), &entry{}, e.opts.DetailTTL)
			}
			return nil
		})
	}
	_ = p.Wait()
}
