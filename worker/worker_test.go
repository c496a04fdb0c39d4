package worker

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"dinefind/geo"
	"dinefind/logger"
	"dinefind/models"
)

type fakeFetcher struct {
	calls  atomic.Int32
	mu     sync.Mutex
	seen   []geo.Coordinate
	detail models.Detail
	err    error
}

func (f *fakeFetcher) Detail(ctx context.Context, c geo.Coordinate) (models.Detail, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.seen = append(f.seen, c)
	f.mu.Unlock()
	return f.detail, f.err
}

var (
	a = geo.Coordinate{Lat: 22.31, Lon: 73.17}
	b = geo.Coordinate{Lat: 22.30, Lon: 73.18}
	c = geo.Coordinate{Lat: 22.29, Lon: 73.19}
)

func newEnricher(t *testing.T, f DetailFetcher, opts Options) *Enricher {
	t.Helper()
	e := New(f, opts, logger.NewNoopLogger())
	t.Cleanup(e.Stop)
	return e
}

func TestProcessBatch(t *testing.T) {
	f := &fakeFetcher{detail: models.Detail{Rating: 4.5, UserRatingsTotal: 10, PlaceID: "p"}}
	e := newEnricher(t, f, Options{BatchSize: 2, PoolSize: 2, Interval: time.Hour, DetailTTL: time.Hour})

	e.Request(a, b, c, a)
	require.Equal(t, 3, e.Pending(), "duplicates are queued once")

	_, ok := e.Lookup(a)
	require.False(t, ok, "lookups never wait on the network")

	e.processBatch(context.Background())
	require.Equal(t, 1, e.Pending())

	d, ok := e.Lookup(a)
	require.True(t, ok)
	require.Equal(t, f.detail, d)
	_, ok = e.Lookup(c)
	require.False(t, ok)

	e.processBatch(context.Background())
	_, ok = e.Lookup(c)
	require.True(t, ok)
	require.EqualValues(t, 3, f.calls.Load())

	e.Request(a, b, c)
	require.Zero(t, e.Pending(), "known coordinates are not requested again")
}

func TestFailuresAreNegativelyCached(t *testing.T) {
	f := &fakeFetcher{err: errors.New("REQUEST_DENIED")}
	e := newEnricher(t, f, Options{BatchSize: 5, PoolSize: 1, Interval: time.Hour, DetailTTL: time.Hour})

	e.Request(a)
	e.processBatch(context.Background())

	_, ok := e.Lookup(a)
	require.False(t, ok)

	e.Request(a)
	require.Zero(t, e.Pending())
	require.EqualValues(t, 1, f.calls.Load())
}

func TestRequestSkipsInvalidCoordinates(t *testing.T) {
	e := newEnricher(t, &fakeFetcher{}, DefaultOptions)

	e.Request(geo.Coordinate{Lat: 1, Lon: math.NaN()})
	require.Zero(t, e.Pending())
}

func TestRunStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := &fakeFetcher{detail: models.Detail{PlaceID: "p"}}
	e := New(f, Options{BatchSize: 10, PoolSize: 2, Interval: 5 * time.Millisecond, DetailTTL: time.Hour}, logger.NewNoopLogger())
	defer e.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	e.Request(a, b)
	require.Eventually(t, func() bool {
		_, okA := e.Lookup(a)
		_, okB := e.Lookup(b)
		return okA && okB
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
