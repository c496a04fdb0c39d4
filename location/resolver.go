package location

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"dinefind/geo"
)

var resolutionCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dinefind_location_resolutions_total",
	Help: "Location resolutions by outcome.",
}, []string{"outcome"})

const flightKey = "position"

// Resolver performs single-shot position requests against a Provider. At
// most one request is outstanding at a time: concurrent callers wait on the
// request already in flight.
type Resolver struct {
	provider Provider
	opts     Options
	now      func() time.Time

	group   singleflight.Group
	pending atomic.Bool

	mu   sync.Mutex
	last *Fix
}

type ResolverOption func(r *Resolver)

func WithOptions(opts Options) ResolverOption {
	return func(r *Resolver) {
		r.opts = opts
	}
}

func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.now = now
	}
}

// NewResolver returns a resolver over p. A nil provider means the platform
// has no location capability and every Resolve fails with ErrUnsupported.
func NewResolver(p Provider, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		provider: p,
		opts:     DefaultOptions,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Pending reports whether a request is outstanding.
func (r *Resolver) Pending() bool {
	return r.pending.Load()
}

// Remember stores a fix obtained elsewhere, e.g. reported by a browser, so
// later calls can be answered from the cache.
func (r *Resolver) Remember(fix Fix) {
	if fix.Timestamp.IsZero() {
		fix.Timestamp = r.now()
	}
	r.mu.Lock()
	r.last = &fix
	r.mu.Unlock()
}

// Resolve returns the current coordinate. It answers from the cached fix
// when that is younger than the maximum age, otherwise it issues one request
// bounded by the configured timeout. Cancelling ctx abandons the wait but not
// the shared request.
func (r *Resolver) Resolve(ctx context.Context) (geo.Coordinate, error) {
	if r.provider == nil {
		resolutionCounter.WithLabelValues(ReasonUnsupported.String()).Inc()
		return geo.Coordinate{}, ErrUnsupported
	}

	if fix, ok := r.cached(); ok {
		resolutionCounter.WithLabelValues("cached").Inc()
		return fix.Coordinate, nil
	}

	ch := r.group.DoChan(flightKey, func() (interface{}, error) {
		fix, err := r.request(context.WithoutCancel(ctx))
		return fix, err
	})

	select {
	case <-ctx.Done():
		return geo.Coordinate{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			resolutionCounter.WithLabelValues(ReasonOf(res.Err).String()).Inc()
			return geo.Coordinate{}, res.Err
		}
		resolutionCounter.WithLabelValues("ok").Inc()
		return res.Val.(Fix).Coordinate, nil
	}
}

func (r *Resolver) cached() (Fix, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.last == nil || r.opts.MaximumAge <= 0 {
		return Fix{}, false
	}
	if r.now().Sub(r.last.Timestamp) > r.opts.MaximumAge {
		return Fix{}, false
	}
	return *r.last, true
}

type outcome struct {
	fix Fix
	err error
}

func (r *Resolver) request(ctx context.Context) (Fix, error) {
	r.pending.Store(true)
	defer r.pending.Store(false)

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	// Buffered so a provider that ignores ctx can still finish and exit.
	done := make(chan outcome, 1)
	go func() {
		fix, err := r.provider.CurrentPosition(ctx, r.opts)
		done <- outcome{fix, err}
	}()

	var out outcome
	select {
	case <-ctx.Done():
		return Fix{}, &Error{Reason: ReasonTimedOut, Err: ctx.Err()}
	case out = <-done:
	}

	if out.err != nil {
		return Fix{}, classify(out.err)
	}
	if !out.fix.Coordinate.Valid() {
		return Fix{}, &Error{Reason: ReasonUnavailable, Err: fmt.Errorf("%s returned an invalid coordinate", r.provider.Name())}
	}

	r.Remember(out.fix)
	return out.fix, nil
}

func classify(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Reason: ReasonTimedOut, Err: err}
	}
	return &Error{Reason: ReasonUnknown, Err: err}
}
