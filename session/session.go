// Package session keeps the transient view state of each visitor: query,
// sort toggle, coordinate, page and the location resolver that feeds them.
package session

import (
	"context"
	"errors"
	"sync"

	"dinefind/geo"
	"dinefind/location"
	"dinefind/models"
	"dinefind/pipeline"
)

// ErrLocating is returned by Locate while a request is outstanding.
var ErrLocating = errors.New("location request already in progress")

// Session is one visitor's view. All methods are safe for concurrent use and
// serialize on the session.
type Session struct {
	ID string

	resolver *location.Resolver

	mu              sync.Mutex
	state           *pipeline.State
	locationMessage string
}

func newSession(id string, resolver *location.Resolver) *Session {
	return &Session{
		ID:       id,
		resolver: resolver,
		state:    pipeline.NewState(),
	}
}

// Snapshot is the session state as shown to the visitor.
type Snapshot struct {
	ID              string
	View            pipeline.View
	LocationMessage string
	Locating        bool
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		ID:              s.ID,
		View:            s.state.View(),
		LocationMessage: s.locationMessage,
		Locating:        s.resolver.Pending(),
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Update carries the inputs a visitor changed; nil fields are left alone.
type Update struct {
	Query          *string
	SortByDistance *bool
	Page           *int
}

// Update applies u. The page is applied first so a simultaneous query or
// sort change still sends the view back to page 1.
func (s *Session) Update(u Update) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Page != nil {
		s.state.SetPage(*u.Page)
	}
	if u.Query != nil {
		s.state.SetQuery(*u.Query)
	}
	if u.SortByDistance != nil {
		s.state.SetSortByDistance(*u.SortByDistance)
	}
	return s.snapshot()
}

// Render derives the displayed page over records.
func (s *Session) Render(records []models.Restaurant, pageSize int) (pipeline.Result, Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Render(records, pageSize), s.snapshot()
}

// Locate resolves the visitor's coordinate through the session's resolver.
// The outcome is applied only if ctx is still live when it arrives.
func (s *Session) Locate(ctx context.Context) (Snapshot, error) {
	if s.resolver.Pending() {
		return s.Snapshot(), ErrLocating
	}

	c, err := s.resolver.Resolve(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Snapshot{}, ctxErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.locationMessage = location.Message(err)
		return s.snapshot(), err
	}
	s.succeed(c)
	return s.snapshot(), nil
}

// ReportLocation applies a coordinate obtained by the visitor's own device
// and caches it in the resolver.
func (s *Session) ReportLocation(c geo.Coordinate) (Snapshot, error) {
	if !c.Valid() {
		return s.ReportLocationError(location.ReasonUnavailable), location.ErrUnavailable
	}
	s.resolver.Remember(location.Fix{Coordinate: c})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.succeed(c)
	return s.snapshot(), nil
}

// ReportLocationError applies a failure reported by the visitor's device.
// The view inputs are left untouched.
func (s *Session) ReportLocationError(reason location.Reason) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locationMessage = reason.Message()
	return s.snapshot()
}

func (s *Session) succeed(c geo.Coordinate) {
	s.locationMessage = ""
	s.state.SetLocation(&c)
	s.state.SetSortByDistance(true)
}
