package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/karlseguin/ccache/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"dinefind/location"
)

const (
	DefaultTTL         = 30 * time.Minute
	DefaultMaxSessions = 10000
)

var ErrNotFound = errors.New("session not found")

var sessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "dinefind_sessions_created_total",
	Help: "Number of sessions created.",
})

// Store holds sessions in an LRU cache. A session expires when it has not
// been touched for the TTL, or earlier if the cache is full.
type Store struct {
	cache       *ccache.Cache[*Session]
	ttl         time.Duration
	newResolver func() *location.Resolver
}

// NewStore returns a store whose sessions each get a resolver from
// newResolver.
func NewStore(ttl time.Duration, maxSessions int64, newResolver func() *location.Resolver) *Store {
	return &Store{
		cache:       ccache.New(ccache.Configure[*Session]().MaxSize(maxSessions)),
		ttl:         ttl,
		newResolver: newResolver,
	}
}

func (s *Store) Create() *Session {
	sess := newSession(uuid.NewString(), s.newResolver())
	s.cache.Set(sess.ID, sess, s.ttl)
	sessionsCreated.Inc()
	return sess
}

// Get returns a live session and extends its lifetime.
func (s *Store) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	item := s.cache.Get(id)
	if item == nil || item.Expired() {
		return nil, ErrNotFound
	}
	item.Extend(s.ttl)
	return item.Value(), nil
}

// GetOrCreate returns the session for id, creating a new one when it does
// not exist. The boolean reports whether a session was created.
func (s *Store) GetOrCreate(id string) (*Session, bool) {
	if sess, err := s.Get(id); err == nil {
		return sess, false
	}
	return s.Create(), true
}

func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

func (s *Store) Len() int {
	return s.cache.ItemCount()
}

func (s *Store) Stop() {
	s.cache.Stop()
}
