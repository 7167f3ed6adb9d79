// Package session keeps one feedback form per visitor session in memory.
//
// The store is bounded: a doubly linked list ordered by last use backs O(1)
// LRU eviction, and Sweep drops sessions idle longer than the TTL. Visiting a
// different location replaces the visitor's form with a fresh one.
package session

import (
	"sync"
	"time"

	"github.com/harkwise/userapp/internal/domain/form"
	"github.com/harkwise/userapp/pkg/metrics"
)

const (
	defaultCapacity = 10_000
	defaultTTL      = 30 * time.Minute
)

// Factory builds a fresh form for a location.
type Factory func(locationID string) *form.Controller

type node struct {
	id       string
	form     *form.Controller
	lastSeen time.Time
	prev     *node
	next     *node
}

func (n *node) reset() {
	*n = node{}
}

// Store maps session ids to form controllers.
type Store struct {
	mu       sync.Mutex
	entries  map[string]*node
	head     *node // most recently used
	tail     *node // least recently used
	capacity int
	ttl      time.Duration
	now      func() time.Time
	nodePool sync.Pool
}

// New creates a store.
func New(opts ...Option) *Store {
	s := &Store{
		entries:  make(map[string]*node),
		capacity: defaultCapacity,
		ttl:      defaultTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.nodePool.New = func() any { return &node{} }
	return s
}

// Acquire returns the session's form for locationID, creating it with
// newForm when the session is unknown or was on another location.
func (s *Store) Acquire(sessionID, locationID string, newForm Factory) (*form.Controller, error) {
	if sessionID == "" {
		return nil, ErrEmptySession
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if n, ok := s.entries[sessionID]; ok {
		if n.form.LocationID() != locationID {
			n.form = newForm(locationID)
		}
		n.lastSeen = now
		s.moveToFront(n)
		return n.form, nil
	}

	if len(s.entries) >= s.capacity {
		s.evict(s.tail, "capacity")
	}

	n := s.nodePool.Get().(*node)
	n.id = sessionID
	n.form = newForm(locationID)
	n.lastSeen = now
	s.pushFront(n)
	s.entries[sessionID] = n
	metrics.UpdateSessionsActive(len(s.entries))
	return n.form, nil
}

// Sweep drops sessions idle longer than the TTL and returns how many went.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	// The list is ordered by last use, so idle sessions sit at the tail.
	for s.tail != nil && s.tail.lastSeen.Before(cutoff) {
		s.evict(s.tail, "idle")
		removed++
	}
	return removed
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// evict must be called with s.mu held.
func (s *Store) evict(n *node, reason string) {
	if n == nil {
		return
	}
	s.unlink(n)
	delete(s.entries, n.id)
	n.reset()
	s.nodePool.Put(n)
	metrics.RecordSessionEvicted(reason)
	metrics.UpdateSessionsActive(len(s.entries))
}

func (s *Store) pushFront(n *node) {
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

func (s *Store) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		s.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (s *Store) moveToFront(n *node) {
	if s.head == n {
		return
	}
	s.unlink(n)
	s.pushFront(n)
}
