package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps sessions in memory. Idle sessions are dropped by Sweep.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*State
	interval time.Duration
	ttl      time.Duration
	logger   *log.Logger
}

// NewStore creates a store whose sessions throttle at interval and expire
// after ttl of inactivity.
func NewStore(interval, ttl time.Duration, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		sessions: make(map[string]*State),
		interval: interval,
		ttl:      ttl,
		logger:   logger,
	}
}

// Create starts a new session with a fresh id.
func (s *Store) Create() *State {
	st := NewState(uuid.NewString(), s.interval)
	s.mu.Lock()
	s.sessions[st.ID] = st
	s.mu.Unlock()
	s.logger.Printf("🆕 session %s started", st.ID)
	return st
}

// Get returns the session with id, if it still exists.
func (s *Store) Get(id string) (*State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[id]
	if ok {
		st.Touch()
	}
	return st, ok
}

// End clears and removes a session.
func (s *Store) End(id string) {
	s.mu.Lock()
	st, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		st.Clear()
		s.logger.Printf("👋 session %s ended", id)
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep ends every session idle for longer than the TTL and returns how
// many were removed. Sessions with a running invocation are kept.
func (s *Store) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	var expired []string
	s.mu.Lock()
	for id, st := range s.sessions {
		if st.idleSince(now) > s.ttl {
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	for _, id := range expired {
		s.End(id)
	}
	return len(expired)
}

// RunSweeper calls Sweep every period until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Sweep(now); n > 0 {
				s.logger.Printf("🧹 expired %d idle sessions", n)
			}
		}
	}
}
