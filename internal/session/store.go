package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store maps session ids to sessions. Sessions idle longer than the TTL
// are removed by Purge or the background sweeper.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore creates a store whose sessions expire after ttl of inactivity.
// A zero ttl disables expiry.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session with a random id.
func (st *Store) Create() *Session {
	s := New(uuid.NewString())
	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()
	return s
}

// Get returns the live session for id and marks it as seen.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()
	if !ok || st.expired(s) {
		return nil, false
	}
	s.touch(st.now())
	return s, true
}

// GetOrCreate returns the session for id, or a new one when id is unknown,
// malformed or expired. created reports whether a new session was made.
func (st *Store) GetOrCreate(id string) (s *Session, created bool) {
	if _, err := uuid.Parse(id); err == nil {
		if s, ok := st.Get(id); ok {
			return s, false
		}
	}
	return st.Create(), true
}

// Delete removes a session.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of stored sessions, expired or not.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Purge removes expired sessions and returns how many were dropped.
func (st *Store) Purge() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if st.expired(s) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

func (st *Store) expired(s *Session) bool {
	return st.ttl > 0 && st.now().Sub(s.LastSeen()) > st.ttl
}

// StartSweeper purges expired sessions every interval until ctx is done.
// It blocks; run it in its own goroutine.
func (st *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 || st.ttl <= 0 {
		return
	}
	slog.Info("session sweeper started", "interval", interval, "idle_ttl", st.ttl)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			if n := st.Purge(); n > 0 {
				slog.Info("purged idle sessions", "count", n, "remaining", st.Len())
			}
		}
	}
}
