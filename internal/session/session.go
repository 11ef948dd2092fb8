// Package session keeps the per-browser analysis state: at most one loaded
// table and at most one report generated from exactly that table.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/JonMunkholm/rreport/internal/dataset"
	"github.com/JonMunkholm/rreport/internal/report"
)

var (
	// ErrReportWithoutTable is returned when a report is stored without a
	// table.
	ErrReportWithoutTable = errors.New("session: report requires a table")

	// ErrReportMismatch is returned when a report was generated from a
	// different table than the one being stored.
	ErrReportMismatch = errors.New("session: report was not generated from this table")
)

// Session holds the state of one user. All methods are safe for concurrent
// use; Set, Clear and Get are atomic with respect to each other.
type Session struct {
	id string

	mu       sync.RWMutex
	table    *dataset.Table
	report   *report.Report
	lastSeen time.Time
}

// New returns an empty session with the given id.
func New(id string) *Session {
	return &Session{id: id, lastSeen: time.Now()}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Set replaces the state. A report must belong to the table it is stored
// with; on error the previous state is kept.
func (s *Session) Set(t *dataset.Table, r *report.Report) error {
	if r != nil {
		if t == nil {
			return ErrReportWithoutTable
		}
		if r.Table() != t {
			return ErrReportMismatch
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = t
	s.report = r
	s.lastSeen = time.Now()
	return nil
}

// Clear drops the table and report. Clearing an empty session is a no-op.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = nil
	s.report = nil
	s.lastSeen = time.Now()
}

// Get returns the current table and report, either of which may be nil.
func (s *Session) Get() (*dataset.Table, *report.Report) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table, s.report
}

// HasData reports whether a table is loaded.
func (s *Session) HasData() bool {
	t, _ := s.Get()
	return t != nil
}

// Touch records activity on the session.
func (s *Session) Touch() {
	s.touch(time.Now())
}

func (s *Session) touch(at time.Time) {
	s.mu.Lock()
	s.lastSeen = at
	s.mu.Unlock()
}

// LastSeen returns the time of the last recorded activity.
func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}
