package analytics

import (
	"sync"
	"time"
)

// Summary is the service-wide analytics overview.
type Summary struct {
	LinksCreated   int64            `json:"links_created"`
	LinksRemoved   map[string]int64 `json:"links_removed"`
	LinksTracked   int              `json:"links_tracked"`
	LastCreatedAt  *time.Time       `json:"last_created_at,omitempty"`
	AccessRecorder RecorderStats    `json:"access_recorder"`
}

// SummaryStore aggregates link lifecycle events.
type SummaryStore struct {
	mu            sync.RWMutex
	linksCreated  int64
	linksRemoved  map[string]int64
	lastCreatedAt time.Time
}

// NewSummaryStore creates an empty summary store.
func NewSummaryStore() *SummaryStore {
	return &SummaryStore{
		linksRemoved: make(map[string]int64),
	}
}

// RecordCreated counts a created link.
func (s *SummaryStore) RecordCreated(createdAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.linksCreated++
	if createdAt.After(s.lastCreatedAt) {
		s.lastCreatedAt = createdAt
	}
}

// RecordRemoved counts a removed link under its removal reason.
func (s *SummaryStore) RecordRemoved(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.linksRemoved[reason]++
}

// Summary returns a copy of the aggregated counters.
func (s *SummaryStore) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	removed := make(map[string]int64, len(s.linksRemoved))
	for reason, n := range s.linksRemoved {
		removed[reason] = n
	}

	summary := Summary{
		LinksCreated: s.linksCreated,
		LinksRemoved: removed,
	}
	if !s.lastCreatedAt.IsZero() {
		last := s.lastCreatedAt
		summary.LastCreatedAt = &last
	}
	return summary
}
