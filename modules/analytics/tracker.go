package analytics

import (
	"sync"

	"github.com/example/url-shortener/domain/link"
	"github.com/go-monolith/mono/pkg/types"
)

// DefaultRecentAccessCapacity is the default number of recent accesses kept per code.
const DefaultRecentAccessCapacity = 100

// linkState is the analytics of one incarnation of a code. recent is a ring
// buffer: it grows to capacity, then head marks the oldest entry.
type linkState struct {
	linkID string
	total  uint64
	recent []link.AccessEvent
	head   int
}

func (s *linkState) append(event link.AccessEvent, capacity int) {
	s.total++
	if len(s.recent) < capacity {
		s.recent = append(s.recent, event)
		return
	}
	s.recent[s.head] = event
	s.head = (s.head + 1) % capacity
}

// snapshot copies the buffer oldest first.
func (s *linkState) snapshot() link.Snapshot {
	recent := make([]link.AccessEvent, 0, len(s.recent))
	recent = append(recent, s.recent[s.head:]...)
	recent = append(recent, s.recent[:s.head]...)
	return link.Snapshot{
		TotalClicks:    s.total,
		RecentAccesses: recent,
	}
}

// Tracker keeps a click counter and a bounded recent access log per code.
// The mapping store attaches and detaches state through link.Companion, and
// every read and write names the record incarnation it is meant for.
type Tracker struct {
	mu       sync.RWMutex
	states   map[string]*linkState
	capacity int
	logger   types.Logger
}

var _ link.Companion = (*Tracker)(nil)

// NewTracker creates a tracker keeping up to capacity recent accesses per code.
func NewTracker(capacity int, logger types.Logger) *Tracker {
	if capacity <= 0 {
		capacity = DefaultRecentAccessCapacity
	}
	return &Tracker{
		states:   make(map[string]*linkState),
		capacity: capacity,
		logger:   logger,
	}
}

// RecordAccess counts an access to the linkID incarnation of code. Accesses
// to a removed or replaced incarnation are logged and dropped.
func (t *Tracker) RecordAccess(code, linkID string, event link.AccessEvent) {
	t.mu.Lock()
	state, ok := t.states[code]
	ok = ok && state.linkID == linkID
	if ok {
		state.append(event, t.capacity)
	}
	t.mu.Unlock()

	if !ok {
		t.logger.Warn("Dropping access for unknown short code",
			"shortCode", code,
			"linkId", linkID)
	}
}

// Snapshot returns a copy of the analytics kept for the linkID incarnation
// of code.
func (t *Tracker) Snapshot(code, linkID string) (link.Snapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	state, ok := t.states[code]
	if !ok || state.linkID != linkID {
		return link.Snapshot{}, false
	}
	return state.snapshot(), true
}

// Attach starts fresh analytics for a new record, replacing whatever was
// kept for an earlier incarnation of the code.
func (t *Tracker) Attach(rec link.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.states[rec.Code] = &linkState{linkID: rec.ID}
}

// Detach discards the analytics of a removed record. State that belongs to
// another incarnation of the code is kept.
func (t *Tracker) Detach(rec link.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if state, ok := t.states[rec.Code]; ok && state.linkID == rec.ID {
		delete(t.states, rec.Code)
	}
}

// Len returns the number of codes being tracked.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.states)
}

// Capacity returns the per-code recent access capacity.
func (t *Tracker) Capacity() int {
	return t.capacity
}
