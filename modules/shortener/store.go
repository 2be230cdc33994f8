package shortener

import (
	"fmt"
	"sync"
	"time"

	"github.com/example/url-shortener/domain/link"
	"github.com/google/uuid"
)

// DefaultMaxGenerateAttempts bounds the sampling loop of GenerateUniqueCode.
const DefaultMaxGenerateAttempts = 10

// Store is the in-memory mapping of short codes to records.
//
// All mutations, including code generation for Create, run under a single
// write lock. Companions are attached and detached inside that critical
// section. Observers are notified after the lock is released, so they may
// take their own locks freely.
type Store struct {
	mu          sync.RWMutex
	records     map[string]link.Record
	generate    CodeGenerator
	maxAttempts int
	now         func() time.Time
	newID       func() string
	observers   []link.Observer
	companions  []link.Companion
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the time source used for creation and expiry checks.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithMaxGenerateAttempts overrides how many random codes are tried before giving up.
func WithMaxGenerateAttempts(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithObservers registers observers notified of record creation and removal.
func WithObservers(observers ...link.Observer) StoreOption {
	return func(s *Store) {
		s.observers = append(s.observers, observers...)
	}
}

// WithCompanions registers state that is attached and detached together
// with each record.
func WithCompanions(companions ...link.Companion) StoreOption {
	return func(s *Store) {
		s.companions = append(s.companions, companions...)
	}
}

// NewStore creates an empty store that draws codes from generate.
func NewStore(generate CodeGenerator, opts ...StoreOption) *Store {
	s := &Store{
		records:     make(map[string]link.Record),
		generate:    generate,
		maxAttempts: DefaultMaxGenerateAttempts,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateUniqueCode returns a code that is not held by any record at the
// moment of the call. It does not reserve the code: a concurrent Create may
// take it before the caller uses it. To obtain a fresh record, call Create
// with an empty code, which generates and inserts in one critical section.
func (s *Store) GenerateUniqueCode() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generateLocked()
}

func (s *Store) generateLocked() (string, error) {
	for i := 0; i < s.maxAttempts; i++ {
		code := s.generate()
		if _, taken := s.records[code]; !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrCodeSpaceExhausted, s.maxAttempts)
}

// Create stores a new record. An empty code asks the store to generate one.
// A supplied code held by a live record fails with link.ErrAliasConflict; one
// held by an expired record is replaced.
func (s *Store) Create(code, destinationURL string, expiresAt *time.Time) (link.Record, error) {
	var replaced *link.Record

	s.mu.Lock()
	now := s.now()
	if code == "" {
		generated, err := s.generateLocked()
		if err != nil {
			s.mu.Unlock()
			return link.Record{}, err
		}
		code = generated
	} else if existing, ok := s.records[code]; ok {
		if !existing.ExpiredAt(now) {
			s.mu.Unlock()
			return link.Record{}, fmt.Errorf("%w: %s", link.ErrAliasConflict, code)
		}
		replaced = &existing
	}

	rec := link.Record{
		ID:             s.newID(),
		Code:           code,
		DestinationURL: destinationURL,
		CreatedAt:      now,
		ExpiresAt:      expiresAt,
	}.Clone()
	if replaced != nil {
		s.detachLocked(*replaced)
	}
	s.records[code] = rec
	for _, c := range s.companions {
		c.Attach(rec.Clone())
	}
	observers := s.observers
	s.mu.Unlock()

	if replaced != nil {
		notifyRemoved(observers, *replaced, link.RemovedExpired)
	}
	for _, o := range observers {
		o.LinkCreated(rec.Clone())
	}
	return rec.Clone(), nil
}

// Lookup returns the live record for code. An expired record is removed on
// the spot and reported as absent.
func (s *Store) Lookup(code string) (link.Record, bool) {
	s.mu.RLock()
	rec, ok := s.records[code]
	s.mu.RUnlock()
	if !ok {
		return link.Record{}, false
	}

	now := s.now()
	if !rec.ExpiredAt(now) {
		return rec.Clone(), true
	}

	s.mu.Lock()
	current, stillStored := s.records[code]
	removed := stillStored && current.ID == rec.ID
	if removed {
		delete(s.records, code)
		s.detachLocked(rec)
	}
	observers := s.observers
	s.mu.Unlock()

	if removed {
		notifyRemoved(observers, rec, link.RemovedExpired)
		return link.Record{}, false
	}
	// Replaced by a fresh incarnation between the two critical sections.
	if stillStored && !current.ExpiredAt(now) {
		return current.Clone(), true
	}
	return link.Record{}, false
}

// Delete removes the record for code. It reports false when there was no
// live record; an expired record is still collected in that case.
func (s *Store) Delete(code string) bool {
	s.mu.Lock()
	rec, ok := s.records[code]
	if ok {
		delete(s.records, code)
		s.detachLocked(rec)
	}
	observers := s.observers
	expired := ok && rec.ExpiredAt(s.now())
	s.mu.Unlock()

	if !ok {
		return false
	}
	if expired {
		notifyRemoved(observers, rec, link.RemovedExpired)
		return false
	}
	notifyRemoved(observers, rec, link.RemovedDeleted)
	return true
}

// Sweep removes every expired record and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	now := s.now()
	var swept []link.Record
	for code, rec := range s.records {
		if rec.ExpiredAt(now) {
			swept = append(swept, rec)
			delete(s.records, code)
			s.detachLocked(rec)
		}
	}
	observers := s.observers
	s.mu.Unlock()

	for _, rec := range swept {
		notifyRemoved(observers, rec, link.RemovedSwept)
	}
	return len(swept)
}

// Len returns the number of stored records, including expired ones not yet collected.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) detachLocked(rec link.Record) {
	for _, c := range s.companions {
		c.Detach(rec.Clone())
	}
}

func notifyRemoved(observers []link.Observer, rec link.Record, reason link.RemovalReason) {
	for _, o := range observers {
		o.LinkRemoved(rec.Clone(), reason)
	}
}
