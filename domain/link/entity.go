// Package link holds the domain types shared by the shortener, analytics and
// transport modules.
package link

import (
	"time"
)

// Record is a short code mapped to its destination URL.
type Record struct {
	// ID identifies this incarnation of the code. A code that expires and is
	// created again gets a new ID.
	ID             string     `json:"id"`
	Code           string     `json:"shortCode"`
	DestinationURL string     `json:"destinationUrl"`
	CreatedAt      time.Time  `json:"createdAt"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
}

// ExpiredAt reports whether the record has lapsed at the given instant.
func (r Record) ExpiredAt(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// Clone returns a copy that shares no memory with r.
func (r Record) Clone() Record {
	if r.ExpiresAt != nil {
		expiresAt := *r.ExpiresAt
		r.ExpiresAt = &expiresAt
	}
	return r
}

// AccessEvent is a single redirect through a short code.
type AccessEvent struct {
	Timestamp     time.Time `json:"timestamp"`
	ClientAddress string    `json:"ip"`
	UserAgent     string    `json:"userAgent,omitempty"`
	Referrer      string    `json:"referrer,omitempty"`
}

// Snapshot is a point-in-time copy of the analytics kept for one code.
type Snapshot struct {
	TotalClicks    uint64        `json:"totalClicks"`
	RecentAccesses []AccessEvent `json:"recentAccesses"`
}

// Analytics pairs a live record with its analytics snapshot.
type Analytics struct {
	Record   Record   `json:"record"`
	Snapshot Snapshot `json:"snapshot"`
}

// RemovalReason says why a record left the store.
type RemovalReason string

const (
	RemovedDeleted RemovalReason = "deleted"
	RemovedExpired RemovalReason = "expired"
	RemovedSwept   RemovalReason = "swept"
)

// Observer is told about records entering and leaving the store. It is
// never called while the store holds its lock.
type Observer interface {
	LinkCreated(rec Record)
	LinkRemoved(rec Record, reason RemovalReason)
}

// Companion keeps state that lives and dies with a record. The store calls
// it inside the critical section that inserts or removes the record, so no
// reader can see the record without its state. Implementations must not
// call back into the store.
type Companion interface {
	Attach(rec Record)
	Detach(rec Record)
}
