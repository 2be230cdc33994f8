package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// LinkCreatedEvent is emitted when a short link is stored.
type LinkCreatedEvent struct {
	LinkID         string     `json:"link_id"`
	ShortCode      string     `json:"short_code"`
	DestinationURL string     `json:"destination_url"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// LinkCreatedV1 is the typed event definition for link creation.
// Subject: events.shortener.v1.link-created
var LinkCreatedV1 = helper.EventDefinition[LinkCreatedEvent](
	"shortener", "LinkCreated", "v1",
)

// LinkRemovedEvent is emitted when a short link leaves the store, either
// deleted by an admin or collected after expiry.
type LinkRemovedEvent struct {
	LinkID    string    `json:"link_id"`
	ShortCode string    `json:"short_code"`
	Reason    string    `json:"reason"`
	RemovedAt time.Time `json:"removed_at"`
}

// LinkRemovedV1 is the typed event definition for link removal.
// Subject: events.shortener.v1.link-removed
var LinkRemovedV1 = helper.EventDefinition[LinkRemovedEvent](
	"shortener", "LinkRemoved", "v1",
)
