package domain

import (
	"time"

	"github.com/google/uuid"
)

// Base carries the fields every entity in the core shares: a stable
// identifier, creation/update instants, and an optimistic version.
// Adheres to the data model defined in spec.md §3.
type Base struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
	Version   uint32
}

func newBase() Base {
	return Base{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Version:   1,
	}
}

// publish records a mutation: bumps UpdatedAt and increments Version.
// Every mutating operation on Auction/Lot calls this exactly once.
func (b *Base) publish() {
	now := time.Now().UTC()
	b.UpdatedAt = &now
	b.Version++
}

// Identifiable is satisfied by every entity kind the stores hold
// (Auction, Lot, Vehicle).
type Identifiable interface {
	GetID() uuid.UUID
	GetVersion() uint32
}
