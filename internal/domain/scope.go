package domain

import (
	"context"

	"github.com/google/uuid"
)

// ScopedAuctions is the deferred-write view over Auctions a Scope
// exposes: Get/GetAll read through to the backing store immediately
// (read-committed); Add/Update record a pending change applied only on
// Scope.Commit.
type ScopedAuctions interface {
	Get(id uuid.UUID) (*Auction, bool)
	GetAll() []*Auction
	Add(a *Auction)
	Update(a *Auction)
}

// ScopedLots is the deferred-write view over Lots a Scope exposes.
type ScopedLots interface {
	Get(id uuid.UUID) (*Lot, bool)
	GetAll() []*Lot
	GetByAuctionID(auctionID uuid.UUID) []*Lot
	Add(l *Lot)
	Update(l *Lot)
}

// ScopedVehicles is the deferred-write view over Vehicles a Scope
// exposes. Vehicles are insert-only; there is no Update.
type ScopedVehicles interface {
	Get(id uuid.UUID) (*Vehicle, bool)
	GetAll() []*Vehicle
	Add(v *Vehicle)
}

// Scope is the unit-of-work transaction boundary (spec.md §4.4, C4) every
// engine command opens: it collects pending adds/updates against up to
// three stores and applies them on Commit, or discards them on
// Rollback/Discard. txn.Scope is the in-memory reference implementation
// that replays changes one-by-one; postgres.Scope is the stronger
// implementation that gates the same batch on a single database
// transaction. Both satisfy this interface so the engine is genuinely
// agnostic to which one it was handed.
type Scope interface {
	Auctions() ScopedAuctions
	Lots() ScopedLots
	Vehicles() ScopedVehicles

	// HasPendingChanges reports whether any Add/Update has been recorded
	// since the scope was opened (or since the last Commit/Rollback).
	HasPendingChanges() bool
	// Commit applies pending changes and returns the count applied.
	Commit(ctx context.Context) (int, error)
	// Rollback discards pending changes without touching the backing
	// stores.
	Rollback()
	// Discard is called on every exit path that did not Commit,
	// guaranteeing release of pending changes.
	Discard()
}
