package domain

import "github.com/google/uuid"

// AuctionStore defines the persistence contract for Auction (spec.md
// §4.2, C2). One typed interface per entity kind (AuctionStore, LotStore,
// VehicleStore) replaces any reflective repository pattern.
type AuctionStore interface {
	Add(a *Auction) error
	Get(id uuid.UUID) (*Auction, bool)
	GetAll() []*Auction
	// Update requires e.Version == storedVersion+1; any mismatch fails
	// with a VersionConflictError.
	Update(a *Auction) error
}

// LotStore defines the persistence contract for Lot.
type LotStore interface {
	Add(l *Lot) error
	Get(id uuid.UUID) (*Lot, bool)
	GetAll() []*Lot
	GetByAuctionID(auctionID uuid.UUID) []*Lot
	Update(l *Lot) error
}

// VehicleStore defines the persistence contract for Vehicle. Vehicles
// are insert-only; there is no Update.
type VehicleStore interface {
	Add(v *Vehicle) error
	Get(id uuid.UUID) (*Vehicle, bool)
	GetAll() []*Vehicle
}
