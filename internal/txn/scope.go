// Package txn implements the unit-of-work transaction boundary (spec.md
// §4.4, C4): a scope collects pending adds/updates against up to three
// stores and applies them on Commit in recorded order, or discards them on
// Rollback/disposal. Commit is not atomic: see Scope.Commit.
package txn

import (
	"context"

	"github.com/google/uuid"

	"github.com/overdrive-auctions/auction-core/internal/domain"
)

type pendingKind int

const (
	pendingAuctionAdd pendingKind = iota
	pendingAuctionUpdate
	pendingLotAdd
	pendingLotUpdate
	pendingVehicleAdd
)

type pendingChange struct {
	kind    pendingKind
	auction *domain.Auction
	lot     *domain.Lot
	vehicle *domain.Vehicle
}

// auctionView is the concrete domain.ScopedAuctions a Scope exposes.
type auctionView struct {
	store domain.AuctionStore
	scope *Scope
}

func (v *auctionView) Add(a *domain.Auction) {
	v.scope.pending = append(v.scope.pending, pendingChange{kind: pendingAuctionAdd, auction: a})
}

func (v *auctionView) Update(a *domain.Auction) {
	v.scope.pending = append(v.scope.pending, pendingChange{kind: pendingAuctionUpdate, auction: a})
}

func (v *auctionView) Get(id uuid.UUID) (*domain.Auction, bool) { return v.store.Get(id) }
func (v *auctionView) GetAll() []*domain.Auction                { return v.store.GetAll() }

// lotView is the concrete domain.ScopedLots a Scope exposes.
type lotView struct {
	store domain.LotStore
	scope *Scope
}

func (v *lotView) Add(l *domain.Lot) {
	v.scope.pending = append(v.scope.pending, pendingChange{kind: pendingLotAdd, lot: l})
}

func (v *lotView) Update(l *domain.Lot) {
	v.scope.pending = append(v.scope.pending, pendingChange{kind: pendingLotUpdate, lot: l})
}

func (v *lotView) Get(id uuid.UUID) (*domain.Lot, bool) { return v.store.Get(id) }
func (v *lotView) GetAll() []*domain.Lot                { return v.store.GetAll() }
func (v *lotView) GetByAuctionID(auctionID uuid.UUID) []*domain.Lot {
	return v.store.GetByAuctionID(auctionID)
}

// vehicleView is the concrete domain.ScopedVehicles a Scope exposes.
// Vehicles are insert-only; there is no Update.
type vehicleView struct {
	store domain.VehicleStore
	scope *Scope
}

func (v *vehicleView) Add(veh *domain.Vehicle) {
	v.scope.pending = append(v.scope.pending, pendingChange{kind: pendingVehicleAdd, vehicle: veh})
}

func (v *vehicleView) Get(id uuid.UUID) (*domain.Vehicle, bool) { return v.store.Get(id) }
func (v *vehicleView) GetAll() []*domain.Vehicle                { return v.store.GetAll() }

// Scope is a single logical transaction over up to three stores. It is
// owned by a single caller; no concurrent use (spec.md §4.4).
type Scope struct {
	auctions *auctionView
	lots     *lotView
	vehicles *vehicleView

	pending   []pendingChange
	auctionS  domain.AuctionStore
	lotS      domain.LotStore
	vehicleS  domain.VehicleStore
	committed bool
}

// New opens a fresh scope over the three backing stores.
func New(auctionStore domain.AuctionStore, lotStore domain.LotStore, vehicleStore domain.VehicleStore) *Scope {
	s := &Scope{auctionS: auctionStore, lotS: lotStore, vehicleS: vehicleStore}
	s.auctions = &auctionView{store: auctionStore, scope: s}
	s.lots = &lotView{store: lotStore, scope: s}
	s.vehicles = &vehicleView{store: vehicleStore, scope: s}
	return s
}

func (s *Scope) Auctions() domain.ScopedAuctions { return s.auctions }
func (s *Scope) Lots() domain.ScopedLots         { return s.lots }
func (s *Scope) Vehicles() domain.ScopedVehicles { return s.vehicles }

// HasPendingChanges reports whether any Add/Update has been recorded
// since the scope was opened (or since the last Commit/Rollback).
func (s *Scope) HasPendingChanges() bool {
	return len(s.pending) > 0
}

// Commit applies pending changes in recorded order by invoking the
// corresponding store operations. It returns the count applied. If any
// apply raises a version-conflict or duplicate-id, the error propagates
// immediately and the scope is considered failed: because changes are
// replayed one-by-one against independent stores, a partial commit is
// possible (spec.md §4.4 atomicity caveat) — the caller must discard
// this scope and retry the whole operation rather than reuse it. ctx is
// accepted (unused) solely to satisfy domain.Scope's signature; the
// in-memory stores never block.
func (s *Scope) Commit(ctx context.Context) (int, error) {
	applied := 0
	for _, change := range s.pending {
		var err error
		switch change.kind {
		case pendingAuctionAdd:
			err = s.auctionS.Add(change.auction)
		case pendingAuctionUpdate:
			err = s.auctionS.Update(change.auction)
		case pendingLotAdd:
			err = s.lotS.Add(change.lot)
		case pendingLotUpdate:
			err = s.lotS.Update(change.lot)
		case pendingVehicleAdd:
			err = s.vehicleS.Add(change.vehicle)
		}
		if err != nil {
			return applied, err
		}
		applied++
	}
	s.pending = nil
	s.committed = true
	return applied, nil
}

// Rollback discards pending changes without touching the backing
// stores.
func (s *Scope) Rollback() {
	s.pending = nil
}

// Discard is called on every exit path that did not Commit, guaranteeing
// release of pending changes (spec.md §4.4 "scoped acquisition with
// guaranteed release").
func (s *Scope) Discard() {
	if !s.committed {
		s.Rollback()
	}
}

var _ domain.Scope = (*Scope)(nil)
