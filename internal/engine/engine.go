// Package engine implements the serialization + retry orchestrator
// (spec.md §4.5, C5): the application-level command surface, per-entity
// mutual exclusion, retry-on-version-conflict, and winner/validity
// resolution. It is the 50%-share component of the core.
package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/overdrive-auctions/auction-core/internal/domain"
	"github.com/overdrive-auctions/auction-core/internal/events"
	"github.com/overdrive-auctions/auction-core/internal/sequence"
	"github.com/overdrive-auctions/auction-core/internal/txn"
)

// MaxAttempts bounds the retry loop every mutating command wraps its
// critical section in (spec.md §4.5).
const MaxAttempts = 3

// BaseDelay is the base of the exponential backoff between retries:
// BaseDelay * 2^(attempt-1).
const BaseDelay = 50 * time.Millisecond

// Engine is the process-wide orchestrator. Its per-entity lock tables
// and sequence source are process-wide state with init-at-start,
// teardown-on-shutdown lifecycle (spec.md §9); there are no other
// mutable singletons.
type Engine struct {
	auctionStore domain.AuctionStore
	lotStore     domain.LotStore
	vehicleStore domain.VehicleStore
	seq          sequence.Source
	sink         events.Sink
	log          *zap.SugaredLogger

	locks    lockTable
	newScope func() domain.Scope
}

// New constructs an Engine over the given stores, sequence source, and
// event sink. log may be the discard logger in tests. CreateLot,
// StartAuction, CloseAuction and PlaceBid open their unit-of-work scope
// through txn.New against these same three stores by default
// (CreateAuction and CreateVehicle add straight to their store); call
// UseScope to swap in a different
// domain.Scope implementation (e.g. postgres.Scope for an atomic
// single-transaction commit against the same backend these stores
// front).
func New(auctionStore domain.AuctionStore, lotStore domain.LotStore, vehicleStore domain.VehicleStore, seq sequence.Source, sink events.Sink, log *zap.SugaredLogger) *Engine {
	e := &Engine{
		auctionStore: auctionStore,
		lotStore:     lotStore,
		vehicleStore: vehicleStore,
		seq:          seq,
		sink:         sink,
		log:          log,
	}
	e.newScope = func() domain.Scope {
		return txn.New(e.auctionStore, e.lotStore, e.vehicleStore)
	}
	return e
}

// UseScope swaps the unit-of-work scope factory the scoped commands
// open. The replacement must read/write against the same backing
// stores this Engine was constructed with, or reads and writes will
// diverge.
func (e *Engine) UseScope(factory func() domain.Scope) {
	e.newScope = factory
}

func (e *Engine) emit(ev events.Event) {
	e.sink.Emit(ev)
}
