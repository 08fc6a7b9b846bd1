package engine

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// lockTable is the "two process-wide mappings from entity-Id to a
// non-reentrant single-permit mutual-exclusion primitive" of spec.md
// §4.5/§9: auctionLocks and lotLocks. Entries are created lazily on
// demand and never removed except by the CloseAuction lot-lock sweep
// (spec.md §9 open question, resolved in DESIGN.md).
type lockTable struct {
	auctionLocks sync.Map // uuid.UUID -> *semaphore.Weighted
	lotLocks     sync.Map // uuid.UUID -> *semaphore.Weighted
}

func (t *lockTable) auctionSem(id uuid.UUID) *semaphore.Weighted {
	sem, _ := t.auctionLocks.LoadOrStore(id, semaphore.NewWeighted(1))
	return sem.(*semaphore.Weighted)
}

func (t *lockTable) lotSem(id uuid.UUID) *semaphore.Weighted {
	sem, _ := t.lotLocks.LoadOrStore(id, semaphore.NewWeighted(1))
	return sem.(*semaphore.Weighted)
}

// acquireAuction blocks until the auction-scoped permit for id is held,
// honoring ctx cancellation at the suspension point (spec.md §5). The
// returned release func must be called exactly once.
func (t *lockTable) acquireAuction(ctx context.Context, id uuid.UUID) (release func(), err error) {
	sem := t.auctionSem(id)
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}

// acquireLot blocks until the lot-scoped permit for id is held.
func (t *lockTable) acquireLot(ctx context.Context, id uuid.UUID) (release func(), err error) {
	sem := t.lotSem(id)
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}

// sweepLotLocks drops the lot-lock entries for the given lot ids. Called
// only from CloseAuction, after a successful commit, while the caller
// still holds that auction's permit — so no new lot under this auction
// can begin a PlaceBid fast-path re-check and pass it (the auction is
// already Ended), and any bid already past the fast-path and waiting on
// a lotSem is holding a *reference* to the semaphore returned by
// lotSem/LoadOrStore before this delete, so deleting the map entry does
// not affect it; the next caller for that lot id simply gets a fresh
// permit. See spec.md §9.
func (t *lockTable) sweepLotLocks(lotIDs []uuid.UUID) {
	for _, id := range lotIDs {
		t.lotLocks.Delete(id)
	}
}
