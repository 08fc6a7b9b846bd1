package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/overdrive-auctions/auction-core/internal/domain"
	"github.com/overdrive-auctions/auction-core/internal/events"
)

// CreateAuction constructs a new Auction in state Created and adds it to
// the store. A fresh Auction id can never collide, so this runs outside
// the lock/retry machinery the mutating commands below use.
func (e *Engine) CreateAuction(title, description string) (*domain.Auction, error) {
	a, err := domain.NewAuction(title, description)
	if err != nil {
		return nil, err
	}
	if err := e.auctionStore.Add(a); err != nil {
		return nil, err
	}

	e.emit(events.New(events.TypeAuctionCreated, a.ID, events.AuctionCreatedPayload{Title: title}))
	e.log.Infow("auction created", "auctionId", a.ID, "title", title)
	return a, nil
}

// StartAuction transitions an Auction Created -> Active.
func (e *Engine) StartAuction(ctx context.Context, auctionID uuid.UUID) (*domain.Auction, error) {
	release, err := e.locks.acquireAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	defer release()

	var started *domain.Auction
	err = withRetry(ctx, "StartAuction", func() error {
		scope := e.newScope()
		defer scope.Discard()

		auction, ok := scope.Auctions().Get(auctionID)
		if !ok {
			return &domain.NotFoundError{Kind: "Auction", ID: auctionID.String()}
		}
		if err := auction.Start(); err != nil {
			return err
		}
		scope.Auctions().Update(auction)

		if _, err := scope.Commit(ctx); err != nil {
			return err
		}
		started = auction
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emit(events.New(events.TypeAuctionStarted, started.ID, events.AuctionStartedPayload{StartTime: *started.StartTime}))
	e.log.Infow("auction started", "auctionId", started.ID)
	return started, nil
}

// CloseAuction transitions an Auction Active -> Ended, then sweeps the
// lot-lock entries for every Lot under it (spec.md §9 open question,
// resolved: see DESIGN.md).
func (e *Engine) CloseAuction(ctx context.Context, auctionID uuid.UUID) (*domain.Auction, error) {
	release, err := e.locks.acquireAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	defer release()

	var closed *domain.Auction
	err = withRetry(ctx, "CloseAuction", func() error {
		scope := e.newScope()
		defer scope.Discard()

		auction, ok := scope.Auctions().Get(auctionID)
		if !ok {
			return &domain.NotFoundError{Kind: "Auction", ID: auctionID.String()}
		}
		if err := auction.Close(); err != nil {
			return err
		}
		scope.Auctions().Update(auction)

		if _, err := scope.Commit(ctx); err != nil {
			return err
		}
		closed = auction
		return nil
	})
	if err != nil {
		return nil, err
	}

	lots := e.lotStore.GetByAuctionID(auctionID)
	lotIDs := make([]uuid.UUID, len(lots))
	for i, l := range lots {
		lotIDs[i] = l.ID
	}
	e.locks.sweepLotLocks(lotIDs)

	e.emit(events.New(events.TypeAuctionEnded, closed.ID, events.AuctionEndedPayload{EndTime: *closed.EndTime}))
	e.log.Infow("auction closed", "auctionId", closed.ID, "sweptLots", len(lotIDs))
	return closed, nil
}
