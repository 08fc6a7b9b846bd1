package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/overdrive-auctions/auction-core/internal/domain"
)

// CreateLot resolves the Vehicle, loads the Auction, builds a Lot and
// attaches it to the Auction, persisting both atomically under the
// owning auction's lock (spec.md §4.5 "Creation uses auctionLocks[...]
// to serialize lot additions into the same auction").
func (e *Engine) CreateLot(ctx context.Context, auctionID, vehicleID uuid.UUID, startingBid decimal.Decimal, reservePrice *decimal.Decimal) (*domain.Lot, error) {
	release, err := e.locks.acquireAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	defer release()

	var created *domain.Lot
	err = withRetry(ctx, "CreateLot", func() error {
		scope := e.newScope()
		defer scope.Discard()

		vehicle, ok := scope.Vehicles().Get(vehicleID)
		if !ok {
			return &domain.NotFoundError{Kind: "Vehicle", ID: vehicleID.String()}
		}
		auction, ok := scope.Auctions().Get(auctionID)
		if !ok {
			return &domain.NotFoundError{Kind: "Auction", ID: auctionID.String()}
		}

		lot, err := domain.NewLot(auctionID, *vehicle, startingBid, reservePrice)
		if err != nil {
			return err
		}
		if err := auction.AddLot(*lot); err != nil {
			return err
		}

		scope.Auctions().Update(auction)
		scope.Lots().Add(lot)

		if _, err := scope.Commit(ctx); err != nil {
			return err
		}
		created = lot
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Infow("lot created", "lotId", created.ID, "auctionId", auctionID, "vehicleId", vehicleID)
	return created, nil
}
