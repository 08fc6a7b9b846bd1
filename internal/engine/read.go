package engine

import (
	"github.com/google/uuid"

	"github.com/overdrive-auctions/auction-core/internal/domain"
)

// GetAuction returns a snapshot of the Auction, or NotFoundError.
func (e *Engine) GetAuction(id uuid.UUID) (*domain.Auction, error) {
	a, ok := e.auctionStore.Get(id)
	if !ok {
		return nil, &domain.NotFoundError{Kind: "Auction", ID: id.String()}
	}
	return a, nil
}

// ListAuctions returns a snapshot of every Auction.
func (e *Engine) ListAuctions() []*domain.Auction {
	return e.auctionStore.GetAll()
}

// GetLot returns a snapshot of the Lot, or NotFoundError.
func (e *Engine) GetLot(id uuid.UUID) (*domain.Lot, error) {
	l, ok := e.lotStore.Get(id)
	if !ok {
		return nil, &domain.NotFoundError{Kind: "Lot", ID: id.String()}
	}
	return l, nil
}

// GetHighestBid returns the Lot's highest valid bid, if any.
func (e *Engine) GetHighestBid(lotID uuid.UUID) (*domain.Bid, error) {
	l, ok := e.lotStore.Get(lotID)
	if !ok {
		return nil, &domain.NotFoundError{Kind: "Lot", ID: lotID.String()}
	}
	return l.GetHighestBid(), nil
}

// GetWinner returns the Lot's winning bidder id, if the highest bid
// meets the reserve (when set).
func (e *Engine) GetWinner(lotID uuid.UUID) (string, bool, error) {
	l, ok := e.lotStore.Get(lotID)
	if !ok {
		return "", false, &domain.NotFoundError{Kind: "Lot", ID: lotID.String()}
	}
	bidderID, ok := l.GetWinningBidderID()
	return bidderID, ok, nil
}
