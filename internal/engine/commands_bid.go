package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/overdrive-auctions/auction-core/internal/domain"
	"github.com/overdrive-auctions/auction-core/internal/events"
)

// PlaceBidResult is the structured result spec.md §6/§7 requires for
// PlaceBid: every failure except NotFound on the bid's own Lot is
// reported here rather than as an error, so the caller can translate it
// to a 400-class response without inspecting a taxonomy.
type PlaceBidResult struct {
	Success            bool
	Message            string
	BidID              uuid.UUID
	CurrentHighest     decimal.Decimal
	IsCurrentlyHighest bool
}

// PlaceBid implements the algorithm of spec.md §4.5: a fast-path
// pre-check outside the lock, then a retry loop under lotLocks[lotId]
// that reloads Lot/Auction fresh each attempt, appends the bid (AP
// ingestion — no amount-vs-current-high check gates the append), and
// commits. The bid is accepted even when isCurrentlyHighest is false.
func (e *Engine) PlaceBid(ctx context.Context, lotID uuid.UUID, bidderID string, amount decimal.Decimal) (*PlaceBidResult, error) {
	// Step 1: fast-path pre-check, outside any lock, with a transient scope.
	precheck := e.newScope()
	lot, ok := precheck.Lots().Get(lotID)
	if !ok {
		return nil, &domain.NotFoundError{Kind: "Lot", ID: lotID.String()}
	}
	auction, ok := precheck.Auctions().Get(lot.AuctionID)
	if !ok || !auction.CanAcceptBids() {
		return &PlaceBidResult{Success: false, Message: "auction is not accepting bids"}, nil
	}

	// Step 2: acquire the lot-scoped permit.
	release, err := e.locks.acquireLot(ctx, lotID)
	if err != nil {
		return &PlaceBidResult{Success: false, Message: err.Error()}, nil
	}

	var result *PlaceBidResult
	var bidID uuid.UUID
	retryErr := withRetry(ctx, "PlaceBid", func() error {
		scope := e.newScope()
		defer scope.Discard()

		// Step 3: reload fresh.
		lot, ok := scope.Lots().Get(lotID)
		if !ok {
			result = nil
			return &domain.NotFoundError{Kind: "Lot", ID: lotID.String()}
		}
		auction, ok := scope.Auctions().Get(lot.AuctionID)
		if !ok || !auction.CanAcceptBids() {
			result = &PlaceBidResult{Success: false, Message: "auction is not accepting bids"}
			return nil
		}

		// Step 4: advisory check, computed before append.
		isCurrentlyHighest := lot.WouldBidBeValid(amount)

		// Step 5: obtain the sequence.
		seq := e.seq.Next(lotID)

		// Step 6: append. A precondition failure here is InvalidInput,
		// not retried.
		bid, err := lot.PlaceBid(bidderID, amount, seq)
		if err != nil {
			result = &PlaceBidResult{Success: false, Message: err.Error()}
			return nil
		}

		// Step 7: record the pending update and commit.
		scope.Lots().Update(lot)
		if _, err := scope.Commit(ctx); err != nil {
			if isVersionConflict(err) {
				return err // Step 8: retried by withRetry.
			}
			result = &PlaceBidResult{Success: false, Message: err.Error()}
			return nil
		}

		bidID = bid.ID
		result = &PlaceBidResult{
			Success:            true,
			BidID:              bid.ID,
			CurrentHighest:     lot.GetHighestBidAmount(),
			IsCurrentlyHighest: isCurrentlyHighest,
		}
		return nil
	})

	// Step 9: release the lock before emitting.
	release()

	if retryErr != nil {
		var notFound *domain.NotFoundError
		if errors.As(retryErr, &notFound) {
			return nil, retryErr
		}
		// Unrecoverable: retries exhausted. Per spec.md §7 this still
		// surfaces as a structured PlaceBid result, not a raised error.
		return &PlaceBidResult{Success: false, Message: retryErr.Error()}, nil
	}
	if result == nil {
		return nil, retryErr
	}

	if result.Success {
		e.emit(events.New(events.TypeBidPlaced, lot.AuctionID, events.BidPlacedPayload{
			LotID:              lotID,
			BidID:              bidID,
			Amount:             amount.String(),
			IsCurrentlyHighest: result.IsCurrentlyHighest,
		}))
		e.log.Infow("bid placed", "lotId", lotID, "bidId", bidID, "amount", amount.String(), "isCurrentlyHighest", result.IsCurrentlyHighest)
	}

	return result, nil
}
