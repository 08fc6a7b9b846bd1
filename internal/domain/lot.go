package domain

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// localSequenceCounters backs Lot.LocalSequence. Keyed by Lot ID rather
// than embedded in the Lot struct so that Lot remains a plain value type
// safe to copy across store snapshots (spec.md §4.2 "readers obtain
// copies").
var localSequenceCounters sync.Map // uuid.UUID -> *int64

// Lot is a single vehicle offered within an auction, carrying all bids
// placed on it. Once created, AuctionID, Vehicle and StartingBid are
// immutable; the Bids collection may be appended to at any time the
// service layer permits.
type Lot struct {
	Base

	AuctionID    uuid.UUID
	Vehicle      Vehicle
	StartingBid  decimal.Decimal
	ReservePrice *decimal.Decimal

	bids []Bid
}

func (l *Lot) GetID() uuid.UUID   { return l.ID }
func (l *Lot) GetVersion() uint32 { return l.Version }

// NewLot constructs a Lot. StartingBid and, if provided, ReservePrice
// must both lie within the money bounds (0.01 to 1,000,000,000).
func NewLot(auctionID uuid.UUID, vehicle Vehicle, startingBid decimal.Decimal, reservePrice *decimal.Decimal) (*Lot, error) {
	if auctionID == uuid.Nil {
		return nil, &InvalidInputError{Field: "auctionId", Reason: "must not be empty"}
	}
	if err := validateMoney("startingBid", startingBid); err != nil {
		return nil, err
	}
	if reservePrice != nil {
		if err := validateMoney("reservePrice", *reservePrice); err != nil {
			return nil, err
		}
	}

	return &Lot{
		Base:         newBase(),
		AuctionID:    auctionID,
		Vehicle:      vehicle,
		StartingBid:  startingBid,
		ReservePrice: reservePrice,
	}, nil
}

// LocalSequence issues the next value from this Lot's local counter. Only
// meant for use when no sequence.Source is available (see spec.md §4.3).
func (l *Lot) LocalSequence() int64 {
	counter, _ := localSequenceCounters.LoadOrStore(l.ID, new(int64))
	return atomic.AddInt64(counter.(*int64), 1)
}

// PlaceBid appends a bid unconditionally: AP ingestion, no amount-vs-
// current-high check. amount and sequence must both be strictly positive.
// Publishes a new version.
func (l *Lot) PlaceBid(bidderID string, amount decimal.Decimal, sequence int64) (*Bid, error) {
	if err := validatePartnerID("bidderId", bidderID); err != nil {
		return nil, err
	}
	if err := validateMoney("amount", amount); err != nil {
		return nil, err
	}
	if sequence <= 0 {
		return nil, &InvalidInputError{Field: "sequence", Reason: "must be strictly positive"}
	}

	bid := Bid{
		ID:       uuid.New(),
		BidderID: bidderID,
		LotID:    l.ID,
		Amount:   amount,
		BidTime:  time.Now().UTC(),
		Sequence: sequence,
	}
	l.bids = append(l.bids, bid)
	l.publish()

	return &bid, nil
}

// Bids returns a snapshot of the appended bids in append order.
func (l *Lot) Bids() []Bid {
	out := make([]Bid, len(l.bids))
	copy(out, l.bids)
	return out
}

// SetBids replaces the bid list wholesale. Only meant for a Store
// implementation rehydrating a Lot from persisted state (e.g. the
// postgres backend unmarshalling its bids JSONB column); domain callers
// append via PlaceBid.
func (l *Lot) SetBids(bids []Bid) {
	l.bids = make([]Bid, len(bids))
	copy(l.bids, bids)
}

// GetValidBids is the single source of truth for "valid bids": project
// the bid list into ascending Sequence order, sweep with a running
// currentHigh initialized to StartingBid, and include a bid iff its
// amount is strictly greater than currentHigh.
func (l *Lot) GetValidBids() []Bid {
	ordered := make([]Bid, len(l.bids))
	copy(ordered, l.bids)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Sequence < ordered[j].Sequence
	})

	valid := make([]Bid, 0, len(ordered))
	currentHigh := l.StartingBid
	for _, b := range ordered {
		if b.Amount.GreaterThan(currentHigh) {
			valid = append(valid, b)
			currentHigh = b.Amount
		}
	}
	return valid
}

// GetHighestBidAmount returns the last valid bid's amount, or
// StartingBid if there are no valid bids.
func (l *Lot) GetHighestBidAmount() decimal.Decimal {
	valid := l.GetValidBids()
	if len(valid) == 0 {
		return l.StartingBid
	}
	return valid[len(valid)-1].Amount
}

// GetHighestBid returns the last valid bid, or nil if there are none.
func (l *Lot) GetHighestBid() *Bid {
	valid := l.GetValidBids()
	if len(valid) == 0 {
		return nil
	}
	return &valid[len(valid)-1]
}

// GetWinningBidderID returns the highest bid's BidderID if it meets
// ReservePrice (when set); otherwise none.
func (l *Lot) GetWinningBidderID() (string, bool) {
	highest := l.GetHighestBid()
	if highest == nil {
		return "", false
	}
	if l.ReservePrice != nil && highest.Amount.LessThan(*l.ReservePrice) {
		return "", false
	}
	return highest.BidderID, true
}

// WouldBidBeValid is advisory only; it is never enforced on append.
func (l *Lot) WouldBidBeValid(amount decimal.Decimal) bool {
	return amount.GreaterThan(l.GetHighestBidAmount())
}
