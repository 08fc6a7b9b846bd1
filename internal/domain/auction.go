package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuctionState is the Auction state machine's set of states. Transitions
// are only Created -> Active -> Ended.
type AuctionState string

const (
	AuctionStateCreated AuctionState = "CREATED"
	AuctionStateActive  AuctionState = "ACTIVE"
	AuctionStateEnded   AuctionState = "ENDED"
)

// Auction owns its Lots by value; a Lot always carries the owning
// AuctionID rather than holding a back-reference (spec.md §9).
type Auction struct {
	Base

	Title       string
	Description string
	State       AuctionState
	StartTime   *time.Time
	EndTime     *time.Time
	Lots        []Lot
}

func (a *Auction) GetID() uuid.UUID   { return a.ID }
func (a *Auction) GetVersion() uint32 { return a.Version }

// NewAuction constructs an Auction in state Created.
func NewAuction(title, description string) (*Auction, error) {
	if err := validateStringLen("title", title, TitleMinLen, TitleMaxLen); err != nil {
		return nil, err
	}
	if len(description) > DescriptionMaxLen {
		return nil, &InvalidInputError{Field: "description", Reason: "too long"}
	}

	return &Auction{
		Base:        newBase(),
		Title:       title,
		Description: description,
		State:       AuctionStateCreated,
	}, nil
}

// CanAcceptBids holds iff the Auction is Active.
func (a *Auction) CanAcceptBids() bool {
	return a.State == AuctionStateActive
}

// AddLot appends a Lot. Legal only while Created.
func (a *Auction) AddLot(lot Lot) error {
	if a.State != AuctionStateCreated {
		return &StateViolationError{Entity: "Auction", Reason: "lots may only be added while Created"}
	}
	a.Lots = append(a.Lots, lot)
	a.publish()
	return nil
}

// Start transitions Created -> Active. Requires at least one Lot; sets
// StartTime to now.
func (a *Auction) Start() error {
	if a.State != AuctionStateCreated {
		return &StateViolationError{Entity: "Auction", Reason: "can only start from Created"}
	}
	if len(a.Lots) < 1 {
		return &StateViolationError{Entity: "Auction", Reason: "cannot start without at least one lot"}
	}

	now := time.Now().UTC()
	a.StartTime = &now
	a.State = AuctionStateActive
	a.publish()
	return nil
}

// Close transitions Active -> Ended. Sets EndTime to now.
func (a *Auction) Close() error {
	if a.State != AuctionStateActive {
		return &StateViolationError{Entity: "Auction", Reason: "can only close from Active"}
	}

	now := time.Now().UTC()
	a.EndTime = &now
	a.State = AuctionStateEnded
	a.publish()
	return nil
}
