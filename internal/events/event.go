// Package events defines the event sink contract the engine emits to
// after a successful commit (spec.md §6). The real-time push/broadcast
// implementation is an external collaborator out of scope for this
// module; only the contract is specified here, plus an in-process sink
// suitable for tests and the bundled demo.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type enumerates the event kinds the engine emits.
type Type string

const (
	TypeAuctionCreated Type = "AuctionCreated"
	TypeAuctionStarted Type = "AuctionStarted"
	TypeAuctionEnded   Type = "AuctionEnded"
	TypeBidPlaced      Type = "BidPlaced"
)

// Event is the envelope the engine emits once the state change it
// reports has been stored; CreateLot emits no event. Delivery
// is at-least-once; consumers deduplicate on EventID. Partition key is
// AuctionID, to preserve per-auction order.
type Event struct {
	EventID   uuid.UUID
	EventType Type
	AuctionID uuid.UUID
	Timestamp time.Time
	Payload   any
}

// AuctionCreatedPayload is the Payload shape for TypeAuctionCreated.
type AuctionCreatedPayload struct {
	Title string
}

// AuctionStartedPayload is the Payload shape for TypeAuctionStarted.
type AuctionStartedPayload struct {
	StartTime time.Time
}

// AuctionEndedPayload is the Payload shape for TypeAuctionEnded.
type AuctionEndedPayload struct {
	EndTime time.Time
}

// BidPlacedPayload is the Payload shape for TypeBidPlaced.
type BidPlacedPayload struct {
	LotID             uuid.UUID
	BidID             uuid.UUID
	Amount            string
	IsCurrentlyHighest bool
}

// Sink is the external collaborator the engine emits committed events
// to. Implementations must not block the caller indefinitely; emission
// failures do not invalidate a committed transaction (spec.md §4.5) —
// the source of truth is the store, not the sink.
type Sink interface {
	Emit(e Event)
}

// New constructs an Event with a fresh EventID and the current instant.
func New(eventType Type, auctionID uuid.UUID, payload any) Event {
	return Event{
		EventID:   uuid.New(),
		EventType: eventType,
		AuctionID: auctionID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
