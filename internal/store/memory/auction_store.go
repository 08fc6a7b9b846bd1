// Package memory implements the versioned store contract (spec.md §4.2,
// C2) as an in-process associative store guarded by a short mutual-
// exclusion section around the compare-and-swap in Update. It is the
// default backing store the engine is constructed with; internal/store/
// postgres implements the same domain.*Store contracts against a
// transactional backend.
package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/overdrive-auctions/auction-core/internal/domain"
)

// AuctionStore keeps the latest snapshot and last-committed version for
// every Auction, keyed by Id.
type AuctionStore struct {
	mu             sync.Mutex
	entities       map[uuid.UUID]*domain.Auction
	storedVersions map[uuid.UUID]uint32
}

// NewAuctionStore constructs an empty AuctionStore.
func NewAuctionStore() *AuctionStore {
	return &AuctionStore{
		entities:       make(map[uuid.UUID]*domain.Auction),
		storedVersions: make(map[uuid.UUID]uint32),
	}
}

// Add inserts a if its Id is absent, recording storedVersions[a.Id] =
// a.Version. Fails with DuplicateIDError if the Id is already present.
func (s *AuctionStore) Add(a *domain.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entities[a.ID]; exists {
		return &domain.DuplicateIDError{Kind: "Auction", ID: a.ID.String()}
	}

	snapshot := *a
	s.entities[a.ID] = &snapshot
	s.storedVersions[a.ID] = a.Version
	return nil
}

// Get returns a copy of the stored snapshot, if any.
func (s *AuctionStore) Get(id uuid.UUID) (*domain.Auction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.entities[id]
	if !ok {
		return nil, false
	}
	snapshot := *a
	return &snapshot, true
}

// GetAll returns a snapshot list of every stored Auction.
func (s *AuctionStore) GetAll() []*domain.Auction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Auction, 0, len(s.entities))
	for _, a := range s.entities {
		snapshot := *a
		out = append(out, &snapshot)
	}
	return out
}

// Update requires storedVersions[a.Id] to exist and a.Version to equal
// storedVersion+1; on match it replaces the snapshot and advances the
// stored version, under the store's internal mutual-exclusion section.
// Any mismatch fails with VersionConflictError; an absent Id fails with
// NotFoundError.
func (s *AuctionStore) Update(a *domain.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.storedVersions[a.ID]
	if !ok {
		return &domain.NotFoundError{Kind: "Auction", ID: a.ID.String()}
	}
	if a.Version != stored+1 {
		return &domain.VersionConflictError{Kind: "Auction", ID: a.ID.String(), Expected: stored + 1, Actual: a.Version}
	}

	snapshot := *a
	s.entities[a.ID] = &snapshot
	s.storedVersions[a.ID] = a.Version
	return nil
}
