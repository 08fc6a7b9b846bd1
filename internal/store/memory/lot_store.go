package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/overdrive-auctions/auction-core/internal/domain"
)

// LotStore keeps the latest snapshot and last-committed version for
// every Lot, keyed by Id.
type LotStore struct {
	mu             sync.Mutex
	entities       map[uuid.UUID]*domain.Lot
	storedVersions map[uuid.UUID]uint32
}

// NewLotStore constructs an empty LotStore.
func NewLotStore() *LotStore {
	return &LotStore{
		entities:       make(map[uuid.UUID]*domain.Lot),
		storedVersions: make(map[uuid.UUID]uint32),
	}
}

func (s *LotStore) Add(l *domain.Lot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entities[l.ID]; exists {
		return &domain.DuplicateIDError{Kind: "Lot", ID: l.ID.String()}
	}

	snapshot := *l
	s.entities[l.ID] = &snapshot
	s.storedVersions[l.ID] = l.Version
	return nil
}

func (s *LotStore) Get(id uuid.UUID) (*domain.Lot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.entities[id]
	if !ok {
		return nil, false
	}
	snapshot := *l
	return &snapshot, true
}

func (s *LotStore) GetAll() []*domain.Lot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Lot, 0, len(s.entities))
	for _, l := range s.entities {
		snapshot := *l
		out = append(out, &snapshot)
	}
	return out
}

// GetByAuctionID returns a snapshot list of every Lot owned by the given
// Auction.
func (s *LotStore) GetByAuctionID(auctionID uuid.UUID) []*domain.Lot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Lot, 0)
	for _, l := range s.entities {
		if l.AuctionID == auctionID {
			snapshot := *l
			out = append(out, &snapshot)
		}
	}
	return out
}

func (s *LotStore) Update(l *domain.Lot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.storedVersions[l.ID]
	if !ok {
		return &domain.NotFoundError{Kind: "Lot", ID: l.ID.String()}
	}
	if l.Version != stored+1 {
		return &domain.VersionConflictError{Kind: "Lot", ID: l.ID.String(), Expected: stored + 1, Actual: l.Version}
	}

	snapshot := *l
	s.entities[l.ID] = &snapshot
	s.storedVersions[l.ID] = l.Version
	return nil
}
