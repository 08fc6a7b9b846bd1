package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/overdrive-auctions/auction-core/internal/domain"
)

// VehicleStore keeps the latest snapshot for every Vehicle, keyed by Id.
// Vehicles are insert-only; there is no Update.
type VehicleStore struct {
	mu       sync.Mutex
	entities map[uuid.UUID]*domain.Vehicle
}

// NewVehicleStore constructs an empty VehicleStore.
func NewVehicleStore() *VehicleStore {
	return &VehicleStore{
		entities: make(map[uuid.UUID]*domain.Vehicle),
	}
}

func (s *VehicleStore) Add(v *domain.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entities[v.ID]; exists {
		return &domain.DuplicateIDError{Kind: "Vehicle", ID: v.ID.String()}
	}

	snapshot := *v
	s.entities[v.ID] = &snapshot
	return nil
}

func (s *VehicleStore) Get(id uuid.UUID) (*domain.Vehicle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entities[id]
	if !ok {
		return nil, false
	}
	snapshot := *v
	return &snapshot, true
}

func (s *VehicleStore) GetAll() []*domain.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Vehicle, 0, len(s.entities))
	for _, v := range s.entities {
		snapshot := *v
		out = append(out, &snapshot)
	}
	return out
}
