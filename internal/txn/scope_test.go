package txn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overdrive-auctions/auction-core/internal/domain"
	"github.com/overdrive-auctions/auction-core/internal/store/memory"
)

func TestScope_Rollback_LeavesStoreEmpty(t *testing.T) {
	auctionStore := memory.NewAuctionStore()
	lotStore := memory.NewLotStore()
	vehicleStore := memory.NewVehicleStore()

	scope := New(auctionStore, lotStore, vehicleStore)
	a, err := domain.NewAuction("Dec 2025", "")
	require.NoError(t, err)

	scope.Auctions().Add(a)
	assert.True(t, scope.HasPendingChanges())

	scope.Rollback()
	assert.False(t, scope.HasPendingChanges())

	assert.Empty(t, auctionStore.GetAll())
}

func TestScope_Commit_AppliesPendingAdd(t *testing.T) {
	auctionStore := memory.NewAuctionStore()
	lotStore := memory.NewLotStore()
	vehicleStore := memory.NewVehicleStore()

	scope := New(auctionStore, lotStore, vehicleStore)
	a, err := domain.NewAuction("Dec 2025", "")
	require.NoError(t, err)

	scope.Auctions().Add(a)
	applied, err := scope.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.False(t, scope.HasPendingChanges())

	loaded, ok := auctionStore.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, a.Title, loaded.Title)
}

func TestScope_Commit_PropagatesVersionConflict(t *testing.T) {
	auctionStore := memory.NewAuctionStore()
	lotStore := memory.NewLotStore()
	vehicleStore := memory.NewVehicleStore()

	a, err := domain.NewAuction("Dec 2025", "")
	require.NoError(t, err)
	require.NoError(t, auctionStore.Add(a))

	scope := New(auctionStore, lotStore, vehicleStore)
	stale := *a
	stale.Version = 5
	scope.Auctions().Update(&stale)

	_, err = scope.Commit(context.Background())
	var conflict *domain.VersionConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestScope_ReadsPassThroughImmediately(t *testing.T) {
	auctionStore := memory.NewAuctionStore()
	lotStore := memory.NewLotStore()
	vehicleStore := memory.NewVehicleStore()

	a, err := domain.NewAuction("Dec 2025", "")
	require.NoError(t, err)
	require.NoError(t, auctionStore.Add(a))

	scope := New(auctionStore, lotStore, vehicleStore)
	loaded, ok := scope.Auctions().Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, a.ID, loaded.ID)
}

// TestScope_SatisfiesDomainScope pins the seam the engine relies on:
// txn.Scope and postgres.Scope must both satisfy domain.Scope so the
// engine's command code is agnostic to which one it was handed.
func TestScope_SatisfiesDomainScope(t *testing.T) {
	var _ domain.Scope = New(memory.NewAuctionStore(), memory.NewLotStore(), memory.NewVehicleStore())
}
