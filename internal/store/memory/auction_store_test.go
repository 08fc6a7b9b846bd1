package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overdrive-auctions/auction-core/internal/domain"
)

func TestAuctionStore_Add_DuplicateID(t *testing.T) {
	store := NewAuctionStore()
	a, err := domain.NewAuction("Dec 2025", "")
	require.NoError(t, err)

	require.NoError(t, store.Add(a))
	err = store.Add(a)
	assert.IsType(t, &domain.DuplicateIDError{}, err)
}

func TestAuctionStore_Update_VersionConflict(t *testing.T) {
	store := NewAuctionStore()
	a, err := domain.NewAuction("Dec 2025", "")
	require.NoError(t, err)
	require.NoError(t, store.Add(a))

	loaded, ok := store.Get(a.ID)
	require.True(t, ok)

	// Simulate a stale writer: mutate a loaded copy that skips a version.
	loaded.Version += 2
	err = store.Update(loaded)
	var conflict *domain.VersionConflictError
	require.ErrorAs(t, err, &conflict)
	assert.EqualValues(t, 2, conflict.Expected)
	assert.EqualValues(t, 3, conflict.Actual)
}

func TestAuctionStore_Update_NotFound(t *testing.T) {
	store := NewAuctionStore()
	a, err := domain.NewAuction("Dec 2025", "")
	require.NoError(t, err)

	err = store.Update(a)
	assert.IsType(t, &domain.NotFoundError{}, err)
}

func TestAuctionStore_Update_RequiresExactlyStoredPlusOne(t *testing.T) {
	store := NewAuctionStore()
	a, err := domain.NewAuction("Dec 2025", "")
	require.NoError(t, err)
	require.NoError(t, store.Add(a))

	loaded, ok := store.Get(a.ID)
	require.True(t, ok)
	loaded.Version = 2

	require.NoError(t, store.Update(loaded))

	got, ok := store.Get(a.ID)
	require.True(t, ok)
	assert.EqualValues(t, 2, got.Version)
}

// TestAuctionStore_Get_ReturnsCopy verifies readers obtain copies
// (spec.md §3): mutating a returned snapshot must not affect the store.
func TestAuctionStore_Get_ReturnsCopy(t *testing.T) {
	store := NewAuctionStore()
	a, err := domain.NewAuction("Dec 2025", "")
	require.NoError(t, err)
	require.NoError(t, store.Add(a))

	loaded, _ := store.Get(a.ID)
	loaded.Title = "mutated"

	reloaded, _ := store.Get(a.ID)
	assert.Equal(t, "Dec 2025", reloaded.Title)
}

// TestAuctionStore_ConcurrentUpdates exercises the store-wide
// serialization around the compare-and-swap: only one of N racing
// updates at the same expected version may win.
func TestAuctionStore_ConcurrentUpdates(t *testing.T) {
	store := NewAuctionStore()
	a, err := domain.NewAuction("Dec 2025", "")
	require.NoError(t, err)
	require.NoError(t, store.Add(a))

	const n = 10
	base, ok := store.Get(a.ID)
	require.True(t, ok)

	var wg sync.WaitGroup
	start := make(chan struct{})
	successes := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loaded := *base
			loaded.Version++
			<-start
			successes <- store.Update(&loaded) == nil
		}()
	}
	close(start)
	wg.Wait()
	close(successes)

	successCount := 0
	for ok := range successes {
		if ok {
			successCount++
		}
	}
	assert.Equal(t, 1, successCount)
}
