package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/overdrive-auctions/auction-core/internal/domain"
	"github.com/overdrive-auctions/auction-core/internal/events"
	"github.com/overdrive-auctions/auction-core/internal/sequence"
	"github.com/overdrive-auctions/auction-core/internal/store/memory"
)

func newTestEngine() (*Engine, *events.InMemorySink) {
	sink := events.NewInMemorySink()
	e := New(
		memory.NewAuctionStore(),
		memory.NewLotStore(),
		memory.NewVehicleStore(),
		sequence.NewInProcess(),
		sink,
		zap.NewNop().Sugar(),
	)
	return e, sink
}

func mustCreateVehicle(t *testing.T, e *Engine) *domain.Vehicle {
	t.Helper()
	v, err := e.CreateVehicle(CreateVehicleRequest{
		Kind:    domain.VehicleKindSedan,
		Make:    "BMW",
		Model:   "i4 M50",
		Year:    2023,
		VIN:     "1HGCM82633A123456",
		Mileage: decimal.NewFromInt(28000),
		Color:   "Grey",
		ExtraAttrs: map[string]any{
			"doors":   4,
			"sunroof": true,
		},
	})
	require.NoError(t, err)
	return v
}

// TestEngine_Scenario_S1 mirrors spec.md §8 S1 end-to-end through the
// command API.
func TestEngine_Scenario_S1(t *testing.T) {
	e, sink := newTestEngine()
	ctx := context.Background()

	auction, err := e.CreateAuction("Dec 2025", "end of year sale")
	require.NoError(t, err)

	vehicle := mustCreateVehicle(t, e)

	reserve := decimal.NewFromInt(18000)
	lot, err := e.CreateLot(ctx, auction.ID, vehicle.ID, decimal.NewFromInt(15000), &reserve)
	require.NoError(t, err)

	_, err = e.StartAuction(ctx, auction.ID)
	require.NoError(t, err)

	r, err := e.PlaceBid(ctx, lot.ID, "b1", decimal.NewFromInt(16000))
	require.NoError(t, err)
	assert.True(t, r.Success)
	assert.True(t, r.IsCurrentlyHighest)
	assert.Equal(t, "16000", r.CurrentHighest.String())

	r, err = e.PlaceBid(ctx, lot.ID, "b2", decimal.NewFromInt(17000))
	require.NoError(t, err)
	assert.Equal(t, "17000", r.CurrentHighest.String())

	r, err = e.PlaceBid(ctx, lot.ID, "b3", decimal.NewFromInt(19000))
	require.NoError(t, err)
	assert.Equal(t, "19000", r.CurrentHighest.String())

	r, err = e.PlaceBid(ctx, lot.ID, "b1", decimal.NewFromInt(18000))
	require.NoError(t, err)
	assert.True(t, r.Success)
	assert.False(t, r.IsCurrentlyHighest)
	assert.Equal(t, "19000", r.CurrentHighest.String())

	_, err = e.CloseAuction(ctx, auction.ID)
	require.NoError(t, err)

	winner, ok, err := e.GetWinner(lot.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b3", winner)

	emitted := sink.Events()
	var sawBidPlaced, sawEnded int
	for _, ev := range emitted {
		switch ev.EventType {
		case events.TypeBidPlaced:
			sawBidPlaced++
		case events.TypeAuctionEnded:
			sawEnded++
		}
	}
	assert.Equal(t, 4, sawBidPlaced)
	assert.Equal(t, 1, sawEnded)
}

// TestEngine_Scenario_S2 mirrors spec.md §8 S2: reserve not met.
func TestEngine_Scenario_S2(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	auction, err := e.CreateAuction("Reserve Test", "")
	require.NoError(t, err)
	vehicle := mustCreateVehicle(t, e)

	reserve := decimal.NewFromInt(10000)
	lot, err := e.CreateLot(ctx, auction.ID, vehicle.ID, decimal.NewFromInt(1000), &reserve)
	require.NoError(t, err)
	_, err = e.StartAuction(ctx, auction.ID)
	require.NoError(t, err)

	_, err = e.PlaceBid(ctx, lot.ID, "b1", decimal.NewFromInt(3000))
	require.NoError(t, err)
	_, err = e.PlaceBid(ctx, lot.ID, "b2", decimal.NewFromInt(5000))
	require.NoError(t, err)

	_, ok, err := e.GetWinner(lot.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestEngine_PlaceBid_AuctionNotActive exercises the fast-path pre-check.
func TestEngine_PlaceBid_AuctionNotActive(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	auction, err := e.CreateAuction("Not Started", "")
	require.NoError(t, err)
	vehicle := mustCreateVehicle(t, e)
	lot, err := e.CreateLot(ctx, auction.ID, vehicle.ID, decimal.NewFromInt(1000), nil)
	require.NoError(t, err)

	r, err := e.PlaceBid(ctx, lot.ID, "b1", decimal.NewFromInt(2000))
	require.NoError(t, err)
	assert.False(t, r.Success)
}

// TestEngine_PlaceBid_LotNotFound_Raises verifies NotFound on the bid's
// own Lot is the one PlaceBid failure that raises rather than returning
// a structured failure (spec.md §7).
func TestEngine_PlaceBid_LotNotFound_Raises(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	_, err := e.PlaceBid(ctx, uuid.New(), "b1", decimal.NewFromInt(100))
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

// TestEngine_Scenario_S4 mirrors spec.md §8 S4: concurrent AddLot x10 on
// the same Auction.
func TestEngine_Scenario_S4(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	auction, err := e.CreateAuction("Concurrent Lots", "")
	require.NoError(t, err)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vehicle := mustCreateVehicle(t, e)
			_, err := e.CreateLot(ctx, auction.ID, vehicle.ID, decimal.NewFromInt(1000), nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := e.GetAuction(auction.ID)
	require.NoError(t, err)
	assert.Len(t, got.Lots, n)
	assert.EqualValues(t, n+1, got.Version)
}

// TestEngine_Scenario_S5 mirrors spec.md §8 S5: 50 concurrent bids on the
// same Lot.
func TestEngine_Scenario_S5(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	auction, err := e.CreateAuction("Concurrent Bids", "")
	require.NoError(t, err)
	vehicle := mustCreateVehicle(t, e)
	lot, err := e.CreateLot(ctx, auction.ID, vehicle.ID, decimal.NewFromInt(100), nil)
	require.NoError(t, err)
	_, err = e.StartAuction(ctx, auction.ID)
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(amount int) {
			defer wg.Done()
			r, err := e.PlaceBid(ctx, lot.ID, "bidder", decimal.NewFromInt(int64(amount)))
			assert.NoError(t, err)
			assert.True(t, r.Success)
		}(101 + i)
	}
	wg.Wait()

	got, err := e.GetLot(lot.ID)
	require.NoError(t, err)
	assert.Len(t, got.Bids(), n)

	seen := make(map[int64]bool, n)
	for _, b := range got.Bids() {
		assert.False(t, seen[b.Sequence])
		seen[b.Sequence] = true
	}
	assert.Len(t, seen, n)

	valid := got.GetValidBids()
	for i := 1; i < len(valid); i++ {
		assert.True(t, valid[i].Amount.GreaterThan(valid[i-1].Amount))
	}
	assert.Equal(t, "150", got.GetHighestBidAmount().String())
}

// TestEngine_CloseAuction_SweepsLotLocks verifies the lot-lock
// housekeeping sweep does not break a subsequent (rejected) PlaceBid on
// a lot under a now-closed auction.
func TestEngine_CloseAuction_SweepsLotLocks(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	auction, err := e.CreateAuction("Sweep Test", "")
	require.NoError(t, err)
	vehicle := mustCreateVehicle(t, e)
	lot, err := e.CreateLot(ctx, auction.ID, vehicle.ID, decimal.NewFromInt(100), nil)
	require.NoError(t, err)
	_, err = e.StartAuction(ctx, auction.ID)
	require.NoError(t, err)

	_, err = e.PlaceBid(ctx, lot.ID, "b1", decimal.NewFromInt(200))
	require.NoError(t, err)

	_, err = e.CloseAuction(ctx, auction.ID)
	require.NoError(t, err)

	r, err := e.PlaceBid(ctx, lot.ID, "b2", decimal.NewFromInt(300))
	require.NoError(t, err)
	assert.False(t, r.Success)
}
