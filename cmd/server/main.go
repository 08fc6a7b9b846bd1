package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/overdrive-auctions/auction-core/internal/config"
	"github.com/overdrive-auctions/auction-core/internal/domain"
	"github.com/overdrive-auctions/auction-core/internal/engine"
	"github.com/overdrive-auctions/auction-core/internal/events"
	"github.com/overdrive-auctions/auction-core/internal/sequence"
	"github.com/overdrive-auctions/auction-core/internal/store/memory"
	"github.com/overdrive-auctions/auction-core/internal/store/postgres"
)

// The HTTP/request-routing layer, request DTO validation, API-key
// authorization, rate-limiting and the real-time push/broadcast
// implementation are external collaborators (spec.md §1 Non-goals) and
// are not built here. This entrypoint wires the concurrent bidding core
// and runs the bundled demo scenario (spec.md §8 S1) directly through
// the command API, the way the teacher's main.go seeds system state and
// logs readiness before serving.
func main() {
	cfg := config.Load()

	zapLog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLog.Sync()
	sugar := zapLog.Sugar()

	eng, err := buildEngine(cfg, sugar)
	if err != nil {
		sugar.Fatalw("failed to build engine", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := runDemoScenario(ctx, eng, sugar); err != nil {
		sugar.Fatalw("demo scenario failed", "error", err)
	}

	sugar.Infow("auction core ready", "logLevel", cfg.LogLevel)
	waitForShutdown(sugar, cancel)
}

// buildEngine wires the Engine against the in-memory stores by default,
// or against the Postgres backend (repositories as the three stores,
// postgres.Scope as the atomic unit-of-work) when cfg.DBConnStr selects
// it, mirroring the teacher's own backend-selection-at-startup shape.
func buildEngine(cfg config.Config, sugar *zap.SugaredLogger) (*engine.Engine, error) {
	seq := sequence.NewInProcess()
	sink := events.NewLogSink(sugar)

	if cfg.DBConnStr == "" {
		eng := engine.New(memory.NewAuctionStore(), memory.NewLotStore(), memory.NewVehicleStore(), seq, sink, sugar)
		sugar.Infow("using in-memory store backend")
		return eng, nil
	}

	db, err := postgres.NewDB(cfg.DBConnStr)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	auctionRepo := postgres.NewAuctionRepository(db)
	lotRepo := postgres.NewLotRepository(db)
	vehicleRepo := postgres.NewVehicleRepository(db)

	eng := engine.New(auctionRepo, lotRepo, vehicleRepo, seq, sink, sugar)
	eng.UseScope(func() domain.Scope { return postgres.NewScope(db) })

	sugar.Infow("using postgres store backend")
	return eng, nil
}

// runDemoScenario exercises the command API through spec.md §8 S1.
func runDemoScenario(ctx context.Context, eng *engine.Engine, log *zap.SugaredLogger) error {
	auction, err := eng.CreateAuction("Dec 2025", "end of year auction")
	if err != nil {
		return fmt.Errorf("create auction: %w", err)
	}

	vehicle, err := eng.CreateVehicle(engine.CreateVehicleRequest{
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
	if err != nil {
		return fmt.Errorf("create vehicle: %w", err)
	}

	reserve := decimal.NewFromInt(18000)
	lot, err := eng.CreateLot(ctx, auction.ID, vehicle.ID, decimal.NewFromInt(15000), &reserve)
	if err != nil {
		return fmt.Errorf("create lot: %w", err)
	}

	if _, err := eng.StartAuction(ctx, auction.ID); err != nil {
		return fmt.Errorf("start auction: %w", err)
	}

	bids := []struct {
		bidder string
		amount int64
	}{
		{"b1", 16000},
		{"b2", 17000},
		{"b3", 19000},
		{"b1", 18000},
	}
	for _, b := range bids {
		result, err := eng.PlaceBid(ctx, lot.ID, b.bidder, decimal.NewFromInt(b.amount))
		if err != nil {
			return fmt.Errorf("place bid: %w", err)
		}
		log.Infow("demo bid placed", "bidder", b.bidder, "amount", b.amount, "currentHighest", result.CurrentHighest.String(), "isCurrentlyHighest", result.IsCurrentlyHighest)
	}

	if _, err := eng.CloseAuction(ctx, auction.ID); err != nil {
		return fmt.Errorf("close auction: %w", err)
	}

	winner, ok, err := eng.GetWinner(lot.ID)
	if err != nil {
		return fmt.Errorf("get winner: %w", err)
	}
	if ok {
		log.Infow("demo auction closed", "winner", winner)
	} else {
		log.Infow("demo auction closed", "winner", "none (reserve not met)")
	}
	return nil
}

// waitForShutdown waits for SIGTERM or SIGINT and then cancels the root
// context, mirroring the teacher's waitForShutdown.
func waitForShutdown(log *zap.SugaredLogger, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Infow("received signal, shutting down gracefully", "signal", sig.String())
	cancel()
}
