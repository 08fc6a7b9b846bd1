package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/overdrive-auctions/auction-core/internal/domain"
)

// Scope is the "stronger implementation over a transactional backend"
// spec.md §4.4/§9 contemplates: Commit gates every pending write on a
// single database/sql transaction instead of replaying changes
// one-by-one, eliminating txn.Scope's partial-commit caveat. Reads pass
// through the same repositories the Engine's stores are built from, so a
// Scope opened mid-command observes the same backend a plain
// repository.Get would. Scope satisfies domain.Scope exactly as
// txn.Scope does, so engine.Engine.UseScope can swap one for the other
// without any command code changing.
type Scope struct {
	db          *DB
	auctionRepo *AuctionRepository
	lotRepo     *LotRepository
	vehicleRepo *VehicleRepository

	auctions *auctionsView
	lots     *lotsView
	vehicles *vehiclesView

	pending   []pendingWrite
	committed bool
}

type pendingWriteKind int

const (
	pendingAuctionAdd pendingWriteKind = iota
	pendingAuctionUpdate
	pendingLotAdd
	pendingLotUpdate
	pendingVehicleAdd
)

type pendingWrite struct {
	kind    pendingWriteKind
	auction *domain.Auction
	lot     *domain.Lot
	vehicle *domain.Vehicle
}

// NewScope opens a fresh Scope over db, backed by its own repositories.
func NewScope(db *DB) *Scope {
	s := &Scope{
		db:          db,
		auctionRepo: NewAuctionRepository(db),
		lotRepo:     NewLotRepository(db),
		vehicleRepo: NewVehicleRepository(db),
	}
	s.auctions = &auctionsView{repo: s.auctionRepo, scope: s}
	s.lots = &lotsView{repo: s.lotRepo, scope: s}
	s.vehicles = &vehiclesView{repo: s.vehicleRepo, scope: s}
	return s
}

func (s *Scope) Auctions() domain.ScopedAuctions { return s.auctions }
func (s *Scope) Lots() domain.ScopedLots         { return s.lots }
func (s *Scope) Vehicles() domain.ScopedVehicles { return s.vehicles }

// auctionsView is the concrete domain.ScopedAuctions this Scope exposes.
type auctionsView struct {
	repo  *AuctionRepository
	scope *Scope
}

func (v *auctionsView) Get(id uuid.UUID) (*domain.Auction, bool) { return v.repo.Get(id) }
func (v *auctionsView) GetAll() []*domain.Auction                { return v.repo.GetAll() }
func (v *auctionsView) Add(a *domain.Auction) {
	v.scope.pending = append(v.scope.pending, pendingWrite{kind: pendingAuctionAdd, auction: a})
}
func (v *auctionsView) Update(a *domain.Auction) {
	v.scope.pending = append(v.scope.pending, pendingWrite{kind: pendingAuctionUpdate, auction: a})
}

// lotsView is the concrete domain.ScopedLots this Scope exposes.
type lotsView struct {
	repo  *LotRepository
	scope *Scope
}

func (v *lotsView) Get(id uuid.UUID) (*domain.Lot, bool) { return v.repo.Get(id) }
func (v *lotsView) GetAll() []*domain.Lot                { return v.repo.GetAll() }
func (v *lotsView) GetByAuctionID(auctionID uuid.UUID) []*domain.Lot {
	return v.repo.GetByAuctionID(auctionID)
}
func (v *lotsView) Add(l *domain.Lot) {
	v.scope.pending = append(v.scope.pending, pendingWrite{kind: pendingLotAdd, lot: l})
}
func (v *lotsView) Update(l *domain.Lot) {
	v.scope.pending = append(v.scope.pending, pendingWrite{kind: pendingLotUpdate, lot: l})
}

// vehiclesView is the concrete domain.ScopedVehicles this Scope exposes.
// Vehicles are insert-only; there is no Update.
type vehiclesView struct {
	repo  *VehicleRepository
	scope *Scope
}

func (v *vehiclesView) Get(id uuid.UUID) (*domain.Vehicle, bool) { return v.repo.Get(id) }
func (v *vehiclesView) GetAll() []*domain.Vehicle                { return v.repo.GetAll() }
func (v *vehiclesView) Add(veh *domain.Vehicle) {
	v.scope.pending = append(v.scope.pending, pendingWrite{kind: pendingVehicleAdd, vehicle: veh})
}

// HasPendingChanges reports whether any write has been recorded.
func (s *Scope) HasPendingChanges() bool {
	return len(s.pending) > 0
}

// Rollback discards pending changes without touching the database.
func (s *Scope) Rollback() {
	s.pending = nil
}

// Discard is called on every exit path that did not Commit, mirroring
// txn.Scope's guaranteed-release contract.
func (s *Scope) Discard() {
	if !s.committed {
		s.Rollback()
	}
}

// Commit applies every pending change inside one database/sql
// transaction: either all statements succeed and the transaction
// commits, or any failure (including a version-conflict detected by a
// zero-rows-affected UPDATE) rolls the whole batch back. This is the
// atomic upgrade spec.md §4.4 describes as optional for a stronger
// backing store; unlike txn.Scope.Commit, a failure partway through never
// leaves some writes applied and others not.
func (s *Scope) Commit(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	applied := 0
	for _, w := range s.pending {
		var err error
		switch w.kind {
		case pendingAuctionAdd:
			err = execAuctionAdd(ctx, tx, w.auction)
		case pendingAuctionUpdate:
			err = execAuctionUpdate(ctx, tx, w.auction)
		case pendingLotAdd:
			err = execLotAdd(ctx, tx, w.lot)
		case pendingLotUpdate:
			err = execLotUpdate(ctx, tx, w.lot)
		case pendingVehicleAdd:
			err = execVehicleAdd(ctx, tx, w.vehicle)
		}
		if err != nil {
			return applied, err
		}
		applied++
	}

	if err := tx.Commit(); err != nil {
		return applied, fmt.Errorf("commit transaction: %w", err)
	}
	s.pending = nil
	s.committed = true
	return applied, nil
}

func execAuctionAdd(ctx context.Context, tx *sql.Tx, a *domain.Auction) error {
	lotsJSON, err := json.Marshal(a.Lots)
	if err != nil {
		return fmt.Errorf("marshal lots: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO auctions (id, title, description, state, start_time, end_time, lots, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, a.ID, a.Title, a.Description, string(a.State), a.StartTime, a.EndTime, lotsJSON, a.Version, a.CreatedAt, a.UpdatedAt)
	if isPQUniqueViolation(err) {
		return &domain.DuplicateIDError{Kind: "Auction", ID: a.ID.String()}
	}
	return err
}

func execAuctionUpdate(ctx context.Context, tx *sql.Tx, a *domain.Auction) error {
	lotsJSON, err := json.Marshal(a.Lots)
	if err != nil {
		return fmt.Errorf("marshal lots: %w", err)
	}
	expected := a.Version - 1
	res, err := tx.ExecContext(ctx, `
		UPDATE auctions SET state = $1, start_time = $2, end_time = $3, lots = $4, version = $5, updated_at = $6
		WHERE id = $7 AND version = $8
	`, string(a.State), a.StartTime, a.EndTime, lotsJSON, a.Version, a.UpdatedAt, a.ID, expected)
	if err != nil {
		return err
	}
	return requireOneRow(ctx, tx, "auctions", res, "Auction", a.ID.String(), expected+1)
}

func execLotAdd(ctx context.Context, tx *sql.Tx, l *domain.Lot) error {
	vehicleJSON, err := json.Marshal(l.Vehicle)
	if err != nil {
		return fmt.Errorf("marshal vehicle: %w", err)
	}
	bidsJSON, err := json.Marshal(l.Bids())
	if err != nil {
		return fmt.Errorf("marshal bids: %w", err)
	}
	var reserve any
	if l.ReservePrice != nil {
		reserve = l.ReservePrice.String()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO lots (id, auction_id, vehicle, starting_bid, reserve_price, bids, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, l.ID, l.AuctionID, vehicleJSON, l.StartingBid.String(), reserve, bidsJSON, l.Version, l.CreatedAt, l.UpdatedAt)
	if isPQUniqueViolation(err) {
		return &domain.DuplicateIDError{Kind: "Lot", ID: l.ID.String()}
	}
	return err
}

func execLotUpdate(ctx context.Context, tx *sql.Tx, l *domain.Lot) error {
	bidsJSON, err := json.Marshal(l.Bids())
	if err != nil {
		return fmt.Errorf("marshal bids: %w", err)
	}
	expected := l.Version - 1
	res, err := tx.ExecContext(ctx, `
		UPDATE lots SET bids = $1, version = $2, updated_at = $3
		WHERE id = $4 AND version = $5
	`, bidsJSON, l.Version, l.UpdatedAt, l.ID, expected)
	if err != nil {
		return err
	}
	return requireOneRow(ctx, tx, "lots", res, "Lot", l.ID.String(), expected+1)
}

func execVehicleAdd(ctx context.Context, tx *sql.Tx, v *domain.Vehicle) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO vehicles (id, kind, make, model, year, vin, mileage, color,
			doors, sunroof, seating, four_wheel_drive, cargo_capacity, load_capacity, bed_length,
			version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`, v.ID, string(v.Kind), v.Make, v.Model, v.Year, v.VIN, v.Mileage.String(), v.Color,
		v.Doors, v.Sunroof, v.Seating, v.FourWheelDrive, v.CargoCapacity.String(), v.LoadCapacity.String(), v.BedLength.String(),
		v.Version, v.CreatedAt, v.UpdatedAt)
	if isPQUniqueViolation(err) {
		return &domain.DuplicateIDError{Kind: "Vehicle", ID: v.ID.String()}
	}
	return err
}

// requireOneRow verifies res affected exactly one row; otherwise it
// reads back the actual stored version (within the same still-open tx)
// to produce a precise VersionConflictError.
func requireOneRow(ctx context.Context, tx *sql.Tx, table string, res sql.Result, kind, id string, expectedVersion uint32) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var actual uint32
	err = tx.QueryRowContext(ctx, fmt.Sprintf("SELECT version FROM %s WHERE id = $1", table), id).Scan(&actual)
	if err != nil {
		return &domain.NotFoundError{Kind: kind, ID: id}
	}
	return &domain.VersionConflictError{Kind: kind, ID: id, Expected: expectedVersion, Actual: actual}
}

var _ domain.Scope = (*Scope)(nil)
