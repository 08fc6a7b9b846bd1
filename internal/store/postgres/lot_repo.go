package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/overdrive-auctions/auction-core/internal/domain"
)

// LotRepository implements domain.LotStore against a single "lots"
// table. Vehicle and the bid list are stored as JSONB snapshots rather
// than normalized out into their own tables or FKs — the Lot's Vehicle
// is immutable and owned by value, and Bids are owned by the Lot, so
// there is nothing a foreign table buys here that the in-memory store's
// value semantics don't already express.
//
// Expected schema:
//
//	CREATE TABLE lots (
//	  id             UUID PRIMARY KEY,
//	  auction_id     UUID NOT NULL,
//	  vehicle        JSONB NOT NULL,
//	  starting_bid   NUMERIC NOT NULL,
//	  reserve_price  NUMERIC,
//	  bids           JSONB NOT NULL DEFAULT '[]',
//	  version        INT NOT NULL,
//	  created_at     TIMESTAMPTZ NOT NULL,
//	  updated_at     TIMESTAMPTZ
//	)
type LotRepository struct {
	db *DB
}

// NewLotRepository constructs a LotRepository over db.
func NewLotRepository(db *DB) *LotRepository {
	return &LotRepository{db: db}
}

func (r *LotRepository) Add(l *domain.Lot) error {
	return r.AddContext(context.Background(), l)
}

func (r *LotRepository) AddContext(ctx context.Context, l *domain.Lot) error {
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

	query := `
		INSERT INTO lots (id, auction_id, vehicle, starting_bid, reserve_price, bids, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		l.ID, l.AuctionID, vehicleJSON, l.StartingBid.String(), reserve, bidsJSON,
		l.Version, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isPQUniqueViolation(err) {
			return &domain.DuplicateIDError{Kind: "Lot", ID: l.ID.String()}
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

func (r *LotRepository) Get(id uuid.UUID) (*domain.Lot, bool) {
	l, err := r.GetContext(context.Background(), id)
	if err != nil {
		return nil, false
	}
	return l, true
}

func (r *LotRepository) GetContext(ctx context.Context, id uuid.UUID) (*domain.Lot, error) {
	query := `
		SELECT id, auction_id, vehicle, starting_bid, reserve_price, bids, version, created_at, updated_at
		FROM lots WHERE id = $1
	`
	return scanLot(r.db.QueryRowContext(ctx, query, id))
}

func (r *LotRepository) GetAll() []*domain.Lot {
	rows, err := r.db.Query(`
		SELECT id, auction_id, vehicle, starting_bid, reserve_price, bids, version, created_at, updated_at
		FROM lots
	`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []*domain.Lot
	for rows.Next() {
		l, err := scanLotRow(rows)
		if err != nil {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (r *LotRepository) GetByAuctionID(auctionID uuid.UUID) []*domain.Lot {
	rows, err := r.db.Query(`
		SELECT id, auction_id, vehicle, starting_bid, reserve_price, bids, version, created_at, updated_at
		FROM lots WHERE auction_id = $1
	`, auctionID)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []*domain.Lot
	for rows.Next() {
		l, err := scanLotRow(rows)
		if err != nil {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Update performs the compare-and-swap UPDATE ... WHERE id = $4 AND
// version = $5 spec.md §4.2/§9 calls for. A zero rows-affected result is
// disambiguated into NotFoundError vs VersionConflictError by a
// follow-up read of the stored version.
func (r *LotRepository) Update(l *domain.Lot) error {
	return r.UpdateContext(context.Background(), l)
}

func (r *LotRepository) UpdateContext(ctx context.Context, l *domain.Lot) error {
	bidsJSON, err := json.Marshal(l.Bids())
	if err != nil {
		return fmt.Errorf("marshal bids: %w", err)
	}
	expected := l.Version - 1

	query := `
		UPDATE lots SET bids = $1, version = $2, updated_at = $3
		WHERE id = $4 AND version = $5
	`
	res, err := r.db.ExecContext(ctx, query, bidsJSON, l.Version, l.UpdatedAt, l.ID, expected)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lot rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	stored, err := r.GetContext(ctx, l.ID)
	if err != nil {
		return &domain.NotFoundError{Kind: "Lot", ID: l.ID.String()}
	}
	return &domain.VersionConflictError{Kind: "Lot", ID: l.ID.String(), Expected: expected + 1, Actual: stored.Version}
}

func scanLot(row *sql.Row) (*domain.Lot, error) {
	l, err := scanLotRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan lot: %w", err)
	}
	return l, nil
}

func scanLotRow(row rowScanner) (*domain.Lot, error) {
	var l domain.Lot
	var vehicleJSON, bidsJSON []byte
	var startingBid string
	var reserve sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(&l.ID, &l.AuctionID, &vehicleJSON, &startingBid, &reserve, &bidsJSON, &l.Version, &l.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(vehicleJSON, &l.Vehicle); err != nil {
		return nil, fmt.Errorf("unmarshal vehicle: %w", err)
	}
	if l.StartingBid, err = decimal.NewFromString(startingBid); err != nil {
		return nil, fmt.Errorf("parse starting_bid: %w", err)
	}
	if reserve.Valid {
		d, err := decimal.NewFromString(reserve.String)
		if err != nil {
			return nil, fmt.Errorf("parse reserve_price: %w", err)
		}
		l.ReservePrice = &d
	}

	var bids []domain.Bid
	if err := json.Unmarshal(bidsJSON, &bids); err != nil {
		return nil, fmt.Errorf("unmarshal bids: %w", err)
	}
	l.SetBids(bids)

	if updatedAt.Valid {
		t := updatedAt.Time
		l.UpdatedAt = &t
	}
	return &l, nil
}

var _ domain.LotStore = (*LotRepository)(nil)
