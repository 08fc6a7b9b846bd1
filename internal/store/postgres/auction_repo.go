package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/overdrive-auctions/auction-core/internal/domain"
)

// AuctionRepository implements domain.AuctionStore against a single
// "auctions" table. The owned Lots slice is persisted as a JSONB
// snapshot column, exactly as LotRepository snapshots Vehicle and Bids
// — Auction.Lots is a denormalized cache of lot state at attach time,
// not the source of truth (that's the lots table, read through
// LotRepository).
//
// Expected schema:
//
//	CREATE TABLE auctions (
//	  id           UUID PRIMARY KEY,
//	  title        TEXT NOT NULL,
//	  description  TEXT NOT NULL DEFAULT '',
//	  state        TEXT NOT NULL,
//	  start_time   TIMESTAMPTZ,
//	  end_time     TIMESTAMPTZ,
//	  lots         JSONB NOT NULL DEFAULT '[]',
//	  version      INT NOT NULL,
//	  created_at   TIMESTAMPTZ NOT NULL,
//	  updated_at   TIMESTAMPTZ
//	)
type AuctionRepository struct {
	db *DB
}

// NewAuctionRepository constructs an AuctionRepository over db.
func NewAuctionRepository(db *DB) *AuctionRepository {
	return &AuctionRepository{db: db}
}

func (r *AuctionRepository) Add(a *domain.Auction) error {
	return r.AddContext(context.Background(), a)
}

func (r *AuctionRepository) AddContext(ctx context.Context, a *domain.Auction) error {
	lotsJSON, err := json.Marshal(a.Lots)
	if err != nil {
		return fmt.Errorf("marshal lots: %w", err)
	}

	query := `
		INSERT INTO auctions (id, title, description, state, start_time, end_time, lots, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.ExecContext(ctx, query,
		a.ID, a.Title, a.Description, string(a.State), a.StartTime, a.EndTime, lotsJSON,
		a.Version, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isPQUniqueViolation(err) {
			return &domain.DuplicateIDError{Kind: "Auction", ID: a.ID.String()}
		}
		return fmt.Errorf("insert auction: %w", err)
	}
	return nil
}

func (r *AuctionRepository) Get(id uuid.UUID) (*domain.Auction, bool) {
	a, err := r.GetContext(context.Background(), id)
	if err != nil {
		return nil, false
	}
	return a, true
}

func (r *AuctionRepository) GetContext(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	query := `
		SELECT id, title, description, state, start_time, end_time, lots, version, created_at, updated_at
		FROM auctions WHERE id = $1
	`
	return scanAuction(r.db.QueryRowContext(ctx, query, id))
}

func (r *AuctionRepository) GetAll() []*domain.Auction {
	rows, err := r.db.Query(`
		SELECT id, title, description, state, start_time, end_time, lots, version, created_at, updated_at
		FROM auctions
	`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []*domain.Auction
	for rows.Next() {
		a, err := scanAuctionRow(rows)
		if err != nil {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Update performs the compare-and-swap UPDATE ... WHERE id = $7 AND
// version = $8 spec.md §4.2/§9 calls for, upgrading the check from the
// in-memory store's mutex section to a single SQL statement.
func (r *AuctionRepository) Update(a *domain.Auction) error {
	return r.UpdateContext(context.Background(), a)
}

func (r *AuctionRepository) UpdateContext(ctx context.Context, a *domain.Auction) error {
	lotsJSON, err := json.Marshal(a.Lots)
	if err != nil {
		return fmt.Errorf("marshal lots: %w", err)
	}
	expected := a.Version - 1

	query := `
		UPDATE auctions SET state = $1, start_time = $2, end_time = $3, lots = $4, version = $5, updated_at = $6
		WHERE id = $7 AND version = $8
	`
	res, err := r.db.ExecContext(ctx, query,
		string(a.State), a.StartTime, a.EndTime, lotsJSON, a.Version, a.UpdatedAt, a.ID, expected,
	)
	if err != nil {
		return fmt.Errorf("update auction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update auction rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	stored, err := r.GetContext(ctx, a.ID)
	if err != nil {
		return &domain.NotFoundError{Kind: "Auction", ID: a.ID.String()}
	}
	return &domain.VersionConflictError{Kind: "Auction", ID: a.ID.String(), Expected: expected + 1, Actual: stored.Version}
}

func scanAuction(row *sql.Row) (*domain.Auction, error) {
	a, err := scanAuctionRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan auction: %w", err)
	}
	return a, nil
}

func scanAuctionRow(row rowScanner) (*domain.Auction, error) {
	var a domain.Auction
	var state string
	var lotsJSON []byte
	var startTime, endTime, updatedAt sql.NullTime

	err := row.Scan(&a.ID, &a.Title, &a.Description, &state, &startTime, &endTime, &lotsJSON, &a.Version, &a.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	a.State = domain.AuctionState(state)
	if err := json.Unmarshal(lotsJSON, &a.Lots); err != nil {
		return nil, fmt.Errorf("unmarshal lots: %w", err)
	}
	if startTime.Valid {
		t := startTime.Time
		a.StartTime = &t
	}
	if endTime.Valid {
		t := endTime.Time
		a.EndTime = &t
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		a.UpdatedAt = &t
	}
	return &a, nil
}

var _ domain.AuctionStore = (*AuctionRepository)(nil)
