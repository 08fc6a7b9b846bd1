package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/overdrive-auctions/auction-core/internal/domain"
)

// pqUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pqUniqueViolation = "23505"

// VehicleRepository implements domain.VehicleStore against a single
// "vehicles" table. Vehicles are immutable and insert-only, so there is
// no Update here, matching the in-memory store's contract exactly.
//
// Expected schema:
//
//	CREATE TABLE vehicles (
//	  id               UUID PRIMARY KEY,
//	  kind             TEXT NOT NULL,
//	  make             TEXT NOT NULL,
//	  model            TEXT NOT NULL,
//	  year             INT NOT NULL,
//	  vin              CHAR(17) NOT NULL,
//	  mileage          NUMERIC NOT NULL,
//	  color            TEXT NOT NULL,
//	  doors            INT NOT NULL DEFAULT 0,
//	  sunroof          BOOLEAN NOT NULL DEFAULT FALSE,
//	  seating          INT NOT NULL DEFAULT 0,
//	  four_wheel_drive BOOLEAN NOT NULL DEFAULT FALSE,
//	  cargo_capacity   NUMERIC NOT NULL DEFAULT 0,
//	  load_capacity    NUMERIC NOT NULL DEFAULT 0,
//	  bed_length       NUMERIC NOT NULL DEFAULT 0,
//	  version          INT NOT NULL,
//	  created_at       TIMESTAMPTZ NOT NULL,
//	  updated_at       TIMESTAMPTZ
//	)
type VehicleRepository struct {
	db *DB
}

// NewVehicleRepository constructs a VehicleRepository over db.
func NewVehicleRepository(db *DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// Add inserts v. Callers that need ctx-aware behavior should use AddContext;
// Add satisfies domain.VehicleStore against a background context, since
// the in-memory contract it mirrors is itself synchronous.
func (r *VehicleRepository) Add(v *domain.Vehicle) error {
	return r.AddContext(context.Background(), v)
}

func (r *VehicleRepository) AddContext(ctx context.Context, v *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, kind, make, model, year, vin, mileage, color,
			doors, sunroof, seating, four_wheel_drive, cargo_capacity, load_capacity, bed_length,
			version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := r.db.ExecContext(ctx, query,
		v.ID, string(v.Kind), v.Make, v.Model, v.Year, v.VIN, v.Mileage.String(), v.Color,
		v.Doors, v.Sunroof, v.Seating, v.FourWheelDrive, v.CargoCapacity.String(), v.LoadCapacity.String(), v.BedLength.String(),
		v.Version, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		if isPQUniqueViolation(err) {
			return &domain.DuplicateIDError{Kind: "Vehicle", ID: v.ID.String()}
		}
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

func (r *VehicleRepository) Get(id uuid.UUID) (*domain.Vehicle, bool) {
	v, err := r.GetContext(context.Background(), id)
	if err != nil {
		return nil, false
	}
	return v, true
}

func (r *VehicleRepository) GetContext(ctx context.Context, id uuid.UUID) (*domain.Vehicle, error) {
	query := `
		SELECT id, kind, make, model, year, vin, mileage, color,
			doors, sunroof, seating, four_wheel_drive, cargo_capacity, load_capacity, bed_length,
			version, created_at, updated_at
		FROM vehicles WHERE id = $1
	`
	return scanVehicle(r.db.QueryRowContext(ctx, query, id))
}

func (r *VehicleRepository) GetAll() []*domain.Vehicle {
	rows, err := r.db.Query(`
		SELECT id, kind, make, model, year, vin, mileage, color,
			doors, sunroof, seating, four_wheel_drive, cargo_capacity, load_capacity, bed_length,
			version, created_at, updated_at
		FROM vehicles
	`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []*domain.Vehicle
	for rows.Next() {
		v, err := scanVehicleRow(rows)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row *sql.Row) (*domain.Vehicle, error) {
	v, err := scanVehicleRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan vehicle: %w", err)
	}
	return v, nil
}

func scanVehicleRow(row rowScanner) (*domain.Vehicle, error) {
	var v domain.Vehicle
	var kind, mileage, cargo, load, bed string
	var updatedAt sql.NullTime

	err := row.Scan(
		&v.ID, &kind, &v.Make, &v.Model, &v.Year, &v.VIN, &mileage, &v.Color,
		&v.Doors, &v.Sunroof, &v.Seating, &v.FourWheelDrive, &cargo, &load, &bed,
		&v.Version, &v.CreatedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	v.Kind = domain.VehicleKind(kind)
	if v.Mileage, err = decimal.NewFromString(mileage); err != nil {
		return nil, fmt.Errorf("parse mileage: %w", err)
	}
	if v.CargoCapacity, err = decimal.NewFromString(cargo); err != nil {
		return nil, fmt.Errorf("parse cargo_capacity: %w", err)
	}
	if v.LoadCapacity, err = decimal.NewFromString(load); err != nil {
		return nil, fmt.Errorf("parse load_capacity: %w", err)
	}
	if v.BedLength, err = decimal.NewFromString(bed); err != nil {
		return nil, fmt.Errorf("parse bed_length: %w", err)
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		v.UpdatedAt = &t
	}
	return &v, nil
}

var _ domain.VehicleStore = (*VehicleRepository)(nil)

func isPQUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
