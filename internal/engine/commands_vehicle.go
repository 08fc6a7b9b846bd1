package engine

import (
	"github.com/shopspring/decimal"

	"github.com/overdrive-auctions/auction-core/internal/domain"
)

// CreateVehicleRequest carries the command-boundary input for
// CreateVehicle (spec.md §6): {kind, make, model, year, vin, mileage,
// color, extraAttrs}.
type CreateVehicleRequest struct {
	Kind       domain.VehicleKind
	Make       string
	Model      string
	Year       int
	VIN        string
	Mileage    decimal.Decimal
	Color      string
	ExtraAttrs map[string]any
}

// CreateVehicle constructs and stores a Vehicle. Vehicles are immutable
// and insert-only; extraAttrs values that don't coerce to the expected
// shape fall back to the zero value rather than failing construction
// (spec.md §3).
func (e *Engine) CreateVehicle(req CreateVehicleRequest) (*domain.Vehicle, error) {
	attrs := domain.VehicleAttrs{
		Doors:          coerceInt(req.ExtraAttrs, "doors"),
		Sunroof:        coerceBool(req.ExtraAttrs, "sunroof"),
		Seating:        coerceInt(req.ExtraAttrs, "seating"),
		FourWheelDrive: coerceBool(req.ExtraAttrs, "fourWheelDrive"),
		CargoCapacity:  coerceDecimal(req.ExtraAttrs, "cargoCapacity"),
		LoadCapacity:   coerceDecimal(req.ExtraAttrs, "loadCapacity"),
		BedLength:      coerceDecimal(req.ExtraAttrs, "bedLength"),
	}

	v, err := domain.NewVehicle(req.Kind, req.Make, req.Model, req.Year, req.VIN, req.Mileage, req.Color, attrs)
	if err != nil {
		return nil, err
	}
	if err := e.vehicleStore.Add(v); err != nil {
		return nil, err
	}

	e.log.Infow("vehicle created", "vehicleId", v.ID, "kind", v.Kind, "vin", v.VIN)
	return v, nil
}

// VehicleFilter narrows SearchVehicles (spec.md §6 SearchVehicles(filter),
// given concrete shape in SPEC_FULL.md's supplemented features). Zero
// values mean "don't filter on this field".
type VehicleFilter struct {
	Kind     domain.VehicleKind
	Make     string
	Model    string
	YearMin  int
	YearMax  int
}

// SearchVehicles performs a linear scan of the VehicleStore, since the
// store never promised an index (SPEC_FULL.md).
func (e *Engine) SearchVehicles(filter VehicleFilter) []*domain.Vehicle {
	var out []*domain.Vehicle
	for _, v := range e.vehicleStore.GetAll() {
		if filter.Kind != "" && v.Kind != filter.Kind {
			continue
		}
		if filter.Make != "" && v.Make != filter.Make {
			continue
		}
		if filter.Model != "" && v.Model != filter.Model {
			continue
		}
		if filter.YearMin != 0 && v.Year < filter.YearMin {
			continue
		}
		if filter.YearMax != 0 && v.Year > filter.YearMax {
			continue
		}
		out = append(out, v)
	}
	return out
}
