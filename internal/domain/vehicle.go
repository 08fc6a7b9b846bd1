package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VehicleKind tags the variant of a Vehicle. A Vehicle is modeled as a
// tagged variant rather than an inheritance hierarchy: construction
// dispatches on Kind and only the attributes relevant to that kind are
// populated.
type VehicleKind string

const (
	VehicleKindSedan VehicleKind = "SEDAN"
	VehicleKindSUV   VehicleKind = "SUV"
	VehicleKindTruck VehicleKind = "TRUCK"
)

// Vehicle is immutable once created. Shared attributes apply to every
// kind; the kind-specific attributes are zero-valued when not applicable.
type Vehicle struct {
	Base

	Kind    VehicleKind
	Make    string
	Model   string
	Year    int
	VIN     string
	Mileage decimal.Decimal
	Color   string

	// Sedan
	Doors    int
	Sunroof  bool
	// SUV
	Seating      int
	FourWheelDrive bool
	CargoCapacity  decimal.Decimal
	// Truck
	LoadCapacity decimal.Decimal
	BedLength    decimal.Decimal
}

func (v *Vehicle) GetID() uuid.UUID   { return v.ID }
func (v *Vehicle) GetVersion() uint32 { return v.Version }

// VehicleAttrs carries the variant-specific attributes accepted at
// construction. Fields not applicable to Kind are ignored; fields that
// fail to coerce to their expected shape fall back to the zero value
// rather than failing construction (spec.md §3).
type VehicleAttrs struct {
	Doors          int
	Sunroof        bool
	Seating        int
	FourWheelDrive bool
	CargoCapacity  decimal.Decimal
	LoadCapacity   decimal.Decimal
	BedLength      decimal.Decimal
}

// NewVehicle constructs a Vehicle, validating the shared cross-variant
// bounds from spec.md §6. Variant-specific attribute values are taken
// as-is from attrs; there is nothing to coerce once attrs has already
// been typed by the caller, so "coercion failure" only ever means "field
// omitted" and the zero value is used.
func NewVehicle(kind VehicleKind, make_, model string, year int, vin string, mileage decimal.Decimal, color string, attrs VehicleAttrs) (*Vehicle, error) {
	switch kind {
	case VehicleKindSedan, VehicleKindSUV, VehicleKindTruck:
	default:
		return nil, &InvalidInputError{Field: "kind", Reason: "must be SEDAN, SUV, or TRUCK"}
	}

	if err := validateStringLen("make", make_, MakeModelMinLen, MakeModelMaxLen); err != nil {
		return nil, err
	}
	if err := validateStringLen("model", model, MakeModelMinLen, MakeModelMaxLen); err != nil {
		return nil, err
	}
	if err := validateYear(year); err != nil {
		return nil, err
	}
	if err := validateVIN(vin); err != nil {
		return nil, err
	}
	if err := validateMileage(mileage); err != nil {
		return nil, err
	}
	if err := validateStringLen("color", color, ColorMinLen, ColorMaxLen); err != nil {
		return nil, err
	}

	v := &Vehicle{
		Base:    newBase(),
		Kind:    kind,
		Make:    make_,
		Model:   model,
		Year:    year,
		VIN:     vin,
		Mileage: mileage,
		Color:   color,
	}

	switch kind {
	case VehicleKindSedan:
		v.Doors = attrs.Doors
		v.Sunroof = attrs.Sunroof
	case VehicleKindSUV:
		v.Seating = attrs.Seating
		v.FourWheelDrive = attrs.FourWheelDrive
		v.CargoCapacity = attrs.CargoCapacity
	case VehicleKindTruck:
		v.LoadCapacity = attrs.LoadCapacity
		v.BedLength = attrs.BedLength
		v.FourWheelDrive = attrs.FourWheelDrive
	}

	return v, nil
}
