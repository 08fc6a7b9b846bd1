package domain

import (
	"github.com/shopspring/decimal"
)

// Validation bounds accepted at the command boundary, enumerated in
// spec.md §6 so a reimplementation matches integration tests.
const (
	TitleMinLen       = 3
	TitleMaxLen       = 200
	DescriptionMaxLen = 2000
	MakeModelMinLen   = 1
	MakeModelMaxLen   = 100
	YearMin           = 1900
	YearMax           = 2100
	VINLen            = 17
	ColorMinLen       = 1
	ColorMaxLen       = 50
	PartnerIDMinLen   = 1
	PartnerIDMaxLen   = 100
)

var (
	mileageMin = decimal.Zero
	mileageMax = decimal.NewFromInt(10_000_000)
	amountMin  = decimal.NewFromFloat(0.01)
	amountMax  = decimal.NewFromInt(1_000_000_000)
)

func validateStringLen(field, value string, min, max int) error {
	if len(value) < min || len(value) > max {
		return &InvalidInputError{Field: field, Reason: "length out of bounds"}
	}
	return nil
}

func validateYear(year int) error {
	if year < YearMin || year > YearMax {
		return &InvalidInputError{Field: "year", Reason: "out of range"}
	}
	return nil
}

func validateVIN(vin string) error {
	if len(vin) != VINLen {
		return &InvalidInputError{Field: "vin", Reason: "must be exactly 17 characters"}
	}
	return nil
}

func validateMileage(mileage decimal.Decimal) error {
	if mileage.LessThan(mileageMin) || mileage.GreaterThan(mileageMax) {
		return &InvalidInputError{Field: "mileage", Reason: "out of range"}
	}
	return nil
}

func validateMoney(field string, amount decimal.Decimal) error {
	if amount.LessThan(amountMin) || amount.GreaterThan(amountMax) {
		return &InvalidInputError{Field: field, Reason: "out of range"}
	}
	return nil
}

func validatePartnerID(field, id string) error {
	return validateStringLen(field, id, PartnerIDMinLen, PartnerIDMaxLen)
}
