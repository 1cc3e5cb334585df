package valueobject

import (
	"strings"

	"github.com/mrp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// UnitFamily is the dimensional family a unit belongs to.
// Conversion is only defined between units of the same family.
type UnitFamily string

const (
	UnitFamilyMass   UnitFamily = "mass"
	UnitFamilyVolume UnitFamily = "volume"
	UnitFamilyLength UnitFamily = "length"
	UnitFamilyCount  UnitFamily = "count"
)

// Unit is a value object representing a unit of measurement.
// It is immutable; a Unit has a code, a dimensional family, and a fixed
// factor to the family's base unit (kg, L, m, pcs).
type Unit struct {
	code   string
	family UnitFamily
	factor decimal.Decimal // 1 of this unit = factor base units
}

// Common unit codes
const (
	UnitCodeKG  = "KG"
	UnitCodeG   = "G"
	UnitCodeMG  = "MG"
	UnitCodeT   = "T"
	UnitCodeL   = "L"
	UnitCodeML  = "ML"
	UnitCodeM   = "M"
	UnitCodeCM  = "CM"
	UnitCodeMM  = "MM"
	UnitCodePCS = "PCS"
)

// unitTable is the fixed conversion table. Factors are exact decimals
// relative to the family base unit; no unit gets special-cased at
// conversion time.
var unitTable = map[string]Unit{
	UnitCodeKG:  {code: UnitCodeKG, family: UnitFamilyMass, factor: decimal.NewFromInt(1)},
	UnitCodeG:   {code: UnitCodeG, family: UnitFamilyMass, factor: decimal.New(1, -3)},
	UnitCodeMG:  {code: UnitCodeMG, family: UnitFamilyMass, factor: decimal.New(1, -6)},
	UnitCodeT:   {code: UnitCodeT, family: UnitFamilyMass, factor: decimal.NewFromInt(1000)},
	UnitCodeL:   {code: UnitCodeL, family: UnitFamilyVolume, factor: decimal.NewFromInt(1)},
	UnitCodeML:  {code: UnitCodeML, family: UnitFamilyVolume, factor: decimal.New(1, -3)},
	UnitCodeM:   {code: UnitCodeM, family: UnitFamilyLength, factor: decimal.NewFromInt(1)},
	UnitCodeCM:  {code: UnitCodeCM, family: UnitFamilyLength, factor: decimal.New(1, -2)},
	UnitCodeMM:  {code: UnitCodeMM, family: UnitFamilyLength, factor: decimal.New(1, -3)},
	UnitCodePCS: {code: UnitCodePCS, family: UnitFamilyCount, factor: decimal.NewFromInt(1)},
}

// ParseUnit resolves a unit code (case-insensitive) against the fixed table.
func ParseUnit(code string) (Unit, error) {
	normalized := strings.TrimSpace(strings.ToUpper(code))
	if normalized == "" {
		return Unit{}, shared.NewDomainError("INVALID_UNIT", "Unit code cannot be empty")
	}
	u, ok := unitTable[normalized]
	if !ok {
		return Unit{}, shared.NewDomainError("UNKNOWN_UNIT", "Unknown unit code: "+normalized)
	}
	return u, nil
}

// MustParseUnit resolves a unit code and panics on error.
// Use only when the code is a compile-time constant.
func MustParseUnit(code string) Unit {
	u, err := ParseUnit(code)
	if err != nil {
		panic(err)
	}
	return u
}

// KnownUnit reports whether the code resolves against the fixed table.
func KnownUnit(code string) bool {
	_, ok := unitTable[strings.TrimSpace(strings.ToUpper(code))]
	return ok
}

// Code returns the normalized unit code.
func (u Unit) Code() string {
	return u.code
}

// Family returns the dimensional family.
func (u Unit) Family() UnitFamily {
	return u.family
}

// Factor returns the factor to the family base unit.
func (u Unit) Factor() decimal.Decimal {
	return u.factor
}

// IsZero returns true if this is a zero-value Unit.
func (u Unit) IsZero() bool {
	return u.code == ""
}

// SameFamily reports whether both units share a dimensional family.
func (u Unit) SameFamily(other Unit) bool {
	return u.family == other.family
}

// Equals returns true if both Units have the same code.
func (u Unit) Equals(other Unit) bool {
	return u.code == other.code
}

// String returns the unit code.
func (u Unit) String() string {
	return u.code
}

// Convert converts a quantity between two units of the same dimensional
// family. Equal units return the quantity unchanged, with no rounding, so
// identity conversion never accumulates floating error. Units of different
// families return ErrUnitMismatch; density-based mass/volume conversion is
// a caller concern.
func Convert(quantity decimal.Decimal, from, to Unit) (decimal.Decimal, error) {
	if from.IsZero() || to.IsZero() {
		return decimal.Zero, shared.NewDomainError("INVALID_UNIT", "Both units must be specified")
	}
	if from.Equals(to) {
		return quantity, nil
	}
	if !from.SameFamily(to) {
		return decimal.Zero, shared.ErrUnitMismatch
	}
	return quantity.Mul(from.factor).Div(to.factor).Round(4), nil
}

// ConvertCode converts between unit codes, resolving both against the
// fixed table first.
func ConvertCode(quantity decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error) {
	from, err := ParseUnit(fromCode)
	if err != nil {
		return decimal.Zero, err
	}
	to, err := ParseUnit(toCode)
	if err != nil {
		return decimal.Zero, err
	}
	return Convert(quantity, from, to)
}
