package fees

import "fmt"

// FixedPointScale is the resolution of fractional credit amounts: one
// credit splits into 1e9 parts.
const FixedPointScale = 1_000_000_000

// FixedPoint is a non-negative credit amount with nine decimal places.
// Payout leftovers are carried in this form so that the integer part can
// flow back into processing credits and the fractional part into storage
// credits.
type FixedPoint struct {
	units uint64
	nanos uint32
}

// NewFixedPoint builds an amount from whole units and a fractional part
// expressed in 1e-9 units. The fractional part must stay below one unit.
func NewFixedPoint(units, nanos uint64) (FixedPoint, error) {
	if nanos >= FixedPointScale {
		return FixedPoint{}, fmt.Errorf("fees: fractional part %d: %w", nanos, ErrConversion)
	}
	return FixedPoint{units: units, nanos: uint32(nanos)}, nil
}

// FixedPointFromInt builds a whole amount with no fractional part.
func FixedPointFromInt(units uint64) FixedPoint {
	return FixedPoint{units: units}
}

// Units returns the whole part of the amount.
func (f FixedPoint) Units() uint64 {
	return f.units
}

// Nanos returns the fractional part in 1e-9 units.
func (f FixedPoint) Nanos() uint64 {
	return uint64(f.nanos)
}

// IsZero reports whether the amount is exactly zero.
func (f FixedPoint) IsZero() bool {
	return f.units == 0 && f.nanos == 0
}

// Add returns f+o with fractional carry, or ErrOverflow when the whole
// part wraps.
func (f FixedPoint) Add(o FixedPoint) (FixedPoint, error) {
	nanos := uint64(f.nanos) + uint64(o.nanos)
	units, err := CheckedAdd(f.units, o.units)
	if err != nil {
		return FixedPoint{}, err
	}
	units, err = CheckedAdd(units, nanos/FixedPointScale)
	if err != nil {
		return FixedPoint{}, err
	}
	return FixedPoint{units: units, nanos: uint32(nanos % FixedPointScale)}, nil
}

func (f FixedPoint) String() string {
	return fmt.Sprintf("%d.%09d", f.units, f.nanos)
}
