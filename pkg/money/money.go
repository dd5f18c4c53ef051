package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a currency value stored in minor units (cents).
type Amount int64

// Tolerance is the one-cent slack accepted at input boundaries for records
// produced by clients that still compute in binary floating point.
const Tolerance Amount = 1

// Zero is the zero amount.
const Zero Amount = 0

var hundred = decimal.NewFromInt(100)

// FromDecimal rounds d to two decimals and converts it to minor units.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount(d.Round(2).Mul(hundred).IntPart())
}

// FromFloat converts a float such as 12.5 into an Amount, rounding half away
// from zero at the second decimal.
func FromFloat(f float64) Amount {
	return FromDecimal(decimal.NewFromFloat(f))
}

// FromCents builds an Amount from a count of minor units.
func FromCents(c int64) Amount {
	return Amount(c)
}

// Parse reads a decimal string like "400", "400.5" or "400.50".
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("money: empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

// Cents returns the amount in minor units.
func (a Amount) Cents() int64 {
	return int64(a)
}

// Decimal returns the amount as a two-decimal value.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// Float64 is for display layers that cannot take a Decimal.
func (a Amount) Float64() float64 {
	f, _ := a.Decimal().Float64()
	return f
}

// String formats the amount with exactly two decimals, e.g. "400.00".
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

// Mul multiplies the amount by an integer quantity.
func (a Amount) Mul(qty int) Amount {
	return a * Amount(qty)
}

// IsPositive reports whether a > 0.
func (a Amount) IsPositive() bool {
	return a > 0
}

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b Amount) Amount {
	if a > b {
		return a
	}
	return b
}

// Clamp limits a to the closed range [lo, hi].
func Clamp(a, lo, hi Amount) Amount {
	return Max(lo, Min(a, hi))
}

// Sum adds up all amounts.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = 0
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*a = FromDecimal(d)
	return nil
}
