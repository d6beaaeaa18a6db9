package kernel

import (
	"fmt"

	"cleaning/internal/pkg/errs"
)

// Currency is the single settlement currency of the service.
const Currency = "KES"

// Money is a non-negative amount in minor units (cents). All arithmetic is integral;
// the only rounding happens in MulRatio and it is half-up.
type Money struct {
	minor int64
}

// NewMoney builds an amount from minor units.
func NewMoney(minor int64) (Money, error) {
	if minor < 0 {
		return Money{}, errs.NewValueIsOutOfRangeError("amount", minor, 0, "unbounded")
	}
	return Money{minor: minor}, nil
}

// MoneyFromUnits builds an amount from whole currency units, e.g. 1000 KES.
func MoneyFromUnits(units int64) (Money, error) {
	return NewMoney(units * 100)
}

// Minor returns the amount in cents.
func (m Money) Minor() int64 {
	return m.minor
}

// Units returns the amount in currency units as a float, for display and scoring only.
func (m Money) Units() float64 {
	return float64(m.minor) / 100
}

// WholeUnitsCeil rounds up to whole currency units. The gateway only accepts integers.
func (m Money) WholeUnitsCeil() int64 {
	return (m.minor + 99) / 100
}

func (m Money) Add(other Money) Money {
	return Money{minor: m.minor + other.minor}
}

// Times multiplies by a non-negative integer count.
func (m Money) Times(n int64) Money {
	if n < 0 {
		n = 0
	}
	return Money{minor: m.minor * n}
}

// MulRatio returns m × num / den rounded half-up to the nearest minor unit.
func (m Money) MulRatio(num, den int64) Money {
	if den <= 0 || num <= 0 {
		return Money{}
	}
	return Money{minor: (2*m.minor*num + den) / (2 * den)}
}

func (m Money) IsZero() bool {
	return m.minor == 0
}

func (m Money) IsEqual(other Money) bool {
	return m.minor == other.minor
}

func (m Money) String() string {
	return fmt.Sprintf("%s %d.%02d", Currency, m.minor/100, m.minor%100)
}
