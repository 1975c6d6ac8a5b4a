// Package money holds the ledger's monetary value type.
//
// Invariants:
//   - Amounts are integers in the smallest currency unit (cents).
//   - Decimal text is accepted and produced with at most two fractional digits.
//   - Proportional splits are exact: the parts always add up to the whole.
package money

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by an Amount.
const Scale = 2

var (
	// ErrInvalidAmount is returned for non-positive or malformed monetary input.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrTooPrecise is returned when text carries more than Scale fractional digits.
	ErrTooPrecise = errors.New("amount has more than 2 decimal places")

	// ErrOutOfRange is returned when a value does not fit in an Amount.
	ErrOutOfRange = errors.New("amount out of range")

	// ErrNoWeights is returned when a split is requested over an empty or zero total.
	ErrNoWeights = errors.New("allocation weights sum to zero")
)

// Amount is a monetary value in minor units.
type Amount int64

// Parse reads decimal text such as "100", "12.5" or "0.07".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return FromDecimal(d)
}

// FromDecimal converts a decimal major-unit value into minor units.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	if !d.Equal(d.Truncate(Scale)) {
		return 0, ErrTooPrecise
	}
	minor := d.Shift(Scale)
	n := minor.IntPart()
	if !decimal.NewFromInt(n).Equal(minor) {
		return 0, ErrOutOfRange
	}
	return Amount(n), nil
}

// RequirePositive returns ErrInvalidAmount unless a > 0.
func RequirePositive(a Amount) error {
	if a <= 0 {
		return fmt.Errorf("%w: must be greater than zero, got %s", ErrInvalidAmount, a)
	}
	return nil
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal { return decimal.New(int64(a), -Scale) }

// String renders the amount with exactly two fractional digits.
func (a Amount) String() string { return a.Decimal().StringFixed(Scale) }

// Allocate splits total across weights proportionally.
//
// Each part is floor(total*w/sum); the cents lost to flooring all go to the
// largest weight (the first one on ties), so the parts always sum to total.
func Allocate(total Amount, weights []Amount) ([]Amount, error) {
	if total < 0 {
		return nil, ErrInvalidAmount
	}
	sum, largest, err := weigh(weights)
	if err != nil {
		return nil, err
	}

	parts := make([]Amount, len(weights))
	bigTotal := big.NewInt(int64(total))
	bigSum := big.NewInt(int64(sum))
	var allocated Amount
	for i, w := range weights {
		q := new(big.Int).Mul(bigTotal, big.NewInt(int64(w)))
		q.Quo(q, bigSum)
		parts[i] = Amount(q.Int64())
		allocated += parts[i]
	}
	parts[largest] += total - allocated
	return parts, nil
}

// Ratios returns w/sum for every weight rounded to places digits. The ratio
// of the largest weight absorbs the rounding residue so the ratios sum to
// exactly one.
func Ratios(weights []Amount, places int32) ([]decimal.Decimal, error) {
	sum, largest, err := weigh(weights)
	if err != nil {
		return nil, err
	}

	out := make([]decimal.Decimal, len(weights))
	den := decimal.NewFromInt(int64(sum))
	acc := decimal.Zero
	for i, w := range weights {
		out[i] = decimal.NewFromInt(int64(w)).DivRound(den, places)
		acc = acc.Add(out[i])
	}
	out[largest] = out[largest].Add(decimal.NewFromInt(1).Sub(acc))
	return out, nil
}

func weigh(weights []Amount) (sum Amount, largest int, err error) {
	for i, w := range weights {
		if w < 0 {
			return 0, 0, ErrInvalidAmount
		}
		if w > weights[largest] {
			largest = i
		}
		if sum > 1<<62 || w > 1<<62 {
			return 0, 0, ErrOutOfRange
		}
		sum += w
	}
	if sum == 0 {
		return 0, 0, ErrNoWeights
	}
	return sum, largest, nil
}
