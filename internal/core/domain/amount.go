package domain

import (
	"github.com/holiman/uint256"
)

// TotalBasisPoints is 100% expressed in basis points.
const TotalBasisPoints = 10_000

// AddAmounts returns a+b or ErrAmountOverflow.
func AddAmounts(a, b uint256.Int) (uint256.Int, error) {
	var sum uint256.Int
	if _, overflow := sum.AddOverflow(&a, &b); overflow {
		return uint256.Int{}, WithMetadata(CodeAmountOverflow, "amount overflow on add", map[string]string{
			"a": a.Dec(),
			"b": b.Dec(),
		})
	}
	return sum, nil
}

// SubAmounts returns a-b or ErrAmountOverflow when b > a.
func SubAmounts(a, b uint256.Int) (uint256.Int, error) {
	var diff uint256.Int
	if _, underflow := diff.SubOverflow(&a, &b); underflow {
		return uint256.Int{}, WithMetadata(CodeAmountOverflow, "amount underflow on sub", map[string]string{
			"a": a.Dec(),
			"b": b.Dec(),
		})
	}
	return diff, nil
}

// SaturatingSub returns a-b, or zero when b >= a.
func SaturatingSub(a, b uint256.Int) uint256.Int {
	if !a.Gt(&b) {
		return uint256.Int{}
	}
	var diff uint256.Int
	diff.Sub(&a, &b)
	return diff
}

// MulDiv returns x*y/d computed over a 512-bit intermediate. It reports
// ErrAmountOverflow when the quotient does not fit 256 bits or d is zero.
func MulDiv(x, y, d uint256.Int) (uint256.Int, error) {
	if d.IsZero() {
		return uint256.Int{}, New(CodeAmountOverflow, "division by zero")
	}
	var out uint256.Int
	if _, overflow := out.MulDivOverflow(&x, &y, &d); overflow {
		return uint256.Int{}, WithMetadata(CodeAmountOverflow, "amount overflow on mul-div", map[string]string{
			"x": x.Dec(),
			"y": y.Dec(),
			"d": d.Dec(),
		})
	}
	return out, nil
}

// MinAmount returns the smaller of a and b.
func MinAmount(a, b uint256.Int) uint256.Int {
	if a.Lt(&b) {
		return a
	}
	return b
}

// Amount builds an amount from a uint64.
func Amount(v uint64) uint256.Int {
	return *uint256.NewInt(v)
}

// ParseAmount parses a base-10 amount.
func ParseAmount(s string) (uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return uint256.Int{}, Wrap(CodeInvalidAmount, "invalid amount "+s, err)
	}
	return *v, nil
}
