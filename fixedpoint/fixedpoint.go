// Package fixedpoint implements the integer arithmetic the order pipeline
// runs on. Prices, quantities, and currency values are big integers scaled by
// 1e18 (one whole unit); multiplying two scaled values and dividing by the
// scale keeps every intermediate exact, so maker/taker amounts survive the
// server's and the contract's cross-checks bit for bit.
package fixedpoint

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimals is the number of fractional digits of the fixed-point domain.
const Decimals = 18

// One is the scale factor, 1e18. Treated as read-only.
var One = big.NewInt(1e18)

// RetainSignificantDigits truncates value toward zero so that at most digits
// significant decimal digits remain, zeroing out the low-order digits beyond
// that budget. Sign is preserved and |result| <= |value|. Zero stays zero.
// digits below 1 are clamped to 1.
func RetainSignificantDigits(value *big.Int, digits int) *big.Int {
	out := new(big.Int)
	if value == nil || value.Sign() == 0 {
		return out
	}
	if digits < 1 {
		digits = 1
	}
	abs := new(big.Int).Abs(value)
	extra := len(abs.String()) - digits
	if extra <= 0 {
		return out.Set(value)
	}
	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(extra)), nil)
	abs.Quo(abs, pow)
	abs.Mul(abs, pow)
	if value.Sign() < 0 {
		abs.Neg(abs)
	}
	return out.Set(abs)
}

// MulDiv returns a*b/den truncated toward zero. The product is computed at
// full width before the division, so a*b overflowing the scale is fine.
func MulDiv(a, b, den *big.Int) *big.Int {
	out := new(big.Int).Mul(a, b)
	return out.Quo(out, den)
}

// FromDecimal converts a human-decimal value into the fixed-point domain,
// truncating anything finer than Decimals.
func FromDecimal(d decimal.Decimal) *big.Int {
	return d.Shift(Decimals).BigInt()
}

// ToDecimal converts a fixed-point integer back to its human-decimal value.
func ToDecimal(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -Decimals)
}

// MustFromString parses a human-decimal string straight into the fixed-point
// domain. Panics on malformed input; meant for constants and fixtures.
func MustFromString(s string) *big.Int {
	return FromDecimal(decimal.RequireFromString(s))
}
