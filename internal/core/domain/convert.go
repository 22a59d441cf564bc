package domain

import (
	"math"

	"github.com/holiman/uint256"
)

// windowBits is the float64 mantissa (53 bits) plus a round bit and a
// sticky bit, so the uint64 to float64 conversion rounds to nearest.
const windowBits = 55

// BalanceToFloat64 converts a 256-bit balance to the nearest float64.
// Values wider than 53 bits lose their low bits; the error is at most
// 2^(bitlen-54).
func BalanceToFloat64(v *uint256.Int) float64 {
	if v == nil || v.IsZero() {
		return 0
	}

	shift := v.BitLen() - windowBits
	if shift <= 0 {
		return float64(v.Uint64())
	}

	window := new(uint256.Int).Rsh(v, uint(shift))
	mantissa := window.Uint64()
	if !new(uint256.Int).Lsh(window, uint(shift)).Eq(v) {
		mantissa |= 1
	}
	return math.Ldexp(float64(mantissa), shift)
}
