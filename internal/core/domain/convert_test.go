package domain

import (
	"math"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func TestBalanceToFloat64_Exact(t *testing.T) {
	tests := []struct {
		name string
		in   *uint256.Int
		want float64
	}{
		{"nil", nil, 0},
		{"zero", uint256.NewInt(0), 0},
		{"one", uint256.NewInt(1), 1},
		{"one ether", uint256.NewInt(1_000_000_000_000_000_000), 1e18},
		{"usdc", uint256.NewInt(100_000_000), 1e8},
		{"max 53 bits", uint256.NewInt(1<<53 - 1), float64(1<<53 - 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BalanceToFloat64(tt.in)
			if got != tt.want {
				t.Errorf("BalanceToFloat64(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestBalanceToFloat64_Wide(t *testing.T) {
	values := []string{
		"123456789012345678901234567890",
		"115792089237316195423570985008687907853269984665640564039457584007913129639935", // 2^256-1
		"18446744073709551617", // 2^64+1
		"18014398509481987",    // 2^54+3
		"36028797018963975",    // 2^55+7
		"36028797018963969",    // 2^55+1
		"73786976294838206465", // 2^66+1
	}

	for _, s := range values {
		v := uint256.MustFromDecimal(s)
		got := BalanceToFloat64(v)

		exact := new(big.Float).SetInt(v.ToBig())
		diff := new(big.Float).Sub(exact, new(big.Float).SetFloat64(got))
		diff.Abs(diff)

		// half a unit in the last place
		bound := new(big.Float).SetFloat64(math.Ldexp(1, v.BitLen()-54))
		if diff.Cmp(bound) > 0 {
			t.Errorf("BalanceToFloat64(%s) = %v, error %v exceeds %v", s, got, diff, bound)
		}
	}
}

func TestBalanceToFloat64_RoundsToNearest(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"2^54+3 rounds up", "18014398509481987", math.Ldexp(1, 54) + 4},
		{"2^54+1 rounds down", "18014398509481985", math.Ldexp(1, 54)},
		{"2^55+5 sticky rounds up", "36028797018963973", math.Ldexp(1, 55) + 8},
		{"2^55+3 rounds down", "36028797018963971", math.Ldexp(1, 55)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BalanceToFloat64(uint256.MustFromDecimal(tt.in)); got != tt.want {
				t.Errorf("BalanceToFloat64(%s) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestBalanceToFloat64_Monotonic(t *testing.T) {
	small := uint256.MustFromDecimal("1000000000000000000000000")
	large := uint256.MustFromDecimal("2000000000000000000000000")
	if BalanceToFloat64(small) >= BalanceToFloat64(large) {
		t.Errorf("expected %v < %v", BalanceToFloat64(small), BalanceToFloat64(large))
	}
}
