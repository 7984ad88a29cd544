package token

import (
	"math/big"
	"strings"
)

// display precision for ratios whose denominator is not a power of ten
const ratScale = 18

// Normalize converts a raw integer amount to rawAmount / 10^decimals
// using arbitrary-precision arithmetic. Callers must not round-trip
// the result through floats before comparing.
func Normalize(raw *big.Int, decimals uint8) *big.Rat {
	if raw == nil {
		return new(big.Rat)
	}
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Rat).SetFrac(raw, denom)
}

// FormatAmount renders a raw amount as a trimmed decimal string.
func FormatAmount(raw *big.Int, decimals uint8) string {
	return FormatRat(Normalize(raw, decimals))
}

// FormatRat renders a rational as a decimal string with trailing
// zeroes trimmed ("1.500000" -> "1.5", "425.000000" -> "425").
func FormatRat(r *big.Rat) string {
	if r == nil || r.Sign() == 0 {
		return "0"
	}
	text := r.FloatString(ratScale)
	if !strings.Contains(text, ".") {
		return text
	}
	text = strings.TrimRight(text, "0")
	return strings.TrimSuffix(text, ".")
}
