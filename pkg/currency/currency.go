package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Stripe's documented zero-decimal currencies: amounts are already expressed
// in the smallest unit, so no cent multiplication applies.
var zeroDecimal = map[string]struct{}{
	"bif": {}, "clp": {}, "djf": {}, "gnf": {}, "jpy": {}, "kmf": {},
	"krw": {}, "mga": {}, "pyg": {}, "rwf": {}, "ugx": {}, "vnd": {},
	"vuv": {}, "xaf": {}, "xof": {}, "xpf": {},
}

// IsZeroDecimal reports whether the currency has no fractional unit.
func IsZeroDecimal(code string) bool {
	_, ok := zeroDecimal[strings.ToLower(strings.TrimSpace(code))]
	return ok
}

// UnitAmount converts a decimal price into the smallest unit for the given
// currency: zero-decimal currencies take the integer amount directly, decimal
// currencies are multiplied by 100. Rounds half away from zero.
func UnitAmount(price decimal.Decimal, code string) int64 {
	if IsZeroDecimal(code) {
		return price.Round(0).IntPart()
	}
	return price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
