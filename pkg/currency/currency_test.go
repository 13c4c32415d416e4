package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestUnitAmountDecimalCurrency(t *testing.T) {
	assert.Equal(t, int64(2500), UnitAmount(decimal.RequireFromString("25.00"), "eur"))
	assert.Equal(t, int64(4999), UnitAmount(decimal.RequireFromString("49.99"), "EUR"))
	assert.Equal(t, int64(10), UnitAmount(decimal.RequireFromString("0.095"), "usd"))
}

func TestUnitAmountZeroDecimalCurrency(t *testing.T) {
	assert.Equal(t, int64(15000), UnitAmount(decimal.RequireFromString("15000"), "xof"))
	assert.Equal(t, int64(500), UnitAmount(decimal.RequireFromString("500.4"), "jpy"))
}

func TestIsZeroDecimal(t *testing.T) {
	assert.True(t, IsZeroDecimal("XOF"))
	assert.True(t, IsZeroDecimal(" jpy "))
	assert.False(t, IsZeroDecimal("eur"))
	assert.False(t, IsZeroDecimal(""))
}
