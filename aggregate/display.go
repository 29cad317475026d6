package aggregate

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency is configured or the code is unknown.
const DefaultCurrency = money.USD

// Money converts an exact amount to go-money in the currency's minor units,
// rounding half away from zero.
func Money(d decimal.Decimal, currency string) *money.Money {
	cur := money.GetCurrency(currency)
	if cur == nil {
		cur = money.GetCurrency(DefaultCurrency)
	}
	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code)
}

// Display formats an amount for display, e.g. "$1,234.50".
func Display(d decimal.Decimal, currency string) string {
	return Money(d, currency).Display()
}
