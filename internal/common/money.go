package common

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// RoundCents rounds half away from zero to two decimal places.
func RoundCents(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Cents converts an amount to a decimal rounded to the cent.
func Cents(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(2)
}

// FormatUSD renders an amount as US dollars, e.g. "$1,013.37".
func FormatUSD(v float64) string {
	cents := Cents(v).Shift(2).IntPart()
	return money.New(cents, money.USD).Display()
}
