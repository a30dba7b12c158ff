// Package finance provides the pure amortization and valuation formulas used
// by the simulator. Functions never panic and never return NaN or Inf:
// invalid inputs are clamped or produce zero.
package finance

import (
	"math"

	"github.com/shopspring/decimal"
)

// MonthlyPayment returns the fixed monthly payment that amortizes principal
// over termYears at annualRatePercent. The result is not rounded.
func MonthlyPayment(principal, annualRatePercent, termYears float64) float64 {
	principal = clampNonNegative(principal)
	n := termMonths(termYears)
	if principal == 0 || n <= 0 {
		return 0
	}
	r := monthlyRate(annualRatePercent)
	if r == 0 {
		return principal / n
	}
	factor := math.Pow(1+r, n)
	return finite(principal * r * factor / (factor - 1))
}

// RemainingBalance returns the loan balance after monthsElapsed payments,
// applying interest then principal each month. The balance never goes below zero.
func RemainingBalance(originalLoan, monthlyPayment, annualRatePercent float64, monthsElapsed int) float64 {
	balance := clampNonNegative(originalLoan)
	payment := clampNonNegative(monthlyPayment)
	r := monthlyRate(annualRatePercent)
	for i := 0; i < monthsElapsed && balance > 0; i++ {
		balance = balance + balance*r - payment
	}
	if balance < 0 {
		return 0
	}
	return finite(balance)
}

// TotalInterest returns the interest paid over the full term of the loan.
func TotalInterest(principal, annualRatePercent, termYears float64) float64 {
	payment := MonthlyPayment(principal, annualRatePercent, termYears)
	if payment == 0 {
		return 0
	}
	return finite(payment*termMonths(termYears) - clampNonNegative(principal))
}

// LoanFromPayment returns the principal that a given monthly payment can
// service over termYears at annualRatePercent.
func LoanFromPayment(payment, annualRatePercent, termYears float64) float64 {
	payment = clampNonNegative(payment)
	n := termMonths(termYears)
	if payment == 0 || n <= 0 {
		return 0
	}
	r := monthlyRate(annualRatePercent)
	if r == 0 {
		return payment * n
	}
	factor := math.Pow(1+r, n)
	return finite(payment * (factor - 1) / (r * factor))
}

// AmortizationEntry is one month of a loan schedule, in cents.
type AmortizationEntry struct {
	Period    int     `json:"period"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

// AmortizationSchedule returns the month-by-month split of each payment into
// interest and principal. The final payment absorbs rounding so the balance
// closes at exactly zero.
func AmortizationSchedule(principal, annualRatePercent, termYears float64) []AmortizationEntry {
	n := int(termMonths(termYears))
	payment := MonthlyPayment(principal, annualRatePercent, termYears)
	if n <= 0 || payment == 0 {
		return nil
	}

	paymentDec := decimal.NewFromFloat(payment).Round(2)
	rate := decimal.NewFromFloat(monthlyRate(annualRatePercent))
	remaining := decimal.NewFromFloat(principal).Round(2)

	schedule := make([]AmortizationEntry, 0, n)
	for period := 1; period <= n; period++ {
		interest := remaining.Mul(rate).Round(2)
		principalPart := paymentDec.Sub(interest)
		if period == n || principalPart.GreaterThan(remaining) {
			principalPart = remaining
		}
		remaining = remaining.Sub(principalPart)

		schedule = append(schedule, AmortizationEntry{
			Period:    period,
			Payment:   principalPart.Add(interest).InexactFloat64(),
			Principal: principalPart.InexactFloat64(),
			Interest:  interest.InexactFloat64(),
			Balance:   remaining.InexactFloat64(),
		})
		if remaining.IsZero() {
			break
		}
	}
	return schedule
}

func monthlyRate(annualRatePercent float64) float64 {
	if math.IsNaN(annualRatePercent) || math.IsInf(annualRatePercent, 0) || annualRatePercent < 0 {
		return 0
	}
	return annualRatePercent / 100 / 12
}

func termMonths(termYears float64) float64 {
	return math.Round(clampNonNegative(termYears) * 12)
}

func clampNonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
