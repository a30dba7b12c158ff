package portfolio

import (
	"math"

	"github.com/bobmcallan/realvest/internal/models"
)

// cashFlow is one investor cash flow. Negative values are money put in,
// positive values money taken out. years is the offset from month 0.
type cashFlow struct {
	years  float64
	amount float64
}

// IRR returns the annualised internal rate of return of a projection as a
// percentage. The investor puts in the initial capital at month 0 and each
// month's contribution, and takes out the final net worth (cash plus equity)
// at the horizon. Returns 0 when the rate cannot be computed.
func IRR(state *models.PortfolioState) float64 {
	final := state.Final()
	if final == nil || final.Month == 0 {
		return 0
	}

	flows := []cashFlow{{years: 0, amount: -state.Simulation.InitialCapital}}
	for _, snap := range state.Timeline[1:] {
		if snap.Contribution != 0 {
			flows = append(flows, cashFlow{years: float64(snap.Month) / 12, amount: -snap.Contribution})
		}
	}
	netWorth := final.CashReserves + final.TotalEquity
	flows = append(flows, cashFlow{years: float64(final.Month) / 12, amount: netWorth})

	hasNeg, hasPos := false, false
	for _, f := range flows {
		if f.amount < 0 {
			hasNeg = true
		}
		if f.amount > 0 {
			hasPos = true
		}
	}
	if !hasNeg || !hasPos {
		return 0
	}

	rate := solveIRR(flows)
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0
	}
	return rate * 100
}

// solveIRR uses Newton-Raphson to find r such that NPV(r) = 0, falling back
// to bisection. Returns the rate as a decimal (0.12 for 12%).
func solveIRR(flows []cashFlow) float64 {
	const (
		maxIter = 100
		tol     = 1e-7
		minRate = -0.999
	)

	totalIn, totalOut := 0.0, 0.0
	for _, f := range flows {
		if f.amount < 0 {
			totalIn -= f.amount
		} else {
			totalOut += f.amount
		}
	}

	rate := 0.1
	if totalIn > 0 {
		if simple := totalOut/totalIn - 1; simple > -0.9 && simple < 10 {
			rate = simple
		}
	}

	for iter := 0; iter < maxIter; iter++ {
		npv, dnpv := 0.0, 0.0
		base := 1 + rate
		for _, f := range flows {
			discount := math.Pow(base, f.years)
			if discount == 0 {
				continue
			}
			npv += f.amount / discount
			if f.years != 0 {
				dnpv -= f.years * f.amount / (discount * base)
			}
		}

		if math.Abs(npv) < tol {
			return rate
		}
		if dnpv == 0 {
			break
		}

		next := rate - npv/dnpv
		if next < minRate {
			next = minRate
		}
		if next > 100 {
			next = 100
		}
		rate = next
	}

	return bisectIRR(flows)
}

func bisectIRR(flows []cashFlow) float64 {
	const (
		maxIter = 200
		tol     = 1e-6
	)

	npvAt := func(rate float64) float64 {
		sum := 0.0
		for _, f := range flows {
			sum += f.amount / math.Pow(1+rate, f.years)
		}
		return sum
	}

	lo, hi := -0.99, 10.0
	npvLo, npvHi := npvAt(lo), npvAt(hi)
	if npvLo*npvHi > 0 {
		return math.NaN()
	}

	for iter := 0; iter < maxIter; iter++ {
		mid := (lo + hi) / 2
		npvMid := npvAt(mid)
		if math.Abs(npvMid) < tol || (hi-lo)/2 < tol {
			return mid
		}
		if npvMid*npvLo < 0 {
			hi = mid
		} else {
			lo, npvLo = mid, npvMid
		}
	}
	return (lo + hi) / 2
}
