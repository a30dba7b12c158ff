package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/realvest/internal/app"
	"github.com/bobmcallan/realvest/internal/common"
	"github.com/bobmcallan/realvest/internal/finance"
	"github.com/bobmcallan/realvest/internal/models"
	"github.com/bobmcallan/realvest/internal/services/goal"
)

func testState() *models.PortfolioState {
	return &models.PortfolioState{
		Simulation: models.Simulation{InitialCapital: 50000, TimeHorizonMonths: 1},
		Timeline: []models.MonthSnapshot{
			{Month: 0, CashReserves: 35050},
			{
				Month:              1,
				CashReserves:       35075.5,
				NetCashFlow:        25.5,
				TotalDebt:          52000,
				TotalPropertyValue: 65162.5,
				TotalEquity:        13162.5,
				ActiveProperties: []models.PropertySnapshot{
					{PropertyID: "Rental 1", CurrentValue: 65162.5, MonthlyRent: 1000, MortgageBalance: 52000, Equity: 13162.5},
				},
			},
		},
		Skipped: []models.SkippedTransaction{
			{TransactionID: "t2", Month: 1, Kind: models.KindSellProperty, Reason: models.SkipPropertyNotFound, Detail: "Rental 9"},
		},
	}
}

func TestFormatProjection(t *testing.T) {
	out := formatProjection(testState(), false)

	assert.Contains(t, out, "# Projection: 1 months")
	assert.Contains(t, out, "**Cash Reserves:** $35,075.50")
	assert.Contains(t, out, "| Rental 1 | 0 | $65,162.50 | $1,000.00 | $52,000.00 | $13,162.50 | 18.42% | 0.00% |")
	assert.Contains(t, out, "| 1 | sell_property | property_not_found | Rental 9 |")
	assert.NotContains(t, out, "## Timeline")

	withMonths := formatProjection(testState(), true)
	assert.Contains(t, withMonths, "## Timeline")
	assert.Equal(t, 2, strings.Count(withMonths, "| $35,0"))
}

func TestFormatProjection_Empty(t *testing.T) {
	assert.Equal(t, "No projection.\n", formatProjection(&models.PortfolioState{}, false))
}

func TestFormatGoalPlan(t *testing.T) {
	plan := &app.GoalPlan{
		Goal:       &models.Goal{TargetMonthlyIncome: 10000, TimeHorizonMonths: 36, StartingCapital: 50000, RiskTolerance: "balanced", RequiredProperties: 25},
		Confidence: goal.Confidence{Score: 40, FieldsFound: 2},
		Strategy: &models.Strategy{Name: "Rental ladder", Actions: []models.ProposedAction{
			{Month: 0, Action: "buy", Property: "Rental 1"},
		}},
		Warnings: []models.StrategyWarning{{Severity: "high", Message: "Income target not reached."}},
	}

	out := formatGoalPlan(plan)
	assert.Contains(t, out, "**Target Income:** $10,000.00/month")
	assert.Contains(t, out, "**Confidence:** 40%")
	assert.Contains(t, out, "## Strategy: Rental ladder")
	assert.Contains(t, out, "| 0 | buy | Rental 1 |")
	assert.Contains(t, out, "- **HIGH** Income target not reached.")
	assert.NotContains(t, out, "per Unit")
}

func TestFormatGoalPlan_StatedFigures(t *testing.T) {
	plan := &app.GoalPlan{Goal: &models.Goal{
		TargetMonthlyIncome: 3000,
		TimeHorizonMonths:   12,
		RentPerUnit:         1250,
		ExpensesPerUnit:     300,
		CashFlowPerUnit:     950,
		TargetCashFromSales: 100000,
		RequiredProperties:  4,
	}}

	out := formatGoalPlan(plan)
	assert.Contains(t, out, "**Rent per Unit:** $1,250.00/month")
	assert.Contains(t, out, "**Expenses per Unit:** $300.00/month")
	assert.Contains(t, out, "**Cash Flow per Unit:** $950.00/month")
	assert.Contains(t, out, "**Cash from Sales:** $100,000.00")
	assert.Contains(t, out, "**Rentals Needed:** 4")
}

func TestFormatReconcile(t *testing.T) {
	result := &models.ReconcileResult{
		Matches: []models.ListingMatch{{
			OriginalPropertyID: "Rental 1",
			PropertyID:         "123 Main St",
			Listing:            models.Listing{Price: 61000},
			EstimatedRent:      1200,
			Score:              98.46,
			PriceBuffer:        0.2,
		}},
		Unmatched: []models.UnmatchedPurchase{{PropertyID: "Rental 2", Reason: "no_candidates"}},
	}

	out := formatReconcile(result, models.MatchSummary{Total: 2, Matched: 1, Percentage: 50})
	assert.Contains(t, out, "**Matched:** 1 of 2 purchases (50%)")
	assert.Contains(t, out, "| Rental 1 | 123 Main St | $61,000.00 | $1,200.00 | 98.5 | ±20% |")
	assert.Contains(t, out, "- Rental 2: no_candidates")
}

func TestFormatLoan(t *testing.T) {
	out := formatLoan(200000, 4.5, 30, false)
	assert.Contains(t, out, "**Amount:** $200,000.00")
	assert.Contains(t, out, "**Monthly Payment:** $1,013.37")
	assert.Contains(t, out, "| Year | Principal | Interest | Balance |")
	assert.Equal(t, 30, strings.Count(out, "\n| ")-1, "one row per year after the separator")
	assert.True(t, strings.HasSuffix(out, "| $0.00 |\n\n"), "the last year closes the loan")

	monthly := formatLoan(12000, 0, 1, true)
	assert.Contains(t, monthly, "**Total Interest:** $0.00")
	assert.Contains(t, monthly, "| 1 | $1,000.00 | $1,000.00 | $0.00 | $11,000.00 |")
	assert.Contains(t, monthly, "| 12 | $1,000.00 | $1,000.00 | $0.00 | $0.00 |")
}

func TestFormatLoan_SizedFromPayment(t *testing.T) {
	amount := common.RoundCents(finance.LoanFromPayment(1013.37, 4.5, 30))
	assert.InDelta(t, 200000, amount, 1)
	assert.Contains(t, formatLoan(amount, 4.5, 30, false), "**Monthly Payment:** $1,013.37")
}
