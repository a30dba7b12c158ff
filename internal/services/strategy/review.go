package strategy

import (
	"fmt"
	"math"
	"strings"

	"github.com/bobmcallan/realvest/internal/finance"
	"github.com/bobmcallan/realvest/internal/models"
)

// Review checks a projected plan against its goal. The warnings are meant to
// be shown to the investor as devil's advocate challenges.
func Review(goal *models.Goal, state *models.PortfolioState) []models.StrategyWarning {
	var warnings []models.StrategyWarning
	if goal == nil {
		return warnings
	}

	warnings = append(warnings, reviewGoal(goal)...)
	if state == nil || len(state.Timeline) == 0 {
		return warnings
	}
	warnings = append(warnings, reviewIncome(goal, state)...)
	warnings = append(warnings, reviewSales(goal, state)...)
	warnings = append(warnings, reviewSkipped(state)...)
	warnings = append(warnings, reviewCashFlow(state)...)
	warnings = append(warnings, reviewLeverage(state)...)
	return warnings
}

// reviewGoal flags goals that contradict themselves before any projection.
func reviewGoal(g *models.Goal) []models.StrategyWarning {
	var warnings []models.StrategyWarning
	level := strings.ToLower(g.RiskTolerance)

	if g.RequiredProperties > g.TimeHorizonMonths {
		warnings = append(warnings, models.StrategyWarning{
			Severity: "high",
			Field:    "target_monthly_income, time_horizon_months",
			Message: fmt.Sprintf("Reaching $%.0f/month needs roughly %d rentals, more than one purchase per month over %d months.",
				g.TargetMonthlyIncome, g.RequiredProperties, g.TimeHorizonMonths),
		})
	}

	if level == "conservative" {
		for _, s := range g.Strategies {
			if strings.HasPrefix(s, "flip") {
				warnings = append(warnings, models.StrategyWarning{
					Severity: "medium",
					Field:    "risk_tolerance, strategies",
					Message:  "Conservative risk tolerance conflicts with a flipping strategy. Flips depend on resale timing and rehab budgets.",
				})
				break
			}
		}
	}

	return warnings
}

// reviewIncome compares the final month's net cash flow with the target
func reviewIncome(g *models.Goal, state *models.PortfolioState) []models.StrategyWarning {
	final := state.Final()
	if final.NetCashFlow >= g.TargetMonthlyIncome {
		return nil
	}
	severity := "medium"
	if final.NetCashFlow < g.TargetMonthlyIncome/2 {
		severity = "high"
	}
	return []models.StrategyWarning{{
		Severity: severity,
		Field:    "target_monthly_income",
		Message: fmt.Sprintf("Projected net cash flow at month %d is $%.2f/month against a target of $%.0f.",
			final.Month, final.NetCashFlow, g.TargetMonthlyIncome),
	}}
}

// reviewSales compares the cash raised in months with an applied sale with
// the sales target stated in the goal.
func reviewSales(g *models.Goal, state *models.PortfolioState) []models.StrategyWarning {
	if g.TargetCashFromSales <= 0 {
		return nil
	}
	sales := map[string]bool{}
	for _, tx := range state.Transactions {
		if tx.Kind() == models.KindSellProperty {
			sales[tx.ID] = true
		}
	}

	raised := 0.0
	for _, snap := range state.Timeline {
		for _, id := range snap.AppliedTransactions {
			if sales[id] {
				raised += snap.TransactionCashDelta
				break
			}
		}
	}
	if raised >= g.TargetCashFromSales {
		return nil
	}
	return []models.StrategyWarning{{
		Severity: "medium",
		Field:    "target_cash_from_sales",
		Message: fmt.Sprintf("Property sales raise $%.2f against a target of $%.0f.",
			math.Max(raised, 0), g.TargetCashFromSales),
	}}
}

func reviewSkipped(state *models.PortfolioState) []models.StrategyWarning {
	if len(state.Skipped) == 0 {
		return nil
	}
	counts := map[models.SkipReason]int{}
	for _, s := range state.Skipped {
		counts[s.Reason]++
	}
	var parts []string
	for _, reason := range []models.SkipReason{models.SkipInsufficientFunds, models.SkipPropertyNotFound, models.SkipDuplicateProperty, models.SkipBeyondHorizon} {
		if n := counts[reason]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, reason))
		}
	}
	return []models.StrategyWarning{{
		Severity: "high",
		Field:    "transactions",
		Message:  fmt.Sprintf("%d planned transactions cannot be executed (%s).", len(state.Skipped), strings.Join(parts, ", ")),
	}}
}

// reviewCashFlow flags months where the portfolio loses money and thin reserves.
func reviewCashFlow(state *models.PortfolioState) []models.StrategyWarning {
	var warnings []models.StrategyWarning

	negative := 0
	for _, snap := range state.Timeline {
		if snap.NetCashFlow < 0 {
			negative++
		}
	}
	if negative > 0 {
		warnings = append(warnings, models.StrategyWarning{
			Severity: "medium",
			Field:    "net_cash_flow",
			Message:  fmt.Sprintf("Net cash flow is negative in %d of %d months.", negative, len(state.Timeline)),
		})
	}

	final := state.Final()
	if final.MonthlyExpenses > 0 && final.CashReserves < 3*final.MonthlyExpenses {
		warnings = append(warnings, models.StrategyWarning{
			Severity: "medium",
			Field:    "cash_reserves",
			Message: fmt.Sprintf("Final cash reserves of $%.2f cover less than three months of expenses ($%.2f/month).",
				final.CashReserves, final.MonthlyExpenses),
		})
	}
	return warnings
}

func reviewLeverage(state *models.PortfolioState) []models.StrategyWarning {
	final := state.Final()
	if final.TotalPropertyValue <= 0 {
		return nil
	}
	ltv := finance.LoanToValue(final.TotalDebt, final.TotalPropertyValue)
	if ltv <= 80 {
		return nil
	}
	return []models.StrategyWarning{{
		Severity: "medium",
		Field:    "total_debt",
		Message:  fmt.Sprintf("Portfolio loan-to-value is %.1f%%. A 10%% price fall would leave little or no equity.", ltv),
	}}
}
