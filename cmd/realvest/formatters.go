package main

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/realvest/internal/app"
	"github.com/bobmcallan/realvest/internal/common"
	"github.com/bobmcallan/realvest/internal/finance"
	"github.com/bobmcallan/realvest/internal/models"
	"github.com/bobmcallan/realvest/internal/services/portfolio"
)

func formatMoney(v float64) string { return common.FormatUSD(v) }

// formatProjection formats a projection as markdown
func formatProjection(state *models.PortfolioState, months bool) string {
	var sb strings.Builder
	final := state.Final()
	if final == nil {
		return "No projection.\n"
	}

	sb.WriteString(fmt.Sprintf("# Projection: %d months\n\n", len(state.Timeline)-1))
	sb.WriteString(fmt.Sprintf("**Starting Capital:** %s\n", formatMoney(state.Simulation.InitialCapital)))
	sb.WriteString(fmt.Sprintf("**Cash Reserves:** %s\n", formatMoney(final.CashReserves)))
	sb.WriteString(fmt.Sprintf("**Property Value:** %s\n", formatMoney(final.TotalPropertyValue)))
	sb.WriteString(fmt.Sprintf("**Debt:** %s\n", formatMoney(final.TotalDebt)))
	sb.WriteString(fmt.Sprintf("**Equity:** %s\n", formatMoney(final.TotalEquity)))
	sb.WriteString(fmt.Sprintf("**Monthly Cash Flow:** %s\n", formatMoney(final.NetCashFlow)))
	sb.WriteString(fmt.Sprintf("**ROI:** %.2f%%\n", final.ROI))
	sb.WriteString(fmt.Sprintf("**IRR:** %.2f%% a year\n\n", portfolio.IRR(state)))

	if len(final.ActiveProperties) > 0 {
		sb.WriteString("## Properties\n\n")
		sb.WriteString("| Property | Bought | Value | Rent | Mortgage | Equity | Cap Rate | Cash on Cash |\n")
		sb.WriteString("|----------|--------|-------|------|----------|--------|----------|--------------|\n")
		analysis := portfolio.AnalyzeProperties(state.Simulation, *final)
		for i, p := range final.ActiveProperties {
			a := analysis[i]
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %.2f%% | %.2f%% |\n",
				p.PropertyID, p.PurchaseMonth, formatMoney(p.CurrentValue), formatMoney(p.MonthlyRent),
				formatMoney(p.MortgageBalance), formatMoney(p.Equity), a.CapRate, a.CashOnCash))
		}
		sb.WriteString("\n")
	}

	if len(state.Skipped) > 0 {
		sb.WriteString("## Skipped Transactions\n\n")
		sb.WriteString("| Month | Kind | Reason | Detail |\n")
		sb.WriteString("|-------|------|--------|--------|\n")
		for _, s := range state.Skipped {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", s.Month, s.Kind, s.Reason, s.Detail))
		}
		sb.WriteString("\n")
	}

	if months {
		sb.WriteString("## Timeline\n\n")
		sb.WriteString("| Month | Cash | Income | Expenses | Net | Debt | Equity | Properties |\n")
		sb.WriteString("|-------|------|--------|----------|-----|------|--------|------------|\n")
		for _, m := range state.Timeline {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %s | %d |\n",
				m.Month, formatMoney(m.CashReserves), formatMoney(m.MonthlyIncome), formatMoney(m.MonthlyExpenses),
				formatMoney(m.NetCashFlow), formatMoney(m.TotalDebt), formatMoney(m.TotalEquity), len(m.ActiveProperties)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatGoalPlan formats the parsed goal, its strategy and review warnings
func formatGoalPlan(plan *app.GoalPlan) string {
	var sb strings.Builder
	g := plan.Goal

	sb.WriteString("# Goal\n\n")
	sb.WriteString(fmt.Sprintf("**Target Income:** %s/month\n", formatMoney(g.TargetMonthlyIncome)))
	sb.WriteString(fmt.Sprintf("**Horizon:** %d months\n", g.TimeHorizonMonths))
	sb.WriteString(fmt.Sprintf("**Starting Capital:** %s\n", formatMoney(g.StartingCapital)))
	sb.WriteString(fmt.Sprintf("**Contributions:** %s/month\n", formatMoney(g.MonthlyContributions)))
	sb.WriteString(fmt.Sprintf("**Risk:** %s\n", g.RiskTolerance))
	if g.RentPerUnit > 0 {
		sb.WriteString(fmt.Sprintf("**Rent per Unit:** %s/month\n", formatMoney(g.RentPerUnit)))
	}
	if g.ExpensesPerUnit > 0 {
		sb.WriteString(fmt.Sprintf("**Expenses per Unit:** %s/month\n", formatMoney(g.ExpensesPerUnit)))
	}
	if g.CashFlowPerUnit != 0 {
		sb.WriteString(fmt.Sprintf("**Cash Flow per Unit:** %s/month\n", formatMoney(g.CashFlowPerUnit)))
	}
	if g.TargetCashFromSales > 0 {
		sb.WriteString(fmt.Sprintf("**Cash from Sales:** %s\n", formatMoney(g.TargetCashFromSales)))
	}
	sb.WriteString(fmt.Sprintf("**Rentals Needed:** %d\n", g.RequiredProperties))
	if !plan.Confidence.High {
		sb.WriteString(fmt.Sprintf("**Confidence:** %d%% (%d fields found, the rest are defaults)\n", plan.Confidence.Score, plan.Confidence.FieldsFound))
	}
	sb.WriteString("\n")

	if s := plan.Strategy; s != nil {
		sb.WriteString(fmt.Sprintf("## Strategy: %s\n\n", s.Name))
		if s.Description != "" {
			sb.WriteString(s.Description + "\n\n")
		}
		sb.WriteString("| Month | Action | Property | Note |\n")
		sb.WriteString("|-------|--------|----------|------|\n")
		for _, a := range s.Actions {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", a.Month, a.Action, a.Property, a.Note))
		}
		sb.WriteString("\n")
	}

	if len(plan.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range plan.Warnings {
			sb.WriteString(fmt.Sprintf("- **%s** %s\n", strings.ToUpper(w.Severity), w.Message))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatReconcile formats listing reconciliation results
func formatReconcile(result *models.ReconcileResult, summary models.MatchSummary) string {
	var sb strings.Builder

	sb.WriteString("# Listing Matches\n\n")
	sb.WriteString(fmt.Sprintf("**Matched:** %d of %d purchases (%.0f%%)\n\n", summary.Matched, summary.Total, summary.Percentage))

	if len(result.Matches) > 0 {
		sb.WriteString("| Placeholder | Listing | Price | Est. Rent | Score | Buffer |\n")
		sb.WriteString("|-------------|---------|-------|-----------|-------|--------|\n")
		for _, m := range result.Matches {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %.1f | ±%.0f%% |\n",
				m.OriginalPropertyID, m.PropertyID, formatMoney(m.Listing.Price), formatMoney(m.EstimatedRent),
				m.Score, m.PriceBuffer*100))
		}
		sb.WriteString("\n")
	}

	if len(result.Unmatched) > 0 {
		sb.WriteString("## Unmatched\n\n")
		for _, u := range result.Unmatched {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", u.PropertyID, u.Reason))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatLoan formats a loan's payment and amortization, by year unless monthly
func formatLoan(amount, rate, termYears float64, monthly bool) string {
	var sb strings.Builder
	schedule := finance.AmortizationSchedule(amount, rate, termYears)
	interest := finance.TotalInterest(amount, rate, termYears)

	sb.WriteString("# Loan\n\n")
	sb.WriteString(fmt.Sprintf("**Amount:** %s\n", formatMoney(amount)))
	sb.WriteString(fmt.Sprintf("**Rate:** %.2f%% over %g years\n", rate, termYears))
	sb.WriteString(fmt.Sprintf("**Monthly Payment:** %s\n", formatMoney(finance.MonthlyPayment(amount, rate, termYears))))
	sb.WriteString(fmt.Sprintf("**Total Interest:** %s\n", formatMoney(interest)))
	sb.WriteString(fmt.Sprintf("**Total Paid:** %s\n\n", formatMoney(amount+interest)))

	if len(schedule) == 0 {
		return sb.String()
	}

	if monthly {
		sb.WriteString("| Month | Payment | Principal | Interest | Balance |\n")
		sb.WriteString("|-------|---------|-----------|----------|---------|\n")
		for _, e := range schedule {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
				e.Period, formatMoney(e.Payment), formatMoney(e.Principal), formatMoney(e.Interest), formatMoney(e.Balance)))
		}
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString("| Year | Principal | Interest | Balance |\n")
	sb.WriteString("|------|-----------|----------|---------|\n")
	var principal, paid float64
	for i, e := range schedule {
		principal += e.Principal
		paid += e.Interest
		if e.Period%12 == 0 || i == len(schedule)-1 {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n",
				(e.Period+11)/12, formatMoney(principal), formatMoney(paid), formatMoney(e.Balance)))
			principal, paid = 0, 0
		}
	}
	sb.WriteString("\n")
	return sb.String()
}
