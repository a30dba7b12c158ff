package portfolio

import (
	"github.com/bobmcallan/realvest/internal/common"
	"github.com/bobmcallan/realvest/internal/finance"
	"github.com/bobmcallan/realvest/internal/models"
)

// PropertyAnalysis holds the investment metrics of one holding at a month.
// Annual figures are the month's figures times twelve.
type PropertyAnalysis struct {
	PropertyID        string         `json:"property_id"`
	Address           string         `json:"address,omitempty"`
	Month             int            `json:"month"`
	MonthlyRent       float64        `json:"monthly_rent"`
	OperatingExpenses float64        `json:"operating_expenses"`
	AnnualNOI         float64        `json:"annual_noi"`
	AnnualDebtService float64        `json:"annual_debt_service"`
	AnnualCashFlow    float64        `json:"annual_cash_flow"`
	CapRate           float64        `json:"cap_rate"`
	CashOnCash        float64        `json:"cash_on_cash"`
	DSCR              *float64       `json:"dscr,omitempty"`
	ROI               float64        `json:"roi"`
	Equity            finance.Equity `json:"equity"`
	InRehab           bool           `json:"in_rehab,omitempty"`
}

// AnalyzeProperties returns the metrics of every holding in snap, using the
// operating cost rates of sim. Vacancy is taken out of NOI; the other costs
// are operating expenses.
func AnalyzeProperties(sim models.Simulation, snap models.MonthSnapshot) []PropertyAnalysis {
	out := make([]PropertyAnalysis, 0, len(snap.ActiveProperties))
	for _, p := range snap.ActiveProperties {
		opex := finance.ExpenseBreakdown{}
		if !p.InRehab {
			opex = finance.OperatingExpenses(p.CurrentValue, p.MonthlyRent, finance.ExpenseRates{
				PropertyTaxPercent: sim.PropertyTaxRatePercent,
				InsurancePercent:   sim.InsuranceRatePercent,
				MaintenancePercent: sim.MaintenanceRatePercent,
				VacancyPercent:     sim.VacancyRatePercent,
				ManagementPercent:  sim.ManagementRatePercent,
				FixedMonthly:       p.FixedExpenses,
			})
		}
		operating := opex.Total - opex.Vacancy
		noi := finance.NetOperatingIncome(p.MonthlyRent, operating, sim.VacancyRatePercent) * 12
		debtService := p.MonthlyPayment * 12
		cashFlow := noi - debtService
		equity := finance.EquityBreakdown(p.PurchasePrice, p.DownPayment, p.CurrentValue, p.MortgageBalance)

		out = append(out, PropertyAnalysis{
			PropertyID:        p.PropertyID,
			Address:           p.Address,
			Month:             snap.Month,
			MonthlyRent:       p.MonthlyRent,
			OperatingExpenses: common.RoundCents(operating),
			AnnualNOI:         common.RoundCents(noi),
			AnnualDebtService: common.RoundCents(debtService),
			AnnualCashFlow:    common.RoundCents(cashFlow),
			CapRate:           round2(finance.CapRate(noi, p.CurrentValue)),
			CashOnCash:        round2(finance.CashOnCash(cashFlow, p.CashInvested)),
			DSCR:              roundPtr(finance.DebtServiceCoverageRatio(noi, debtService)),
			ROI:               round2(finance.ROI(equity.Total, p.CashInvested)),
			Equity:            equity,
			InRehab:           p.InRehab,
		})
	}
	return out
}

// LoanAnalysis is a loan with its lifetime interest cost.
type LoanAnalysis struct {
	models.LoanSnapshot
	TotalInterest float64 `json:"total_interest"`
	PaymentsMade  int     `json:"payments_made"`
}

// AnalyzeLoans returns the loans outstanding in snap with the interest each
// costs over its full term.
func AnalyzeLoans(snap models.MonthSnapshot) []LoanAnalysis {
	out := make([]LoanAnalysis, 0, len(snap.Loans))
	for _, ln := range snap.Loans {
		made := snap.Month - ln.OriginationMonth
		if made > ln.TermMonths {
			made = ln.TermMonths
		}
		out = append(out, LoanAnalysis{
			LoanSnapshot:  ln,
			TotalInterest: common.RoundCents(finance.TotalInterest(ln.OriginalAmount, ln.RatePercent, float64(ln.TermMonths)/12)),
			PaymentsMade:  made,
		})
	}
	return out
}

// Summary is the headline result of a projection.
type Summary struct {
	Months             int     `json:"months"`
	InitialCapital     float64 `json:"initial_capital"`
	TotalContributions float64 `json:"total_contributions"`
	CashReserves       float64 `json:"cash_reserves"`
	PropertyValue      float64 `json:"property_value"`
	TotalDebt          float64 `json:"total_debt"`
	TotalEquity        float64 `json:"total_equity"`
	NetWorth           float64 `json:"net_worth"`
	MonthlyNetCashFlow float64 `json:"monthly_net_cash_flow"`
	AccumulatedRent    float64 `json:"accumulated_rent"`
	LoanToValue        float64 `json:"loan_to_value"`
	ROI                float64 `json:"roi"`
	IRR                float64 `json:"irr"`
	LifetimeInterest   float64 `json:"lifetime_interest"` // over the full term of the loans still outstanding
	Properties         int     `json:"properties"`
	Skipped            int     `json:"skipped"`
}

// Summarize returns the headline result of state, or nil when it has no timeline.
func Summarize(state *models.PortfolioState) *Summary {
	final := state.Final()
	if final == nil {
		return nil
	}

	contributions := 0.0
	for _, snap := range state.Timeline {
		contributions += snap.Contribution
	}
	interest := 0.0
	for _, ln := range AnalyzeLoans(*final) {
		interest += ln.TotalInterest
	}

	return &Summary{
		Months:             final.Month,
		InitialCapital:     state.Simulation.InitialCapital,
		TotalContributions: common.RoundCents(contributions),
		CashReserves:       final.CashReserves,
		PropertyValue:      final.TotalPropertyValue,
		TotalDebt:          final.TotalDebt,
		TotalEquity:        final.TotalEquity,
		NetWorth:           common.RoundCents(final.CashReserves + final.TotalEquity),
		MonthlyNetCashFlow: final.NetCashFlow,
		AccumulatedRent:    final.AccumulatedRent,
		LoanToValue:        round2(finance.LoanToValue(final.TotalDebt, final.TotalPropertyValue)),
		ROI:                final.ROI,
		IRR:                round2(IRR(state)),
		LifetimeInterest:   common.RoundCents(interest),
		Properties:         len(final.ActiveProperties),
		Skipped:            len(state.Skipped),
	}
}

// round2 rounds a percentage or ratio to two decimals.
func round2(v float64) float64 { return common.RoundCents(v) }

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round2(*v)
	return &r
}
