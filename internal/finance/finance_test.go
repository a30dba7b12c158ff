package finance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyPayment_ThirtyYearMortgage(t *testing.T) {
	payment := MonthlyPayment(200000, 4.5, 30)
	assert.InDelta(t, 1013.37, payment, 0.005)
	assert.InDelta(t, 164813.42, TotalInterest(200000, 4.5, 30), 1.0)
}

func TestMonthlyPayment_ZeroRateIsLinear(t *testing.T) {
	payment := MonthlyPayment(120000, 0, 10)
	assert.Equal(t, 1000.0, payment)

	for m := 0; m <= 120; m += 12 {
		assert.InDelta(t, 120000-float64(m)*1000, RemainingBalance(120000, payment, 0, m), 1e-6, "month %d", m)
	}
}

func TestMonthlyPayment_DegenerateInputs(t *testing.T) {
	tests := []struct {
		name                  string
		principal, rate, term float64
	}{
		{"zero principal", 0, 5, 30},
		{"negative principal", -1000, 5, 30},
		{"zero term", 100000, 5, 0},
		{"NaN principal", math.NaN(), 5, 30},
		{"infinite term", 100000, 5, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0.0, MonthlyPayment(tt.principal, tt.rate, tt.term))
		})
	}
}

func TestRemainingBalance_RoundTrip(t *testing.T) {
	for _, tc := range []struct{ loan, rate, years float64 }{
		{200000, 4.5, 30},
		{80000, 7, 15},
		{35000, 0, 5},
		{120000, 12, 1},
	} {
		payment := MonthlyPayment(tc.loan, tc.rate, tc.years)
		months := int(tc.years * 12)
		assert.InDelta(t, 0, RemainingBalance(tc.loan, payment, tc.rate, months), 0.01, "%+v", tc)
		assert.Equal(t, 0.0, RemainingBalance(tc.loan, payment, tc.rate, months+12), "paid-off loan stays at zero")
	}
}

func TestRemainingBalance_ClampsOverpayment(t *testing.T) {
	assert.Equal(t, 0.0, RemainingBalance(1000, 5000, 6, 1))
	assert.Equal(t, 1000.0, RemainingBalance(1000, 10, 6, 0))
}

func TestRemainingBalance_Decreases(t *testing.T) {
	payment := MonthlyPayment(150000, 6, 30)
	prev := 150000.0
	for m := 1; m <= 24; m++ {
		b := RemainingBalance(150000, payment, 6, m)
		assert.Less(t, b, prev)
		prev = b
	}
}

func TestLoanFromPayment_InvertsMonthlyPayment(t *testing.T) {
	payment := MonthlyPayment(200000, 4.5, 30)
	assert.InDelta(t, 200000, LoanFromPayment(payment, 4.5, 30), 0.01)
	assert.InDelta(t, 12000, LoanFromPayment(100, 0, 10), 1e-9)
	assert.Equal(t, 0.0, LoanFromPayment(0, 5, 30))
}

func TestAmortizationSchedule(t *testing.T) {
	schedule := AmortizationSchedule(200000, 4.5, 30)
	require.Len(t, schedule, 360)

	first := schedule[0]
	assert.Equal(t, 750.0, first.Interest)
	assert.InDelta(t, 263.37, first.Principal, 0.001)
	assert.InDelta(t, 199736.63, first.Balance, 0.001)

	last := schedule[len(schedule)-1]
	assert.Equal(t, 0.0, last.Balance)

	var principal float64
	for _, e := range schedule {
		principal += e.Principal
	}
	assert.InDelta(t, 200000, principal, 0.01)

	assert.Nil(t, AmortizationSchedule(0, 5, 30))
}

func TestFutureValue(t *testing.T) {
	assert.InDelta(t, 103000, FutureValue(100000, 3, 1), 1e-6)
	assert.InDelta(t, 100000*math.Pow(1.03, 0.5), FutureValue(100000, 3, 0.5), 1e-6)
	assert.Equal(t, 100000.0, FutureValue(100000, 3, 0))
	assert.InDelta(t, 95000, FutureValue(100000, -5, 1), 1e-6)
	assert.Equal(t, 0.0, FutureValue(100000, -150, 2))
}

func TestNetOperatingIncome(t *testing.T) {
	assert.InDelta(t, 1000*0.92-300, NetOperatingIncome(1000, 300, 8), 1e-9)
	assert.InDelta(t, -300, NetOperatingIncome(0, 300, 8), 1e-9)
}

func TestRatios_ZeroDenominators(t *testing.T) {
	assert.Equal(t, 0.0, CapRate(12000, 0))
	assert.Equal(t, 0.0, CashOnCash(5000, 0))
	assert.Equal(t, 0.0, LoanToValue(1000, 0))
	assert.Equal(t, 0.0, ROI(1000, 0))
	assert.Nil(t, DebtServiceCoverageRatio(12000, 0))

	for _, v := range []float64{CapRate(12000, 0), CashOnCash(-5000, 0), CapRate(math.Inf(1), 100)} {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func TestRatios(t *testing.T) {
	assert.InDelta(t, 8, CapRate(8000, 100000), 1e-9)
	assert.InDelta(t, 12.5, CashOnCash(2500, 20000), 1e-9)
	assert.InDelta(t, 80, LoanToValue(80000, 100000), 1e-9)
	assert.InDelta(t, 50, ROI(150, 100), 1e-9)

	dscr := DebtServiceCoverageRatio(15000, 12000)
	require.NotNil(t, dscr)
	assert.InDelta(t, 1.25, *dscr, 1e-9)
}

func TestOperatingExpenses(t *testing.T) {
	b := OperatingExpenses(120000, 1000, ExpenseRates{
		PropertyTaxPercent: 1.2,
		InsurancePercent:   0.5,
		MaintenancePercent: 1,
		VacancyPercent:     8,
		ManagementPercent:  10,
		FixedMonthly:       50,
	})
	assert.InDelta(t, 120, b.PropertyTax, 1e-9)
	assert.InDelta(t, 50, b.Insurance, 1e-9)
	assert.InDelta(t, 100, b.Maintenance, 1e-9)
	assert.InDelta(t, 80, b.Vacancy, 1e-9)
	assert.InDelta(t, 100, b.Management, 1e-9)
	assert.InDelta(t, 500, b.Total, 1e-9)
}

func TestEquityBreakdown(t *testing.T) {
	e := EquityBreakdown(100000, 20000, 110000, 75000)
	assert.InDelta(t, 20000, e.DownPayment, 1e-9)
	assert.InDelta(t, 5000, e.PrincipalPaydown, 1e-9)
	assert.InDelta(t, 10000, e.Appreciation, 1e-9)
	assert.InDelta(t, 35000, e.Total, 1e-9)
	assert.InDelta(t, e.DownPayment+e.PrincipalPaydown+e.Appreciation, e.Total, 1e-9)
}
