package finance

import "math"

// FutureValue compounds current at annualRatePercent for years. Negative
// rates model depreciation; the rate is floored at -100%.
func FutureValue(current, annualRatePercent, years float64) float64 {
	current = finite(current)
	years = clampNonNegative(years)
	rate := finite(annualRatePercent) / 100
	if rate < -1 {
		rate = -1
	}
	return finite(current * math.Pow(1+rate, years))
}

// NetOperatingIncome returns monthly rent after vacancy, less operating expenses.
func NetOperatingIncome(monthlyRent, monthlyExpenses, vacancyRatePercent float64) float64 {
	vacancy := clampPercent(vacancyRatePercent) / 100
	return finite(clampNonNegative(monthlyRent)*(1-vacancy) - clampNonNegative(monthlyExpenses))
}

// CapRate returns annual NOI as a percentage of property value.
func CapRate(annualNOI, propertyValue float64) float64 {
	return percentOf(annualNOI, propertyValue)
}

// CashOnCash returns annual cash flow as a percentage of the cash invested.
func CashOnCash(annualCashFlow, cashInvested float64) float64 {
	return percentOf(annualCashFlow, cashInvested)
}

// DebtServiceCoverageRatio returns NOI divided by debt service. It returns
// nil when there is no debt service, since the ratio does not apply.
func DebtServiceCoverageRatio(annualNOI, annualDebtService float64) *float64 {
	if !(annualDebtService > 0) || math.IsInf(annualDebtService, 0) {
		return nil
	}
	ratio := finite(finite(annualNOI) / annualDebtService)
	return &ratio
}

// LoanToValue returns the loan balance as a percentage of property value.
func LoanToValue(balance, value float64) float64 {
	return percentOf(clampNonNegative(balance), value)
}

// ROI returns the gain of totalValue over invested as a percentage.
func ROI(totalValue, invested float64) float64 {
	if !(invested > 0) || math.IsInf(invested, 0) {
		return 0
	}
	return finite((finite(totalValue) - invested) / invested * 100)
}

// ExpenseRates are the recurring operating cost assumptions for a rental.
// Tax, insurance and maintenance are annual percentages of property value;
// vacancy and management are percentages of monthly rent.
type ExpenseRates struct {
	PropertyTaxPercent float64
	InsurancePercent   float64
	MaintenancePercent float64
	VacancyPercent     float64
	ManagementPercent  float64
	FixedMonthly       float64
}

// ExpenseBreakdown is one month of operating expenses for a rental.
type ExpenseBreakdown struct {
	PropertyTax float64 `json:"property_tax"`
	Insurance   float64 `json:"insurance"`
	Maintenance float64 `json:"maintenance"`
	Vacancy     float64 `json:"vacancy"`
	Management  float64 `json:"management"`
	Fixed       float64 `json:"fixed"`
	Total       float64 `json:"total"`
}

// OperatingExpenses returns the monthly operating expenses of a rental worth
// value and earning rent per month. Debt service is not included.
func OperatingExpenses(value, rent float64, rates ExpenseRates) ExpenseBreakdown {
	value = clampNonNegative(value)
	rent = clampNonNegative(rent)
	b := ExpenseBreakdown{
		PropertyTax: value * clampNonNegative(rates.PropertyTaxPercent) / 100 / 12,
		Insurance:   value * clampNonNegative(rates.InsurancePercent) / 100 / 12,
		Maintenance: value * clampNonNegative(rates.MaintenancePercent) / 100 / 12,
		Vacancy:     rent * clampPercent(rates.VacancyPercent) / 100,
		Management:  rent * clampPercent(rates.ManagementPercent) / 100,
		Fixed:       clampNonNegative(rates.FixedMonthly),
	}
	b.Total = b.PropertyTax + b.Insurance + b.Maintenance + b.Vacancy + b.Management + b.Fixed
	return b
}

// Equity splits a holding's equity into its sources.
type Equity struct {
	DownPayment      float64 `json:"down_payment"`
	PrincipalPaydown float64 `json:"principal_paydown"`
	Appreciation     float64 `json:"appreciation"`
	Total            float64 `json:"total"`
	LoanToValue      float64 `json:"loan_to_value"`
	CurrentValue     float64 `json:"current_value"`
	RemainingBalance float64 `json:"remaining_balance"`
}

// EquityBreakdown attributes currentValue − balance to the down payment, the
// principal repaid since purchase, and appreciation over the purchase price.
func EquityBreakdown(purchasePrice, downPayment, currentValue, balance float64) Equity {
	purchasePrice = clampNonNegative(purchasePrice)
	downPayment = clampNonNegative(downPayment)
	currentValue = clampNonNegative(currentValue)
	balance = clampNonNegative(balance)

	originalLoan := purchasePrice - downPayment
	if originalLoan < 0 {
		originalLoan = 0
	}
	return Equity{
		DownPayment:      downPayment,
		PrincipalPaydown: originalLoan - balance,
		Appreciation:     currentValue - purchasePrice,
		Total:            currentValue - balance,
		LoanToValue:      LoanToValue(balance, currentValue),
		CurrentValue:     currentValue,
		RemainingBalance: balance,
	}
}

func percentOf(numerator, denominator float64) float64 {
	if denominator == 0 || math.IsNaN(denominator) || math.IsInf(denominator, 0) {
		return 0
	}
	return finite(finite(numerator) / denominator * 100)
}

func clampPercent(v float64) float64 {
	v = clampNonNegative(v)
	if v > 100 {
		return 100
	}
	return v
}
