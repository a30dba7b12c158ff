package models

// SkipReason explains why a transaction had no effect on the portfolio.
type SkipReason string

const (
	SkipInsufficientFunds SkipReason = "insufficient_funds"
	SkipPropertyNotFound  SkipReason = "property_not_found"
	SkipDuplicateProperty SkipReason = "duplicate_property"
	SkipBeyondHorizon     SkipReason = "beyond_horizon"
)

// SkippedTransaction records a transaction that was not applied.
type SkippedTransaction struct {
	TransactionID string     `json:"transaction_id"`
	Month         int        `json:"month"`
	Kind          Kind       `json:"kind"`
	Reason        SkipReason `json:"reason"`
	Detail        string     `json:"detail,omitempty"`
}

// PropertySnapshot is the state of one active holding at a month.
type PropertySnapshot struct {
	PropertyID      string  `json:"property_id"`
	Address         string  `json:"address,omitempty"`
	PurchaseMonth   int     `json:"purchase_month"`
	PurchasePrice   float64 `json:"purchase_price"`
	CurrentValue    float64 `json:"current_value"`
	MonthlyRent     float64 `json:"monthly_rent"`
	FixedExpenses   float64 `json:"fixed_expenses,omitempty"`
	DownPayment     float64 `json:"down_payment"`
	CashInvested    float64 `json:"cash_invested"` // down payment, rehab and closing costs
	MortgageBalance float64 `json:"mortgage_balance"`
	MonthlyPayment  float64 `json:"monthly_payment"`
	Equity          float64 `json:"equity"`
	InRehab         bool    `json:"in_rehab,omitempty"`
}

// LoanSnapshot is the state of one outstanding loan at a month.
type LoanSnapshot struct {
	LoanID           string  `json:"loan_id"`
	PropertyID       string  `json:"property_id,omitempty"`
	OriginationMonth int     `json:"origination_month"`
	OriginalAmount   float64 `json:"original_amount"`
	RatePercent      float64 `json:"rate_percent"`
	TermMonths       int     `json:"term_months"`
	Balance          float64 `json:"balance"`
	MonthlyPayment   float64 `json:"monthly_payment"`
	Mortgage         bool    `json:"mortgage"`
}

// MonthSnapshot is the portfolio at the end of one simulated month.
//
// CashReserves always equals the previous month's reserves plus NetCashFlow,
// Contribution and TransactionCashDelta. TotalEquity always equals
// TotalPropertyValue minus TotalDebt.
type MonthSnapshot struct {
	Month                int                `json:"month"`
	CashReserves         float64            `json:"cash_reserves"`
	MonthlyIncome        float64            `json:"monthly_income"`
	MonthlyExpenses      float64            `json:"monthly_expenses"`
	NetCashFlow          float64            `json:"net_cash_flow"`
	Contribution         float64            `json:"contribution"`
	TransactionCashDelta float64            `json:"transaction_cash_delta"`
	TotalDebt            float64            `json:"total_debt"`
	TotalEquity          float64            `json:"total_equity"`
	TotalPropertyValue   float64            `json:"total_property_value"`
	AccumulatedRent      float64            `json:"accumulated_rent"`
	ActiveProperties     []PropertySnapshot `json:"active_properties"`
	Loans                []LoanSnapshot     `json:"loans"`
	ROI                  float64            `json:"roi"`
	AppliedTransactions  []string           `json:"applied_transactions"`
}

// PortfolioState is the full projection derived from a simulation and its
// transactions. It is replaced wholesale on every change.
type PortfolioState struct {
	Simulation   Simulation           `json:"simulation"`
	Transactions []Transaction        `json:"transactions"`
	Timeline     []MonthSnapshot      `json:"timeline"`
	Skipped      []SkippedTransaction `json:"skipped"`
}

// Final returns the last snapshot of the timeline, or nil when it is empty.
func (s *PortfolioState) Final() *MonthSnapshot {
	if s == nil || len(s.Timeline) == 0 {
		return nil
	}
	return &s.Timeline[len(s.Timeline)-1]
}
