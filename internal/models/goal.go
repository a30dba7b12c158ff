package models

// Goal is an investment objective extracted from free text.
type Goal struct {
	TargetMonthlyIncome  float64  `json:"target_monthly_income"`
	TimeHorizonMonths    int      `json:"time_horizon_months"`
	StartingCapital      float64  `json:"starting_capital"`
	MonthlyContributions float64  `json:"monthly_contributions"`
	Strategies           []string `json:"strategies"`
	RiskTolerance        string   `json:"risk_tolerance"` // "conservative", "balanced", "aggressive"
	RequiredProperties   int      `json:"required_properties"`
	Source               string   `json:"source"`

	// Per-unit figures the investor stated. Zero means not stated.
	RentPerUnit         float64 `json:"rent_per_unit,omitempty"`
	ExpensesPerUnit     float64 `json:"expenses_per_unit,omitempty"`
	CashFlowPerUnit     float64 `json:"cash_flow_per_unit,omitempty"` // rent less expenses, when both are stated
	TargetCashFromSales float64 `json:"target_cash_from_sales,omitempty"`
}

// Simulation seeds a simulation from the goal. Only the capital, horizon and
// contribution fields are taken from the goal; market assumptions come from base.
func (g Goal) Simulation(base Simulation) Simulation {
	base.InitialCapital = g.StartingCapital
	base.TimeHorizonMonths = g.TimeHorizonMonths
	base.MonthlyContribution = g.MonthlyContributions
	return base
}

// ProposedAction is one step of a strategy as produced by a planner.
type ProposedAction struct {
	Month    int                `json:"month"`
	Action   string             `json:"action"` // buy, sell, refinance, wait ...
	Property string             `json:"property,omitempty"`
	Details  map[string]float64 `json:"details,omitempty"`
	Note     string             `json:"note,omitempty"`
}

// Strategy is a planner's proposed timeline for a goal.
type Strategy struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Source      string           `json:"source"` // "gemini" or "rental_ladder"
	Actions     []ProposedAction `json:"actions"`
}

// StrategyWarning flags a weakness in a proposed plan.
type StrategyWarning struct {
	Severity string `json:"severity"` // "high", "medium", "low"
	Field    string `json:"field"`    // which part of the goal or plan triggered it
	Message  string `json:"message"`
}
