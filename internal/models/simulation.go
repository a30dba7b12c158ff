// Package models defines data structures for realvest
package models

// MaxHorizonMonths caps every simulation at thirty years.
const MaxHorizonMonths = 360

// Simulation holds the global parameters of a portfolio projection.
// All rates are annual percentages except the vacancy and management rates,
// which are percentages of gross rent.
type Simulation struct {
	InitialCapital          float64 `json:"initial_capital" toml:"initial_capital"`
	TimeHorizonMonths       int     `json:"time_horizon_months" toml:"time_horizon_months"`
	MonthlyContribution     float64 `json:"monthly_contribution" toml:"monthly_contribution"`
	AppreciationRatePercent float64 `json:"appreciation_rate_percent" toml:"appreciation_rate_percent"`
	RentGrowthRatePercent   float64 `json:"rent_growth_rate_percent" toml:"rent_growth_rate_percent"`
	VacancyRatePercent      float64 `json:"vacancy_rate_percent" toml:"vacancy_rate_percent"`
	ManagementRatePercent   float64 `json:"management_rate_percent" toml:"management_rate_percent"`
	PropertyTaxRatePercent  float64 `json:"property_tax_rate_percent" toml:"property_tax_rate_percent"`
	InsuranceRatePercent    float64 `json:"insurance_rate_percent" toml:"insurance_rate_percent"`
	MaintenanceRatePercent  float64 `json:"maintenance_rate_percent" toml:"maintenance_rate_percent"`
}

// DefaultSimulation returns the market assumptions used when none are given.
func DefaultSimulation() Simulation {
	return Simulation{
		InitialCapital:          50000,
		TimeHorizonMonths:       36,
		AppreciationRatePercent: 3,
		RentGrowthRatePercent:   2,
		VacancyRatePercent:      8,
		ManagementRatePercent:   8,
		PropertyTaxRatePercent:  0.8,
		InsuranceRatePercent:    0.4,
		MaintenanceRatePercent:  1,
	}
}

// Horizon returns the time horizon clamped to [0, MaxHorizonMonths].
func (s Simulation) Horizon() int {
	switch {
	case s.TimeHorizonMonths < 0:
		return 0
	case s.TimeHorizonMonths > MaxHorizonMonths:
		return MaxHorizonMonths
	}
	return s.TimeHorizonMonths
}

// Plan is the on-disk form of a simulation and its transaction timeline.
type Plan struct {
	Simulation   Simulation    `json:"simulation"`
	Transactions []Transaction `json:"transactions"`
}
