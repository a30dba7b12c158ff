package goal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/realvest/internal/common"
	"github.com/bobmcallan/realvest/internal/models"
)

func TestParse(t *testing.T) {
	p := NewParser(common.NewSilentLogger())

	tests := []struct {
		name       string
		text       string
		income     float64
		horizon    int
		capital    float64
		contrib    float64
		strategies []string
		risk       string
	}{
		{
			name:       "thousands suffix everywhere",
			text:       "I want to generate $10K/month within 36 months. I have $50K to start and can save $2K/month.",
			income:     10000,
			horizon:    36,
			capital:    50000,
			contrib:    2000,
			strategies: []string{},
			risk:       "balanced",
		},
		{
			name:       "years and starting capital",
			text:       "Build a portfolio that produces $5,000 monthly passive income in 2 years with $30K starting capital.",
			income:     5000,
			horizon:    24,
			capital:    30000,
			strategies: []string{},
			risk:       "balanced",
		},
		{
			name:       "aggressive rentals",
			text:       "Need $15K per month rental income within 5 years. Starting with $100K, aggressive approach is fine.",
			income:     15000,
			horizon:    60,
			capital:    100000,
			strategies: []string{"rental", "aggressive"},
			risk:       "aggressive",
		},
		{
			name:       "brrr",
			text:       "Generate $8K/mo in 24 months using BRRR strategy. Have $75K cash.",
			income:     8000,
			horizon:    24,
			capital:    75000,
			strategies: []string{"brrr"},
			risk:       "balanced",
		},
		{
			name:       "clamped",
			text:       "I want $500 a month in 200 months and I have $5K",
			income:     1000,
			horizon:    120,
			capital:    10000,
			strategies: []string{},
			risk:       "balanced",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := p.Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.income, g.TargetMonthlyIncome)
			assert.Equal(t, tt.horizon, g.TimeHorizonMonths)
			assert.Equal(t, tt.capital, g.StartingCapital)
			assert.Equal(t, tt.contrib, g.MonthlyContributions)
			assert.Equal(t, tt.strategies, g.Strategies)
			assert.Equal(t, tt.risk, g.RiskTolerance)
			assert.Equal(t, tt.text, g.Source)
		})
	}
}

func TestParse_Defaults(t *testing.T) {
	p := NewParser(nil)

	g, err := p.Parse("Looking to build some wealth")
	require.NoError(t, err)
	assert.Equal(t, float64(DefaultMonthlyIncome), g.TargetMonthlyIncome)
	assert.Equal(t, DefaultHorizonMonths, g.TimeHorizonMonths)
	assert.Equal(t, float64(DefaultCapital), g.StartingCapital)
	assert.Equal(t, 0.0, g.MonthlyContributions)
	assert.Equal(t, 25, g.RequiredProperties)
	assert.Equal(t, Confidence{}, p.Confidence(g))
}

func TestParse_RequiredProperties(t *testing.T) {
	g, err := NewParser(nil).Parse("Need $15K per month")
	require.NoError(t, err)
	assert.Equal(t, 38, g.RequiredProperties)
}

func TestParse_RentAndExpenses(t *testing.T) {
	p := NewParser(nil)

	tests := []struct {
		name     string
		text     string
		income   float64
		rent     float64
		expenses float64
		cashFlow float64
	}{
		{"rent per unit", "I want $2,000/month income. Rent is $1,300/month per unit.", 2000, 1300, 0, 0},
		{"expenses in", "Generate $3,000/month. Each property has $400 in expenses.", 3000, 0, 400, 0},
		{"rents and expenses", "I need $5,000/month. Rents are $1,500 and expenses are $250 per unit.", 5000, 1500, 250, 1250},
		{"monthly rent", "Target $2,000/month. Monthly rent is $1,250.", 2000, 1250, 0, 0},
		{"operating expenses", "Need $3,000/month. Operating expenses are $300/month.", 3000, 0, 300, 0},
		{"cash flow 850", "Need $3,000/month. Rent is $1,200/month. Expenses are $350/month.", 3000, 1200, 350, 850},
		{"cash flow 400", "Need $3,000/month. Rent is $1,000/month. Expenses are $600/month.", 3000, 1000, 600, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := p.Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.income, g.TargetMonthlyIncome)
			assert.Equal(t, tt.rent, g.RentPerUnit)
			assert.Equal(t, tt.expenses, g.ExpensesPerUnit)
			assert.Equal(t, tt.cashFlow, g.CashFlowPerUnit)
		})
	}
}

func TestParse_PerUnitFiguresAreNotIncomeOrCapital(t *testing.T) {
	g, err := NewParser(nil).Parse("I want $3,000/month income in 12 months. Rent is $1,250 per unit. Expenses are $300/month per unit. Starting with $50K.")
	require.NoError(t, err)
	assert.Equal(t, 3000.0, g.TargetMonthlyIncome)
	assert.Equal(t, 12, g.TimeHorizonMonths)
	assert.Equal(t, 50000.0, g.StartingCapital)
	assert.Equal(t, 0.0, g.MonthlyContributions)
	assert.Equal(t, 1250.0, g.RentPerUnit)
	assert.Equal(t, 300.0, g.ExpensesPerUnit)
	assert.Equal(t, 950.0, g.CashFlowPerUnit)
	assert.Equal(t, 4, g.RequiredProperties, "ceil(3000/950)")
}

func TestParse_CashFromSales(t *testing.T) {
	p := NewParser(nil)

	g, err := p.Parse("Need $4,000/month within 3 years and $100K in cash from sales. I have $60K.")
	require.NoError(t, err)
	assert.Equal(t, 100000.0, g.TargetCashFromSales)
	assert.Equal(t, 60000.0, g.StartingCapital)
	assert.Equal(t, 4000.0, g.TargetMonthlyIncome)

	g, err = p.Parse("Generate $5K/month. Flip proceeds of $40,000 would help.")
	require.NoError(t, err)
	assert.Equal(t, 40000.0, g.TargetCashFromSales)
	assert.Equal(t, 5000.0, g.TargetMonthlyIncome)
}

func TestParse_Empty(t *testing.T) {
	_, err := NewParser(nil).Parse("   ")
	assert.ErrorIs(t, err, ErrEmptyGoal)
}

func TestRiskTolerance(t *testing.T) {
	assert.Equal(t, "aggressive", riskTolerance("I prefer flips"))
	assert.Equal(t, "conservative", riskTolerance("buy and hold rentals"))
	assert.Equal(t, "conservative", riskTolerance("something safe please"))
	assert.Equal(t, "balanced", riskTolerance("a moderate plan"))
}

func TestConfidence(t *testing.T) {
	p := NewParser(nil)

	g, err := p.Parse("Build a portfolio that produces $5,000 monthly passive income in 2 years with $30K starting capital.")
	require.NoError(t, err)
	assert.Equal(t, Confidence{Score: 75, FieldsFound: 3, High: true}, p.Confidence(g))

	g, err = p.Parse("I want to generate $10K/month within 36 months. I have $50K to start and can save $2K/month.")
	require.NoError(t, err)
	assert.Equal(t, Confidence{Score: 15, FieldsFound: 1}, p.Confidence(g))
}

func TestGoalSeedsSimulation(t *testing.T) {
	g, err := NewParser(nil).Parse("Need $15K per month rental income within 5 years. Starting with $100K, contribute $1,500 monthly")
	require.NoError(t, err)

	sim := g.Simulation(models.DefaultSimulation())
	assert.Equal(t, 100000.0, sim.InitialCapital)
	assert.Equal(t, 60, sim.TimeHorizonMonths)
	assert.Equal(t, 1500.0, sim.MonthlyContribution)
	assert.Equal(t, models.DefaultSimulation().AppreciationRatePercent, sim.AppreciationRatePercent)
}
