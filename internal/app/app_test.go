package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/realvest/internal/common"
	"github.com/bobmcallan/realvest/internal/interfaces/mocks"
	"github.com/bobmcallan/realvest/internal/models"
	"github.com/bobmcallan/realvest/internal/services/strategy"
)

func clearKeys(t *testing.T) {
	t.Helper()
	for _, k := range []string{"REALVEST_LISTINGS_API_KEY", "REALVEST_GEMINI_API_KEY", "GEMINI_API_KEY", "REALVEST_INITIAL_CAPITAL", "REALVEST_HORIZON_MONTHS"} {
		t.Setenv(k, "")
	}
}

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	a, err := NewAppWithConfig(common.NewDefaultConfig(), common.NewSilentLogger(), opts...)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func purchase(t *testing.T, month int, id string, price float64) models.Transaction {
	t.Helper()
	tx, err := models.NewTransaction("", month, models.PurchaseProperty{
		PropertyID:          id,
		PurchasePrice:       price,
		DownPaymentPercent:  20,
		MonthlyRent:         1100,
		InterestRatePercent: 7,
		TermYears:           30,
	})
	require.NoError(t, err)
	return tx
}

func TestNewApp_FromConfigFile(t *testing.T) {
	clearKeys(t)
	path := filepath.Join(t.TempDir(), "realvest.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[simulation]
initial_capital = 80000
time_horizon_months = 48

[logging]
level = "error"
outputs = ["stderr"]
`), 0o644))

	a, err := NewApp(path)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 80000.0, a.Config.Simulation.InitialCapital)
	assert.Equal(t, 48, a.Config.Simulation.TimeHorizonMonths)
	assert.NotNil(t, a.Portfolio)
	assert.NotNil(t, a.GoalParser)
	assert.NotNil(t, a.Strategies)
	assert.Nil(t, a.ListingsClient, "no API key configured")
	assert.Nil(t, a.Matcher)
	assert.Nil(t, a.GeminiClient)
	assert.False(t, a.StartupTime.IsZero())
}

func TestNewApp_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "realvest.toml")
	require.NoError(t, os.WriteFile(path, []byte("[simulation\n"), 0o644))

	_, err := NewApp(path)
	assert.Error(t, err)
}

func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "a.toml", ResolveConfigPath("a.toml"))

	t.Setenv("REALVEST_CONFIG", "/etc/realvest.toml")
	assert.Equal(t, "/etc/realvest.toml", ResolveConfigPath(""))
}

func TestPlanFromGoal_RentalLadder(t *testing.T) {
	a := newTestApp(t)

	plan, err := a.PlanFromGoal(context.Background(),
		"I want to generate $10K/month within 36 months. I have $50K to start and can save $2K/month.")
	require.NoError(t, err)

	assert.Equal(t, strategy.SourceRentalLadder, plan.Strategy.Source)
	assert.True(t, plan.Confidence.High)
	require.NotNil(t, plan.State)
	assert.Len(t, plan.State.Timeline, 37)
	assert.Empty(t, plan.State.Skipped)
	assert.Equal(t, 50000.0, plan.State.Simulation.InitialCapital)
	assert.Equal(t, 2000.0, plan.State.Simulation.MonthlyContribution)
	assert.NotEmpty(t, plan.Warnings, "a 36 month ladder cannot reach 10k/month")
	assert.Equal(t, len(plan.State.Transactions), len(a.Portfolio.Transactions()))
}

func TestPlanFromGoal_AIFailureFallsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	gem := mocks.NewMockGeminiClient(ctrl)
	gem.EXPECT().GenerateJSON(gomock.Any(), gomock.Any()).Return("", errors.New("quota exceeded"))

	a := newTestApp(t, WithGeminiClient(gem))
	plan, err := a.PlanFromGoal(context.Background(), "Generate $8K/mo in 24 months using BRRR strategy. Have $75K cash.")
	require.NoError(t, err)
	assert.Equal(t, strategy.SourceRentalLadder, plan.Strategy.Source)
}

func TestPlanFromGoal_EmptyText(t *testing.T) {
	a := newTestApp(t)
	_, err := a.PlanFromGoal(context.Background(), "   ")
	assert.Error(t, err)
	assert.Nil(t, a.Portfolio.CurrentState())
}

func TestLoadPlan_InvalidLeavesPortfolioUnchanged(t *testing.T) {
	a := newTestApp(t)
	good := &models.Plan{Simulation: models.DefaultSimulation(), Transactions: []models.Transaction{purchase(t, 0, "Rental 1", 60000)}}
	require.NoError(t, a.LoadPlan(good))

	bad := purchase(t, 1, "Rental 2", 60000)
	p := bad.Payload.(models.PurchaseProperty)
	p.PurchasePrice = -1
	bad.Payload = p

	err := a.LoadPlan(&models.Plan{Simulation: models.DefaultSimulation(), Transactions: []models.Transaction{bad}})
	assert.Error(t, err)
	require.Len(t, a.Portfolio.Transactions(), 1)
	assert.Equal(t, "Rental 1", a.Portfolio.Transactions()[0].PropertyRef())

	assert.Error(t, a.LoadPlan(nil))
}

func TestPlanFile_RoundTrip(t *testing.T) {
	a := newTestApp(t)
	sim := models.DefaultSimulation()
	sim.TimeHorizonMonths = 12
	require.NoError(t, a.LoadPlan(&models.Plan{
		Simulation:   sim,
		Transactions: []models.Transaction{purchase(t, 0, "Rental 1", 60000), purchase(t, 6, "Rental 2", 62000)},
	}))

	path := filepath.Join(t.TempDir(), "plans", "ladder.json")
	require.NoError(t, a.SavePlanFile(path))

	b := newTestApp(t)
	require.NoError(t, b.LoadPlanFile(path))
	assert.Equal(t, a.Portfolio.Transactions(), b.Portfolio.Transactions())
	assert.Equal(t, a.Portfolio.CurrentState().Final(), b.Portfolio.CurrentState().Final())
}

func TestLoadPlanFile_FillsMissingSimulationFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"simulation":{"initial_capital":20000,"time_horizon_months":6},"transactions":[]}`), 0o644))

	a := newTestApp(t)
	require.NoError(t, a.LoadPlanFile(path))

	sim := a.Portfolio.Simulation()
	require.NotNil(t, sim)
	assert.Equal(t, 20000.0, sim.InitialCapital)
	assert.Equal(t, 6, sim.TimeHorizonMonths)
	assert.Equal(t, models.DefaultSimulation().VacancyRatePercent, sim.VacancyRatePercent)
	assert.Len(t, a.Portfolio.CurrentState().Timeline, 7)
}

func TestSavePlanFile_NothingLoaded(t *testing.T) {
	a := newTestApp(t)
	assert.Error(t, a.SavePlanFile(filepath.Join(t.TempDir(), "plan.json")))
}

func TestFindListings(t *testing.T) {
	ctrl := gomock.NewController(t)
	search := mocks.NewMockListingSearchClient(ctrl)
	search.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.Listing{
		{ID: "2001", Address: "12 Elm St", Price: 64000, Bedrooms: 3, Bathrooms: 1, LivingArea: 1100},
	}, nil).AnyTimes()

	a := newTestApp(t, WithListingsClient(search))
	require.NotNil(t, a.Matcher)
	require.NoError(t, a.LoadPlan(&models.Plan{
		Simulation:   models.DefaultSimulation(),
		Transactions: []models.Transaction{purchase(t, 0, "Rental 1", 65000)},
	}))

	result, err := a.FindListings(context.Background(), models.MatchAssumptions{})
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)

	txs := a.Portfolio.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, "12 Elm St", txs[0].PropertyRef())
	p := txs[0].Payload.(models.PurchaseProperty)
	assert.Equal(t, 64000.0, p.PurchasePrice)
	assert.Equal(t, "2001", p.ListingID)
}

func TestFindListings_Unavailable(t *testing.T) {
	a := newTestApp(t)
	_, err := a.FindListings(context.Background(), models.MatchAssumptions{})
	assert.ErrorIs(t, err, ErrListingsUnavailable)
}
