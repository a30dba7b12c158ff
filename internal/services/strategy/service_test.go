package strategy

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/realvest/internal/common"
	"github.com/bobmcallan/realvest/internal/interfaces/mocks"
	"github.com/bobmcallan/realvest/internal/models"
)

const aiPlan = "Here is your plan:\n```json\n" + `{
  "name": "BRRR into rentals",
  "description": "Buy, rehab, refinance, repeat.",
  "phases": [
    {"actions": [
      {"month": 0, "action": "buy", "property": "Rental 1", "details": {"price": 70000, "rehab": 15000, "rent": 1300}},
      {"month": 8, "action": "refinance", "property": "Rental 1", "details": {"amount": 60000}}
    ]},
    {"actions": [
      {"month": 9, "action": "teleport", "property": "Rental 1"},
      {"month": 10, "action": "buy", "property": "Rental 2", "details": {"price": 65000, "rent": 1150}}
    ]}
  ]
}` + "\n```"

func testGoal() *models.Goal {
	return &models.Goal{
		TargetMonthlyIncome:  5000,
		TimeHorizonMonths:    24,
		StartingCapital:      60000,
		MonthlyContributions: 1000,
		Strategies:           []string{"brrr"},
		RiskTolerance:        "balanced",
		Source:               "Generate $5K/mo in 24 months using BRRR",
	}
}

func newTestService(t *testing.T) (*Service, *mocks.MockGeminiClient) {
	t.Helper()
	ctrl := gomock.NewController(t)
	gemini := mocks.NewMockGeminiClient(ctrl)
	return NewService(gemini, models.DefaultSimulation(), common.NewSilentLogger()), gemini
}

func TestGenerate_UsesAIPlan(t *testing.T) {
	svc, gemini := newTestService(t)
	gemini.EXPECT().GenerateJSON(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, prompt string) (string, error) {
			assert.Contains(t, prompt, "Target net monthly income: $5000")
			assert.Contains(t, prompt, "Time horizon: 24 months")
			assert.Contains(t, prompt, "Preferred strategies: brrr")
			return aiPlan, nil
		})

	strategy, txs, err := svc.Generate(context.Background(), testGoal())
	require.NoError(t, err)
	assert.Equal(t, SourceGemini, strategy.Source)
	assert.Equal(t, "BRRR into rentals", strategy.Name)
	assert.Len(t, strategy.Actions, 4)

	require.Len(t, txs, 3, "the unknown action is dropped")
	assert.Equal(t, models.KindPurchaseProperty, txs[0].Kind())
	assert.Equal(t, models.KindOriginateLoan, txs[1].Kind())
	assert.Equal(t, "Rental 2", txs[2].PropertyRef())

	p := txs[0].Payload.(models.PurchaseProperty)
	assert.Equal(t, 15000.0, p.RehabCost)
	assert.Equal(t, 20.0, p.DownPaymentPercent)
}

func TestGenerate_FallsBackOnAIError(t *testing.T) {
	svc, gemini := newTestService(t)
	gemini.EXPECT().GenerateJSON(gomock.Any(), gomock.Any()).Return("", errors.New("quota exceeded"))

	strategy, txs, err := svc.Generate(context.Background(), testGoal())
	require.NoError(t, err)
	assert.Equal(t, SourceRentalLadder, strategy.Source)
	assert.NotEmpty(t, txs)
}

func TestGenerate_FallsBackOnUnusableResponse(t *testing.T) {
	responses := map[string]string{
		"no json":        "I cannot help with that.",
		"broken json":    `{"name": "x", "actions": [`,
		"no valid steps": `{"name": "x", "actions": [{"month": 0, "action": "buy", "property": "Rental 1"}]}`,
	}
	for name, body := range responses {
		t.Run(name, func(t *testing.T) {
			svc, gemini := newTestService(t)
			gemini.EXPECT().GenerateJSON(gomock.Any(), gomock.Any()).Return(body, nil)

			strategy, _, err := svc.Generate(context.Background(), testGoal())
			require.NoError(t, err)
			assert.Equal(t, SourceRentalLadder, strategy.Source)
		})
	}
}

func TestGenerate_WithoutAI(t *testing.T) {
	svc := NewService(nil, models.DefaultSimulation(), nil)

	strategy, txs, err := svc.Generate(context.Background(), testGoal())
	require.NoError(t, err)
	assert.Equal(t, SourceRentalLadder, strategy.Source)
	assert.Equal(t, 0, txs[0].Month)
}

func TestGenerate_LogsDroppedLadderActions(t *testing.T) {
	var buf bytes.Buffer
	svc := NewService(nil, models.DefaultSimulation(), common.NewLoggerWithOutput("warn", &buf))
	svc.ladder.MonthlyExpenses = -1

	_, _, err := svc.Generate(context.Background(), testGoal())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Dropped rental ladder action")
	assert.Contains(t, buf.String(), "monthly_expenses")
}

func TestBuildPrompt_StatedFigures(t *testing.T) {
	goal := testGoal()
	goal.RentPerUnit = 1250
	goal.ExpensesPerUnit = 300
	goal.TargetCashFromSales = 100000

	prompt := buildPrompt(goal)
	assert.Contains(t, prompt, "Expected rent per unit: $1250/month")
	assert.Contains(t, prompt, "Expected expenses per unit: $300/month")
	assert.Contains(t, prompt, "Cash to raise from property sales: $100000")
	assert.NotContains(t, buildPrompt(testGoal()), "per unit")
}

func TestGenerate_CancelledContext(t *testing.T) {
	svc, gemini := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gemini.EXPECT().GenerateJSON(gomock.Any(), gomock.Any()).Return("", context.Canceled)

	_, _, err := svc.Generate(ctx, testGoal())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_NilGoal(t *testing.T) {
	svc := NewService(nil, models.DefaultSimulation(), nil)
	_, _, err := svc.Generate(context.Background(), nil)
	assert.Error(t, err)
}
