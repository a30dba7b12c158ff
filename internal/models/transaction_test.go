package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPurchase() PurchaseProperty {
	return PurchaseProperty{
		PropertyID:          "Property 1",
		PurchasePrice:       100000,
		DownPaymentPercent:  20,
		MonthlyRent:         1200,
		InterestRatePercent: 6,
		TermYears:           30,
	}
}

func TestNewTransaction_AssignsID(t *testing.T) {
	tx, err := NewTransaction("", 0, validPurchase())
	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, KindPurchaseProperty, tx.Kind())

	tx2, err := NewTransaction("", 0, Wait{})
	require.NoError(t, err)
	assert.NotEqual(t, tx.ID, tx2.ID)
}

func TestNewTransaction_KeepsGivenID(t *testing.T) {
	tx, err := NewTransaction("t1", 3, Wait{})
	require.NoError(t, err)
	assert.Equal(t, "t1", tx.ID)
	assert.Equal(t, 3, tx.Month)
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		month   int
		payload Payload
		wantErr error
	}{
		{"nil payload", 0, nil, ErrUnknownKind},
		{"negative month", -1, Wait{}, ErrInvalidTransaction},
		{"zero price", 0, func() Payload { p := validPurchase(); p.PurchasePrice = 0; return p }(), ErrInvalidTransaction},
		{"down payment above 100", 0, func() Payload { p := validPurchase(); p.DownPaymentPercent = 120; return p }(), ErrInvalidTransaction},
		{"negative rent", 0, func() Payload { p := validPurchase(); p.MonthlyRent = -1; return p }(), ErrInvalidTransaction},
		{"negative rehab months", 0, func() Payload { p := validPurchase(); p.RehabMonths = -2; return p }(), ErrInvalidTransaction},
		{"financed without term", 0, func() Payload { p := validPurchase(); p.TermYears = 0; return p }(), ErrInvalidTransaction},
		{"missing property id", 0, func() Payload { p := validPurchase(); p.PropertyID = " "; return p }(), ErrInvalidTransaction},
		{"sale without property", 0, SellProperty{SellingCostPercent: 6}, ErrInvalidTransaction},
		{"sale negative price", 0, SellProperty{PropertyID: "a", SalePrice: -5}, ErrInvalidTransaction},
		{"loan zero amount", 0, OriginateLoan{TermYears: 30}, ErrInvalidTransaction},
		{"loan zero term", 0, OriginateLoan{LoanAmount: 1000}, ErrInvalidTransaction},
		{"refinance without property", 0, OriginateLoan{LoanAmount: 1000, TermYears: 30, RefinanceExisting: true}, ErrInvalidTransaction},
		{"valid purchase", 0, validPurchase(), nil},
		{"cash purchase without term", 0, func() Payload { p := validPurchase(); p.DownPaymentPercent = 100; p.TermYears = 0; return p }(), nil},
		{"valid sale", 12, NewSellProperty("a", 0), nil},
		{"valid loan", 1, OriginateLoan{LoanAmount: 1000, TermYears: 5}, nil},
		{"wait", 7, Wait{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Transaction{ID: "x", Month: tt.month, Payload: tt.payload}.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestPurchaseCashFigures(t *testing.T) {
	p := validPurchase()
	p.RehabCost = 5000
	p.ClosingCosts = 3000
	assert.InDelta(t, 20000, p.DownPayment(), 1e-9)
	assert.InDelta(t, 80000, p.LoanAmount(), 1e-9)
	assert.InDelta(t, 28000, p.TotalCashNeeded(), 1e-9)
}

func TestPurchaseRehabPeriod(t *testing.T) {
	p := validPurchase()
	assert.Equal(t, 0, p.RehabPeriod())

	p.RehabCost = 15000
	assert.Equal(t, DefaultRehabMonths, p.RehabPeriod())

	p.RehabMonths = 3
	assert.Equal(t, 3, p.RehabPeriod())
}

func TestNewSellPropertyDefaultsSellingCost(t *testing.T) {
	s := NewSellProperty("a", 150000)
	assert.Equal(t, DefaultSellingCostPercent, s.SellingCostPercent)
}

func TestTransactionJSON(t *testing.T) {
	tx := Transaction{ID: "t1", Month: 4, Payload: validPurchase()}
	data, err := json.Marshal(tx)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"purchase_property"`)

	var got Transaction
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, tx, got)
}

func TestTransactionJSON_SaleDefaultsSellingCost(t *testing.T) {
	var got Transaction
	require.NoError(t, json.Unmarshal([]byte(`{"id":"s","month":10,"kind":"sell_property","payload":{"property_id":"a"}}`), &got))
	sale, ok := got.Payload.(SellProperty)
	require.True(t, ok)
	assert.Equal(t, 6.0, sale.SellingCostPercent)
}

func TestTransactionJSON_UnknownKind(t *testing.T) {
	var got Transaction
	err := json.Unmarshal([]byte(`{"id":"x","month":1,"kind":"flip_house","payload":{}}`), &got)
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestWithPropertyRef(t *testing.T) {
	sale := Transaction{ID: "s", Payload: NewSellProperty("old", 0)}
	assert.Equal(t, "new", sale.WithPropertyRef("new").PropertyRef())
	assert.Equal(t, "old", sale.PropertyRef(), "original must not change")

	unsecured := Transaction{ID: "l", Payload: OriginateLoan{LoanAmount: 1, TermYears: 1}}
	assert.Equal(t, "", unsecured.WithPropertyRef("new").PropertyRef())

	wait := Transaction{ID: "w", Payload: Wait{}}
	assert.Equal(t, wait, wait.WithPropertyRef("new"))
}

func TestTransactionPatchApply(t *testing.T) {
	tx := Transaction{ID: "t", Month: 2, Payload: Wait{}}
	month := 9
	got := TransactionPatch{Month: &month}.Apply(tx)
	assert.Equal(t, 9, got.Month)
	assert.Equal(t, Wait{}, got.Payload)

	got = TransactionPatch{Payload: validPurchase()}.Apply(tx)
	assert.Equal(t, 2, got.Month)
	assert.Equal(t, KindPurchaseProperty, got.Kind())
}

func TestSortTransactionsIsStable(t *testing.T) {
	txs := []Transaction{
		{ID: "c", Month: 5, Payload: Wait{}},
		{ID: "a", Month: 0, Payload: Wait{}},
		{ID: "d", Month: 5, Payload: Wait{}},
		{ID: "b", Month: 0, Payload: Wait{}},
	}
	SortTransactions(txs)
	var ids []string
	for _, tx := range txs {
		ids = append(ids, tx.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
}

func TestSimulationHorizon(t *testing.T) {
	assert.Equal(t, 0, Simulation{TimeHorizonMonths: -4}.Horizon())
	assert.Equal(t, 24, Simulation{TimeHorizonMonths: 24}.Horizon())
	assert.Equal(t, MaxHorizonMonths, Simulation{TimeHorizonMonths: 1000}.Horizon())
}

func TestGoalSimulation(t *testing.T) {
	g := Goal{StartingCapital: 75000, TimeHorizonMonths: 48, MonthlyContributions: 500, TargetMonthlyIncome: 9000}
	sim := g.Simulation(DefaultSimulation())
	assert.Equal(t, 75000.0, sim.InitialCapital)
	assert.Equal(t, 48, sim.TimeHorizonMonths)
	assert.Equal(t, 500.0, sim.MonthlyContribution)
	assert.Equal(t, 3.0, sim.AppreciationRatePercent)
}
