package interfaces

import (
	"context"

	"github.com/bobmcallan/realvest/internal/models"
)

// Subscriber receives every recomputed portfolio state. A nil state means the
// portfolio was cleared.
type Subscriber func(state *models.PortfolioState) error

// PortfolioStateManager owns a simulation, its transactions and the derived
// month-by-month state.
type PortfolioStateManager interface {
	SetSimulation(sim models.Simulation)
	Simulation() *models.Simulation

	AddTransaction(tx models.Transaction) (models.Transaction, error)
	UpdateTransaction(id string, patch models.TransactionPatch) error
	RemoveTransaction(id string)
	SetTransactions(txs []models.Transaction) error
	Transactions() []models.Transaction

	Subscribe(id string, fn Subscriber)
	Unsubscribe(id string)

	MonthState(month int) *models.MonthSnapshot
	CurrentState() *models.PortfolioState
	Clear()
}

// ListingMatcher binds placeholder purchases in a plan to real listings
type ListingMatcher interface {
	// Reconcile returns a rewritten copy of txs with purchases bound to listings
	Reconcile(ctx context.Context, txs []models.Transaction, assumptions models.MatchAssumptions) (*models.ReconcileResult, error)

	// Summary reports how many purchases are bound to listings
	Summary(txs []models.Transaction) models.MatchSummary
}

// GoalParser extracts an investment goal from free text
type GoalParser interface {
	Parse(text string) (*models.Goal, error)
}

// StrategyService proposes a transaction timeline for a goal
type StrategyService interface {
	Generate(ctx context.Context, goal *models.Goal) (*models.Strategy, []models.Transaction, error)
}
