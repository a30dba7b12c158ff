// Package portfolio owns the simulated portfolio: its transactions, the
// month-by-month projection derived from them, and change notification.
package portfolio

import (
	"fmt"
	"sync"

	"github.com/bobmcallan/realvest/internal/common"
	"github.com/bobmcallan/realvest/internal/interfaces"
	"github.com/bobmcallan/realvest/internal/models"
)

type subscription struct {
	id string
	fn interfaces.Subscriber
}

// StateManager implements PortfolioStateManager. Every mutation triggers a
// full recomputation once a simulation has been set. Published states are
// never modified afterwards and may be shared between subscribers.
type StateManager struct {
	mu           sync.Mutex
	simulation   *models.Simulation
	transactions []models.Transaction
	state        *models.PortfolioState
	subscribers  []subscription
	logger       *common.Logger
}

var _ interfaces.PortfolioStateManager = (*StateManager)(nil)

// NewStateManager creates an empty state manager
func NewStateManager(logger *common.Logger) *StateManager {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &StateManager{logger: logger}
}

// SetSimulation replaces the simulation parameters and recomputes.
func (m *StateManager) SetSimulation(sim models.Simulation) {
	m.mu.Lock()
	m.simulation = &sim
	state, subs := m.recomputeLocked()
	m.mu.Unlock()

	m.notify(state, subs)
}

// Simulation returns a copy of the current simulation, or nil if none is set.
func (m *StateManager) Simulation() *models.Simulation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.simulation == nil {
		return nil
	}
	sim := *m.simulation
	return &sim
}

// AddTransaction validates tx, assigns an ID when it has none, and inserts it
// in month order after any transactions already scheduled for that month.
func (m *StateManager) AddTransaction(tx models.Transaction) (models.Transaction, error) {
	if tx.ID == "" {
		tx.ID = models.NewTransactionID()
	}
	if err := tx.Validate(); err != nil {
		return models.Transaction{}, err
	}

	m.mu.Lock()
	if m.indexOf(tx.ID) >= 0 {
		m.mu.Unlock()
		return models.Transaction{}, fmt.Errorf("transaction %q: %w", tx.ID, models.ErrDuplicateTransaction)
	}
	m.transactions = append(m.transactions, tx)
	models.SortTransactions(m.transactions)
	state, subs := m.recomputeLocked()
	m.mu.Unlock()

	m.notify(state, subs)
	return tx, nil
}

// UpdateTransaction applies patch to the transaction with the given id. An
// unknown id is ignored. If the patched transaction is invalid the list is
// left unchanged and the validation error returned.
func (m *StateManager) UpdateTransaction(id string, patch models.TransactionPatch) error {
	m.mu.Lock()
	i := m.indexOf(id)
	if i < 0 {
		m.mu.Unlock()
		m.logger.Debug().Str("transaction", id).Msg("Update of unknown transaction ignored")
		return nil
	}
	updated := patch.Apply(m.transactions[i])
	if err := updated.Validate(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.transactions[i] = updated
	models.SortTransactions(m.transactions)
	state, subs := m.recomputeLocked()
	m.mu.Unlock()

	m.notify(state, subs)
	return nil
}

// RemoveTransaction deletes the transaction with the given id, if present.
func (m *StateManager) RemoveTransaction(id string) {
	m.mu.Lock()
	i := m.indexOf(id)
	if i < 0 {
		m.mu.Unlock()
		return
	}
	m.transactions = append(m.transactions[:i:i], m.transactions[i+1:]...)
	state, subs := m.recomputeLocked()
	m.mu.Unlock()

	m.notify(state, subs)
}

// SetTransactions replaces the whole list. The list is validated as a unit:
// on error nothing changes.
func (m *StateManager) SetTransactions(txs []models.Transaction) error {
	list := make([]models.Transaction, len(txs))
	seen := make(map[string]bool, len(txs))
	for i, tx := range txs {
		if tx.ID == "" {
			tx.ID = models.NewTransactionID()
		}
		if err := tx.Validate(); err != nil {
			return err
		}
		if seen[tx.ID] {
			return fmt.Errorf("transaction %q: %w", tx.ID, models.ErrDuplicateTransaction)
		}
		seen[tx.ID] = true
		list[i] = tx
	}
	models.SortTransactions(list)

	m.mu.Lock()
	m.transactions = list
	state, subs := m.recomputeLocked()
	m.mu.Unlock()

	m.notify(state, subs)
	return nil
}

// Transactions returns a copy of the transaction list in month order.
func (m *StateManager) Transactions() []models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Transaction(nil), m.transactions...)
}

// Subscribe registers fn under id and calls it immediately when a state
// exists. Subscribing an existing id replaces its callback in place.
func (m *StateManager) Subscribe(id string, fn interfaces.Subscriber) {
	m.mu.Lock()
	replaced := false
	for i := range m.subscribers {
		if m.subscribers[i].id == id {
			m.subscribers[i].fn = fn
			replaced = true
			break
		}
	}
	if !replaced {
		m.subscribers = append(m.subscribers, subscription{id: id, fn: fn})
	}
	state := m.state
	m.mu.Unlock()

	if state != nil {
		m.call(subscription{id: id, fn: fn}, state)
	}
}

// Unsubscribe removes the subscriber registered under id.
func (m *StateManager) Unsubscribe(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.subscribers {
		if m.subscribers[i].id == id {
			m.subscribers = append(m.subscribers[:i:i], m.subscribers[i+1:]...)
			return
		}
	}
}

// MonthState returns the snapshot for month, or nil when no state exists or
// month is outside [0, horizon].
func (m *StateManager) MonthState(month int) *models.MonthSnapshot {
	m.mu.Lock()
	state := m.state
	m.mu.Unlock()

	if state == nil || month < 0 || month >= len(state.Timeline) {
		return nil
	}
	snap := state.Timeline[month]
	return &snap
}

// CurrentState returns the latest projection, or nil before a simulation is set.
func (m *StateManager) CurrentState() *models.PortfolioState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Clear drops the simulation, transactions and state, then notifies every
// subscriber with a nil state.
func (m *StateManager) Clear() {
	m.mu.Lock()
	m.simulation = nil
	m.transactions = nil
	m.state = nil
	subs := append([]subscription(nil), m.subscribers...)
	m.mu.Unlock()

	m.logger.Debug().Msg("Portfolio cleared")
	m.notifyAll(nil, subs)
}

// recomputeLocked rebuilds the state and returns it with a snapshot of the
// subscriber list. It returns a nil state when no simulation is set.
// Callers must hold m.mu.
func (m *StateManager) recomputeLocked() (*models.PortfolioState, []subscription) {
	if m.simulation == nil {
		return nil, nil
	}
	m.state = Recompute(*m.simulation, m.transactions, m.logger)
	return m.state, append([]subscription(nil), m.subscribers...)
}

func (m *StateManager) indexOf(id string) int {
	for i := range m.transactions {
		if m.transactions[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *StateManager) notify(state *models.PortfolioState, subs []subscription) {
	if state == nil {
		return
	}
	m.notifyAll(state, subs)
}

func (m *StateManager) notifyAll(state *models.PortfolioState, subs []subscription) {
	for _, s := range subs {
		m.call(s, state)
	}
}

// call invokes one subscriber. Errors and panics are logged and do not stop
// the remaining subscribers.
func (m *StateManager) call(s subscription, state *models.PortfolioState) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().
				Str("subscriber", s.id).
				Str("panic", fmt.Sprint(r)).
				Msg("Subscriber panicked")
		}
	}()
	if err := s.fn(state); err != nil {
		m.logger.Warn().Err(err).Str("subscriber", s.id).Msg("Subscriber failed")
	}
}
