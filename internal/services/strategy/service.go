// Package strategy turns investment goals into transaction timelines, using
// the AI planner when available and a deterministic rental ladder otherwise.
package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/realvest/internal/common"
	"github.com/bobmcallan/realvest/internal/interfaces"
	"github.com/bobmcallan/realvest/internal/models"
)

// Strategy sources
const (
	SourceGemini       = "gemini"
	SourceRentalLadder = "rental_ladder"
)

// Compile-time interface check
var _ interfaces.StrategyService = (*Service)(nil)

// Service implements StrategyService
type Service struct {
	gemini interfaces.GeminiClient
	base   models.Simulation
	ladder LadderAssumptions
	logger *common.Logger
}

// NewService creates a strategy service. gemini may be nil, in which case
// every goal gets a rental ladder.
func NewService(gemini interfaces.GeminiClient, base models.Simulation, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		gemini: gemini,
		base:   base,
		ladder: DefaultLadderAssumptions(),
		logger: logger,
	}
}

// Generate proposes a strategy for goal. AI failures fall back to the rental
// ladder; only a nil goal or a cancelled context is an error.
func (s *Service) Generate(ctx context.Context, goal *models.Goal) (*models.Strategy, []models.Transaction, error) {
	if goal == nil {
		return nil, nil, errors.New("goal is required")
	}

	if s.gemini != nil {
		strategy, txs, err := s.generateAI(ctx, goal)
		if err == nil {
			s.logger.Info().
				Str("strategy", strategy.Name).
				Int("transactions", len(txs)).
				Msg("AI strategy generated")
			return strategy, txs, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		s.logger.Warn().Err(err).Msg("AI strategy failed, using rental ladder")
	}

	strategy, txs, errs := RentalLadder(goal, goal.Simulation(s.base), s.ladder)
	for _, e := range errs {
		s.logger.Warn().Err(e).Msg("Dropped rental ladder action")
	}
	s.logger.Info().
		Str("strategy", strategy.Name).
		Int("transactions", len(txs)).
		Msg("Rental ladder generated")
	return strategy, txs, nil
}

// aiResponse accepts a flat action list or actions grouped into phases.
type aiResponse struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Actions     []models.ProposedAction `json:"actions"`
	Phases      []struct {
		Actions []models.ProposedAction `json:"actions"`
	} `json:"phases"`
}

func (s *Service) generateAI(ctx context.Context, goal *models.Goal) (*models.Strategy, []models.Transaction, error) {
	text, err := s.gemini.GenerateJSON(ctx, buildPrompt(goal))
	if err != nil {
		return nil, nil, fmt.Errorf("gemini request failed: %w", err)
	}

	resp, err := decodeResponse(text)
	if err != nil {
		return nil, nil, err
	}

	strategy := &models.Strategy{
		Name:        resp.Name,
		Description: resp.Description,
		Source:      SourceGemini,
		Actions:     resp.Actions,
	}
	for _, phase := range resp.Phases {
		strategy.Actions = append(strategy.Actions, phase.Actions...)
	}
	if strategy.Name == "" {
		strategy.Name = "AI strategy"
	}

	txs, errs := ToTransactions(strategy.Actions)
	for _, e := range errs {
		s.logger.Warn().Err(e).Msg("Dropped AI action")
	}
	if len(txs) == 0 {
		return nil, nil, fmt.Errorf("AI strategy has no usable actions (%d rejected)", len(errs))
	}
	return strategy, txs, nil
}

// decodeResponse parses the first JSON object in text. Models sometimes wrap
// the object in prose or code fences.
func decodeResponse(text string) (*aiResponse, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, errors.New("no JSON object in AI response")
	}
	var resp aiResponse
	if err := json.Unmarshal([]byte(text[start:end+1]), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode AI strategy: %w", err)
	}
	return &resp, nil
}

func buildPrompt(goal *models.Goal) string {
	var b strings.Builder
	b.WriteString("You are a real estate investment planner. Propose a month-by-month plan of property transactions.\n\n")
	fmt.Fprintf(&b, "Target net monthly income: $%.0f\n", goal.TargetMonthlyIncome)
	fmt.Fprintf(&b, "Time horizon: %d months\n", goal.TimeHorizonMonths)
	fmt.Fprintf(&b, "Starting capital: $%.0f\n", goal.StartingCapital)
	fmt.Fprintf(&b, "Monthly contributions: $%.0f\n", goal.MonthlyContributions)
	if len(goal.Strategies) > 0 {
		fmt.Fprintf(&b, "Preferred strategies: %s\n", strings.Join(goal.Strategies, ", "))
	}
	fmt.Fprintf(&b, "Risk tolerance: %s\n", goal.RiskTolerance)
	if goal.RentPerUnit > 0 {
		fmt.Fprintf(&b, "Expected rent per unit: $%.0f/month\n", goal.RentPerUnit)
	}
	if goal.ExpensesPerUnit > 0 {
		fmt.Fprintf(&b, "Expected expenses per unit: $%.0f/month\n", goal.ExpensesPerUnit)
	}
	if goal.TargetCashFromSales > 0 {
		fmt.Fprintf(&b, "Cash to raise from property sales: $%.0f\n", goal.TargetCashFromSales)
	}
	if goal.Source != "" {
		fmt.Fprintf(&b, "Investor's own words: %q\n", goal.Source)
	}
	b.WriteString(`
Respond with a single JSON object:
{
  "name": "short strategy name",
  "description": "one paragraph overview",
  "actions": [
    {"month": 0, "action": "buy", "property": "Rental 1",
     "details": {"price": 65000, "down_percent": 20, "rent": 1200, "expenses": 350, "rate": 7, "term": 30, "closing_costs": 1950, "rehab": 0, "rehab_months": 0}},
    {"month": 18, "action": "refinance", "property": "Rental 1", "details": {"amount": 55000, "rate": 6.5, "term": 30}},
    {"month": 30, "action": "sell", "property": "Rental 1", "details": {"price": 0}}
  ]
}
Months are offsets from today starting at 0 and must not exceed the horizon.
Allowed actions: buy, sell, refinance, loan, wait. Property names must be unique per purchase
and every sell or refinance must name a property bought earlier. A sell price of 0 means market value.
A property with a rehab budget earns no rent for rehab_months (default 6) after purchase.
`)
	return b.String()
}
