package strategy

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/realvest/internal/models"
)

// Defaults for detail fields a planner leaves out.
const (
	defaultDownPercent     = 20
	defaultMonthlyExpenses = 350
	defaultRatePercent     = 7
	defaultTermYears       = 30
)

// ToTransactions converts proposed actions into validated transactions.
// Actions that cannot be converted are left out and reported in errs, one
// error per rejected action.
//
// Recognised actions: buy or purchase, sell, refinance or loan, wait or hold.
// Detail keys: price, down_percent, rent, expenses, rate, term,
// closing_costs, rehab, rehab_months, amount and selling_cost_percent.
func ToTransactions(actions []models.ProposedAction) (txs []models.Transaction, errs []error) {
	for i, a := range actions {
		payload, err := toPayload(a)
		if err != nil {
			errs = append(errs, fmt.Errorf("action %d (%s): %w", i, a.Action, err))
			continue
		}
		tx, err := models.NewTransaction("", a.Month, payload)
		if err != nil {
			errs = append(errs, fmt.Errorf("action %d (%s): %w", i, a.Action, err))
			continue
		}
		txs = append(txs, tx)
	}
	models.SortTransactions(txs)
	return txs, errs
}

func toPayload(a models.ProposedAction) (models.Payload, error) {
	d := details(a.Details)
	switch strings.ToLower(strings.TrimSpace(a.Action)) {
	case "buy", "purchase":
		return models.PurchaseProperty{
			PropertyID:          a.Property,
			PurchasePrice:       d.get("price", 0),
			RehabCost:           d.get("rehab", 0),
			RehabMonths:         int(d.get("rehab_months", 0)),
			ClosingCosts:        d.get("closing_costs", 0),
			DownPaymentPercent:  d.get("down_percent", defaultDownPercent),
			MonthlyRent:         d.get("rent", 0),
			MonthlyExpenses:     d.get("expenses", defaultMonthlyExpenses),
			InterestRatePercent: d.get("rate", defaultRatePercent),
			TermYears:           d.get("term", defaultTermYears),
		}, nil
	case "sell":
		return models.SellProperty{
			PropertyID:         a.Property,
			SalePrice:          d.get("price", 0),
			SellingCostPercent: d.get("selling_cost_percent", models.DefaultSellingCostPercent),
		}, nil
	case "refinance", "loan":
		return models.OriginateLoan{
			LoanAmount:          d.get("amount", 0),
			ClosingCosts:        d.get("closing_costs", 0),
			InterestRatePercent: d.get("rate", defaultRatePercent),
			TermYears:           d.get("term", defaultTermYears),
			PropertyID:          a.Property,
			RefinanceExisting:   strings.EqualFold(a.Action, "refinance"),
		}, nil
	case "wait", "hold":
		return models.Wait{}, nil
	}
	return nil, fmt.Errorf("unrecognised action %q: %w", a.Action, models.ErrUnknownKind)
}

type details map[string]float64

func (d details) get(key string, fallback float64) float64 {
	if v, ok := d[key]; ok {
		return v
	}
	return fallback
}
