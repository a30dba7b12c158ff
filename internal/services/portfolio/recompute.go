package portfolio

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/realvest/internal/common"
	"github.com/bobmcallan/realvest/internal/finance"
	"github.com/bobmcallan/realvest/internal/models"
)

// holding is a property in the active set during a recomputation.
type holding struct {
	PropertyID    string
	Address       string
	PurchaseMonth int
	PurchasePrice float64
	RehabCost     float64
	RehabMonths   int
	BaseRent      float64
	FixedExpenses float64
	DownPayment   float64
	CashInvested  float64
}

// owned returns the months since purchase.
func (h *holding) owned(month int) int {
	return month - h.PurchaseMonth
}

// inRehab reports whether month falls in the rehab period.
func (h *holding) inRehab(month int) bool {
	return h.RehabMonths > 0 && h.owned(month) <= h.RehabMonths
}

// loan is an outstanding debt during a recomputation. Mortgages are created
// by purchases; other loans by OriginateLoan transactions.
type loan struct {
	ID          string
	PropertyID  string
	Origination int
	Amount      float64
	Payment     float64
	RatePercent float64
	TermMonths  int
	Mortgage    bool
}

func (l *loan) balance(month int) float64 {
	return finance.RemainingBalance(l.Amount, l.Payment, l.RatePercent, month-l.Origination)
}

// inService reports whether a payment falls due in month.
func (l *loan) inService(month int) bool {
	age := month - l.Origination
	return age >= 1 && age <= l.TermMonths
}

// ledger is the mutable state of one recomputation pass.
type ledger struct {
	sim      models.Simulation
	rates    finance.ExpenseRates
	cash     decimal.Decimal
	invested decimal.Decimal
	rent     decimal.Decimal // accumulated gross rent

	holdings []*holding
	loans    []*loan

	skipped []models.SkippedTransaction
	logger  *common.Logger
}

// Recompute projects sim and txs month by month, from month 0 to the clamped
// horizon inclusive. txs must already be sorted by month.
//
// Each month first collects rent and pays operating costs and debt service
// for holdings and loans that existed before the month, credits the monthly
// contribution, then applies that month's transactions in list order. A
// property therefore produces cash flow from the month after its purchase,
// or after its rehab period, up to the month before it is sold. Debt service
// is still paid in the sale month; the payoff is the balance after it.
func Recompute(sim models.Simulation, txs []models.Transaction, logger *common.Logger) *models.PortfolioState {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	horizon := sim.Horizon()

	l := &ledger{
		sim: sim,
		rates: finance.ExpenseRates{
			PropertyTaxPercent: sim.PropertyTaxRatePercent,
			InsurancePercent:   sim.InsuranceRatePercent,
			MaintenancePercent: sim.MaintenanceRatePercent,
			VacancyPercent:     sim.VacancyRatePercent,
			ManagementPercent:  sim.ManagementRatePercent,
		},
		cash:     common.Cents(sim.InitialCapital),
		invested: common.Cents(sim.InitialCapital),
		logger:   logger,
	}

	byMonth := make(map[int][]models.Transaction)
	var beyond []models.Transaction
	for _, tx := range txs {
		if tx.Month > horizon {
			beyond = append(beyond, tx)
			continue
		}
		byMonth[tx.Month] = append(byMonth[tx.Month], tx)
	}

	timeline := make([]models.MonthSnapshot, 0, horizon+1)
	for m := 0; m <= horizon; m++ {
		income, expenses := l.operate(m, l.selling(byMonth[m]))
		net := income.Sub(expenses)
		l.cash = l.cash.Add(net)
		l.rent = l.rent.Add(income)

		contribution := decimal.Zero
		if m >= 1 {
			contribution = common.Cents(sim.MonthlyContribution)
		}
		l.cash = l.cash.Add(contribution)
		l.invested = l.invested.Add(contribution)

		delta := decimal.Zero
		applied := []string{}
		for _, tx := range byMonth[m] {
			d, ok := l.apply(m, tx)
			if !ok {
				continue
			}
			delta = delta.Add(d)
			l.cash = l.cash.Add(d)
			applied = append(applied, tx.ID)
		}

		snap := l.snapshot(m)
		snap.MonthlyIncome = income.InexactFloat64()
		snap.MonthlyExpenses = expenses.InexactFloat64()
		snap.NetCashFlow = net.InexactFloat64()
		snap.Contribution = contribution.InexactFloat64()
		snap.TransactionCashDelta = delta.InexactFloat64()
		snap.AppliedTransactions = applied
		timeline = append(timeline, snap)
	}

	for _, tx := range beyond {
		l.skip(tx, models.SkipBeyondHorizon, fmt.Sprintf("month %d is after the %d-month horizon", tx.Month, horizon))
	}

	state := &models.PortfolioState{
		Simulation:   sim,
		Transactions: append([]models.Transaction(nil), txs...),
		Timeline:     timeline,
		Skipped:      l.skipped,
	}
	if state.Skipped == nil {
		state.Skipped = []models.SkippedTransaction{}
	}

	final := state.Final()
	logger.Debug().
		Int("months", len(timeline)).
		Int("transactions", len(txs)).
		Int("skipped", len(state.Skipped)).
		Float64("final_cash", final.CashReserves).
		Float64("final_equity", final.TotalEquity).
		Msg("Portfolio recomputed")

	return state
}

// selling returns the active properties that txs sell.
func (l *ledger) selling(txs []models.Transaction) map[string]bool {
	out := map[string]bool{}
	for _, tx := range txs {
		if s, ok := tx.Payload.(models.SellProperty); ok && l.findHolding(s.PropertyID) != nil {
			out[s.PropertyID] = true
		}
	}
	return out
}

// operate returns the month's gross rent and total expenses, each rounded to
// the cent. Holdings in sold are not operated; their loans are still paid.
func (l *ledger) operate(month int, sold map[string]bool) (decimal.Decimal, decimal.Decimal) {
	var income, expenses float64
	for _, h := range l.holdings {
		if month <= h.PurchaseMonth || sold[h.PropertyID] || h.inRehab(month) {
			continue
		}
		rent := l.rentAt(h, month)
		rates := l.rates
		rates.FixedMonthly = h.FixedExpenses
		income += rent
		expenses += finance.OperatingExpenses(l.valueAt(h, month), rent, rates).Total
	}
	for _, ln := range l.loans {
		if ln.inService(month) {
			expenses += ln.Payment
		}
	}
	return common.Cents(income), common.Cents(expenses)
}

// valueAt climbs linearly from the purchase price to the after-repair value
// over the rehab period, then appreciates from there.
func (l *ledger) valueAt(h *holding, month int) float64 {
	owned := h.owned(month)
	if h.inRehab(month) {
		return h.PurchasePrice + h.RehabCost*float64(owned)/float64(h.RehabMonths)
	}
	years := float64(owned-h.RehabMonths) / 12
	return finance.FutureValue(h.PurchasePrice+h.RehabCost, l.sim.AppreciationRatePercent, years)
}

// rentAt is zero during rehab and grows from the end of it.
func (l *ledger) rentAt(h *holding, month int) float64 {
	if h.inRehab(month) {
		return 0
	}
	years := float64(h.owned(month)-h.RehabMonths) / 12
	return finance.FutureValue(h.BaseRent, l.sim.RentGrowthRatePercent, years)
}

// apply executes one transaction and returns its cash delta. ok is false when
// the transaction was skipped.
func (l *ledger) apply(month int, tx models.Transaction) (decimal.Decimal, bool) {
	switch p := tx.Payload.(type) {
	case models.PurchaseProperty:
		return l.purchase(month, tx, p)
	case models.SellProperty:
		return l.sell(month, tx, p)
	case models.OriginateLoan:
		return l.originate(month, tx, p)
	default: // models.Wait
		return decimal.Zero, true
	}
}

func (l *ledger) purchase(month int, tx models.Transaction, p models.PurchaseProperty) (decimal.Decimal, bool) {
	if l.findHolding(p.PropertyID) != nil {
		l.skip(tx, models.SkipDuplicateProperty, fmt.Sprintf("%q is already owned", p.PropertyID))
		return decimal.Zero, false
	}
	needed := common.Cents(p.TotalCashNeeded())
	if l.cash.LessThan(needed) {
		l.skip(tx, models.SkipInsufficientFunds,
			fmt.Sprintf("needs %s, has %s", common.FormatUSD(needed.InexactFloat64()), common.FormatUSD(l.cash.InexactFloat64())))
		return decimal.Zero, false
	}

	l.holdings = append(l.holdings, &holding{
		PropertyID:    p.PropertyID,
		Address:       p.Address,
		PurchaseMonth: month,
		PurchasePrice: p.PurchasePrice,
		RehabCost:     p.RehabCost,
		RehabMonths:   p.RehabPeriod(),
		BaseRent:      p.MonthlyRent,
		FixedExpenses: p.MonthlyExpenses,
		DownPayment:   common.RoundCents(p.DownPayment()),
		CashInvested:  needed.InexactFloat64(),
	})
	if amount := p.LoanAmount(); amount > 0 {
		l.loans = append(l.loans, &loan{
			ID:          tx.ID,
			PropertyID:  p.PropertyID,
			Origination: month,
			Amount:      amount,
			Payment:     finance.MonthlyPayment(amount, p.InterestRatePercent, p.TermYears),
			RatePercent: p.InterestRatePercent,
			TermMonths:  int(p.TermYears*12 + 0.5),
			Mortgage:    true,
		})
	}
	return needed.Neg(), true
}

func (l *ledger) sell(month int, tx models.Transaction, s models.SellProperty) (decimal.Decimal, bool) {
	h := l.findHolding(s.PropertyID)
	if h == nil {
		l.skip(tx, models.SkipPropertyNotFound, fmt.Sprintf("%q is not an active property", s.PropertyID))
		return decimal.Zero, false
	}

	price := s.SalePrice
	if price == 0 {
		price = l.valueAt(h, month)
	}
	proceeds := common.Cents(price * (1 - s.SellingCostPercent/100))

	kept := l.loans[:0]
	for _, ln := range l.loans {
		if ln.PropertyID == s.PropertyID {
			proceeds = proceeds.Sub(common.Cents(ln.balance(month)))
			continue
		}
		kept = append(kept, ln)
	}
	l.loans = kept
	l.removeHolding(s.PropertyID)
	return proceeds, true
}

func (l *ledger) originate(month int, tx models.Transaction, o models.OriginateLoan) (decimal.Decimal, bool) {
	if o.PropertyID != "" && l.findHolding(o.PropertyID) == nil {
		l.skip(tx, models.SkipPropertyNotFound, fmt.Sprintf("%q is not an active property", o.PropertyID))
		return decimal.Zero, false
	}

	delta := common.Cents(o.LoanAmount).Sub(common.Cents(o.ClosingCosts))
	var payoff *loan
	if o.RefinanceExisting {
		for _, ln := range l.loans {
			if ln.Mortgage && ln.PropertyID == o.PropertyID {
				payoff = ln
				delta = delta.Sub(common.Cents(ln.balance(month)))
				break
			}
		}
	}
	if l.cash.Add(delta).IsNegative() {
		l.skip(tx, models.SkipInsufficientFunds, "loan proceeds do not cover closing costs and payoff")
		return decimal.Zero, false
	}

	if payoff != nil {
		l.removeLoan(payoff)
	}
	l.loans = append(l.loans, &loan{
		ID:          tx.ID,
		PropertyID:  o.PropertyID,
		Origination: month,
		Amount:      o.LoanAmount,
		Payment:     finance.MonthlyPayment(o.LoanAmount, o.InterestRatePercent, o.TermYears),
		RatePercent: o.InterestRatePercent,
		TermMonths:  int(o.TermYears*12 + 0.5),
		Mortgage:    o.RefinanceExisting,
	})
	return delta, true
}

func (l *ledger) snapshot(month int) models.MonthSnapshot {
	properties := make([]models.PropertySnapshot, 0, len(l.holdings))
	value := decimal.Zero
	for _, h := range l.holdings {
		v := common.Cents(l.valueAt(h, month))
		value = value.Add(v)

		var mortgage, payment float64
		for _, ln := range l.loans {
			if ln.Mortgage && ln.PropertyID == h.PropertyID {
				mortgage = common.RoundCents(ln.balance(month))
				payment = common.RoundCents(ln.Payment)
			}
		}
		properties = append(properties, models.PropertySnapshot{
			PropertyID:      h.PropertyID,
			Address:         h.Address,
			PurchaseMonth:   h.PurchaseMonth,
			PurchasePrice:   h.PurchasePrice,
			CurrentValue:    v.InexactFloat64(),
			MonthlyRent:     common.RoundCents(l.rentAt(h, month)),
			FixedExpenses:   h.FixedExpenses,
			DownPayment:     h.DownPayment,
			CashInvested:    h.CashInvested,
			MortgageBalance: mortgage,
			MonthlyPayment:  payment,
			Equity:          v.Sub(decimal.NewFromFloat(mortgage)).InexactFloat64(),
			InRehab:         h.inRehab(month),
		})
	}

	loans := make([]models.LoanSnapshot, 0, len(l.loans))
	debt := decimal.Zero
	for _, ln := range l.loans {
		b := common.Cents(ln.balance(month))
		if !b.IsPositive() {
			continue
		}
		debt = debt.Add(b)
		loans = append(loans, models.LoanSnapshot{
			LoanID:           ln.ID,
			PropertyID:       ln.PropertyID,
			OriginationMonth: ln.Origination,
			OriginalAmount:   ln.Amount,
			RatePercent:      ln.RatePercent,
			TermMonths:       ln.TermMonths,
			Balance:          b.InexactFloat64(),
			MonthlyPayment:   common.RoundCents(ln.Payment),
			Mortgage:         ln.Mortgage,
		})
	}

	equity := value.Sub(debt)
	roi := decimal.Zero
	if l.invested.IsPositive() {
		roi = l.cash.Add(equity).Sub(l.invested).Div(l.invested).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return models.MonthSnapshot{
		Month:              month,
		CashReserves:       l.cash.InexactFloat64(),
		TotalDebt:          debt.InexactFloat64(),
		TotalEquity:        equity.InexactFloat64(),
		TotalPropertyValue: value.InexactFloat64(),
		AccumulatedRent:    l.rent.InexactFloat64(),
		ActiveProperties:   properties,
		Loans:              loans,
		ROI:                roi.InexactFloat64(),
	}
}

func (l *ledger) skip(tx models.Transaction, reason models.SkipReason, detail string) {
	l.skipped = append(l.skipped, models.SkippedTransaction{
		TransactionID: tx.ID,
		Month:         tx.Month,
		Kind:          tx.Kind(),
		Reason:        reason,
		Detail:        detail,
	})
	l.logger.Warn().
		Str("transaction", tx.ID).
		Int("month", tx.Month).
		Str("kind", string(tx.Kind())).
		Str("reason", string(reason)).
		Str("detail", detail).
		Msg("Transaction skipped")
}

func (l *ledger) findHolding(id string) *holding {
	for _, h := range l.holdings {
		if h.PropertyID == id {
			return h
		}
	}
	return nil
}

func (l *ledger) removeHolding(id string) {
	kept := l.holdings[:0]
	for _, h := range l.holdings {
		if h.PropertyID != id {
			kept = append(kept, h)
		}
	}
	l.holdings = kept
}

func (l *ledger) removeLoan(target *loan) {
	kept := l.loans[:0]
	for _, ln := range l.loans {
		if ln != target {
			kept = append(kept, ln)
		}
	}
	l.loans = kept
}
