package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Kind identifies the action a transaction performs on the portfolio.
type Kind string

const (
	KindPurchaseProperty Kind = "purchase_property"
	KindSellProperty     Kind = "sell_property"
	KindOriginateLoan    Kind = "originate_loan"
	KindWait             Kind = "wait"
)

// DefaultSellingCostPercent is applied to sales that do not specify their own cost.
const DefaultSellingCostPercent = 6.0

// DefaultRehabMonths is the rehab period of a purchase with a rehab budget
// and no explicit RehabMonths.
const DefaultRehabMonths = 6

var (
	// ErrInvalidTransaction is wrapped by every payload validation failure.
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrUnknownKind is returned for a nil payload or an unrecognised kind string.
	ErrUnknownKind = errors.New("unknown transaction kind")
	// ErrDuplicateTransaction is returned when an ID is already present in a list.
	ErrDuplicateTransaction = errors.New("duplicate transaction id")
)

// Payload is the kind-specific body of a Transaction. The set of payloads is
// closed: only the types in this package implement it.
type Payload interface {
	Kind() Kind
	validate() error
}

// PurchaseProperty buys a property, financing everything above the down payment.
type PurchaseProperty struct {
	PropertyID          string  `json:"property_id"`
	Address             string  `json:"address,omitempty"`
	PurchasePrice       float64 `json:"purchase_price"`
	RehabCost           float64 `json:"rehab_cost,omitempty"`
	RehabMonths         int     `json:"rehab_months,omitempty"` // 0 takes DefaultRehabMonths when RehabCost is set
	ClosingCosts        float64 `json:"closing_costs,omitempty"`
	DownPaymentPercent  float64 `json:"down_payment_percent"`
	MonthlyRent         float64 `json:"monthly_rent"`
	MonthlyExpenses     float64 `json:"monthly_expenses,omitempty"` // fixed, on top of the simulation's ratios
	InterestRatePercent float64 `json:"interest_rate_percent"`
	TermYears           float64 `json:"term_years"`
	ListingID           string  `json:"listing_id,omitempty"`
	ListingURL          string  `json:"listing_url,omitempty"`
}

func (PurchaseProperty) Kind() Kind { return KindPurchaseProperty }

// DownPayment returns the cash part of the purchase price.
func (p PurchaseProperty) DownPayment() float64 {
	return p.PurchasePrice * p.DownPaymentPercent / 100
}

// LoanAmount returns the financed part of the purchase price.
func (p PurchaseProperty) LoanAmount() float64 {
	return p.PurchasePrice - p.DownPayment()
}

// RehabPeriod returns the months after purchase during which the property is
// under rehab: it earns no rent and its value climbs from the purchase price
// to the after-repair value.
func (p PurchaseProperty) RehabPeriod() int {
	switch {
	case p.RehabMonths > 0:
		return p.RehabMonths
	case p.RehabCost > 0:
		return DefaultRehabMonths
	}
	return 0
}

// TotalCashNeeded is the cash that must be on hand to close the purchase.
func (p PurchaseProperty) TotalCashNeeded() float64 {
	return p.DownPayment() + p.RehabCost + p.ClosingCosts
}

func (p PurchaseProperty) validate() error {
	if strings.TrimSpace(p.PropertyID) == "" {
		return invalidf("purchase: property_id is required")
	}
	if !(p.PurchasePrice > 0) || math.IsInf(p.PurchasePrice, 0) {
		return invalidf("purchase %q: purchase_price must be positive", p.PropertyID)
	}
	if p.DownPaymentPercent < 0 || p.DownPaymentPercent > 100 || math.IsNaN(p.DownPaymentPercent) {
		return invalidf("purchase %q: down_payment_percent must be within [0, 100]", p.PropertyID)
	}
	for name, v := range map[string]float64{
		"rehab_cost":            p.RehabCost,
		"closing_costs":         p.ClosingCosts,
		"monthly_rent":          p.MonthlyRent,
		"monthly_expenses":      p.MonthlyExpenses,
		"interest_rate_percent": p.InterestRatePercent,
		"term_years":            p.TermYears,
	} {
		if err := nonNegative(v); err != nil {
			return invalidf("purchase %q: %s %v", p.PropertyID, name, err)
		}
	}
	if p.RehabMonths < 0 {
		return invalidf("purchase %q: rehab_months must not be negative", p.PropertyID)
	}
	if p.LoanAmount() > 0 && p.TermYears == 0 {
		return invalidf("purchase %q: term_years is required when the purchase is financed", p.PropertyID)
	}
	return nil
}

// SellProperty sells an active property and pays off its loans.
type SellProperty struct {
	PropertyID         string  `json:"property_id"`
	SalePrice          float64 `json:"sale_price"` // 0 sells at the current appreciated value
	SellingCostPercent float64 `json:"selling_cost_percent"`
}

// NewSellProperty returns a sale with the default selling cost.
func NewSellProperty(propertyID string, salePrice float64) SellProperty {
	return SellProperty{
		PropertyID:         propertyID,
		SalePrice:          salePrice,
		SellingCostPercent: DefaultSellingCostPercent,
	}
}

func (SellProperty) Kind() Kind { return KindSellProperty }

func (s SellProperty) validate() error {
	if strings.TrimSpace(s.PropertyID) == "" {
		return invalidf("sale: property_id is required")
	}
	if err := nonNegative(s.SalePrice); err != nil {
		return invalidf("sale %q: sale_price %v", s.PropertyID, err)
	}
	if s.SellingCostPercent < 0 || s.SellingCostPercent > 100 || math.IsNaN(s.SellingCostPercent) {
		return invalidf("sale %q: selling_cost_percent must be within [0, 100]", s.PropertyID)
	}
	return nil
}

// OriginateLoan takes on new debt. When PropertyID is set the loan is secured by
// that property; with RefinanceExisting the property's mortgage is paid off
// from the proceeds (cash-out refinance).
type OriginateLoan struct {
	LoanAmount          float64 `json:"loan_amount"`
	ClosingCosts        float64 `json:"closing_costs,omitempty"`
	InterestRatePercent float64 `json:"interest_rate_percent"`
	TermYears           float64 `json:"term_years"`
	PropertyID          string  `json:"property_id,omitempty"`
	RefinanceExisting   bool    `json:"refinance_existing,omitempty"`
}

func (OriginateLoan) Kind() Kind { return KindOriginateLoan }

func (l OriginateLoan) validate() error {
	if !(l.LoanAmount > 0) || math.IsInf(l.LoanAmount, 0) {
		return invalidf("loan: loan_amount must be positive")
	}
	if err := nonNegative(l.ClosingCosts); err != nil {
		return invalidf("loan: closing_costs %v", err)
	}
	if err := nonNegative(l.InterestRatePercent); err != nil {
		return invalidf("loan: interest_rate_percent %v", err)
	}
	if !(l.TermYears > 0) {
		return invalidf("loan: term_years must be positive")
	}
	if l.RefinanceExisting && strings.TrimSpace(l.PropertyID) == "" {
		return invalidf("loan: refinance_existing requires property_id")
	}
	return nil
}

// Wait is an explicit "do nothing this month" step.
type Wait struct{}

func (Wait) Kind() Kind      { return KindWait }
func (Wait) validate() error { return nil }

// Transaction is an intent to act on the portfolio at a month offset from the
// start of the simulation.
type Transaction struct {
	ID      string
	Month   int
	Payload Payload
}

// NewTransactionID returns a fresh opaque transaction identifier.
func NewTransactionID() string {
	return uuid.NewString()
}

// NewTransaction builds and validates a transaction. An empty id is replaced
// with a generated one.
func NewTransaction(id string, month int, payload Payload) (Transaction, error) {
	if id == "" {
		id = NewTransactionID()
	}
	t := Transaction{ID: id, Month: month, Payload: payload}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// Kind returns the payload kind, or "" when the payload is missing.
func (t Transaction) Kind() Kind {
	if t.Payload == nil {
		return ""
	}
	return t.Payload.Kind()
}

// Validate checks the month and the payload.
func (t Transaction) Validate() error {
	if t.Payload == nil {
		return fmt.Errorf("transaction %q: %w", t.ID, ErrUnknownKind)
	}
	if t.Month < 0 {
		return fmt.Errorf("transaction %q: month must be >= 0: %w", t.ID, ErrInvalidTransaction)
	}
	if err := t.Payload.validate(); err != nil {
		return fmt.Errorf("transaction %q: %w", t.ID, err)
	}
	return nil
}

// PropertyRef returns the property identifier the transaction refers to, if any.
func (t Transaction) PropertyRef() string {
	switch p := t.Payload.(type) {
	case PurchaseProperty:
		return p.PropertyID
	case SellProperty:
		return p.PropertyID
	case OriginateLoan:
		return p.PropertyID
	}
	return ""
}

// WithPropertyRef returns a copy of t pointing at a different property.
// Transactions without a property reference are returned unchanged.
func (t Transaction) WithPropertyRef(id string) Transaction {
	switch p := t.Payload.(type) {
	case PurchaseProperty:
		p.PropertyID = id
		t.Payload = p
	case SellProperty:
		p.PropertyID = id
		t.Payload = p
	case OriginateLoan:
		if p.PropertyID != "" {
			p.PropertyID = id
			t.Payload = p
		}
	}
	return t
}

// TransactionPatch describes a partial update. Nil fields are left unchanged.
type TransactionPatch struct {
	Month   *int
	Payload Payload
}

// Apply returns a patched copy of t.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Month != nil {
		t.Month = *p.Month
	}
	if p.Payload != nil {
		t.Payload = p.Payload
	}
	return t
}

// SortTransactions orders transactions by month, keeping insertion order for ties.
func SortTransactions(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Month < txs[j].Month
	})
}

type transactionJSON struct {
	ID      string          `json:"id"`
	Month   int             `json:"month"`
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	if t.Payload == nil {
		return nil, fmt.Errorf("transaction %q: %w", t.ID, ErrUnknownKind)
	}
	raw, err := json.Marshal(t.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(transactionJSON{ID: t.ID, Month: t.Month, Kind: t.Payload.Kind(), Payload: raw})
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var aux transactionJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	payload, err := decodePayload(aux.Kind, aux.Payload)
	if err != nil {
		return fmt.Errorf("transaction %q: %w", aux.ID, err)
	}
	t.ID = aux.ID
	t.Month = aux.Month
	t.Payload = payload
	return nil
}

func decodePayload(kind Kind, raw json.RawMessage) (Payload, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	switch kind {
	case KindPurchaseProperty:
		var p PurchaseProperty
		err := json.Unmarshal(raw, &p)
		return p, err
	case KindSellProperty:
		s := SellProperty{SellingCostPercent: DefaultSellingCostPercent}
		err := json.Unmarshal(raw, &s)
		return s, err
	case KindOriginateLoan:
		var l OriginateLoan
		err := json.Unmarshal(raw, &l)
		return l, err
	case KindWait:
		return Wait{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidTransaction)
}

func nonNegative(v float64) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New("must be a non-negative number")
	}
	return nil
}
