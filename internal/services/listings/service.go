// Package listings binds the placeholder purchases of a plan to real for-sale
// listings and keeps the rest of the plan pointing at the renamed properties.
package listings

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bobmcallan/realvest/internal/common"
	"github.com/bobmcallan/realvest/internal/interfaces"
	"github.com/bobmcallan/realvest/internal/models"
)

// Unmatched reasons
const (
	ReasonNoCandidates  = "no_candidates"
	ReasonOutsideWindow = "outside_search_range"
)

// Service implements ListingMatcher
type Service struct {
	client   interfaces.ListingSearchClient
	defaults models.MatchAssumptions
	cache    *searchCache
	logger   *common.Logger
}

var _ interfaces.ListingMatcher = (*Service)(nil)

// NewService creates a listing matcher. Zero fields of the assumptions passed
// to Reconcile fall back to defaults.
func NewService(client interfaces.ListingSearchClient, defaults models.MatchAssumptions, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	defaults = mergeAssumptions(defaults, models.DefaultMatchAssumptions())
	return &Service{
		client:   client,
		defaults: defaults,
		cache:    newSearchCache(),
		logger:   logger,
	}
}

// Reconcile returns a rewritten copy of txs, in month order, with each purchase
// that has no listing bound to the best-scoring unused listing. Sales and
// loans that referenced a renamed placeholder are redirected to the new
// property ID until a later purchase re-uses that placeholder. Search
// failures leave the purchase unmatched; only context errors are returned.
func (s *Service) Reconcile(ctx context.Context, txs []models.Transaction, assumptions models.MatchAssumptions) (*models.ReconcileResult, error) {
	a := mergeAssumptions(assumptions, s.defaults)

	out := append([]models.Transaction(nil), txs...)
	models.SortTransactions(out)

	result := &models.ReconcileResult{
		Transactions: out,
		Matches:      []models.ListingMatch{},
		Unmatched:    []models.UnmatchedPurchase{},
		Renames:      map[string]string{},
	}

	taken := make(map[string]bool)
	for _, tx := range out {
		if ref := tx.PropertyRef(); ref != "" {
			taken[ref] = true
		}
	}
	consumed := make(map[string]bool)

	for i := range out {
		p, ok := out[i].Payload.(models.PurchaseProperty)
		if !ok || p.ListingID != "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		best, score, buffer, reason := s.bestMatch(ctx, p, a, consumed)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if reason != "" {
			result.Unmatched = append(result.Unmatched, models.UnmatchedPurchase{
				TransactionID: out[i].ID,
				PropertyID:    p.PropertyID,
				Reason:        reason,
			})
			s.logger.Info().
				Str("transaction", out[i].ID).
				Str("property", p.PropertyID).
				Str("reason", reason).
				Msg("No listing matched purchase")
			continue
		}
		consumed[best.ID] = true

		oldID := p.PropertyID
		newID := propertyID(best, oldID, taken)
		taken[newID] = true

		rent := EstimateRent(best, a)
		p.PropertyID = newID
		p.Address = best.Address
		p.PurchasePrice = best.Price
		p.MonthlyRent = rent
		p.ListingID = best.ID
		p.ListingURL = best.URL
		out[i].Payload = p

		renamed := 0
		if newID != oldID {
			renamed = renameRefs(out[i+1:], oldID, newID)
		}

		result.Renames[out[i].ID] = newID
		result.Matches = append(result.Matches, models.ListingMatch{
			TransactionID:      out[i].ID,
			OriginalPropertyID: oldID,
			PropertyID:         newID,
			Listing:            best,
			Score:              score,
			EstimatedRent:      rent,
			PriceBuffer:        buffer,
		})

		s.logger.Info().
			Str("transaction", out[i].ID).
			Str("from", oldID).
			Str("to", newID).
			Str("listing", best.ID).
			Float64("score", score).
			Int("renamed_refs", renamed).
			Msg("Purchase matched to listing")
	}

	return result, nil
}

// Summary counts purchases bound to a listing.
func (s *Service) Summary(txs []models.Transaction) models.MatchSummary {
	var sum models.MatchSummary
	for _, tx := range txs {
		p, ok := tx.Payload.(models.PurchaseProperty)
		if !ok {
			continue
		}
		sum.Total++
		if p.ListingID != "" {
			sum.Matched++
		}
	}
	if sum.Total > 0 {
		sum.Percentage = math.Round(float64(sum.Matched) / float64(sum.Total) * 100)
	}
	return sum
}

// bestMatch widens the price window until some unused listing is found and
// returns the highest scoring one. The first listing seen wins ties. A
// non-empty reason means nothing matched.
func (s *Service) bestMatch(ctx context.Context, p models.PurchaseProperty, a models.MatchAssumptions, consumed map[string]bool) (models.Listing, float64, float64, string) {
	reason := ReasonOutsideWindow
	for _, buffer := range a.PriceBuffers {
		criteria, ok := searchWindow(p.PurchasePrice, buffer, a)
		if !ok {
			continue
		}
		reason = ReasonNoCandidates

		found := false
		var best models.Listing
		bestScore := 0.0
		for _, l := range s.search(ctx, criteria, a.CacheTTL) {
			if consumed[l.ID] || l.Price <= 0 {
				continue
			}
			score := Score(l, p, a)
			if !found || score > bestScore {
				best, bestScore, found = l, score, true
			}
		}
		if found {
			return best, bestScore, buffer, ""
		}
		if ctx.Err() != nil {
			break
		}
	}
	return models.Listing{}, 0, 0, reason
}

// search returns cached results younger than ttl; client errors are logged
// and treated as an empty result.
func (s *Service) search(ctx context.Context, criteria models.SearchCriteria, ttl time.Duration) []models.Listing {
	if listings, ok := s.cache.get(criteria, ttl); ok {
		s.logger.Debug().Str("location", criteria.Location).
			Float64("min_price", criteria.MinPrice).
			Float64("max_price", criteria.MaxPrice).
			Msg("Listing search cache hit")
		return listings
	}

	listings, err := s.client.Search(ctx, criteria)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("location", criteria.Location).
			Float64("min_price", criteria.MinPrice).
			Float64("max_price", criteria.MaxPrice).
			Msg("Listing search failed")
		return nil
	}
	s.cache.put(criteria, listings, ttl)
	return listings
}

// searchWindow builds the criteria for price ± buffer clamped to the
// platform range. It reports false when the window is empty.
func searchWindow(price, buffer float64, a models.MatchAssumptions) (models.SearchCriteria, bool) {
	lo := math.Max(a.MinSearchPrice, math.Floor(common.RoundCents(price*(1-buffer))))
	hi := math.Min(a.MaxSearchPrice, math.Ceil(common.RoundCents(price*(1+buffer))))
	if lo > hi {
		return models.SearchCriteria{}, false
	}
	return models.SearchCriteria{
		Location:     a.Location,
		MinPrice:     lo,
		MaxPrice:     hi,
		PropertyType: a.PropertyType,
	}, true
}

// propertyID derives the new property ID from the listing address. An ID
// already used elsewhere in the plan gets the listing ID appended.
func propertyID(l models.Listing, oldID string, taken map[string]bool) string {
	id := strings.TrimSpace(l.Address)
	if id == "" {
		id = "Property " + l.ID
	}
	if id != oldID && taken[id] {
		id = fmt.Sprintf("%s (%s)", id, l.ID)
	}
	return id
}

// renameRefs points sales and loans at newID until a purchase re-uses oldID.
func renameRefs(txs []models.Transaction, oldID, newID string) int {
	n := 0
	for j := range txs {
		switch p := txs[j].Payload.(type) {
		case models.PurchaseProperty:
			if p.PropertyID == oldID {
				return n
			}
		case models.SellProperty, models.OriginateLoan:
			if txs[j].PropertyRef() == oldID {
				txs[j] = txs[j].WithPropertyRef(newID)
				n++
			}
		}
	}
	return n
}

func mergeAssumptions(a, defaults models.MatchAssumptions) models.MatchAssumptions {
	if a.Location == "" {
		a.Location = defaults.Location
	}
	if a.MinSearchPrice <= 0 {
		a.MinSearchPrice = defaults.MinSearchPrice
	}
	if a.MaxSearchPrice <= 0 {
		a.MaxSearchPrice = defaults.MaxSearchPrice
	}
	if len(a.PriceBuffers) == 0 {
		a.PriceBuffers = defaults.PriceBuffers
	}
	if a.MinRent <= 0 {
		a.MinRent = defaults.MinRent
	}
	if a.MaxRent <= 0 {
		a.MaxRent = defaults.MaxRent
	}
	if a.PropertyType == "" {
		a.PropertyType = defaults.PropertyType
	}
	if a.CacheTTL <= 0 {
		a.CacheTTL = defaults.CacheTTL
	}
	return a
}
