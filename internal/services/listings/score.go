package listings

import (
	"math"

	"github.com/bobmcallan/realvest/internal/models"
)

// Score rates how well a listing fits a planned purchase. Higher is better;
// the result is never negative.
func Score(l models.Listing, p models.PurchaseProperty, a models.MatchAssumptions) float64 {
	score := 100.0

	if p.PurchasePrice > 0 {
		priceRatio := math.Abs(l.Price-p.PurchasePrice) / p.PurchasePrice
		if priceRatio <= 0.15 {
			score -= priceRatio * 50
		} else {
			score -= math.Min(40, priceRatio*100)
		}
	}

	if p.MonthlyRent > 0 {
		rentRatio := math.Abs(EstimateRent(l, a)-p.MonthlyRent) / p.MonthlyRent
		score -= math.Min(30, rentRatio*50)
	}

	switch {
	case l.Bedrooms >= 3:
		score += 10
	case l.Bedrooms == 2:
		score += 5
	}
	switch {
	case l.Bathrooms >= 2:
		score += 10
	case l.Bathrooms >= 1:
		score += 5
	}
	switch {
	case l.LivingArea >= 1200:
		score += 10
	case l.LivingArea >= 900:
		score += 5
	}

	// very cheap houses usually need heavy rehab
	if l.Price < 40000 {
		score -= 20
	}

	return math.Max(0, score)
}

// EstimateRent returns the listing's own rent estimate when it has one, and
// otherwise a heuristic from bedrooms, bathrooms, size and price tier clamped
// to [MinRent, MaxRent].
func EstimateRent(l models.Listing, a models.MatchAssumptions) float64 {
	if l.RentEstimate > 0 {
		return l.RentEstimate
	}

	rent := 800.0
	switch {
	case l.Bedrooms >= 4:
		rent += 400
	case l.Bedrooms == 3:
		rent += 200
	case l.Bedrooms == 2:
	default:
		rent -= 200
	}
	if l.Bathrooms >= 2 {
		rent += 150
	}
	if l.LivingArea > 1500 {
		rent += 200
	} else if l.LivingArea > 0 && l.LivingArea < 800 {
		rent -= 150
	}
	if l.Price > 80000 {
		rent += 200
	} else if l.Price < 40000 {
		rent -= 200
	}

	minRent, maxRent := a.MinRent, a.MaxRent
	if minRent <= 0 {
		minRent = 1000
	}
	if maxRent <= 0 || maxRent < minRent {
		maxRent = math.Max(1600, minRent)
	}
	return math.Min(maxRent, math.Max(minRent, rent))
}
