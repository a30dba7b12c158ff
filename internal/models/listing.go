package models

import "time"

// Listing is a for-sale property returned by the listing search API.
type Listing struct {
	ID           string  `json:"id"`
	Address      string  `json:"address"`
	Price        float64 `json:"price"`
	Bedrooms     int     `json:"bedrooms"`
	Bathrooms    float64 `json:"bathrooms"`
	LivingArea   float64 `json:"living_area"`
	RentEstimate float64 `json:"rent_estimate,omitempty"`
	PropertyType string  `json:"property_type,omitempty"`
	URL          string  `json:"url,omitempty"`
	ImageURL     string  `json:"image_url,omitempty"`
}

// SearchCriteria is one listing search request.
type SearchCriteria struct {
	Location     string  `json:"location"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	MinBedrooms  int     `json:"min_bedrooms,omitempty"`
	PropertyType string  `json:"property_type,omitempty"`
	Limit        int     `json:"limit,omitempty"`
}

// MatchAssumptions tunes how placeholder purchases are matched to listings.
type MatchAssumptions struct {
	Location       string        `json:"location" toml:"location"`
	MinSearchPrice float64       `json:"min_search_price" toml:"min_search_price"`
	MaxSearchPrice float64       `json:"max_search_price" toml:"max_search_price"`
	PriceBuffers   []float64     `json:"price_buffers" toml:"price_buffers"`
	MinRent        float64       `json:"min_rent" toml:"min_rent"`
	MaxRent        float64       `json:"max_rent" toml:"max_rent"`
	PropertyType   string        `json:"property_type,omitempty" toml:"property_type"`
	CacheTTL       time.Duration `json:"cache_ttl" toml:"-"`
}

// DefaultMatchAssumptions returns the search window and rent estimation bounds
// used when none are configured.
func DefaultMatchAssumptions() MatchAssumptions {
	return MatchAssumptions{
		Location:       "Cleveland, OH",
		MinSearchPrice: 10000,
		MaxSearchPrice: 2000000,
		PriceBuffers:   []float64{0.20, 0.25, 0.30},
		MinRent:        1000,
		MaxRent:        1600,
		PropertyType:   "SingleFamily",
		CacheTTL:       30 * time.Minute,
	}
}

// ListingMatch records one placeholder purchase that was bound to a listing.
type ListingMatch struct {
	TransactionID      string  `json:"transaction_id"`
	OriginalPropertyID string  `json:"original_property_id"`
	PropertyID         string  `json:"property_id"`
	Listing            Listing `json:"listing"`
	Score              float64 `json:"score"`
	EstimatedRent      float64 `json:"estimated_rent"`
	PriceBuffer        float64 `json:"price_buffer"`
}

// UnmatchedPurchase records a placeholder purchase left unchanged.
type UnmatchedPurchase struct {
	TransactionID string `json:"transaction_id"`
	PropertyID    string `json:"property_id"`
	Reason        string `json:"reason"`
}

// ReconcileResult is the outcome of binding a plan's purchases to listings.
type ReconcileResult struct {
	Transactions []Transaction       `json:"transactions"`
	Matches      []ListingMatch      `json:"matches"`
	Unmatched    []UnmatchedPurchase `json:"unmatched"`
	Renames      map[string]string   `json:"renames"` // transaction id -> new property id
}

// MatchSummary reports how many purchases are bound to real listings.
type MatchSummary struct {
	Total      int     `json:"total"`
	Matched    int     `json:"matched"`
	Percentage float64 `json:"percentage"`
}
