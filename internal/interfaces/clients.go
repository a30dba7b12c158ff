// Package interfaces defines service contracts for realvest
package interfaces

//go:generate mockgen -destination=mocks/mock_clients.go -package=mocks -source=clients.go

import (
	"context"

	"github.com/bobmcallan/realvest/internal/models"
)

// ListingSearchClient provides access to a for-sale listing search API
type ListingSearchClient interface {
	// Search returns listings matching the criteria
	Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Listing, error)
}

// GeminiClient provides access to Gemini API
type GeminiClient interface {
	// GenerateJSON generates content constrained to a JSON response
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}
