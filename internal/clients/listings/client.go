// Package listings provides a client for the RapidAPI Zillow listing search API
package listings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/realvest/internal/common"
	"github.com/bobmcallan/realvest/internal/interfaces"
	"github.com/bobmcallan/realvest/internal/models"
)

const (
	DefaultBaseURL       = "https://zillow-com1.p.rapidapi.com"
	DefaultHost          = "zillow-com1.p.rapidapi.com"
	DefaultTimeout       = 30 * time.Second
	DefaultRateLimit     = 2 // requests per second
	DefaultMaxRetries    = 3
	DefaultRetryInterval = 500 * time.Millisecond

	searchPath    = "/propertyExtendedSearch"
	listingOrigin = "https://www.zillow.com"
)

// Client implements the ListingSearchClient interface
type Client struct {
	baseURL       string
	host          string
	apiKey        string
	httpClient    *http.Client
	logger        *common.Logger
	limiter       *rate.Limiter
	maxRetries    int
	retryInterval time.Duration
}

var _ interfaces.ListingSearchClient = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHost sets the X-RapidAPI-Host header
func WithHost(host string) ClientOption {
	return func(c *Client) {
		c.host = host
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithMaxRetries sets how many times a failed request is retried
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryInterval sets the initial backoff between retries
func WithRetryInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryInterval = d
	}
}

// NewClient creates a new listing search client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		host:    DefaultHost,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:       rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:        common.NewSilentLogger(),
		maxRetries:    DefaultMaxRetries,
		retryInterval: DefaultRetryInterval,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("listing API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Retryable reports whether the request may succeed if repeated.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Search returns for-sale listings matching the criteria
func (c *Client) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Listing, error) {
	params := url.Values{}
	params.Set("location", criteria.Location)
	params.Set("status_type", "ForSale")
	params.Set("home_type", homeType(criteria.PropertyType))
	if criteria.MinPrice > 0 {
		params.Set("minPrice", strconv.FormatFloat(criteria.MinPrice, 'f', 0, 64))
	}
	if criteria.MaxPrice > 0 {
		params.Set("maxPrice", strconv.FormatFloat(criteria.MaxPrice, 'f', 0, 64))
	}
	if criteria.MinBedrooms > 0 {
		params.Set("bedsMin", strconv.Itoa(criteria.MinBedrooms))
	}

	var resp searchResponse
	if err := c.get(ctx, searchPath, params, &resp); err != nil {
		return nil, err
	}

	listings := make([]models.Listing, 0, len(resp.Props))
	for _, p := range resp.Props {
		if p.ZPID == "" || p.Price <= 0 {
			continue
		}
		listings = append(listings, p.toListing())
		if criteria.Limit > 0 && len(listings) == criteria.Limit {
			break
		}
	}

	c.logger.Debug().
		Str("location", criteria.Location).
		Float64("min_price", criteria.MinPrice).
		Float64("max_price", criteria.MaxPrice).
		Int("results", len(listings)).
		Msg("Listing search complete")

	return listings, nil
}

// get performs a rate-limited GET request, retrying transient failures with
// exponential backoff.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	attempt := 0
	op := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limit wait: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
		req.Header.Set("X-RapidAPI-Host", c.host)
		req.Header.Set("Accept", "application/json")

		c.logger.Debug().Str("url", c.baseURL+path).Int("attempt", attempt).Msg("Listing API request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			apiErr := &APIError{
				StatusCode: resp.StatusCode,
				Message:    strings.TrimSpace(string(body)),
				Endpoint:   path,
			}
			if apiErr.Retryable() {
				c.logger.Warn().Int("status", resp.StatusCode).Int("attempt", attempt).Msg("Listing API transient error")
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}

		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval
	policy.MaxElapsedTime = 0

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxRetries)), ctx))
}

func homeType(propertyType string) string {
	switch strings.ToLower(strings.ReplaceAll(propertyType, " ", "")) {
	case "", "singlefamily", "houses", "house":
		return "Houses"
	case "multifamily", "duplex":
		return "Multi-family"
	case "condo", "condos":
		return "Condos"
	case "townhouse", "townhomes":
		return "Townhomes"
	}
	return propertyType
}

type searchResponse struct {
	Props []searchProperty `json:"props"`
}

type searchProperty struct {
	ZPID          flexString  `json:"zpid"`
	Address       string      `json:"address"`
	Price         flexFloat64 `json:"price"`
	Bedrooms      flexFloat64 `json:"bedrooms"`
	Bathrooms     flexFloat64 `json:"bathrooms"`
	LivingArea    flexFloat64 `json:"livingArea"`
	RentZestimate flexFloat64 `json:"rentZestimate"`
	PropertyType  string      `json:"propertyType"`
	DetailURL     string      `json:"detailUrl"`
	ImgSrc        string      `json:"imgSrc"`
}

func (p searchProperty) toListing() models.Listing {
	detail := p.DetailURL
	if strings.HasPrefix(detail, "/") {
		detail = listingOrigin + detail
	}
	if detail == "" {
		detail = fmt.Sprintf("%s/homedetails/%s_zpid/", listingOrigin, p.ZPID)
	}
	return models.Listing{
		ID:           string(p.ZPID),
		Address:      strings.TrimSpace(p.Address),
		Price:        float64(p.Price),
		Bedrooms:     int(p.Bedrooms),
		Bathrooms:    float64(p.Bathrooms),
		LivingArea:   float64(p.LivingArea),
		RentEstimate: float64(p.RentZestimate),
		PropertyType: p.PropertyType,
		URL:          detail,
		ImageURL:     p.ImgSrc,
	}
}

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = 0
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("cannot unmarshal %s into float64", string(data))
	}
	s = strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	num, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat64(num)
	return nil
}

// flexString handles identifiers sent as either numbers or strings.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("cannot unmarshal %s into string", string(data))
	}
	*s = flexString(num.String())
	return nil
}
