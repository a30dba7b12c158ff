// Package common provides shared utilities for realvest
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/realvest/internal/models"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for realvest
type Config struct {
	Environment string            `toml:"environment"`
	Simulation  models.Simulation `toml:"simulation"`
	Matching    MatchingConfig    `toml:"matching"`
	Clients     ClientsConfig     `toml:"clients"`
	Logging     LoggingConfig     `toml:"logging"`
}

// MatchingConfig holds listing reconciliation settings
type MatchingConfig struct {
	Location       string    `toml:"location"`
	PropertyType   string    `toml:"property_type"`
	MinSearchPrice float64   `toml:"min_search_price"`
	MaxSearchPrice float64   `toml:"max_search_price"`
	PriceBuffers   []float64 `toml:"price_buffers"` // widening search windows, e.g. 0.20 = ±20%
	MinRent        float64   `toml:"min_rent"`
	MaxRent        float64   `toml:"max_rent"`
	CacheTTL       string    `toml:"cache_ttl"`
}

// GetCacheTTL parses and returns the search cache TTL
func (c *MatchingConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return FreshnessListings
	}
	return d
}

// Assumptions converts the configuration into matcher assumptions.
func (c *MatchingConfig) Assumptions() models.MatchAssumptions {
	a := models.DefaultMatchAssumptions()
	if c.Location != "" {
		a.Location = c.Location
	}
	if c.PropertyType != "" {
		a.PropertyType = c.PropertyType
	}
	if c.MinSearchPrice > 0 {
		a.MinSearchPrice = c.MinSearchPrice
	}
	if c.MaxSearchPrice > 0 {
		a.MaxSearchPrice = c.MaxSearchPrice
	}
	if len(c.PriceBuffers) > 0 {
		a.PriceBuffers = append([]float64(nil), c.PriceBuffers...)
	}
	if c.MinRent > 0 {
		a.MinRent = c.MinRent
	}
	if c.MaxRent > 0 {
		a.MaxRent = c.MaxRent
	}
	a.CacheTTL = c.GetCacheTTL()
	return a
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Listings ListingsConfig `toml:"listings"`
	Gemini   GeminiConfig   `toml:"gemini"`
}

// ListingsConfig holds listing search API configuration
type ListingsConfig struct {
	BaseURL    string `toml:"base_url"`
	Host       string `toml:"host"` // X-RapidAPI-Host header
	APIKey     string `toml:"api_key"`
	RateLimit  int    `toml:"rate_limit"`
	Timeout    string `toml:"timeout"`
	MaxRetries int    `toml:"max_retries"`
}

// GetTimeout parses and returns the timeout duration
func (c *ListingsConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Format   string   `toml:"format"`  // "console" or "json"
	Outputs  []string `toml:"outputs"` // "stderr", "stdout", "file"
	FilePath string   `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	a := models.DefaultMatchAssumptions()
	return &Config{
		Environment: "development",
		Simulation:  models.DefaultSimulation(),
		Matching: MatchingConfig{
			Location:       a.Location,
			PropertyType:   a.PropertyType,
			MinSearchPrice: a.MinSearchPrice,
			MaxSearchPrice: a.MaxSearchPrice,
			PriceBuffers:   a.PriceBuffers,
			MinRent:        a.MinRent,
			MaxRent:        a.MaxRent,
			CacheTTL:       "30m",
		},
		Clients: ClientsConfig{
			Listings: ListingsConfig{
				BaseURL:    "https://zillow-com1.p.rapidapi.com",
				Host:       "zillow-com1.p.rapidapi.com",
				RateLimit:  2,
				Timeout:    "30s",
				MaxRetries: 3,
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "console",
			Outputs:  []string{"stderr"},
			FilePath: "./logs/realvest.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("REALVEST_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("REALVEST_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("REALVEST_LISTINGS_API_KEY"); v != "" {
		config.Clients.Listings.APIKey = v
	}
	if v := os.Getenv("REALVEST_LISTINGS_BASE_URL"); v != "" {
		config.Clients.Listings.BaseURL = strings.TrimRight(v, "/")
	}

	if v := os.Getenv("REALVEST_GEMINI_API_KEY"); v != "" {
		config.Clients.Gemini.APIKey = v
	} else if v := os.Getenv("GEMINI_API_KEY"); v != "" && config.Clients.Gemini.APIKey == "" {
		config.Clients.Gemini.APIKey = v
	}
	if v := os.Getenv("REALVEST_GEMINI_MODEL"); v != "" {
		config.Clients.Gemini.Model = v
	}

	if v := os.Getenv("REALVEST_INITIAL_CAPITAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Simulation.InitialCapital = f
		}
	}
	if v := os.Getenv("REALVEST_HORIZON_MONTHS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.TimeHorizonMonths = n
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
