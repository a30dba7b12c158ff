// Package app wires configuration, clients and services into the shared core
// used by the realvest CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/realvest/internal/clients/gemini"
	"github.com/bobmcallan/realvest/internal/clients/listings"
	"github.com/bobmcallan/realvest/internal/common"
	"github.com/bobmcallan/realvest/internal/interfaces"
	"github.com/bobmcallan/realvest/internal/models"
	"github.com/bobmcallan/realvest/internal/services/goal"
	listingsvc "github.com/bobmcallan/realvest/internal/services/listings"
	"github.com/bobmcallan/realvest/internal/services/portfolio"
	"github.com/bobmcallan/realvest/internal/services/strategy"
)

// ErrListingsUnavailable is returned by FindListings when no listing search
// API key is configured.
var ErrListingsUnavailable = errors.New("listing search is not configured")

// App holds all initialized services and clients.
type App struct {
	Config         *common.Config
	Logger         *common.Logger
	ListingsClient interfaces.ListingSearchClient
	GeminiClient   interfaces.GeminiClient
	Portfolio      interfaces.PortfolioStateManager
	Matcher        interfaces.ListingMatcher
	GoalParser     *goal.Parser
	Strategies     interfaces.StrategyService
	StartupTime    time.Time

	closers []io.Closer
}

// Option customises an App before its services are built.
type Option func(*App)

// WithListingsClient replaces the listing search client.
func WithListingsClient(c interfaces.ListingSearchClient) Option {
	return func(a *App) { a.ListingsClient = c }
}

// WithGeminiClient replaces the AI client.
func WithGeminiClient(c interfaces.GeminiClient) Option {
	return func(a *App) { a.GeminiClient = c }
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath returns configPath, REALVEST_CONFIG, realvest.toml next
// to the binary, or config/realvest.toml, whichever is found first.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("REALVEST_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "realvest.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/realvest.toml"
		}
	}
	return configPath
}

// NewApp loads configuration and initializes the logger, clients and services.
// Clients are only created when their API keys are configured.
func NewApp(configPath string, opts ...Option) (*App, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, closer, err := common.NewLoggerFromConfig(config.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a, err := NewAppWithConfig(config, logger, opts...)
	if err != nil {
		closer.Close()
		return nil, err
	}
	a.closers = append(a.closers, closer)
	return a, nil
}

// NewAppWithConfig initializes the App from an already loaded configuration.
func NewAppWithConfig(config *common.Config, logger *common.Logger, opts ...Option) (*App, error) {
	startupStart := time.Now()
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	a := &App{
		Config:      config,
		Logger:      logger,
		StartupTime: startupStart,
	}
	for _, opt := range opts {
		opt(a)
	}

	lc := config.Clients.Listings
	if a.ListingsClient == nil {
		if lc.APIKey != "" {
			a.ListingsClient = listings.NewClient(lc.APIKey,
				listings.WithBaseURL(lc.BaseURL),
				listings.WithHost(lc.Host),
				listings.WithLogger(logger),
				listings.WithRateLimit(lc.RateLimit),
				listings.WithTimeout(lc.GetTimeout()),
				listings.WithMaxRetries(lc.MaxRetries),
			)
		} else {
			logger.Warn().Msg("Listing search API key not configured - listing matching will be unavailable")
		}
	}

	gc := config.Clients.Gemini
	if a.GeminiClient == nil {
		if gc.APIKey != "" {
			client, err := gemini.NewClient(context.Background(), gc.APIKey,
				gemini.WithLogger(logger),
				gemini.WithModel(gc.Model),
			)
			if err != nil {
				logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
			} else {
				a.GeminiClient = client
				a.closers = append(a.closers, client)
			}
		} else {
			logger.Info().Msg("Gemini API key not configured - goals use the rental ladder")
		}
	}

	a.Portfolio = portfolio.NewStateManager(logger)
	a.GoalParser = goal.NewParser(logger)
	a.Strategies = strategy.NewService(a.GeminiClient, config.Simulation, logger)
	if a.ListingsClient != nil {
		a.Matcher = listingsvc.NewService(a.ListingsClient, config.Matching.Assumptions(), logger)
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// GoalPlan is a strategy generated for a goal together with its projection.
type GoalPlan struct {
	Goal       *models.Goal             `json:"goal"`
	Confidence goal.Confidence          `json:"confidence"`
	Strategy   *models.Strategy         `json:"strategy"`
	State      *models.PortfolioState   `json:"state"`
	Warnings   []models.StrategyWarning `json:"warnings"`
}

// PlanFromGoal parses text into a goal, generates a strategy for it and
// loads the resulting plan into the portfolio.
func (a *App) PlanFromGoal(ctx context.Context, text string) (*GoalPlan, error) {
	g, err := a.GoalParser.Parse(text)
	if err != nil {
		return nil, err
	}

	s, txs, err := a.Strategies.Generate(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("failed to generate strategy: %w", err)
	}

	plan := &models.Plan{Simulation: g.Simulation(a.Config.Simulation), Transactions: txs}
	if err := a.LoadPlan(plan); err != nil {
		return nil, err
	}

	state := a.Portfolio.CurrentState()
	return &GoalPlan{
		Goal:       g,
		Confidence: a.GoalParser.Confidence(g),
		Strategy:   s,
		State:      state,
		Warnings:   strategy.Review(g, state),
	}, nil
}

// LoadPlan replaces the portfolio with plan. The transactions are validated
// first; on error the portfolio is left unchanged.
func (a *App) LoadPlan(plan *models.Plan) error {
	if plan == nil {
		return errors.New("plan is required")
	}
	check := portfolio.NewStateManager(a.Logger)
	if err := check.SetTransactions(plan.Transactions); err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}

	a.Portfolio.Clear()
	if err := a.Portfolio.SetTransactions(check.Transactions()); err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}
	a.Portfolio.SetSimulation(plan.Simulation)
	return nil
}

// CurrentPlan returns the loaded simulation and transactions.
func (a *App) CurrentPlan() *models.Plan {
	sim := a.Portfolio.Simulation()
	if sim == nil {
		return nil
	}
	return &models.Plan{Simulation: *sim, Transactions: a.Portfolio.Transactions()}
}

// FindListings binds the loaded plan's placeholder purchases to real
// listings and reloads the rewritten transactions.
func (a *App) FindListings(ctx context.Context, assumptions models.MatchAssumptions) (*models.ReconcileResult, error) {
	if a.Matcher == nil {
		return nil, ErrListingsUnavailable
	}

	result, err := a.Matcher.Reconcile(ctx, a.Portfolio.Transactions(), assumptions)
	if err != nil {
		return nil, fmt.Errorf("listing reconciliation failed: %w", err)
	}
	if err := a.Portfolio.SetTransactions(result.Transactions); err != nil {
		return nil, fmt.Errorf("reconciled plan rejected: %w", err)
	}

	summary := a.Matcher.Summary(result.Transactions)
	a.Logger.Info().
		Int("matched", summary.Matched).
		Int("total", summary.Total).
		Float64("percentage", summary.Percentage).
		Msg("Listings reconciled")
	return result, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Close failed")
		}
	}
	a.closers = nil
}
