package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner writes the CLI startup banner and logs the effective settings.
func PrintBanner(w io.Writer, config *Config, logger *Logger) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 60
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	fmt.Fprintf(w, "\n%s\n\n", hr)
	fmt.Fprintf(w, "%s  REALVEST%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s  Real-estate portfolio simulator%s\n\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s\n\n", hr)

	sim := config.Simulation
	listings := "disabled"
	if config.Clients.Listings.APIKey != "" {
		listings = config.Clients.Listings.BaseURL
	}
	ai := "disabled"
	if config.Clients.Gemini.APIKey != "" {
		ai = config.Clients.Gemini.Model
	}

	kvPad := 16
	kvLines := [][2]string{
		{"Version", GetFullVersion()},
		{"Environment", config.Environment},
		{"Capital", FormatUSD(sim.InitialCapital)},
		{"Horizon", fmt.Sprintf("%d months", sim.Horizon())},
		{"Listings", listings},
		{"AI planner", ai},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-*s %s%s\n", textColor, kvPad, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)

	logger.Debug().
		Str("version", Version).
		Str("environment", config.Environment).
		Float64("initial_capital", sim.InitialCapital).
		Int("horizon_months", sim.Horizon()).
		Str("listings", listings).
		Str("ai_planner", ai).
		Msg("realvest started")
}
