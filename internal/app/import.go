package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bobmcallan/realvest/internal/models"
)

// ReadPlanFile reads a JSON plan file. Missing simulation fields keep the
// values of base.
func ReadPlanFile(filePath string, base models.Simulation) (*models.Plan, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file %s: %w", filePath, err)
	}

	plan := models.Plan{Simulation: base}
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan file %s: %w", filePath, err)
	}
	return &plan, nil
}

// WritePlanFile writes plan as indented JSON, creating parent directories.
func WritePlanFile(filePath string, plan *models.Plan) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create plan directory: %w", err)
		}
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write plan file %s: %w", filePath, err)
	}
	return nil
}

// LoadPlanFile reads filePath and loads it into the portfolio, using the
// configured simulation for any parameters the file omits.
func (a *App) LoadPlanFile(filePath string) error {
	plan, err := ReadPlanFile(filePath, a.Config.Simulation)
	if err != nil {
		return err
	}
	if err := a.LoadPlan(plan); err != nil {
		return err
	}
	a.Logger.Info().
		Str("file", filePath).
		Int("transactions", len(plan.Transactions)).
		Msg("Plan loaded")
	return nil
}

// SavePlanFile writes the loaded plan to filePath.
func (a *App) SavePlanFile(filePath string) error {
	plan := a.CurrentPlan()
	if plan == nil {
		return fmt.Errorf("no plan loaded")
	}
	return WritePlanFile(filePath, plan)
}
