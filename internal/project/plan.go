package project

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/piwi3910/PalletLoad/internal/model"
)

// planFormatVersion is written into every saved plan.
const planFormatVersion = "1"

// planFile wraps a plan with format metadata.
type planFile struct {
	Version string     `json:"version"`
	SavedAt string     `json:"saved_at"`
	Plan    model.Plan `json:"plan"`
}

// SavePlan writes a plan, including its last result if any, to path.
func SavePlan(path string, plan model.Plan) error {
	f := planFile{
		Version: planFormatVersion,
		SavedAt: time.Now().UTC().Format(time.RFC3339),
		Plan:    plan,
	}
	if err := writeJSON(path, f); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

// LoadPlan reads a plan saved by SavePlan.
func LoadPlan(path string) (model.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Plan{}, fmt.Errorf("failed to read plan file: %w", err)
	}
	var f planFile
	if err := json.Unmarshal(data, &f); err != nil {
		return model.Plan{}, fmt.Errorf("failed to parse plan file: %w", err)
	}
	if f.Version == "" {
		return model.Plan{}, fmt.Errorf("invalid plan file: missing version field")
	}
	if f.Version != planFormatVersion {
		return model.Plan{}, fmt.Errorf("unsupported plan file version %q", f.Version)
	}
	return f.Plan, nil
}
