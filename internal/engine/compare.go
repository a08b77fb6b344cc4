package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/PalletLoad/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.LoadSettings
}

// ComparisonResult holds the load result and computed statistics
// for a single scenario.
type ComparisonResult struct {
	Scenario       ComparisonScenario
	Result         model.LoadResult
	ContainersUsed int
	PlacedUnits    int
	UnplacedUnits  int
	Utilization    float64
}

// CompareScenarios loads the same input once per scenario and returns the
// results in scenario order. The first invalid-input error aborts the comparison.
func CompareScenarios(scenarios []ComparisonScenario, containers []model.ContainerType, pallets []model.PalletType) ([]ComparisonResult, error) {
	return CompareScenariosContext(context.Background(), scenarios, containers, pallets)
}

// CompareScenariosContext is CompareScenarios bounded by ctx. A cancelled
// context stops the comparison with the scenarios completed so far.
func CompareScenariosContext(ctx context.Context, scenarios []ComparisonScenario, containers []model.ContainerType, pallets []model.PalletType) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		result, err := New(scenario.Settings).LoadContext(ctx, containers, pallets)
		if err != nil {
			return results, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		results = append(results, ComparisonResult{
			Scenario:       scenario,
			Result:         result,
			ContainersUsed: len(result.Containers),
			PlacedUnits:    result.PlacedUnits(),
			UnplacedUnits:  result.UnplacedUnits(),
			Utilization:    result.TotalUtilization(),
		})
	}

	return results, nil
}

// BuildDefaultScenarios generates what-if alternatives around the current
// settings by varying the stack cap.
func BuildDefaultScenarios(baseSettings model.LoadSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: baseSettings,
		},
	}

	// No stacking at all
	if baseSettings.StackCap != 1 {
		single := baseSettings
		single.StackCap = 1
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "No Stacking",
			Settings: single,
		})
	}

	// Double the cap
	if baseSettings.StackCap > 0 {
		doubled := baseSettings
		doubled.StackCap = baseSettings.StackCap * 2
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Stack Cap %d", doubled.StackCap),
			Settings: doubled,
		})

		// Height is the only limit
		unbounded := baseSettings
		unbounded.StackCap = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Unlimited Stacking",
			Settings: unbounded,
		})
	}

	return scenarios
}
