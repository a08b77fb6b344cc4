package engine

import (
	"context"
	"testing"

	"github.com/piwi3910/PalletLoad/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaultScenarios_Unbounded(t *testing.T) {
	scenarios := BuildDefaultScenarios(model.LoadSettings{StackCap: 0})

	require.Len(t, scenarios, 2)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, "No Stacking", scenarios[1].Name)
	assert.Equal(t, 1, scenarios[1].Settings.StackCap)
}

func TestBuildDefaultScenarios_Capped(t *testing.T) {
	scenarios := BuildDefaultScenarios(model.LoadSettings{StackCap: 2})

	names := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Current Settings", "No Stacking", "Stack Cap 4", "Unlimited Stacking"}, names)
	assert.Equal(t, 0, scenarios[3].Settings.StackCap)
}

func TestCompareScenarios(t *testing.T) {
	containers := []model.ContainerType{model.NewContainerType("C", "", 100, 100, 200, 1)}
	pallets := []model.PalletType{model.NewPalletType("P", 100, 100, 100, 2)}

	results, err := CompareScenarios(BuildDefaultScenarios(model.LoadSettings{StackCap: 1}), containers, pallets)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "Current Settings", results[0].Scenario.Name)
	assert.Len(t, results[0].Result.Placements, 2, "cap 1 places two single units")
	assert.Len(t, results[1].Result.Placements, 1, "cap 2 places one stack")
	for _, r := range results {
		assert.Equal(t, 2, r.PlacedUnits)
		assert.Equal(t, 0, r.UnplacedUnits)
		assert.Equal(t, 1, r.ContainersUsed)
		assert.InDelta(t, 100.0, r.Utilization, 1e-9)
	}
}

func TestCompareScenarios_InvalidInput(t *testing.T) {
	pallets := []model.PalletType{model.NewPalletType("P", 0, 100, 100, 2)}

	_, err := CompareScenarios(BuildDefaultScenarios(model.DefaultSettings()), nil, pallets)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestCompareScenariosContext_Cancelled(t *testing.T) {
	containers := []model.ContainerType{model.NewContainerType("C", "", 100, 100, 200, 1)}
	pallets := []model.PalletType{model.NewPalletType("P", 100, 100, 100, 2)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := CompareScenariosContext(ctx, BuildDefaultScenarios(model.LoadSettings{StackCap: 1}), containers, pallets)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}
