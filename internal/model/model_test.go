package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Validation Tests ───────────────────────────────────────

func TestPalletTypeValidate(t *testing.T) {
	assert.NoError(t, NewPalletType("P1", 120, 80, 100, 0).Validate())

	bad := []PalletType{
		NewPalletType("", 120, 80, 100, 1),
		NewPalletType("P", 0, 80, 100, 1),
		NewPalletType("P", 120, -1, 100, 1),
		NewPalletType("P", 120, 80, math.Inf(1), 1),
		NewPalletType("P", 120, 80, math.NaN(), 1),
		NewPalletType("P", 120, 80, 100, -1),
	}
	for _, p := range bad {
		err := p.Validate()
		require.Error(t, err, "%+v", p)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	}
}

func TestContainerTypeValidate(t *testing.T) {
	assert.NoError(t, NewContainerType("C1", "40ft", 1200, 230, 240, 1).Validate())

	err := NewContainerType("C1", "40ft", 1200, 230, 0, 1).Validate()
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "C1")

	assert.ErrorIs(t, NewContainerType("", "", 1, 1, 1, 1).Validate(), ErrInvalidInput)
	assert.ErrorIs(t, NewContainerType("C", "", 1, 1, 1, -1).Validate(), ErrInvalidInput)
}

// ─── Geometry Helper Tests ──────────────────────────────────

func TestFreeBoxVolume(t *testing.T) {
	assert.Equal(t, 6.0, FreeBox{L: 1, W: 2, H: 3}.Volume())
	assert.Equal(t, 0.0, FreeBox{L: 1, W: 0, H: 3}.Volume())
	assert.Equal(t, 0.0, FreeBox{L: -1, W: 2, H: 3}.Volume(), "negative extents clamp to zero")
}

func TestFreeBoxFits(t *testing.T) {
	box := FreeBox{L: 100, W: 50, H: 20}
	assert.True(t, box.Fits(Dims{L: 100, W: 50, H: 20}))
	assert.False(t, box.Fits(Dims{L: 50, W: 100, H: 20}))
}

func TestInstanceID(t *testing.T) {
	assert.Equal(t, "C1-3", InstanceID("C1", 3))
}

func TestPlacedItemLabel(t *testing.T) {
	item := PlacedItem{PalletTypeID: "P7", StackCount: 2, L: 10, W: 10, H: 20}
	assert.Equal(t, "P7-X2", item.Label())
	assert.Equal(t, 2000.0, item.Volume())
	assert.Equal(t, Box{L: 10, W: 10, H: 20}, item.Box())
}

// ─── LoadResult Tests ───────────────────────────────────────

func TestLoadResultTotals(t *testing.T) {
	r := LoadResult{
		Placements: []PlacedItem{
			{ContainerInstanceID: "C1-1", PalletTypeID: "A", StackCount: 2},
			{ContainerInstanceID: "C1-2", PalletTypeID: "B", StackCount: 1},
			{ContainerInstanceID: "C1-1", PalletTypeID: "A", StackCount: 1},
		},
		Remaining: map[string]int{"A": 1, "B": 0, "C": 4},
		Containers: []ContainerUsage{
			{InstanceID: "C1-1", Length: 10, Width: 10, Height: 10, UsedVolume: 500},
			{InstanceID: "C1-2", Length: 10, Width: 10, Height: 10, UsedVolume: 250},
		},
	}

	assert.Equal(t, 4, r.PlacedUnits())
	assert.Equal(t, 5, r.UnplacedUnits())
	assert.Equal(t, map[string]int{"A": 3, "B": 1}, r.PlacedByPallet())
	assert.Len(t, r.PlacementsFor("C1-1"), 2)
	assert.Empty(t, r.PlacementsFor("C9-1"))
	assert.InDelta(t, 50.0, r.Containers[0].Utilization(), 1e-9)
	assert.InDelta(t, 37.5, r.TotalUtilization(), 1e-9)
}

func TestLoadResultEmpty(t *testing.T) {
	var r LoadResult
	assert.Equal(t, 0, r.PlacedUnits())
	assert.Equal(t, 0.0, r.TotalUtilization())
	assert.Equal(t, 0.0, ContainerUsage{}.Utilization())
}

// ─── Catalog Tests ──────────────────────────────────────────

func TestDefaultCatalog(t *testing.T) {
	cat := DefaultCatalog()
	require.Len(t, cat.Containers, 3)

	c3 := cat.FindByID("C3")
	require.NotNil(t, c3)
	assert.Equal(t, "40ft HC", c3.Category)
	assert.Equal(t, 270.0, c3.Height)
	assert.Nil(t, cat.FindByID("C9"))
}

func TestCatalogAddReplacesByID(t *testing.T) {
	cat := DefaultCatalog()
	cat.Add(NewContainerType("C2", "20ft", 590, 235, 239, 1))
	cat.Add(NewContainerType("R1", "reefer", 1150, 228, 225, 1))

	require.Len(t, cat.Containers, 4)
	assert.Equal(t, 590.0, cat.FindByID("C2").Length)
	assert.True(t, cat.Remove("R1"))
	assert.False(t, cat.Remove("R1"))
}

func TestCatalogSelect(t *testing.T) {
	cat := DefaultCatalog()

	selected, unknown := cat.Select([]string{"C3", "X", "C1"}, 0)
	assert.Equal(t, []string{"X"}, unknown)
	require.Len(t, selected, 2)
	assert.Equal(t, "C1", selected[0].ID, "selection comes back in catalog order")
	assert.Equal(t, "C3", selected[1].ID)
	for _, ct := range selected {
		assert.Equal(t, 1, ct.Quantity)
	}
}

func TestCatalogSelectLimit(t *testing.T) {
	cat := DefaultCatalog()
	cat.Add(NewContainerType("C4", "45ft", 1350, 230, 270, 1))

	selected, unknown := cat.Select([]string{"C4", "C2", "C3", "C1"}, 3)
	assert.Empty(t, unknown)
	ids := make([]string, 0, len(selected))
	for _, ct := range selected {
		ids = append(ids, ct.ID)
	}
	assert.Equal(t, []string{"C2", "C3", "C4"}, ids, "C1 was beyond the limit")
}
