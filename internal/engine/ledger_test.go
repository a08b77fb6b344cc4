package engine

import (
	"testing"

	"github.com/piwi3910/PalletLoad/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_ThreeResiduals(t *testing.T) {
	box := model.FreeBox{X: 0, Y: 0, Z: 0, L: 1000, W: 500, H: 300}
	item := model.Box{X: 0, Y: 0, Z: 0, L: 200, W: 100, H: 120}

	got := Split(box, item)

	require.Len(t, got, 3)
	assert.Equal(t, model.FreeBox{X: 200, Y: 0, Z: 0, L: 800, W: 500, H: 300}, got[0], "right")
	assert.Equal(t, model.FreeBox{X: 0, Y: 100, Z: 0, L: 1000, W: 400, H: 300}, got[1], "front")
	assert.Equal(t, model.FreeBox{X: 0, Y: 0, Z: 120, L: 1000, W: 500, H: 180}, got[2], "above")
}

func TestSplit_OffsetBox(t *testing.T) {
	box := model.FreeBox{X: 100, Y: 50, Z: 20, L: 300, W: 200, H: 100}
	item := model.Box{X: 100, Y: 50, Z: 20, L: 100, W: 200, H: 40}

	got := Split(box, item)

	require.Len(t, got, 2, "no front residual when the item spans the full width")
	assert.Equal(t, model.FreeBox{X: 200, Y: 50, Z: 20, L: 200, W: 200, H: 100}, got[0])
	assert.Equal(t, model.FreeBox{X: 100, Y: 50, Z: 60, L: 300, W: 200, H: 60}, got[1])
}

func TestSplit_ExactFitLeavesNothing(t *testing.T) {
	box := model.FreeBox{L: 100, W: 100, H: 100}
	item := model.Box{L: 100, W: 100, H: 100}
	assert.Empty(t, Split(box, item))
}

func TestLedger_SortBottomUp(t *testing.T) {
	l := &ledger{free: []model.FreeBox{
		{X: 0, Y: 0, Z: 100, L: 1, W: 1, H: 1},
		{X: 50, Y: 0, Z: 0, L: 1, W: 1, H: 1},
		{X: 0, Y: 20, Z: 0, L: 1, W: 1, H: 1},
		{X: 0, Y: 0, Z: 0, L: 1, W: 1, H: 1},
		{X: 0, Y: 0, Z: 0, L: 2, W: 2, H: 2},
	}}

	l.sortBottomUp()

	assert.Equal(t, model.FreeBox{X: 0, Y: 0, Z: 0, L: 1, W: 1, H: 1}, l.at(0))
	assert.Equal(t, model.FreeBox{X: 0, Y: 0, Z: 0, L: 2, W: 2, H: 2}, l.at(1), "equal corners keep insertion order")
	assert.Equal(t, 50.0, l.at(2).X)
	assert.Equal(t, 20.0, l.at(3).Y)
	assert.Equal(t, 100.0, l.at(4).Z)
}

func TestLedger_ConsumeAppendsResiduals(t *testing.T) {
	l := newLedger(model.NewContainerType("C", "", 300, 100, 100, 1))
	require.Equal(t, 1, l.len())

	l.consume(0, model.Box{L: 100, W: 100, H: 100})

	require.Equal(t, 1, l.len())
	assert.Equal(t, model.FreeBox{X: 100, L: 200, W: 100, H: 100}, l.at(0))
}

// ─── Expander Tests ─────────────────────────────────────────

func TestExpandContainers_OrdersByVolume(t *testing.T) {
	types := []model.ContainerType{
		model.NewContainerType("A", "", 100, 100, 100, 2),
		model.NewContainerType("B", "", 200, 200, 200, 1),
		model.NewContainerType("C", "", 100, 100, 100, 1),
	}

	got := ExpandContainers(types)

	ids := make([]string, 0, len(got))
	for _, inst := range got {
		ids = append(ids, inst.InstanceID)
	}
	assert.Equal(t, []string{"B-1", "A-1", "A-2", "C-1"}, ids)
	assert.Equal(t, "A", got[1].Type.ID)
}

func TestExpandContainers_ZeroQuantity(t *testing.T) {
	got := ExpandContainers([]model.ContainerType{model.NewContainerType("A", "", 1, 1, 1, 0)})
	assert.Empty(t, got)
}
