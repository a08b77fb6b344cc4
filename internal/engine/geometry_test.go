package engine

import (
	"testing"

	"github.com/piwi3910/PalletLoad/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Orientation Tests ──────────────────────────────────────

func TestOrientations_CubeCollapsesToOne(t *testing.T) {
	got := Orientations(model.NewPalletType("cube", 100, 100, 100, 1))
	require.Len(t, got, 1)
	assert.Equal(t, model.Dims{L: 100, W: 100, H: 100}, got[0])
}

func TestOrientations_DistinctSidesGiveSix(t *testing.T) {
	got := Orientations(model.NewPalletType("p", 120, 80, 50, 1))
	assert.Equal(t, []model.Dims{
		{L: 120, W: 80, H: 50},
		{L: 80, W: 120, H: 50},
		{L: 120, W: 50, H: 80},
		{L: 50, W: 120, H: 80},
		{L: 80, W: 50, H: 120},
		{L: 50, W: 80, H: 120},
	}, got)
}

func TestOrientations_TwoEqualSidesGiveThree(t *testing.T) {
	got := Orientations(model.NewPalletType("p", 100, 100, 50, 1))
	assert.Equal(t, []model.Dims{
		{L: 100, W: 100, H: 50},
		{L: 100, W: 50, H: 100},
		{L: 50, W: 100, H: 100},
	}, got)
}

func TestOrientations_RoundsBeforeComparing(t *testing.T) {
	// 100.0001 and 100 are the same length at three decimals
	got := Orientations(model.NewPalletType("p", 100.0001, 100, 100, 1))
	assert.Len(t, got, 1)
	assert.Equal(t, 100.0001, got[0].L, "first-seen permutation is kept verbatim")
}

// ─── Overlap Tests ──────────────────────────────────────────

func TestOverlaps(t *testing.T) {
	base := model.Box{X: 0, Y: 0, Z: 0, L: 100, W: 100, H: 100}

	tests := []struct {
		name  string
		other model.Box
		want  bool
	}{
		{"identical", base, true},
		{"partial overlap", model.Box{X: 50, Y: 50, Z: 50, L: 100, W: 100, H: 100}, true},
		{"contained", model.Box{X: 10, Y: 10, Z: 10, L: 10, W: 10, H: 10}, true},
		{"touching on x face", model.Box{X: 100, Y: 0, Z: 0, L: 50, W: 100, H: 100}, false},
		{"touching on y face", model.Box{X: 0, Y: 100, Z: 0, L: 100, W: 50, H: 100}, false},
		{"touching on z face", model.Box{X: 0, Y: 0, Z: 100, L: 100, W: 100, H: 50}, false},
		{"apart on x only", model.Box{X: 200, Y: 0, Z: 0, L: 10, W: 100, H: 100}, false},
		{"overlap on x and y but above", model.Box{X: 50, Y: 50, Z: 150, L: 10, W: 10, H: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(base, tt.other))
			assert.Equal(t, tt.want, Overlaps(tt.other, base), "overlap must be symmetric")
		})
	}
}

func TestWithin(t *testing.T) {
	assert.True(t, within(model.Box{X: 0, Y: 0, Z: 0, L: 600, W: 230, H: 240}, 600, 230, 240))
	assert.False(t, within(model.Box{X: 1, Y: 0, Z: 0, L: 600, W: 230, H: 240}, 600, 230, 240))
	assert.False(t, within(model.Box{X: -1, Y: 0, Z: 0, L: 10, W: 10, H: 10}, 600, 230, 240))
}
