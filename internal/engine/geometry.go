package engine

import (
	"math"

	"github.com/piwi3910/PalletLoad/internal/model"
)

// orientationPrecision is the number of decimals used to decide whether two
// orientations are the same.
const orientationPrecision = 3

// Orientations returns the distinct axis permutations of a pallet's
// dimensions in a fixed order. Permutations that are equal after rounding
// to three decimals collapse to the first one seen, so a cube yields one
// orientation and a box with three distinct sides yields six.
func Orientations(p model.PalletType) []model.Dims {
	l, w, h := p.Length, p.Width, p.Height
	candidates := [6]model.Dims{
		{L: l, W: w, H: h},
		{L: w, W: l, H: h},
		{L: l, W: h, H: w},
		{L: h, W: l, H: w},
		{L: w, W: h, H: l},
		{L: h, W: w, H: l},
	}

	type key struct{ l, w, h float64 }
	seen := make(map[key]bool, len(candidates))
	out := make([]model.Dims, 0, len(candidates))
	for _, c := range candidates {
		k := key{roundTo(c.L), roundTo(c.W), roundTo(c.H)}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out
}

func roundTo(v float64) float64 {
	scale := math.Pow(10, orientationPrecision)
	return math.Round(v*scale) / scale
}

// overlap1D reports whether the open intervals (a0, a1) and (b0, b1) intersect.
func overlap1D(a0, a1, b0, b1 float64) bool {
	return !(a1 <= b0 || b1 <= a0)
}

// Overlaps returns true if two boxes overlap on all three axes.
// Boxes that only touch along a face do not overlap.
func Overlaps(a, b model.Box) bool {
	return overlap1D(a.X, a.X+a.L, b.X, b.X+b.L) &&
		overlap1D(a.Y, a.Y+a.W, b.Y, b.Y+b.W) &&
		overlap1D(a.Z, a.Z+a.H, b.Z, b.Z+b.H)
}

// within returns true if inner lies entirely inside a container of the given extents.
func within(inner model.Box, length, width, height float64) bool {
	return inner.X >= 0 && inner.Y >= 0 && inner.Z >= 0 &&
		inner.X+inner.L <= length &&
		inner.Y+inner.W <= width &&
		inner.Z+inner.H <= height
}
