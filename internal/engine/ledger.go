package engine

import (
	"sort"

	"github.com/piwi3910/PalletLoad/internal/model"
)

// Split returns the free space left in a free box after an item has been
// placed flush against the box's minimum corner. Each residual spans the
// leftover on one axis and the box's full extent on the other two:
//
//	right: beyond the item along x
//	front: beyond the item along y
//	above: beyond the item along z
//
// Residuals with no volume are dropped. The residuals overlap each other;
// collision checks against placed items decide what can really be used.
func Split(box model.FreeBox, item model.Box) []model.FreeBox {
	var out []model.FreeBox

	if rightL := (box.X + box.L) - (item.X + item.L); rightL > 0 {
		out = append(out, model.FreeBox{
			X: item.X + item.L, Y: box.Y, Z: box.Z,
			L: rightL, W: box.W, H: box.H,
		})
	}
	if frontW := (box.Y + box.W) - (item.Y + item.W); frontW > 0 {
		out = append(out, model.FreeBox{
			X: box.X, Y: item.Y + item.W, Z: box.Z,
			L: box.L, W: frontW, H: box.H,
		})
	}
	if aboveH := (box.Z + box.H) - (item.Z + item.H); aboveH > 0 {
		out = append(out, model.FreeBox{
			X: box.X, Y: box.Y, Z: item.Z + item.H,
			L: box.L, W: box.W, H: aboveH,
		})
	}

	kept := out[:0]
	for _, b := range out {
		if b.Volume() > 0 {
			kept = append(kept, b)
		}
	}
	return kept
}

// ledger tracks the free boxes of one container instance.
type ledger struct {
	free []model.FreeBox
}

func newLedger(c model.ContainerType) *ledger {
	return &ledger{
		free: []model.FreeBox{{L: c.Length, W: c.Width, H: c.Height}},
	}
}

// sortBottomUp orders the boxes lowest first, then frontmost, then leftmost.
// The sort is stable so equal corners keep their insertion order.
func (l *ledger) sortBottomUp() {
	sort.SliceStable(l.free, func(i, j int) bool {
		a, b := l.free[i], l.free[j]
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}

// consume removes the box at index i and appends its residuals around item.
func (l *ledger) consume(i int, item model.Box) {
	box := l.free[i]
	l.free = append(l.free[:i], l.free[i+1:]...)
	l.free = append(l.free, Split(box, item)...)
}

func (l *ledger) len() int {
	return len(l.free)
}

func (l *ledger) at(i int) model.FreeBox {
	return l.free[i]
}
