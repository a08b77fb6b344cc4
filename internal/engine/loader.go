package engine

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/PalletLoad/internal/model"
)

// Loader runs the greedy pallet-into-container heuristic.
type Loader struct {
	Settings model.LoadSettings
}

func New(settings model.LoadSettings) *Loader {
	return &Loader{Settings: settings}
}

// Load places pallets into the given containers and returns the placements
// together with the demand that could not be placed. Infeasible demand is part
// of the result, not an error; only invalid input fails the call.
func (l *Loader) Load(containers []model.ContainerType, pallets []model.PalletType) (model.LoadResult, error) {
	return l.LoadContext(context.Background(), containers, pallets)
}

// LoadContext is Load with cancellation. The context is checked between
// passes; when it is done the placements committed so far are returned along
// with the context's error.
func (l *Loader) LoadContext(ctx context.Context, containers []model.ContainerType, pallets []model.PalletType) (model.LoadResult, error) {
	if err := l.validate(containers, pallets); err != nil {
		return model.LoadResult{}, err
	}

	// Largest pallets are offered first to every free box.
	candidates := make([]palletCandidate, 0, len(pallets))
	for _, p := range pallets {
		candidates = append(candidates, palletCandidate{pallet: p, orientations: Orientations(p)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].pallet.Volume() > candidates[j].pallet.Volume()
	})

	d := newDemand(pallets)
	agg := newAggregator()

	for _, inst := range ExpandContainers(containers) {
		if d.total == 0 {
			break
		}
		items, err := l.fillInstance(ctx, inst, candidates, d)
		agg.addInstance(inst, items)
		if err != nil {
			return agg.result(d), err
		}
	}

	return agg.result(d), nil
}

func (l *Loader) validate(containers []model.ContainerType, pallets []model.PalletType) error {
	if l.Settings.StackCap < 0 {
		return fmt.Errorf("%w: negative stack cap %d", model.ErrInvalidInput, l.Settings.StackCap)
	}

	seenPallets := make(map[string]bool, len(pallets))
	for _, p := range pallets {
		if err := p.Validate(); err != nil {
			return err
		}
		if seenPallets[p.ID] {
			return fmt.Errorf("%w: duplicate pallet id %q", model.ErrInvalidInput, p.ID)
		}
		seenPallets[p.ID] = true
	}

	seenContainers := make(map[string]bool, len(containers))
	for _, c := range containers {
		if err := c.Validate(); err != nil {
			return err
		}
		if seenContainers[c.ID] {
			return fmt.Errorf("%w: duplicate container id %q", model.ErrInvalidInput, c.ID)
		}
		seenContainers[c.ID] = true
	}
	return nil
}

// palletCandidate caches the orientations of a pallet type for one run.
type palletCandidate struct {
	pallet       model.PalletType
	orientations []model.Dims
}

// demand tracks the remaining units per pallet type.
type demand struct {
	remaining map[string]int
	total     int
}

func newDemand(pallets []model.PalletType) *demand {
	d := &demand{remaining: make(map[string]int, len(pallets))}
	for _, p := range pallets {
		d.remaining[p.ID] = p.Quantity
		d.total += p.Quantity
	}
	return d
}

func (d *demand) take(id string, n int) {
	d.remaining[id] -= n
	d.total -= n
}

// placement is the best candidate found for one free box.
type placement struct {
	pallet model.PalletType
	dims   model.Dims
	stack  int
	score  float64
}

// fillInstance runs placement passes over one container instance until a pass
// places nothing or all demand is met.
func (l *Loader) fillInstance(ctx context.Context, inst model.ContainerInstance, candidates []palletCandidate, d *demand) ([]model.PlacedItem, error) {
	var items []model.PlacedItem
	free := newLedger(inst.Type)
	row, col := 1, 1

	for d.total > 0 {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		free.sortBottomUp()
		placedAny := false

		i := 0
		for i < free.len() && d.total > 0 {
			box := free.at(i)
			best, ok := l.bestFor(box, candidates, d)
			if !ok {
				i++
				continue
			}

			item := model.PlacedItem{
				ContainerInstanceID: inst.InstanceID,
				PalletTypeID:        best.pallet.ID,
				X:                   box.X,
				Y:                   box.Y,
				Z:                   box.Z,
				L:                   best.dims.L,
				W:                   best.dims.W,
				H:                   best.dims.H * float64(best.stack),
				Row:                 row,
				Col:                 col,
				Layer:               int(math.Floor(box.Z/math.Max(best.dims.H, 1))) + 1,
				StackCount:          best.stack,
				Stacked:             best.stack > 1,
			}
			if collides(item.Box(), items, inst.Type) {
				i++
				continue
			}

			items = append(items, item)
			d.take(best.pallet.ID, best.stack)
			// The residuals go to the back; index i now holds the next box.
			free.consume(i, item.Box())
			placedAny = true
			col++
		}

		if !placedAny {
			break
		}
		row++
		col = 1
	}

	return items, nil
}

// bestFor scores every fitting orientation of every pallet with demand left
// and returns the one that fills the most of the box. Ties keep the earlier
// pallet and orientation.
func (l *Loader) bestFor(box model.FreeBox, candidates []palletCandidate, d *demand) (placement, bool) {
	boxVolume := box.Volume()
	if boxVolume <= 0 {
		return placement{}, false
	}

	var best placement
	found := false
	for _, c := range candidates {
		req := d.remaining[c.pallet.ID]
		if req <= 0 {
			continue
		}
		for _, o := range c.orientations {
			if !box.Fits(o) {
				continue
			}
			stack := l.stackCount(box, o, req)
			if stack <= 0 {
				continue
			}
			score := o.Volume() * float64(stack) / boxVolume
			if !found || score > best.score {
				best = placement{pallet: c.pallet, dims: o, stack: stack, score: score}
				found = true
			}
		}
	}
	return best, found
}

// stackCount returns how many units of orientation o can be stacked in the box,
// bounded by free height, remaining demand and the configured cap.
func (l *Loader) stackCount(box model.FreeBox, o model.Dims, req int) int {
	byHeight := int(math.Floor(box.H / o.H))
	stack := min(byHeight, req)
	if l.Settings.StackCap > 0 {
		stack = min(stack, l.Settings.StackCap)
	}
	return stack
}

// collides reports whether the candidate leaves the container or overlaps a
// stack already placed in it.
func collides(candidate model.Box, placed []model.PlacedItem, c model.ContainerType) bool {
	if !within(candidate, c.Length, c.Width, c.Height) {
		return true
	}
	for _, p := range placed {
		pb := p.Box()
		// Stacks entirely above or below cannot overlap.
		if pb.Z >= candidate.Z+candidate.H || pb.Z+pb.H <= candidate.Z {
			continue
		}
		if Overlaps(candidate, pb) {
			return true
		}
	}
	return false
}
