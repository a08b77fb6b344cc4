package engine

import "github.com/piwi3910/PalletLoad/internal/model"

// aggregator concatenates per-instance placements into one result.
type aggregator struct {
	placements []model.PlacedItem
	containers []model.ContainerUsage
}

func newAggregator() *aggregator {
	return &aggregator{
		placements: make([]model.PlacedItem, 0),
		containers: make([]model.ContainerUsage, 0),
	}
}

// addInstance records the placements made in one instance. Instances that
// received nothing are left out of the usage list.
func (a *aggregator) addInstance(inst model.ContainerInstance, items []model.PlacedItem) {
	if len(items) == 0 {
		return
	}
	a.placements = append(a.placements, items...)

	usage := model.ContainerUsage{
		InstanceID: inst.InstanceID,
		TypeID:     inst.Type.ID,
		Category:   inst.Type.Category,
		Length:     inst.Type.Length,
		Width:      inst.Type.Width,
		Height:     inst.Type.Height,
	}
	for _, it := range items {
		usage.Stacks++
		usage.Units += it.StackCount
		usage.UsedVolume += it.Volume()
	}
	a.containers = append(a.containers, usage)
}

func (a *aggregator) result(d *demand) model.LoadResult {
	remaining := make(map[string]int, len(d.remaining))
	for id, n := range d.remaining {
		remaining[id] = n
	}
	return model.LoadResult{
		Placements: a.placements,
		Remaining:  remaining,
		Containers: a.containers,
	}
}
