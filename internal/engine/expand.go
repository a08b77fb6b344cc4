package engine

import (
	"sort"

	"github.com/piwi3910/PalletLoad/internal/model"
)

// ExpandContainers turns container types into individually addressable
// instances, one per unit of quantity, and orders them by descending
// interior volume so the roomiest containers are filled first. Instances
// of equal volume keep their input order.
func ExpandContainers(types []model.ContainerType) []model.ContainerInstance {
	var instances []model.ContainerInstance
	for _, ct := range types {
		for n := 1; n <= ct.Quantity; n++ {
			instances = append(instances, model.ContainerInstance{
				Type:       ct,
				InstanceID: model.InstanceID(ct.ID, n),
			})
		}
	}

	sort.SliceStable(instances, func(i, j int) bool {
		return instances[i].Type.Volume() > instances[j].Type.Volume()
	})
	return instances
}
