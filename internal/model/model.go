package model

import (
	"fmt"
	"math"
)

// PalletType is a kind of pallet to be loaded, with its demanded quantity.
// The quantity is the requested demand; remaining demand is tracked by the engine.
type PalletType struct {
	ID       string  `json:"id" yaml:"id"`
	Length   float64 `json:"length" yaml:"length"` // cm
	Width    float64 `json:"width" yaml:"width"`   // cm
	Height   float64 `json:"height" yaml:"height"` // cm
	Quantity int     `json:"quantity" yaml:"quantity"`
}

func NewPalletType(id string, l, w, h float64, qty int) PalletType {
	return PalletType{ID: id, Length: l, Width: w, Height: h, Quantity: qty}
}

// Volume returns the volume of a single unit.
func (p PalletType) Volume() float64 {
	return p.Length * p.Width * p.Height
}

// Validate reports ErrInvalidInput for a missing id, a non-positive or
// non-finite dimension, or a negative quantity.
func (p PalletType) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: pallet without id", ErrInvalidInput)
	}
	if !positive(p.Length) || !positive(p.Width) || !positive(p.Height) {
		return fmt.Errorf("%w: pallet %q has non-positive dimensions %gx%gx%g",
			ErrInvalidInput, p.ID, p.Length, p.Width, p.Height)
	}
	if p.Quantity < 0 {
		return fmt.Errorf("%w: pallet %q has negative quantity %d", ErrInvalidInput, p.ID, p.Quantity)
	}
	return nil
}

// ContainerType is a kind of container with the number of physical units available.
type ContainerType struct {
	ID       string  `json:"id" yaml:"id"`
	Length   float64 `json:"length" yaml:"length"` // interior, cm
	Width    float64 `json:"width" yaml:"width"`   // interior, cm
	Height   float64 `json:"height" yaml:"height"` // interior, cm
	Quantity int     `json:"quantity" yaml:"quantity"`
	Category string  `json:"category" yaml:"category"` // free-text label, e.g. "40ft"
}

func NewContainerType(id, category string, l, w, h float64, qty int) ContainerType {
	return ContainerType{ID: id, Category: category, Length: l, Width: w, Height: h, Quantity: qty}
}

// Volume returns the interior volume.
func (c ContainerType) Volume() float64 {
	return c.Length * c.Width * c.Height
}

// Validate reports ErrInvalidInput for a missing id, a non-positive or
// non-finite dimension, or a negative quantity.
func (c ContainerType) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: container without id", ErrInvalidInput)
	}
	if !positive(c.Length) || !positive(c.Width) || !positive(c.Height) {
		return fmt.Errorf("%w: container %q has non-positive dimensions %gx%gx%g",
			ErrInvalidInput, c.ID, c.Length, c.Width, c.Height)
	}
	if c.Quantity < 0 {
		return fmt.Errorf("%w: container %q has negative quantity %d", ErrInvalidInput, c.ID, c.Quantity)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// ContainerInstance is one physical container of a ContainerType.
type ContainerInstance struct {
	Type       ContainerType `json:"type"`
	InstanceID string        `json:"instance_id"` // "{type.ID}-{n}", n starting at 1
}

// InstanceID builds the identifier of the n-th unit of a container type.
func InstanceID(typeID string, n int) string {
	return fmt.Sprintf("%s-%d", typeID, n)
}

// Dims is one orientation of a pallet: extents along the container's x, y and z axes.
type Dims struct {
	L float64 `json:"l"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Volume returns l*w*h.
func (d Dims) Volume() float64 {
	return d.L * d.W * d.H
}

// Box is an axis-aligned box: origin (x, y, z) and extents (l, w, h).
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	L float64 `json:"l"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// FreeBox is an empty region of a container instance available as a placement site.
type FreeBox Box

// Volume returns the product of the extents, or 0 if any extent is non-positive.
func (f FreeBox) Volume() float64 {
	return math.Max(f.L, 0) * math.Max(f.W, 0) * math.Max(f.H, 0)
}

// Fits reports whether an orientation fits inside the free box's extents.
func (f FreeBox) Fits(d Dims) bool {
	return d.L <= f.L && d.W <= f.W && d.H <= f.H
}

// PlacedItem is a committed placement of a stack of identical pallets.
type PlacedItem struct {
	ContainerInstanceID string  `json:"container_instance_id"`
	PalletTypeID        string  `json:"pallet_type_id"`
	X                   float64 `json:"x"`
	Y                   float64 `json:"y"`
	Z                   float64 `json:"z"`
	L                   float64 `json:"l"`
	W                   float64 `json:"w"`
	H                   float64 `json:"h"` // total stacked height
	Row                 int     `json:"row"`
	Col                 int     `json:"col"`
	Layer               int     `json:"layer"`
	StackCount          int     `json:"stack_count"`
	Stacked             bool    `json:"stacked"`
}

// Box returns the space occupied by the placed stack.
func (p PlacedItem) Box() Box {
	return Box{X: p.X, Y: p.Y, Z: p.Z, L: p.L, W: p.W, H: p.H}
}

// Volume returns the volume occupied by the placed stack.
func (p PlacedItem) Volume() float64 {
	return p.L * p.W * p.H
}

// Label is the text printed on layouts and labels, e.g. "P1-X2".
func (p PlacedItem) Label() string {
	return fmt.Sprintf("%s-X%d", p.PalletTypeID, p.StackCount)
}

// LoadSettings holds the engine's tunables.
type LoadSettings struct {
	// StackCap limits the pallets stacked on one footprint. 0 means no cap:
	// stacks are limited only by free height and remaining demand.
	StackCap int `json:"stack_cap" yaml:"stack_cap"`
}

func DefaultSettings() LoadSettings {
	return LoadSettings{StackCap: 0}
}

// ContainerUsage summarizes one container instance that received placements.
type ContainerUsage struct {
	InstanceID string  `json:"instance_id"`
	TypeID     string  `json:"type_id"`
	Category   string  `json:"category"`
	Length     float64 `json:"length"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Stacks     int     `json:"stacks"`
	Units      int     `json:"units"`
	UsedVolume float64 `json:"used_volume"`
}

// Volume returns the interior volume of the instance.
func (c ContainerUsage) Volume() float64 {
	return c.Length * c.Width * c.Height
}

// Utilization returns the used volume percentage.
func (c ContainerUsage) Utilization() float64 {
	v := c.Volume()
	if v == 0 {
		return 0
	}
	return (c.UsedVolume / v) * 100.0
}

// LoadResult holds the full solution of one run.
type LoadResult struct {
	RunID      string           `json:"run_id,omitempty"`
	Placements []PlacedItem     `json:"placements"`
	Remaining  map[string]int   `json:"remaining"`
	Containers []ContainerUsage `json:"containers"`
}

// PlacedUnits returns the number of pallets placed across all stacks.
func (r LoadResult) PlacedUnits() int {
	total := 0
	for _, p := range r.Placements {
		total += p.StackCount
	}
	return total
}

// UnplacedUnits returns the total remaining demand.
func (r LoadResult) UnplacedUnits() int {
	total := 0
	for _, n := range r.Remaining {
		total += n
	}
	return total
}

// PlacedByPallet returns placed units keyed by pallet type id.
func (r LoadResult) PlacedByPallet() map[string]int {
	out := make(map[string]int)
	for _, p := range r.Placements {
		out[p.PalletTypeID] += p.StackCount
	}
	return out
}

// PlacementsFor returns the placements of one container instance in placement order.
func (r LoadResult) PlacementsFor(instanceID string) []PlacedItem {
	var out []PlacedItem
	for _, p := range r.Placements {
		if p.ContainerInstanceID == instanceID {
			out = append(out, p)
		}
	}
	return out
}

// TotalUtilization returns the overall used volume percentage of the used containers.
func (r LoadResult) TotalUtilization() float64 {
	var used, total float64
	for _, c := range r.Containers {
		used += c.UsedVolume
		total += c.Volume()
	}
	if total == 0 {
		return 0
	}
	return (used / total) * 100.0
}

// Plan ties inputs, settings and the last result together for save/load.
type Plan struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Pallets    []PalletType    `json:"pallets"`
	Containers []ContainerType `json:"containers"`
	Settings   LoadSettings    `json:"settings"`
	Result     *LoadResult     `json:"result,omitempty"`
}
