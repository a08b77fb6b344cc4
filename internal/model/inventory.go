package model

import "github.com/google/uuid"

// PalletPreset is a reusable pallet footprint with a typical load height.
type PalletPreset struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewPalletPreset creates a new PalletPreset with a generated ID.
func NewPalletPreset(name string, length, width, height float64) PalletPreset {
	return PalletPreset{
		ID:     uuid.New().String()[:8],
		Name:   name,
		Length: length,
		Width:  width,
		Height: height,
	}
}

// ToPalletType converts a preset into a PalletType with the given id and quantity.
func (pp PalletPreset) ToPalletType(id string, qty int) PalletType {
	return NewPalletType(id, pp.Length, pp.Width, pp.Height, qty)
}

// Inventory holds the user's saved pallet presets.
type Inventory struct {
	Pallets []PalletPreset `json:"pallets"`
}

// DefaultInventory returns an inventory populated with common pallet sizes (cm).
func DefaultInventory() Inventory {
	return Inventory{
		Pallets: []PalletPreset{
			NewPalletPreset("EUR 1 (120x80)", 120, 80, 144),
			NewPalletPreset("EUR 2 (120x100)", 120, 100, 144),
			NewPalletPreset("EUR 6 (80x60)", 80, 60, 144),
			NewPalletPreset("GMA (48x40in)", 121.9, 101.6, 144),
			NewPalletPreset("Australian (116.5x116.5)", 116.5, 116.5, 144),
			NewPalletPreset("Asia (110x110)", 110, 110, 144),
		},
	}
}

// FindPalletByID returns a pointer to the preset with the given ID, or nil.
func (inv *Inventory) FindPalletByID(id string) *PalletPreset {
	for i := range inv.Pallets {
		if inv.Pallets[i].ID == id {
			return &inv.Pallets[i]
		}
	}
	return nil
}

// FindPalletByName returns a pointer to the first preset with the given name, or nil.
func (inv *Inventory) FindPalletByName(name string) *PalletPreset {
	for i := range inv.Pallets {
		if inv.Pallets[i].Name == name {
			return &inv.Pallets[i]
		}
	}
	return nil
}

// PalletNames returns the preset names in inventory order.
func (inv *Inventory) PalletNames() []string {
	names := make([]string, len(inv.Pallets))
	for i, p := range inv.Pallets {
		names[i] = p.Name
	}
	return names
}
