package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/PalletLoad/internal/model"
)

// DefaultInventoryPath returns ~/.palletload/inventory.json.
func DefaultInventoryPath() string {
	return filepath.Join(DefaultConfigDir(), "inventory.json")
}

// SaveInventory writes the pallet presets to the specified JSON file.
func SaveInventory(path string, inv model.Inventory) error {
	return writeJSON(path, inv)
}

// LoadInventory reads the pallet presets from the specified JSON file.
// If the file does not exist, it returns the default inventory and saves it.
func LoadInventory(path string) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			inv := model.DefaultInventory()
			if saveErr := SaveInventory(path, inv); saveErr != nil {
				return inv, saveErr
			}
			return inv, nil
		}
		return model.Inventory{}, err
	}
	var inv model.Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return model.Inventory{}, err
	}
	return inv, nil
}

// ImportInventory merges presets from a JSON file into an existing inventory.
// Presets whose ID already exists are skipped.
func ImportInventory(path string, existing model.Inventory) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported model.Inventory
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}

	ids := make(map[string]bool, len(existing.Pallets))
	for _, p := range existing.Pallets {
		ids[p.ID] = true
	}
	for _, p := range imported.Pallets {
		if !ids[p.ID] {
			existing.Pallets = append(existing.Pallets, p)
			ids[p.ID] = true
		}
	}
	return existing, nil
}
