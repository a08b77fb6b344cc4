package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/PalletLoad/internal/model"
)

// DefaultCatalogPath returns ~/.palletload/catalog.json.
func DefaultCatalogPath() string {
	return filepath.Join(DefaultConfigDir(), "catalog.json")
}

// SaveCatalog writes the container catalog to path.
func SaveCatalog(path string, cat model.ContainerCatalog) error {
	return writeJSON(path, cat)
}

// LoadCatalog reads the container catalog from path. A missing file yields
// the built-in catalog. Every entry is validated so a hand-edited file cannot
// feed bad dimensions into a run.
func LoadCatalog(path string) (model.ContainerCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultCatalog(), nil
		}
		return model.ContainerCatalog{}, err
	}
	var cat model.ContainerCatalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return model.ContainerCatalog{}, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	for _, ct := range cat.Containers {
		if err := ct.Validate(); err != nil {
			return model.ContainerCatalog{}, fmt.Errorf("catalog %s: %w", path, err)
		}
	}
	return cat, nil
}

// ImportCatalog merges container types from a JSON file into an existing
// catalog. Types whose ID already exists are skipped.
func ImportCatalog(path string, existing model.ContainerCatalog) (model.ContainerCatalog, error) {
	imported, err := LoadCatalog(path)
	if err != nil {
		return existing, err
	}
	for _, ct := range imported.Containers {
		if existing.FindByID(ct.ID) == nil {
			existing.Containers = append(existing.Containers, ct)
		}
	}
	return existing, nil
}
