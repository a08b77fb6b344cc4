package importer

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/piwi3910/PalletLoad/internal/model"
	"gopkg.in/yaml.v3"
)

// palletFile is the YAML layout of a pallet list:
//
//	pallets:
//	  - id: P1
//	    length: 120
//	    width: 80
//	    height: 100
//	    quantity: 10
type palletFile struct {
	Pallets []model.PalletType `yaml:"pallets"`
}

// ImportYAML imports pallets from a YAML file.
func ImportYAML(path string) ImportResult {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	defer f.Close()
	return ImportYAMLFromReader(f)
}

// ImportYAMLFromReader imports pallets from YAML content. Entries are checked
// with the same rules as spreadsheet rows.
func ImportYAMLFromReader(r io.Reader) ImportResult {
	var doc palletFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return ImportResult{Errors: []string{"File is empty"}}
		}
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read YAML: %v", err)}}
	}

	result := ImportResult{}
	seen := make(map[string]bool)
	for i, p := range doc.Pallets {
		entry := fmt.Sprintf("Entry %d", i+1)
		if p.ID == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: Missing ID, skipping", entry))
			continue
		}
		if err := p.Validate(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry, err))
			continue
		}
		if seen[p.ID] {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Duplicate ID '%s'", entry, p.ID))
			continue
		}
		seen[p.ID] = true
		result.Pallets = append(result.Pallets, p)
	}
	if len(doc.Pallets) == 0 {
		result.Errors = append(result.Errors, "No pallets found")
	}
	return result
}
