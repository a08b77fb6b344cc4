package export

import (
	"fmt"
	"io"

	"github.com/piwi3910/PalletLoad/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	sheetPlacements = "Placements"
	sheetContainers = "Containers"
	sheetRemaining  = "Remaining"
)

// ExportXLSX writes the load plan as an Excel workbook to path.
func ExportXLSX(path string, result model.LoadResult) error {
	f, err := buildWorkbook(result)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

// WriteXLSX writes the load plan workbook to w.
func WriteXLSX(w io.Writer, result model.LoadResult) error {
	f, err := buildWorkbook(result)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// buildWorkbook lays the plan out on three sheets: one row per placed stack,
// one row per used container and one row per pallet type with demand left.
func buildWorkbook(result model.LoadResult) (*excelize.File, error) {
	if len(result.Placements) == 0 && result.UnplacedUnits() == 0 {
		return nil, fmt.Errorf("%w: empty load result", ErrNothingToExport)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetPlacements); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	for _, name := range []string{sheetContainers, sheetRemaining} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E6E6E6"}},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	placementRows := [][]interface{}{{
		"Container", "Pallet", "Label", "X", "Y", "Z", "L", "W", "H", "Row", "Col", "Layer", "Stack", "Stacked",
	}}
	for _, p := range result.Placements {
		placementRows = append(placementRows, []interface{}{
			p.ContainerInstanceID, p.PalletTypeID, p.Label(),
			p.X, p.Y, p.Z, p.L, p.W, p.H,
			p.Row, p.Col, p.Layer, p.StackCount, p.Stacked,
		})
	}

	containerRows := [][]interface{}{{
		"Instance", "Type", "Category", "Length", "Width", "Height", "Stacks", "Pallets", "Utilization %",
	}}
	for _, c := range result.Containers {
		containerRows = append(containerRows, []interface{}{
			c.InstanceID, c.TypeID, c.Category, c.Length, c.Width, c.Height,
			c.Stacks, c.Units, roundPercent(c.Utilization()),
		})
	}

	remainingRows := [][]interface{}{{"Pallet", "Remaining"}}
	for _, id := range unplacedIDs(result) {
		remainingRows = append(remainingRows, []interface{}{id, result.Remaining[id]})
	}

	for _, s := range []struct {
		name string
		rows [][]interface{}
	}{
		{sheetPlacements, placementRows},
		{sheetContainers, containerRows},
		{sheetRemaining, remainingRows},
	} {
		if err := writeRows(f, s.name, s.rows, header); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return f.SetColWidth(sheet, "A", "C", 14)
}

func roundPercent(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
