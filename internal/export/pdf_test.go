package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/PalletLoad/internal/model"
)

// buildTestResult creates a realistic two-container load result for testing.
func buildTestResult() model.LoadResult {
	return model.LoadResult{
		RunID: "run-1",
		Placements: []model.PlacedItem{
			{ContainerInstanceID: "C1-1", PalletTypeID: "EUR", X: 0, Y: 0, Z: 0, L: 120, W: 80, H: 200,
				Row: 1, Col: 1, Layer: 1, StackCount: 2, Stacked: true},
			{ContainerInstanceID: "C1-1", PalletTypeID: "EUR", X: 120, Y: 0, Z: 0, L: 120, W: 80, H: 200,
				Row: 1, Col: 2, Layer: 1, StackCount: 2, Stacked: true},
			{ContainerInstanceID: "C1-1", PalletTypeID: "HALF", X: 0, Y: 0, Z: 200, L: 80, W: 60, H: 35,
				Row: 2, Col: 1, Layer: 5, StackCount: 1},
			{ContainerInstanceID: "C2-1", PalletTypeID: "US", X: 0, Y: 0, Z: 0, L: 120, W: 100, H: 110,
				Row: 1, Col: 1, Layer: 1, StackCount: 1},
		},
		Remaining: map[string]int{"EUR": 0, "HALF": 0, "US": 0},
		Containers: []model.ContainerUsage{
			{InstanceID: "C1-1", TypeID: "C1", Category: "40ft", Length: 1200, Width: 230, Height: 240,
				Stacks: 3, Units: 5, UsedVolume: 120*80*200*2 + 80*60*35},
			{InstanceID: "C2-1", TypeID: "C2", Category: "20ft", Length: 600, Width: 230, Height: 240,
				Stacks: 1, Units: 1, UsedVolume: 120 * 100 * 110},
		},
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.pdf")

	if err := ExportPDF(path, buildTestResult(), model.LoadSettings{StackCap: 2}); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	// Two container pages plus the summary page
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestWritePDF_WithUnplacedPallets(t *testing.T) {
	result := buildTestResult()
	result.Remaining["TOO-BIG"] = 3

	var buf bytes.Buffer
	if err := WritePDF(&buf, result, model.DefaultSettings()); err != nil {
		t.Fatalf("WritePDF returned error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}
}

func TestExportPDF_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	err := ExportPDF(path, model.LoadResult{Remaining: map[string]int{"P": 1}}, model.DefaultSettings())
	if !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("no file should be written for an empty result")
	}
}

func TestColorsByPallet_SortedAndStable(t *testing.T) {
	colors, ids := colorsByPallet(buildTestResult())

	want := []string{"EUR", "HALF", "US"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %v", len(want), ids)
	}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("expected id %s at %d, got %s", id, i, ids[i])
		}
		if colors[id] != palletColors[i] {
			t.Errorf("pallet %s got colour %v, want %v", id, colors[id], palletColors[i])
		}
	}
}

func TestUnplacedIDs(t *testing.T) {
	result := model.LoadResult{Remaining: map[string]int{"b": 2, "a": 1, "c": 0}}
	got := unplacedIDs(result)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("unexpected unplaced ids: %v", got)
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want float64
	}{
		{50, 50, 8},
		{30, 100, 7},
		{10, 10, 6},
	}
	for _, tt := range tests {
		if got := labelFontSize(tt.w, tt.h); got != tt.want {
			t.Errorf("labelFontSize(%.0f, %.0f) = %.0f, want %.0f", tt.w, tt.h, got, tt.want)
		}
	}
}
