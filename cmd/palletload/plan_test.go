package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/piwi3910/PalletLoad/internal/model"
	"github.com/piwi3910/PalletLoad/internal/project"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testPlanOptions(t *testing.T, dir string) planOptions {
	t.Helper()
	return planOptions{
		PalletsFile:     writeFile(t, dir, "pallets.csv", "ID,L,W,H,Qty\nEUR,120,80,100,4\n,1,1,1,1\n"),
		StackCap:        -1,
		MaxContainers:   3,
		CatalogFile:     filepath.Join(dir, "catalog.json"),
		PreferencesFile: filepath.Join(dir, "config.json"),
		Logger:          zaptest.NewLogger(t),
	}
}

func TestRunPlanWritesExportsAndSummary(t *testing.T) {
	dir := t.TempDir()
	opts := testPlanOptions(t, dir)
	opts.ContainerIDs = []string{"C2"}
	opts.PDFPath = filepath.Join(dir, "out.pdf")
	opts.XLSXPath = filepath.Join(dir, "out.xlsx")
	opts.LabelsPath = filepath.Join(dir, "labels.pdf")
	opts.SavePath = filepath.Join(dir, "plan.json")
	opts.Compare = true

	var stdout, stderr bytes.Buffer
	require.NoError(t, runPlan(context.Background(), opts, &stdout, &stderr))

	out := stdout.String()
	assert.Contains(t, out, "Placed: 4")
	assert.Contains(t, out, "Unplaced: 0")
	assert.Contains(t, out, "C2-1")
	assert.Contains(t, out, "Current Settings")
	assert.Contains(t, stderr.String(), "Missing ID")

	for _, p := range []string{opts.PDFPath, opts.XLSXPath, opts.LabelsPath, opts.SavePath} {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}

	plan, err := project.LoadPlan(opts.SavePath)
	require.NoError(t, err)
	require.NotNil(t, plan.Result)
	assert.Equal(t, 4, plan.Result.PlacedUnits())

	prefs, err := project.LoadAppConfig(opts.PreferencesFile)
	require.NoError(t, err)
	assert.Equal(t, []string{opts.SavePath}, prefs.RecentPlans)
}

func TestRunPlanUsesPreferences(t *testing.T) {
	dir := t.TempDir()
	opts := testPlanOptions(t, dir)

	prefs := model.DefaultAppConfig()
	prefs.DefaultStackCap = 1
	prefs.DefaultContainers = []string{"C1"}
	require.NoError(t, project.SaveAppConfig(opts.PreferencesFile, prefs))

	var stdout, stderr bytes.Buffer
	require.NoError(t, runPlan(context.Background(), opts, &stdout, &stderr))

	out := stdout.String()
	assert.Contains(t, out, "Stack cap: 1")
	assert.Contains(t, out, "C1-1")
	assert.NotContains(t, out, "C2-1")
}

func TestRunPlanReportsUnplacedAndSkipsEmptyExports(t *testing.T) {
	dir := t.TempDir()
	opts := testPlanOptions(t, dir)
	opts.PalletsFile = writeFile(t, dir, "big.csv", "ID,L,W,H,Qty\nBIG,900,100,100,2\n")
	opts.ContainerIDs = []string{"C2"}
	opts.PDFPath = filepath.Join(dir, "none.pdf")

	var stdout, stderr bytes.Buffer
	require.NoError(t, runPlan(context.Background(), opts, &stdout, &stderr))

	assert.Contains(t, stdout.String(), "BIG x2")
	assert.Contains(t, stderr.String(), "skipped")
	_, err := os.Stat(opts.PDFPath)
	assert.True(t, os.IsNotExist(err))
}

func TestRunPlanErrors(t *testing.T) {
	dir := t.TempDir()

	opts := testPlanOptions(t, dir)
	opts.PalletsFile = writeFile(t, dir, "empty.csv", "ID,L,W,H,Qty\n")
	var stdout, stderr bytes.Buffer
	assert.ErrorContains(t, runPlan(context.Background(), opts, &stdout, &stderr), "no pallets")

	opts = testPlanOptions(t, dir)
	opts.ContainerIDs = []string{"C1,NOPE"}
	assert.ErrorIs(t, runPlan(context.Background(), opts, &stdout, &stderr), model.ErrInvalidInput)
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"C1", "C2", "C3"}, splitIDs([]string{"C1, C2", "C3", " "}))
	assert.Nil(t, splitIDs(nil))
}

func TestRunPlanFromPresets(t *testing.T) {
	dir := t.TempDir()
	inv := model.Inventory{Pallets: []model.PalletPreset{
		{ID: "eur1", Name: "EUR 1 (120x80)", Length: 120, Width: 80, Height: 100},
		{ID: "asia", Name: "Asia (110x110)", Length: 110, Width: 110, Height: 100},
	}}
	invPath := filepath.Join(dir, "inventory.json")
	require.NoError(t, project.SaveInventory(invPath, inv))

	opts := testPlanOptions(t, dir)
	opts.PalletsFile = ""
	opts.InventoryFile = invPath
	opts.Presets = []string{"eur1:2", "Asia (110x110):1"}
	opts.ContainerIDs = []string{"C2"}

	var stdout, stderr bytes.Buffer
	require.NoError(t, runPlan(context.Background(), opts, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Placed: 3")
}

func TestPalletsFromPresets(t *testing.T) {
	inv := model.Inventory{Pallets: []model.PalletPreset{
		{ID: "eur1", Name: "EUR 1 (120x80)", Length: 120, Width: 80, Height: 144},
	}}

	pallets, err := palletsFromPresets(inv, []string{"eur1:3", "EUR 1 (120x80): 2"})
	require.NoError(t, err)
	assert.Equal(t, []model.PalletType{
		model.NewPalletType("eur1", 120, 80, 144, 3),
		model.NewPalletType("eur1", 120, 80, 144, 2),
	}, pallets)

	_, err = palletsFromPresets(inv, []string{"gma:1"})
	assert.ErrorContains(t, err, "known: EUR 1 (120x80)")

	for _, bad := range []string{"eur1", ":3", "eur1:x", "eur1:-1"} {
		_, err = palletsFromPresets(inv, []string{bad})
		assert.Error(t, err, bad)
	}
}

func TestRunPlanNeedsPallets(t *testing.T) {
	dir := t.TempDir()
	opts := testPlanOptions(t, dir)
	opts.PalletsFile = ""

	var stdout, stderr bytes.Buffer
	err := runPlan(context.Background(), opts, &stdout, &stderr)
	assert.ErrorContains(t, err, "no pallets")
}
