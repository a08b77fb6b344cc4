package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/piwi3910/PalletLoad/internal/engine"
	"github.com/piwi3910/PalletLoad/internal/export"
	"github.com/piwi3910/PalletLoad/internal/importer"
	"github.com/piwi3910/PalletLoad/internal/model"
	"github.com/piwi3910/PalletLoad/internal/planner"
	"github.com/piwi3910/PalletLoad/internal/project"
)

type planOptions struct {
	PalletsFile     string
	Presets         []string // "{preset id or name}:{qty}"
	InventoryFile   string
	ContainerIDs    []string
	StackCap        int // < 0 means the saved preference
	MaxContainers   int
	CatalogFile     string
	PreferencesFile string
	PDFPath         string
	XLSXPath        string
	LabelsPath      string
	SavePath        string
	Compare         bool
	Logger          *zap.Logger
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF99"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#874BFD"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#874BFD")).Padding(0, 1)
)

// runPlan imports the pallet list, runs one plan and writes the requested
// exports. Row-level import problems are reported and the rows that parsed
// are still planned.
func runPlan(ctx context.Context, opts planOptions, stdout, stderr io.Writer) error {
	var pallets []model.PalletType
	if opts.PalletsFile != "" {
		imported := importer.Import(opts.PalletsFile)
		for _, w := range imported.Warnings {
			fmt.Fprintln(stderr, mutedStyle.Render("warning: "+w))
		}
		for _, e := range imported.Errors {
			fmt.Fprintln(stderr, warnStyle.Render("error: "+e))
		}
		if len(imported.Pallets) == 0 {
			return fmt.Errorf("no pallets could be read from %s", opts.PalletsFile)
		}
		pallets = imported.Pallets
	}

	if len(opts.Presets) > 0 {
		inv, err := project.LoadInventory(opts.InventoryFile)
		if err != nil {
			return fmt.Errorf("load inventory: %w", err)
		}
		fromPresets, err := palletsFromPresets(inv, opts.Presets)
		if err != nil {
			return err
		}
		pallets = append(pallets, fromPresets...)
	}
	if len(pallets) == 0 {
		return errors.New("no pallets: give --pallets or at least one --preset")
	}

	prefs, err := project.LoadAppConfig(opts.PreferencesFile)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	catalog, err := project.LoadCatalog(opts.CatalogFile)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	settings := model.DefaultSettings()
	prefs.ApplyToSettings(&settings)
	if opts.StackCap >= 0 {
		settings.StackCap = opts.StackCap
	}

	ids := splitIDs(opts.ContainerIDs)
	if len(ids) == 0 {
		ids = prefs.DefaultContainers
	}
	if len(ids) == 0 {
		for _, ct := range catalog.Containers {
			ids = append(ids, ct.ID)
		}
	}

	svc, err := planner.New(planner.Options{
		Catalog:       catalog,
		MaxContainers: opts.MaxContainers,
		Logger:        opts.Logger,
	})
	if err != nil {
		return err
	}

	req := planner.Request{
		ContainerIDs: ids,
		Pallets:      pallets,
		StackCap:     &settings.StackCap,
	}
	resp, err := svc.Plan(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, renderSummary(resp))

	if opts.Compare {
		results, err := svc.Compare(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, renderComparison(results))
	}

	if err := writeExports(opts, resp, stdout, stderr); err != nil {
		return err
	}

	if opts.SavePath != "" {
		plan := model.Plan{
			ID:         uuid.NewString(),
			Name:       planName(opts),
			Pallets:    pallets,
			Containers: resp.Containers,
			Settings:   resp.Settings,
			Result:     &resp.Result,
		}
		if err := project.SavePlan(opts.SavePath, plan); err != nil {
			return fmt.Errorf("save plan: %w", err)
		}
		prefs.AddRecentPlan(opts.SavePath)
		if err := project.SaveAppConfig(opts.PreferencesFile, prefs); err != nil {
			return fmt.Errorf("save preferences: %w", err)
		}
		fmt.Fprintln(stdout, mutedStyle.Render("saved plan to "+opts.SavePath))
	}
	return nil
}

// palletsFromPresets resolves "{ref}:{qty}" specs against the inventory. A
// ref is a preset id or, failing that, a preset name; the pallet id is the
// preset id.
func palletsFromPresets(inv model.Inventory, specs []string) ([]model.PalletType, error) {
	pallets := make([]model.PalletType, 0, len(specs))
	for _, spec := range specs {
		i := strings.LastIndex(spec, ":")
		if i <= 0 {
			return nil, fmt.Errorf("preset %q: want {id or name}:{quantity}", spec)
		}
		ref := strings.TrimSpace(spec[:i])
		qty, err := strconv.Atoi(strings.TrimSpace(spec[i+1:]))
		if err != nil || qty < 0 {
			return nil, fmt.Errorf("preset %q: invalid quantity", spec)
		}

		preset := inv.FindPalletByID(ref)
		if preset == nil {
			preset = inv.FindPalletByName(ref)
		}
		if preset == nil {
			return nil, fmt.Errorf("unknown preset %q (known: %s)", ref, strings.Join(inv.PalletNames(), ", "))
		}
		pallets = append(pallets, preset.ToPalletType(preset.ID, qty))
	}
	return pallets, nil
}

func planName(opts planOptions) string {
	if opts.PalletsFile != "" {
		return opts.PalletsFile
	}
	return "presets " + strings.Join(opts.Presets, ", ")
}

// splitIDs accepts both repeated flags and comma-separated lists.
func splitIDs(raw []string) []string {
	var ids []string
	for _, r := range raw {
		for _, id := range strings.Split(r, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func writeExports(opts planOptions, resp planner.Response, stdout, stderr io.Writer) error {
	exports := []struct {
		path  string
		write func(string) error
	}{
		{opts.PDFPath, func(p string) error { return export.ExportPDF(p, resp.Result, resp.Settings) }},
		{opts.XLSXPath, func(p string) error { return export.ExportXLSX(p, resp.Result) }},
		{opts.LabelsPath, func(p string) error { return export.ExportLabels(p, resp.Result) }},
	}

	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := e.write(e.path); err != nil {
			if errors.Is(err, export.ErrNothingToExport) {
				fmt.Fprintln(stderr, warnStyle.Render(fmt.Sprintf("skipped %s: %v", e.path, err)))
				continue
			}
			return fmt.Errorf("export %s: %w", e.path, err)
		}
		fmt.Fprintln(stdout, mutedStyle.Render("wrote "+e.path))
	}
	return nil
}

func renderSummary(resp planner.Response) string {
	r := resp.Result
	var b strings.Builder

	b.WriteString(titleStyle.Render("Load plan "+r.RunID) + "\n")
	fmt.Fprintf(&b, "Stack cap: %s   Containers used: %d of %d\n",
		stackCapLabel(resp.Settings.StackCap), len(r.Containers), len(resp.Containers))
	fmt.Fprintf(&b, "Placed: %d   Unplaced: %d   Utilization: %.1f%%\n",
		r.PlacedUnits(), r.UnplacedUnits(), r.TotalUtilization())

	if len(r.Containers) > 0 {
		b.WriteString("\n" + headerStyle.Render(fmt.Sprintf("%-10s %-10s %7s %7s %8s", "Container", "Type", "Stacks", "Units", "Util")) + "\n")
		for _, c := range r.Containers {
			fmt.Fprintf(&b, "%-10s %-10s %7d %7d %7.1f%%\n", c.InstanceID, c.Category, c.Stacks, c.Units, c.Utilization())
		}
	}

	if unplaced := unplacedLines(r); len(unplaced) > 0 {
		b.WriteString("\n" + warnStyle.Render("Not loaded:") + "\n")
		for _, line := range unplaced {
			b.WriteString("  " + line + "\n")
		}
	}
	if len(resp.Truncated) > 0 {
		b.WriteString("\n" + mutedStyle.Render("ignored containers beyond the limit: "+strings.Join(resp.Truncated, ", ")) + "\n")
	}

	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderComparison(results []engine.ComparisonResult) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-20s %10s %8s %9s %8s", "Scenario", "Containers", "Placed", "Unplaced", "Util")) + "\n")
	for _, res := range results {
		fmt.Fprintf(&b, "%-20s %10d %8d %9d %7.1f%%\n",
			res.Scenario.Name, res.ContainersUsed, res.PlacedUnits, res.UnplacedUnits, res.Utilization)
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func unplacedLines(r model.LoadResult) []string {
	ids := make([]string, 0, len(r.Remaining))
	for id, n := range r.Remaining {
		if n > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, fmt.Sprintf("%s x%d", id, r.Remaining[id]))
	}
	return lines
}

func stackCapLabel(n int) string {
	if n == 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d", n)
}
