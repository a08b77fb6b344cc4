package main

import (
	"fmt"
	"io"

	"github.com/piwi3910/PalletLoad/internal/project"
)

// workspacePaths locates the local JSON files managed by the CLI.
type workspacePaths struct {
	Preferences string
	Catalog     string
	Inventory   string
}

func defaultWorkspacePaths() workspacePaths {
	return workspacePaths{
		Preferences: project.DefaultConfigPath(),
		Catalog:     project.DefaultCatalogPath(),
		Inventory:   project.DefaultInventoryPath(),
	}
}

// listPresets prints the pallet presets, creating the default inventory on
// first use.
func listPresets(paths workspacePaths, out io.Writer) error {
	inv, err := project.LoadInventory(paths.Inventory)
	if err != nil {
		return fmt.Errorf("load inventory: %w", err)
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%-10s %-24s %8s %8s %8s", "ID", "Name", "L", "W", "H")))
	for _, p := range inv.Pallets {
		fmt.Fprintf(out, "%-10s %-24s %8.1f %8.1f %8.1f\n", p.ID, p.Name, p.Length, p.Width, p.Height)
	}
	return nil
}

func listCatalog(paths workspacePaths, out io.Writer) error {
	catalog, err := project.LoadCatalog(paths.Catalog)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%-10s %-10s %8s %8s %8s", "ID", "Type", "L", "W", "H")))
	for _, c := range catalog.Containers {
		fmt.Fprintf(out, "%-10s %-10s %8.1f %8.1f %8.1f\n", c.ID, c.Category, c.Length, c.Width, c.Height)
	}
	return nil
}

// removeContainer drops a container type from the saved catalog and from the
// default selection in the preferences.
func removeContainer(paths workspacePaths, id string) error {
	catalog, err := project.LoadCatalog(paths.Catalog)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if !catalog.Remove(id) {
		return fmt.Errorf("container %q is not in the catalog", id)
	}
	if err := project.SaveCatalog(paths.Catalog, catalog); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}

	prefs, err := project.LoadAppConfig(paths.Preferences)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	kept := prefs.DefaultContainers[:0]
	for _, c := range prefs.DefaultContainers {
		if c != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(prefs.DefaultContainers) {
		return nil
	}
	prefs.DefaultContainers = kept
	return project.SaveAppConfig(paths.Preferences, prefs)
}

func backupWorkspace(paths workspacePaths, dest string) error {
	prefs, err := project.LoadAppConfig(paths.Preferences)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	catalog, err := project.LoadCatalog(paths.Catalog)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	inv, err := project.LoadInventory(paths.Inventory)
	if err != nil {
		return fmt.Errorf("load inventory: %w", err)
	}
	return project.ExportAllData(dest, prefs, catalog, inv)
}

// restoreWorkspace replaces the local files with the backup's contents.
func restoreWorkspace(paths workspacePaths, src string) error {
	backup, err := project.ImportAllData(src)
	if err != nil {
		return err
	}
	for _, ct := range backup.Catalog.Containers {
		if err := ct.Validate(); err != nil {
			return fmt.Errorf("backup catalog: %w", err)
		}
	}

	if err := project.SaveAppConfig(paths.Preferences, backup.Config); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	if err := project.SaveCatalog(paths.Catalog, backup.Catalog); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	if err := project.SaveInventory(paths.Inventory, backup.Inventory); err != nil {
		return fmt.Errorf("save inventory: %w", err)
	}
	return nil
}
