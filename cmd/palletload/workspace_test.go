package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PalletLoad/internal/model"
	"github.com/piwi3910/PalletLoad/internal/project"
)

func tempWorkspace(t *testing.T) workspacePaths {
	t.Helper()
	dir := t.TempDir()
	return workspacePaths{
		Preferences: filepath.Join(dir, "config.json"),
		Catalog:     filepath.Join(dir, "catalog.json"),
		Inventory:   filepath.Join(dir, "inventory.json"),
	}
}

func TestListPresets(t *testing.T) {
	paths := tempWorkspace(t)

	var out bytes.Buffer
	require.NoError(t, listPresets(paths, &out))
	assert.Contains(t, out.String(), "EUR 1")
}

func TestBackupAndRestoreWorkspace(t *testing.T) {
	src := tempWorkspace(t)
	prefs := model.DefaultAppConfig()
	prefs.DefaultStackCap = 3
	require.NoError(t, project.SaveAppConfig(src.Preferences, prefs))

	backupPath := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, backupWorkspace(src, backupPath))

	dst := tempWorkspace(t)
	require.NoError(t, restoreWorkspace(dst, backupPath))

	restored, err := project.LoadAppConfig(dst.Preferences)
	require.NoError(t, err)
	assert.Equal(t, 3, restored.DefaultStackCap)

	cat, err := project.LoadCatalog(dst.Catalog)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCatalog(), cat)

	srcInv, err := project.LoadInventory(src.Inventory)
	require.NoError(t, err)
	inv, err := project.LoadInventory(dst.Inventory)
	require.NoError(t, err)
	assert.Equal(t, srcInv, inv)
}

func TestRestoreWorkspaceRejectsMissingFile(t *testing.T) {
	assert.Error(t, restoreWorkspace(tempWorkspace(t), filepath.Join(t.TempDir(), "none.json")))
}

func TestCatalogListAndRemove(t *testing.T) {
	paths := tempWorkspace(t)
	prefs := model.DefaultAppConfig()
	prefs.DefaultContainers = []string{"C1", "C2"}
	require.NoError(t, project.SaveAppConfig(paths.Preferences, prefs))

	var out bytes.Buffer
	require.NoError(t, listCatalog(paths, &out))
	assert.Contains(t, out.String(), "C3")

	require.NoError(t, removeContainer(paths, "C2"))

	catalog, err := project.LoadCatalog(paths.Catalog)
	require.NoError(t, err)
	assert.Nil(t, catalog.FindByID("C2"))
	assert.NotNil(t, catalog.FindByID("C1"))

	saved, err := project.LoadAppConfig(paths.Preferences)
	require.NoError(t, err)
	assert.Equal(t, []string{"C1"}, saved.DefaultContainers)

	assert.ErrorContains(t, removeContainer(paths, "C2"), "not in the catalog")
}
