package application

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/piwi3910/PalletLoad/internal/config"
	"github.com/piwi3910/PalletLoad/internal/model"
	"github.com/piwi3910/PalletLoad/internal/project"
	"github.com/piwi3910/PalletLoad/internal/storage"
)

func baseTestConfig(t *testing.T, port string) config.Config {
	t.Helper()
	return config.Config{
		Port:                port,
		MaxContainers:       3,
		MaxUploadBytes:      1 << 20,
		RunTimeout:          5 * time.Second,
		ReportDir:           t.TempDir(),
		LogLevel:            "info",
		ShutdownGracePeriod: time.Second,
		ReadHeaderTimeout:   time.Second,
		WriteTimeout:        5 * time.Second,
		IdleTimeout:         5 * time.Second,
	}
}

func TestNewInitializesDependencies(t *testing.T) {
	cfg := baseTestConfig(t, ":0")

	app, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	assert.NotNil(t, app.server)
	assert.NotNil(t, app.router)
	assert.NotNil(t, app.handler)
	assert.NotNil(t, app.planner)
	assert.IsType(t, &storage.LocalStore{}, app.reports)
	assert.Same(t, app.server, app.Server())
	assert.Len(t, app.planner.Catalog(), 3)
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig(t, "9090")
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	assert.Equal(t, ":9090", server.Addr)
	assert.Equal(t, cfg.ReadHeaderTimeout, server.ReadHeaderTimeout)
	assert.Equal(t, cfg.WriteTimeout, server.WriteTimeout)
	assert.Equal(t, cfg.IdleTimeout, server.IdleTimeout)
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	cat := model.ContainerCatalog{Containers: []model.ContainerType{
		model.NewContainerType("R1", "reefer", 1150, 228, 225, 1),
	}}
	require.NoError(t, project.SaveCatalog(path, cat))

	cfg := baseTestConfig(t, ":0")
	cfg.CatalogFile = path
	loaded, err := LoadCatalog(cfg)
	require.NoError(t, err)
	assert.Equal(t, cat, loaded)

	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))
	_, err = LoadCatalog(cfg)
	assert.Error(t, err)
}

func TestNewReportStoreSelection(t *testing.T) {
	ctx := context.Background()
	cfg := baseTestConfig(t, ":0")

	store, err := NewReportStore(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStore{}, store)

	cfg.ReportDir = ""
	store, err = NewReportStore(ctx, cfg)
	require.NoError(t, err)
	assert.Nil(t, store)

	cfg.S3Bucket = "reports"
	cfg.S3Region = "eu-west-1"
	cfg.S3Endpoint = "http://localhost:4566"
	store, err = NewReportStore(ctx, cfg)
	require.NoError(t, err)
	s3Store, ok := store.(*storage.S3Store)
	require.True(t, ok)
	assert.Equal(t, "reports", s3Store.Bucket)
}

func TestStartServesAndShutsDown(t *testing.T) {
	cfg := baseTestConfig(t, "127.0.0.1:0")
	app, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, app.Start())

	resp, err := http.Get("http://" + app.Addr() + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, app.Shutdown(ctx))

	_, err = http.Get("http://" + app.Addr() + "/api/health")
	assert.Error(t, err)
}

func TestStartReportsBindError(t *testing.T) {
	cfg := baseTestConfig(t, "127.0.0.1:0")
	first, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, first.Start())
	t.Cleanup(func() { _ = first.Shutdown(context.Background()) })

	cfg.Port = first.Addr()
	second, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Error(t, second.Start())
}
