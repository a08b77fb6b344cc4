// PalletLoad: container load planner for pallets.
//
// Build:
//   go build -o palletload ./cmd/palletload
//
// Run the API:
//   palletload serve --config palletload.yaml
//
// Plan from a spreadsheet:
//   palletload plan --pallets pallets.xlsx -c C1 -c C3 --pdf plan.pdf
//
// Plan from saved presets:
//   palletload plan -p "EUR 1 (120x80)":24 -c C2

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/piwi3910/PalletLoad/internal/application"
	"github.com/piwi3910/PalletLoad/internal/config"
	"github.com/piwi3910/PalletLoad/internal/logging"
	"github.com/piwi3910/PalletLoad/internal/project"
)

var signalNotify = signal.Notify

func main() {
	app := kingpin.New("palletload", "PalletLoad - container load planner for pallets")
	app.Version(application.Version)

	serveCmd := app.Command("serve", "Run the HTTP API")
	configFile := serveCmd.Flag("config", "Path to YAML configuration file").String()
	port := serveCmd.Flag("port", "HTTP port exposed by the service").String()
	stackCap := serveCmd.Flag("stack-cap", "Default stack cap (0 = unlimited)").Default("-1").Int()
	maxContainers := serveCmd.Flag("max-containers", "Maximum containers selectable per run").Default("0").Int()
	reportDir := serveCmd.Flag("report-dir", "Directory for stored reports").String()
	logLevel := serveCmd.Flag("log-level", "Log level (debug, info, warn, error)").String()
	rateLimitRPS := serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurst := serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter").Default("-1").Int()

	planCmd := app.Command("plan", "Plan a load from a pallet list file")
	planOpts := planOptions{}
	planCmd.Flag("pallets", "Pallet list (.csv, .xlsx or .yaml)").ExistingFileVar(&planOpts.PalletsFile)
	planCmd.Flag("preset", "Saved preset to load as {id or name}:{quantity}, repeatable").Short('p').StringsVar(&planOpts.Presets)
	planCmd.Flag("inventory", "Pallet presets JSON").Default(project.DefaultInventoryPath()).StringVar(&planOpts.InventoryFile)
	planCmd.Flag("containers", "Catalog container ids to load, in order").Short('c').StringsVar(&planOpts.ContainerIDs)
	planCmd.Flag("stack-cap", "Stack cap (0 = unlimited, default from preferences)").Default("-1").IntVar(&planOpts.StackCap)
	planCmd.Flag("max-containers", "Maximum containers selectable").Default("3").IntVar(&planOpts.MaxContainers)
	planCmd.Flag("catalog", "Container catalog JSON").Default(project.DefaultCatalogPath()).StringVar(&planOpts.CatalogFile)
	planCmd.Flag("preferences", "Preferences JSON").Default(project.DefaultConfigPath()).StringVar(&planOpts.PreferencesFile)
	planCmd.Flag("pdf", "Write the PDF load report here").StringVar(&planOpts.PDFPath)
	planCmd.Flag("xlsx", "Write the spreadsheet export here").StringVar(&planOpts.XLSXPath)
	planCmd.Flag("labels", "Write the QR label sheet here").StringVar(&planOpts.LabelsPath)
	planCmd.Flag("save", "Save the plan as JSON here").StringVar(&planOpts.SavePath)
	planCmd.Flag("compare", "Also compare stack cap scenarios").BoolVar(&planOpts.Compare)
	planLogLevel := planCmd.Flag("log-level", "Log level (debug, info, warn, error)").Default("warn").String()

	presetsCmd := app.Command("presets", "List the saved pallet presets")
	catalogCmd := app.Command("catalog", "Manage the container catalog")
	catalogListCmd := catalogCmd.Command("list", "List the catalog containers")
	catalogRemoveCmd := catalogCmd.Command("remove", "Remove a container type from the catalog")
	catalogRemoveID := catalogRemoveCmd.Arg("id", "Container id").Required().String()
	backupCmd := app.Command("backup", "Write preferences, catalog and presets to one file")
	backupOut := backupCmd.Arg("file", "Backup file to write").Required().String()
	restoreCmd := app.Command("restore", "Replace preferences, catalog and presets from a backup")
	restoreIn := restoreCmd.Arg("file", "Backup file to read").Required().ExistingFile()

	switch kingpin.MustParse(app.Parse(os.Args[1:])) {
	case serveCmd.FullCommand():
		overrides := &config.CLIOverrides{ConfigFile: *configFile}
		if *port != "" {
			overrides.Port = port
		}
		if *stackCap >= 0 {
			overrides.StackCap = stackCap
		}
		if *maxContainers > 0 {
			overrides.MaxContainers = maxContainers
		}
		if *reportDir != "" {
			overrides.ReportDir = reportDir
		}
		if *logLevel != "" {
			overrides.LogLevel = logLevel
		}
		if *rateLimitRPS >= 0 {
			overrides.RateLimitRPS = rateLimitRPS
		}
		if *rateLimitBurst >= 0 {
			overrides.RateLimitBurst = rateLimitBurst
		}
		serve(overrides)

	case planCmd.FullCommand():
		logger, err := logging.New(*planLogLevel)
		if err != nil {
			app.Fatalf("failed to initialize logger: %v", err)
		}
		defer func() {
			_ = logger.Sync()
		}()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		planOpts.Logger = logger
		if err := runPlan(ctx, planOpts, os.Stdout, os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "palletload: %v\n", err)
			os.Exit(1)
		}

	case presetsCmd.FullCommand():
		app.FatalIfError(listPresets(defaultWorkspacePaths(), os.Stdout), "presets")

	case catalogListCmd.FullCommand():
		app.FatalIfError(listCatalog(defaultWorkspacePaths(), os.Stdout), "catalog list")

	case catalogRemoveCmd.FullCommand():
		app.FatalIfError(removeContainer(defaultWorkspacePaths(), *catalogRemoveID), "catalog remove")

	case backupCmd.FullCommand():
		app.FatalIfError(backupWorkspace(defaultWorkspacePaths(), *backupOut), "backup")

	case restoreCmd.FullCommand():
		app.FatalIfError(restoreWorkspace(defaultWorkspacePaths(), *restoreIn), "restore")
	}
}

func serve(overrides *config.CLIOverrides) {
	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	waitForShutdown(app, cfg, logger)
}

func waitForShutdown(app *application.App, cfg config.Config, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
