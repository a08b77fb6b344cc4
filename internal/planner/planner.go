// Package planner runs load plans for the API and the CLI: it resolves the
// selected catalog containers, runs the engine under a timeout inside a trace
// span, records the run and optionally stores reports and session state.
package planner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/piwi3910/PalletLoad/internal/engine"
	"github.com/piwi3910/PalletLoad/internal/export"
	"github.com/piwi3910/PalletLoad/internal/model"
	"github.com/piwi3910/PalletLoad/internal/storage"
)

const instrumentationName = "palletload/planner"

// Stored report names under "runs/{run id}/".
const (
	ReportPDF    = "report.pdf"
	ReportLabels = "labels.pdf"
	ReportXLSX   = "plan.xlsx"
)

// ErrReportsDisabled is returned by the report readers when no report store
// is configured.
var ErrReportsDisabled = errors.New("report storage not configured")

// Request is one planning run.
type Request struct {
	SessionID    string             `json:"session_id,omitempty"`
	ContainerIDs []string           `json:"containers"`
	Pallets      []model.PalletType `json:"pallets"`
	StackCap     *int               `json:"stack_cap,omitempty"`
	StoreReports bool               `json:"store_reports,omitempty"`
}

// Response carries the result together with what the run actually used.
type Response struct {
	Result     model.LoadResult      `json:"result"`
	Settings   model.LoadSettings    `json:"settings"`
	Containers []model.ContainerType `json:"containers"`
	Truncated  []string              `json:"truncated,omitempty"`
	ReportKeys []string              `json:"report_keys,omitempty"`
}

// Options configures a Service. Reports and Sessions are optional.
type Options struct {
	Catalog         model.ContainerCatalog
	MaxContainers   int
	DefaultStackCap int
	RunTimeout      time.Duration
	Reports         storage.BlobStore
	Sessions        storage.SessionStore
	Logger          *zap.Logger
}

// Service runs plans. It holds no per-run state and is safe for concurrent use.
type Service struct {
	opts   Options
	tracer trace.Tracer

	runs     metric.Int64Counter
	placed   metric.Int64Counter
	unplaced metric.Int64Counter
}

func New(opts Options) (*Service, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	meter := otel.Meter(instrumentationName)
	runs, err := meter.Int64Counter("palletload.runs", metric.WithDescription("Completed planning runs"))
	if err != nil {
		return nil, fmt.Errorf("create runs counter: %w", err)
	}
	placed, err := meter.Int64Counter("palletload.units.placed", metric.WithDescription("Pallet units placed"))
	if err != nil {
		return nil, fmt.Errorf("create placed counter: %w", err)
	}
	unplaced, err := meter.Int64Counter("palletload.units.unplaced", metric.WithDescription("Pallet units left unplaced"))
	if err != nil {
		return nil, fmt.Errorf("create unplaced counter: %w", err)
	}

	return &Service{
		opts:     opts,
		tracer:   otel.Tracer(instrumentationName),
		runs:     runs,
		placed:   placed,
		unplaced: unplaced,
	}, nil
}

// Catalog returns the containers a request may select.
func (s *Service) Catalog() []model.ContainerType {
	return append([]model.ContainerType{}, s.opts.Catalog.Containers...)
}

// DefaultSettings returns the settings used when a request carries no stack cap.
func (s *Service) DefaultSettings() model.LoadSettings {
	return model.LoadSettings{StackCap: s.opts.DefaultStackCap}
}

// resolve turns a request into engine input. Selections beyond MaxContainers
// are dropped in selection order and reported as truncated.
func (s *Service) resolve(req Request) ([]model.ContainerType, []string, model.LoadSettings, error) {
	settings := s.DefaultSettings()
	if req.StackCap != nil {
		settings.StackCap = *req.StackCap
	}
	if settings.StackCap < 0 {
		return nil, nil, settings, fmt.Errorf("%w: stack cap %d", model.ErrInvalidInput, settings.StackCap)
	}

	var truncated []string
	if s.opts.MaxContainers > 0 && len(req.ContainerIDs) > s.opts.MaxContainers {
		truncated = append(truncated, req.ContainerIDs[s.opts.MaxContainers:]...)
	}
	containers, unknown := s.opts.Catalog.Select(req.ContainerIDs, s.opts.MaxContainers)
	if len(unknown) > 0 {
		return nil, nil, settings, fmt.Errorf("%w: unknown containers %v", model.ErrInvalidInput, unknown)
	}
	return containers, truncated, settings, nil
}

// Plan runs the engine for req. On timeout the partial result is returned
// with the context error.
func (s *Service) Plan(ctx context.Context, req Request) (Response, error) {
	containers, truncated, settings, err := s.resolve(req)
	if err != nil {
		return Response{}, err
	}

	runID := uuid.New().String()
	ctx, span := s.tracer.Start(ctx, "planner.run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("run.containers", len(containers)),
		attribute.Int("run.pallet_types", len(req.Pallets)),
		attribute.Int("run.stack_cap", settings.StackCap),
	))
	defer span.End()

	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := engine.New(settings).LoadContext(ctx, containers, req.Pallets)
	result.RunID = runID
	resp := Response{Result: result, Settings: settings, Containers: containers, Truncated: truncated}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.opts.Logger.Warn("plan failed", zap.String("run_id", runID), zap.Error(err))
		return resp, err
	}

	placed, unplaced := result.PlacedUnits(), result.UnplacedUnits()
	span.SetAttributes(
		attribute.Int("run.placed_units", placed),
		attribute.Int("run.unplaced_units", unplaced),
		attribute.Int("run.containers_used", len(result.Containers)),
	)
	s.runs.Add(ctx, 1)
	s.placed.Add(ctx, int64(placed))
	s.unplaced.Add(ctx, int64(unplaced))

	s.opts.Logger.Info("plan completed",
		zap.String("run_id", runID),
		zap.Int("containers", len(containers)),
		zap.Int("containers_used", len(result.Containers)),
		zap.Int("placed", placed),
		zap.Int("unplaced", unplaced),
		zap.Float64("utilization", result.TotalUtilization()),
		zap.Duration("duration", time.Since(start)),
	)

	if req.StoreReports && s.opts.Reports != nil {
		keys, err := s.storeReports(ctx, result, settings)
		if err != nil {
			span.RecordError(err)
			return resp, err
		}
		resp.ReportKeys = keys
	}

	if req.SessionID != "" && s.opts.Sessions != nil {
		sess := storage.Session{
			ID:                 req.SessionID,
			SelectedContainers: req.ContainerIDs,
			Pallets:            req.Pallets,
			StackCap:           settings.StackCap,
		}
		if err := s.opts.Sessions.SaveSession(sess); err != nil {
			s.opts.Logger.Warn("save session failed", zap.String("session_id", req.SessionID), zap.Error(err))
		}
	}

	return resp, nil
}

// Compare runs the default what-if scenarios around the request's settings.
func (s *Service) Compare(ctx context.Context, req Request) ([]engine.ComparisonResult, error) {
	containers, _, settings, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "planner.compare", trace.WithAttributes(
		attribute.Int("run.containers", len(containers)),
		attribute.Int("run.stack_cap", settings.StackCap),
	))
	defer span.End()

	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
		defer cancel()
	}

	results, err := engine.CompareScenariosContext(ctx, engine.BuildDefaultScenarios(settings), containers, req.Pallets)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return results, err
	}
	return results, nil
}

// Report renders the PDF layout report for a fresh run of req.
func (s *Service) Report(ctx context.Context, req Request) ([]byte, Response, error) {
	resp, err := s.Plan(ctx, req)
	if err != nil {
		return nil, resp, err
	}

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, resp.Result, resp.Settings); err != nil {
		return nil, resp, err
	}
	return buf.Bytes(), resp, nil
}

// storeReports uploads the PDF report, labels and spreadsheet under
// "runs/{run id}/". Renderers with nothing to show are skipped.
func (s *Service) storeReports(ctx context.Context, result model.LoadResult, settings model.LoadSettings) ([]string, error) {
	renderers := []struct {
		name   string
		render func(*bytes.Buffer) error
	}{
		{ReportPDF, func(b *bytes.Buffer) error { return export.WritePDF(b, result, settings) }},
		{ReportLabels, func(b *bytes.Buffer) error { return export.WriteLabels(b, result) }},
		{ReportXLSX, func(b *bytes.Buffer) error { return export.WriteXLSX(b, result) }},
	}

	var keys []string
	for _, r := range renderers {
		var buf bytes.Buffer
		if err := r.render(&buf); err != nil {
			if errors.Is(err, export.ErrNothingToExport) {
				continue
			}
			return keys, fmt.Errorf("render %s: %w", r.name, err)
		}
		key := reportPrefix(result.RunID) + r.name
		if err := s.opts.Reports.Put(ctx, key, buf.Bytes()); err != nil {
			return keys, fmt.Errorf("store %s: %w", r.name, err)
		}
		keys = append(keys, key)
	}

	s.opts.Logger.Info("reports stored", zap.String("run_id", result.RunID), zap.Strings("keys", keys))
	return keys, nil
}

func reportPrefix(runID string) string {
	return "runs/" + runID + "/"
}

func checkRunID(runID string) error {
	if _, err := uuid.Parse(runID); err != nil {
		return fmt.Errorf("%w: run id %q", model.ErrInvalidInput, runID)
	}
	return nil
}

// ListReports returns the names of the reports stored for a run, sorted.
func (s *Service) ListReports(ctx context.Context, runID string) ([]string, error) {
	if s.opts.Reports == nil {
		return nil, ErrReportsDisabled
	}
	if err := checkRunID(runID); err != nil {
		return nil, err
	}

	prefix := reportPrefix(runID)
	keys, err := s.opts.Reports.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if name, ok := strings.CutPrefix(k, prefix); ok && name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: run %s", storage.ErrNotFound, runID)
	}
	sort.Strings(names)
	return names, nil
}

// FetchReport returns one stored report of a run. Only the names written by
// storeReports are served.
func (s *Service) FetchReport(ctx context.Context, runID, name string) ([]byte, error) {
	if s.opts.Reports == nil {
		return nil, ErrReportsDisabled
	}
	if err := checkRunID(runID); err != nil {
		return nil, err
	}
	switch name {
	case ReportPDF, ReportLabels, ReportXLSX:
	default:
		return nil, fmt.Errorf("%w: report %q", model.ErrInvalidInput, name)
	}
	return s.opts.Reports.Get(ctx, reportPrefix(runID)+name)
}
