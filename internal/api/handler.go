package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/piwi3910/PalletLoad/internal/engine"
	"github.com/piwi3910/PalletLoad/internal/export"
	"github.com/piwi3910/PalletLoad/internal/importer"
	"github.com/piwi3910/PalletLoad/internal/model"
	"github.com/piwi3910/PalletLoad/internal/planner"
	"github.com/piwi3910/PalletLoad/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const defaultMaxUploadBytes = 10 << 20

// runIDHeader carries the planner run id on responses of planning calls.
const runIDHeader = "X-Run-ID"

// Handler wires the planner and session store into HTTP handlers.
type Handler struct {
	planner  *planner.Service
	sessions storage.SessionStore

	maxUploadBytes int64
	clock          func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithMaxUploadBytes limits the size of imported files.
func WithMaxUploadBytes(n int64) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(svc *planner.Service, sessions storage.SessionStore, opts ...HandlerOption) *Handler {
	h := &Handler{
		planner:        svc,
		sessions:       sessions,
		maxUploadBytes: defaultMaxUploadBytes,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Timestamp: h.clock()})
}

func (h *Handler) handleContainers(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, containersResponse{
		Containers: h.planner.Catalog(),
		Defaults:   h.planner.DefaultSettings(),
	})
}

func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePlanRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	resp, err := h.planner.Plan(r.Context(), req)
	if resp.Result.RunID != "" {
		w.Header().Set(runIDHeader, resp.Result.RunID)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		// The placements committed before the deadline are still valid.
		out := timeoutResponse{Partial: newLoadResponse(resp, start)}
		out.Error = "Plan timed out"
		out.Details = err.Error()
		out.Suggestion = "Select fewer containers or split the pallet list"
		writeJSON(w, http.StatusGatewayTimeout, out)
		return
	}
	if err != nil {
		writePlanError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newLoadResponse(resp, start))
}

func newLoadResponse(resp planner.Response, start time.Time) loadResponse {
	return loadResponse{
		Response:          resp,
		PlacedUnits:       resp.Result.PlacedUnits(),
		UnplacedUnits:     resp.Result.UnplacedUnits(),
		Utilization:       resp.Result.TotalUtilization(),
		CalculationTimeMs: time.Since(start).Milliseconds(),
	}
}

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePlanRequest(w, r)
	if !ok {
		return
	}

	results, err := h.planner.Compare(r.Context(), req)
	if err != nil {
		writePlanError(w, err)
		return
	}

	out := make([]scenarioResponse, 0, len(results))
	for _, res := range results {
		out = append(out, newScenarioResponse(res))
	}
	writeJSON(w, http.StatusOK, compareResponse{Scenarios: out})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePlanRequest(w, r)
	if !ok {
		return
	}

	pdf, resp, err := h.planner.Report(r.Context(), req)
	if resp.Result.RunID != "" {
		w.Header().Set(runIDHeader, resp.Result.RunID)
	}
	if err != nil {
		writePlanError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "load-plan-"+resp.Result.RunID+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request", "multipart form with a \"file\" field is required")
		return
	}
	defer file.Close()

	delimiter, err := parseDelimiter(r.FormValue("delimiter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	result, err := importUpload(file, header.Filename, delimiter)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	status := http.StatusOK
	if len(result.Pallets) == 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

// importUpload picks the reader by file extension, CSV being the default.
// A non-zero delimiter skips delimiter detection for delimited text.
func importUpload(file io.Reader, filename string, delimiter rune) (importer.ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".tsv" && delimiter == 0 {
		delimiter = '\t'
	}
	switch {
	case ext == ".xlsx" || ext == ".xlsm" || ext == ".xls":
		return importer.ImportExcelFromReader(file), nil
	case ext == ".yaml" || ext == ".yml":
		return importer.ImportYAMLFromReader(file), nil
	case delimiter != 0:
		return importer.ImportCSVFromReader(file, delimiter), nil
	default:
		data, err := io.ReadAll(file)
		if err != nil {
			return importer.ImportResult{}, fmt.Errorf("read upload: %w", err)
		}
		return importer.ImportCSVData(data), nil
	}
}

// parseDelimiter reads the optional "delimiter" form field.
func parseDelimiter(v string) (rune, error) {
	switch strings.ToLower(v) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	case "\t", "tab":
		return '\t', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter %q", v)
	}
}

func (h *Handler) handleListReports(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("run")
	names, err := h.planner.ListReports(r.Context(), runID)
	if err != nil {
		writeReportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportsResponse{RunID: runID, Reports: names})
}

func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	runID, name := r.PathValue("run"), r.PathValue("name")
	data, err := h.planner.FetchReport(r.Context(), runID, name)
	if err != nil {
		writeReportError(w, err)
		return
	}

	contentType := "application/pdf"
	if name == planner.ReportXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", runID+"-"+name))
	w.Header().Set(runIDHeader, runID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.GetSession(r.PathValue("id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) handlePutSession(w http.ResponseWriter, r *http.Request) {
	var body sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}
	for _, p := range body.Pallets {
		if err := p.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid pallet", err.Error())
			return
		}
	}

	id := r.PathValue("id")
	err := h.sessions.SaveSession(storage.Session{
		ID:                 id,
		SelectedContainers: body.SelectedContainers,
		Pallets:            body.Pallets,
		StackCap:           body.StackCap,
	})
	if err != nil {
		writeSessionError(w, err)
		return
	}

	sess, err := h.sessions.GetSession(id)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.DeleteSession(r.PathValue("id")); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodePlanRequest(w http.ResponseWriter, r *http.Request) (planner.Request, bool) {
	var req planner.Request
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return req, false
	}
	return req, true
}

func writePlanError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid input", err.Error())
	case errors.Is(err, export.ErrNothingToExport):
		writeError(w, http.StatusUnprocessableEntity, "Nothing to export", err.Error(),
			"None of the pallets fit the selected containers")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "Plan timed out", err.Error())
	default:
		writeInternalError(w, err)
	}
}

func writeReportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid report request", err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Report not found", err.Error(),
			"Run the plan with store_reports set to keep its reports")
	case errors.Is(err, planner.ErrReportsDisabled):
		writeError(w, http.StatusNotImplemented, "Report storage disabled", err.Error(),
			"Configure report_dir or an S3 bucket")
	default:
		writeInternalError(w, err)
	}
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Session not found", err.Error())
	case errors.Is(err, storage.ErrInvalidSession):
		writeError(w, http.StatusBadRequest, "Invalid session", err.Error())
	default:
		writeInternalError(w, err)
	}
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type sessionRequest struct {
	SelectedContainers []string           `json:"selected_containers"`
	Pallets            []model.PalletType `json:"pallets"`
	StackCap           int                `json:"stack_cap"`
}

type loadResponse struct {
	planner.Response
	PlacedUnits       int     `json:"placed_units"`
	UnplacedUnits     int     `json:"unplaced_units"`
	Utilization       float64 `json:"utilization"`
	CalculationTimeMs int64   `json:"calculation_time_ms"`
}

type timeoutResponse struct {
	errorResponse
	Partial loadResponse `json:"partial"`
}

type reportsResponse struct {
	RunID   string   `json:"run_id"`
	Reports []string `json:"reports"`
}

type scenarioResponse struct {
	Name           string             `json:"name"`
	Settings       model.LoadSettings `json:"settings"`
	ContainersUsed int                `json:"containers_used"`
	PlacedUnits    int                `json:"placed_units"`
	UnplacedUnits  int                `json:"unplaced_units"`
	Utilization    float64            `json:"utilization"`
}

func newScenarioResponse(res engine.ComparisonResult) scenarioResponse {
	return scenarioResponse{
		Name:           res.Scenario.Name,
		Settings:       res.Scenario.Settings,
		ContainersUsed: res.ContainersUsed,
		PlacedUnits:    res.PlacedUnits,
		UnplacedUnits:  res.UnplacedUnits,
		Utilization:    res.Utilization,
	}
}

type compareResponse struct {
	Scenarios []scenarioResponse `json:"scenarios"`
}

type containersResponse struct {
	Containers []model.ContainerType `json:"containers"`
	Defaults   model.LoadSettings    `json:"defaults"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal error","details":"unable to encode response"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
