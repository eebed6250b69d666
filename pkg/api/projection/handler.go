package projection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"financial_forecast/pkg/core/calc"
	"financial_forecast/pkg/core/config"
	"financial_forecast/pkg/core/export"
	coreProjection "financial_forecast/pkg/core/projection"
	"financial_forecast/pkg/core/ratios"
	"financial_forecast/pkg/core/report"
	"financial_forecast/pkg/core/scenario"
	"financial_forecast/pkg/core/store"
	"financial_forecast/pkg/core/validate"
)

const module = "api.projection"

// maxBodyBytes bounds request bodies; scenarios are small.
const maxBodyBytes = 1 << 20

// Handler serves the projection endpoints.
type Handler struct {
	Engine       *coreProjection.Engine
	Repo         *store.ProjectionRepo
	Cache        *store.ResultCache
	Logger       logrus.FieldLogger
	Currency     string
	DefaultYears int
}

// NewHandler wires the handler. repo and cache may be nil.
func NewHandler(engine *coreProjection.Engine, repo *store.ProjectionRepo, cache *store.ResultCache, logger logrus.FieldLogger) *Handler {
	if engine == nil {
		engine = coreProjection.NewEngine(logger)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		Engine:       engine,
		Repo:         repo,
		Cache:        cache,
		Logger:       logger,
		Currency:     report.DefaultCurrency,
		DefaultYears: scenario.DefaultYears,
	}
}

// Register mounts the endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/projection/run", h.HandleRun)
	mux.HandleFunc("/api/projection/compare", h.HandleCompare)
	mux.HandleFunc("/api/projection/runs", h.HandleRuns)
	mux.HandleFunc("/api/projection/export", h.HandleExport)
	mux.HandleFunc("/api/projection/report", h.HandleReport)
}

// RunRequest carries one scenario.
type RunRequest struct {
	Scenario *scenario.Scenario `json:"scenario"`
}

// CompareRequest carries the scenarios to run side by side.
type CompareRequest struct {
	Scenarios []*scenario.Scenario `json:"scenarios"`
}

// RunResponse is a projected scenario with its analytics.
type RunResponse struct {
	ID         string                     `json:"id,omitempty"`
	Name       string                     `json:"name"`
	Cached     bool                       `json:"cached"`
	Projection *coreProjection.Projection `json:"projection"`
	Ratios     []ratios.YearRatios        `json:"ratios"`
	CommonSize []ratios.CommonSize        `json:"common_size"`
	Linkages   []*validate.LinkageReport  `json:"linkages"`
	AllLinked  bool                       `json:"all_linked"`
}

// CompareResult is one entry of a comparison.
type CompareResult struct {
	Name       string                     `json:"name"`
	Projection *coreProjection.Projection `json:"projection,omitempty"`
	Ratios     []ratios.YearRatios        `json:"ratios,omitempty"`
	Error      string                     `json:"error,omitempty"`
	Problems   []string                   `json:"problems,omitempty"`
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

// HandleRun projects one scenario and archives the run.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	s, ok := h.decodeScenario(w, r)
	if !ok {
		return
	}

	p, cached, err := h.Cache.Run(r.Context(), h.Engine, s)
	if err != nil {
		h.writeError(w, "HandleRun", err)
		return
	}

	resp := h.analyse(s.Name, p)
	resp.Cached = cached
	if h.Repo != nil {
		rec, err := h.Repo.Save(r.Context(), s, p)
		if err != nil {
			config.LogError(h.Logger, module, "HandleRun", "save run", s.Name, err)
		} else {
			resp.ID = rec.ID
		}
	}

	h.Logger.WithFields(logrus.Fields{
		"scenario": s.Name,
		"variant":  p.Variant,
		"years":    len(p.Statements),
		"cached":   cached,
		"id":       resp.ID,
	}).Info("[PROJECTION] run complete")
	h.respond(w, "HandleRun", http.StatusOK, resp)
}

// HandleCompare runs several scenarios concurrently.
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req CompareRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	for i, s := range req.Scenarios {
		if s == nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("scenarios[%d] is null", i)})
			return
		}
		s.ApplyDefaults(fmt.Sprintf("scenario-%d", i+1), h.DefaultYears)
	}

	results, err := scenario.Compare(r.Context(), h.Engine, req.Scenarios)
	if err != nil {
		h.writeError(w, "HandleCompare", err)
		return
	}

	out := make([]CompareResult, len(results))
	for i, res := range results {
		out[i] = CompareResult{Name: res.Name, Projection: res.Projection, Error: res.Error}
		if res.Projection != nil {
			out[i].Ratios = ratios.ForProjection(res.Projection)
		}
		var inputErr *scenario.InputError
		if errors.As(res.Err, &inputErr) {
			out[i].Problems = inputErr.Problems
		}
	}
	h.respond(w, "HandleCompare", http.StatusOK, map[string]any{"results": out})
}

// HandleRuns returns one stored run (?id=) or the newest runs (?limit=).
func (h *Handler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	if h.Repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "run archive not configured"})
		return
	}

	if id := r.URL.Query().Get("id"); id != "" {
		rec, err := h.Repo.Load(r.Context(), id)
		if err != nil {
			h.writeError(w, "HandleRuns", err)
			return
		}
		h.respond(w, "HandleRuns", http.StatusOK, rec)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid limit %q", v)})
			return
		}
		limit = n
	}
	runs, err := h.Repo.List(r.Context(), limit)
	if err != nil {
		h.writeError(w, "HandleRuns", err)
		return
	}
	h.respond(w, "HandleRuns", http.StatusOK, map[string]any{"runs": runs})
}

// HandleExport projects a scenario and returns it as CSV or XLSX (?format=).
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("unsupported export format %q", format)})
		return
	}

	s, ok := h.decodeScenario(w, r)
	if !ok {
		return
	}
	p, _, err := h.Cache.Run(r.Context(), h.Engine, s)
	if err != nil {
		h.writeError(w, "HandleExport", err)
		return
	}

	filename := safeFilename(s.Name) + "." + format
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = export.WriteCSV(w, p.Statements)
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = export.WriteXLSX(w, p.Statements, ratios.ForProjection(p))
	}
	if err != nil {
		config.LogError(h.Logger, module, "HandleExport", "write "+format, s.Name, err)
	}
}

// HandleReport projects a scenario and returns the statement report as HTML,
// or as Markdown with ?format=markdown.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	s, ok := h.decodeScenario(w, r)
	if !ok {
		return
	}
	p, _, err := h.Cache.Run(r.Context(), h.Engine, s)
	if err != nil {
		h.writeError(w, "HandleReport", err)
		return
	}

	md := report.Markdown(p, ratios.ForProjection(p), report.Options{Title: s.Name, Currency: h.Currency})
	if f := r.URL.Query().Get("format"); f == "markdown" || f == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(md))
		return
	}

	page, err := report.RenderHTML(md, s.Name)
	if err != nil {
		h.writeError(w, "HandleReport", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

func (h *Handler) analyse(name string, p *coreProjection.Projection) RunResponse {
	links := validate.ValidateRun(p, h.tolerance())
	return RunResponse{
		Name:       name,
		Projection: p,
		Ratios:     ratios.ForProjection(p),
		CommonSize: ratios.CommonSizeProjection(p),
		Linkages:   links,
		AllLinked:  validate.AllLinked(links),
	}
}

func (h *Handler) tolerance() float64 {
	if h.Engine != nil && h.Engine.Tolerance > 0 {
		return h.Engine.Tolerance
	}
	return calc.DefaultBalanceTolerance
}

func (h *Handler) decodeScenario(w http.ResponseWriter, r *http.Request) (*scenario.Scenario, bool) {
	var req RunRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return nil, false
	}
	if req.Scenario == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "scenario is required"})
		return nil, false
	}
	req.Scenario.ApplyDefaults("scenario", h.DefaultYears)
	return req.Scenario, true
}

// writeError maps domain errors onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, funcName string, err error) {
	var (
		inputErr  *scenario.InputError
		configErr *coreProjection.ConfigError
		violation *coreProjection.InvariantViolation
		numeric   *coreProjection.NumericError
	)
	switch {
	case errors.As(err, &inputErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Problems: inputErr.Problems})
	case errors.As(err, &configErr), errors.Is(err, store.ErrInvalidRunID), errors.Is(err, scenario.ErrNoScenarios):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.As(err, &violation), errors.As(err, &numeric):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	default:
		config.LogError(h.Logger, module, funcName, "request failed", nil, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// allow sets CORS headers, answers preflight requests and rejects other methods.
func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", method+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return false
	}
	if r.Method != method {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return false
	}
	return true
}

// writeJSON encodes v before the status goes out. An encoding failure
// becomes a 500 with an ErrorResponse and is returned to the caller.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		err = fmt.Errorf("encode response: %w", err)
		status = http.StatusInternalServerError
		data, _ = json.Marshal(ErrorResponse{Error: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
	return err
}

// respond writes a success payload and logs encoding failures.
func (h *Handler) respond(w http.ResponseWriter, funcName string, status int, v any) {
	if err := writeJSON(w, status, v); err != nil {
		config.LogError(h.Logger, module, funcName, "write response", nil, err)
	}
}

func safeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, name)
	if cleaned == "" {
		return "projection"
	}
	return cleaned
}
