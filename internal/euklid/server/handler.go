package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
	mdwerrors "github.com/msto63/euklid/foundation/core/errors"
	"github.com/msto63/euklid/internal/euklid/service"
	"github.com/msto63/euklid/internal/euklid/store"
	"github.com/msto63/euklid/pkg/core/cache"
	"github.com/msto63/euklid/pkg/core/health"
	"github.com/msto63/euklid/pkg/core/logging"
	"github.com/msto63/euklid/pkg/core/version"
	"github.com/msto63/euklid/pkg/rational"
)

// Request bodies. Limits only bound the payload; what the values mean is
// checked by the engine so its error kinds reach the caller.

// ParseRequest is the body of POST /api/v1/parse and /api/v1/decimal
type ParseRequest struct {
	Input string `json:"input" validate:"max=256"`
}

// CalculateRequest is the body of POST /api/v1/calculate
type CalculateRequest struct {
	Expression string `json:"expression" validate:"max=4096"`
}

// EvaluateRequest is the body of POST /api/v1/evaluate
type EvaluateRequest struct {
	Operands  []string `json:"operands" validate:"max=256,dive,max=256"`
	Operators []string `json:"operators" validate:"max=255,dive,max=16"`
}

// LCDRequest is the body of POST /api/v1/lcd and /api/v1/compare
type LCDRequest struct {
	Inputs []string `json:"inputs" validate:"max=256,dive,max=256"`
}

// ToDecimalRequest is the body of POST /api/v1/todecimal
type ToDecimalRequest struct {
	Input       string `json:"input" validate:"max=256"`
	Approximate bool   `json:"approximate"`
}

// ErrorResponse wraps a problem for the HTTP API
type ErrorResponse struct {
	Error *service.Problem `json:"error"`
}

// HistoryResponse lists history records
type HistoryResponse struct {
	Records []*store.Record `json:"records"`
	Total   int             `json:"total"`
}

// InfoResponse describes the API
type InfoResponse struct {
	Name      string            `json:"name"`
	Version   version.Info      `json:"version"`
	Engine    rational.Options  `json:"engine"`
	Locales   []string          `json:"locales"`
	History   bool              `json:"history"`
	Endpoints map[string]string `json:"endpoints"`
}

// requestValidate checks request bodies of every transport
var requestValidate = validator.New()

// healthCacheTTL spares the history store from monitors polling faster
// than this
const healthCacheTTL = time.Second

// Handler handles HTTP requests for the calculator API
type Handler struct {
	service   *service.Service
	health    *health.Registry
	reports   *cache.Cache[*health.Report]
	metrics   *Metrics
	logger    *logging.Logger
	maxBody   int64
	startTime time.Time
}

// NewHandler creates a new API handler
func NewHandler(svc *service.Service, registry *health.Registry, metrics *Metrics, maxBody int64) *Handler {
	reports := cache.New[*health.Report](cache.Config{MaxItems: 1, TTL: healthCacheTTL})
	if metrics != nil {
		metrics.WatchCache("health_report", reports.Stats)
	}
	return &Handler{
		service:   svc,
		health:    registry,
		reports:   reports,
		metrics:   metrics,
		logger:    logging.New("euklid-http"),
		maxBody:   maxBody,
		startTime: time.Now(),
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	path = strings.Trim(path, "/")

	switch {
	case path == "":
		h.handleInfo(w, r)
	case path == "health":
		h.handleHealth(w, r)
	case path == "parse":
		h.handleParse(w, r)
	case path == "calculate":
		h.handleCalculate(w, r)
	case path == "evaluate":
		h.handleEvaluate(w, r)
	case path == "lcd":
		h.handleLCD(w, r, "lcd")
	case path == "compare":
		h.handleLCD(w, r, "compare")
	case path == "decimal":
		h.handleFromDecimal(w, r)
	case path == "todecimal":
		h.handleToDecimal(w, r)
	case path == "history":
		h.handleHistory(w, r)
	case path == "history/stats":
		h.handleHistoryStats(w, r)
	case strings.HasPrefix(path, "history/"):
		h.handleHistoryEntry(w, r, strings.TrimPrefix(path, "history/"))
	default:
		h.writeProblem(w, r, mdwerrors.NewErrorBuilder(mdwerrors.ModuleServer).
			Operation("route").
			Messagef("endpoint %s not found", r.URL.Path).
			Code(mdwerror.CodeNotFound).
			Build())
	}
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	h.writeJSON(w, http.StatusOK, InfoResponse{
		Name:    "euklid",
		Version: version.Get(),
		Engine:  h.service.EngineOptions(),
		Locales: h.service.Messages().AvailableLocales(),
		History: h.service.HistoryEnabled(),
		Endpoints: map[string]string{
			"POST /api/v1/parse":        "read a value",
			"POST /api/v1/calculate":    "evaluate an expression left to right",
			"POST /api/v1/evaluate":     "evaluate operands and operators",
			"POST /api/v1/lcd":          "least common denominator",
			"POST /api/v1/compare":      "order values",
			"POST /api/v1/decimal":      "decimal to fraction",
			"POST /api/v1/todecimal":    "fraction to decimal",
			"GET /api/v1/history":       "recorded calculations",
			"GET /api/v1/history/stats": "history summary",
			"GET /api/v1/health":        "health report",
			"GET /api/v1/ws":            "WebSocket calculator",
		},
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	report, _ := h.reports.GetOrSet("report", func() (*health.Report, error) {
		return h.health.Check(ctx), nil
	})
	status := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, report)
}

func (h *Handler) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !h.decode(w, r, &req) {
		return
	}
	start := time.Now()
	res, err := h.service.Parse(r.Context(), req.Input)
	h.respond(w, r, "parse", start, res, err)
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if !h.decode(w, r, &req) {
		return
	}
	start := time.Now()
	res, err := h.service.Calculate(r.Context(), req.Expression)
	h.respond(w, r, "calculate", start, res, err)
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if !h.decode(w, r, &req) {
		return
	}
	start := time.Now()
	res, err := h.service.Evaluate(r.Context(), req.Operands, req.Operators)
	h.respond(w, r, "evaluate", start, res, err)
}

func (h *Handler) handleLCD(w http.ResponseWriter, r *http.Request, op string) {
	var req LCDRequest
	if !h.decode(w, r, &req) {
		return
	}
	start := time.Now()
	var (
		res *service.LCDResult
		err error
	)
	if op == "compare" {
		res, err = h.service.Compare(r.Context(), req.Inputs)
	} else {
		res, err = h.service.LCD(r.Context(), req.Inputs)
	}
	h.respond(w, r, op, start, res, err)
}

func (h *Handler) handleFromDecimal(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !h.decode(w, r, &req) {
		return
	}
	start := time.Now()
	res, err := h.service.FromDecimal(r.Context(), req.Input)
	h.respond(w, r, "decimal", start, res, err)
}

func (h *Handler) handleToDecimal(w http.ResponseWriter, r *http.Request) {
	var req ToDecimalRequest
	if !h.decode(w, r, &req) {
		return
	}
	start := time.Now()
	res, err := h.service.ToDecimal(r.Context(), req.Input, req.Approximate)
	h.respond(w, r, "todecimal", start, res, err)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	filter, err := historyFilter(r)
	if err != nil {
		h.writeProblem(w, r, err)
		return
	}
	records, err := h.service.History(r.Context(), filter)
	if err != nil {
		h.writeProblem(w, r, err)
		return
	}
	if records == nil {
		records = []*store.Record{}
	}
	h.writeJSON(w, http.StatusOK, HistoryResponse{Records: records, Total: len(records)})
}

func (h *Handler) handleHistoryStats(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	stats, err := h.service.HistoryStats(r.Context())
	if err != nil {
		h.writeProblem(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleHistoryEntry(w http.ResponseWriter, r *http.Request, id string) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	rec, err := h.service.HistoryEntry(r.Context(), id)
	if err != nil {
		h.writeProblem(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

// historyFilter reads kind, failed, search, request_id, since, limit and
// offset from the query string
func historyFilter(r *http.Request) (store.Filter, error) {
	q := r.URL.Query()
	filter := store.Filter{
		Kind:      store.Kind(q.Get("kind")),
		Search:    q.Get("search"),
		RequestID: q.Get("request_id"),
		Limit:     50,
	}

	bad := func(name, expected string) error {
		return mdwerrors.NewErrorBuilder(mdwerrors.ModuleServer).
			Operation("history").
			Messagef("query parameter %s must be %s", name, expected).
			Code(mdwerror.CodeValidationFailed).
			Detail("parameter", name).
			Build()
	}

	if v := q.Get("failed"); v != "" {
		failed, err := strconv.ParseBool(v)
		if err != nil {
			return filter, bad("failed", "a boolean")
		}
		filter.FailedOnly = failed
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			return filter, bad("limit", "between 1 and 1000")
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, bad("offset", "a non-negative integer")
		}
		filter.Offset = n
	}
	if v := q.Get("since"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			filter.Since = time.Now().Add(-d)
		} else if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.Since = t
		} else {
			return filter, bad("since", "a duration or an RFC 3339 time")
		}
	}
	return filter, nil
}

// allow answers 405 unless the request uses method
func (h *Handler) allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	h.writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: &service.Problem{
		Kind:      rational.KindInvalidInput,
		Code:      string(mdwerror.CodeInvalidInput),
		Message:   "Use " + method,
		RequestID: service.RequestIDFrom(r.Context()),
	}})
	return false
}

// decode reads and validates a POST body into v
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if !h.allow(w, r, http.MethodPost) {
		return false
	}
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeProblemStatus(w, r, http.StatusRequestEntityTooLarge, invalidBody("request body too large", err))
			return false
		}
		h.writeProblem(w, r, invalidBody("invalid JSON body", err))
		return false
	}
	if err := requestValidate.Struct(v); err != nil {
		h.writeProblem(w, r, validationFailed(err))
		return false
	}
	return true
}

func invalidBody(message string, cause error) error {
	return mdwerrors.NewErrorBuilder(mdwerrors.ModuleServer).
		Operation("decode").
		Message(message).
		Cause(cause).
		Code(mdwerror.CodeValidationFailed).
		Build()
}

func validationFailed(err error) error {
	fields := []string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields = append(fields, fe.Namespace()+" ("+fe.Tag()+")")
		}
	}
	return mdwerrors.NewErrorBuilder(mdwerrors.ModuleServer).
		Operation("validate").
		Messagef("request exceeds limits: %s", strings.Join(fields, ", ")).
		Code(mdwerror.CodeValidationFailed).
		Detail("fields", strings.Join(fields, ",")).
		Build()
}

// respond writes res or the problem for err and records the operation
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, op string, start time.Time, res interface{}, err error) {
	h.metrics.Observe("http", op, statusLabel(err), time.Since(start))
	if err != nil {
		h.writeProblem(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// statusLabel is "ok" or the error kind of err
func statusLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return string(rational.KindOf(err))
}

func (h *Handler) writeProblem(w http.ResponseWriter, r *http.Request, err error) {
	h.writeProblemStatus(w, r, mdwerror.GetCode(err).HTTPStatus(), err)
}

func (h *Handler) writeProblemStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	p := h.service.Explain(locale(r), err)
	if p.RequestID == "" {
		p.RequestID = service.RequestIDFrom(r.Context())
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", r.URL.Path, "error", err.Error(), "request_id", p.RequestID)
	}
	h.writeJSON(w, status, ErrorResponse{Error: p})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Failed to write response", "error", err.Error())
	}
}

// locale prefers the lang query parameter over Accept-Language
func locale(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return lang
	}
	return r.Header.Get("Accept-Language")
}
