package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	pb "github.com/msto63/pascal/api/pascal"
	"github.com/msto63/pascal/foundation/calc/scanner"
	mdwerror "github.com/msto63/pascal/foundation/core/error"
	"github.com/msto63/pascal/internal/pascal/service"
	"github.com/msto63/pascal/internal/pascal/store"
	"github.com/msto63/pascal/pkg/core/health"
	"github.com/msto63/pascal/pkg/core/logging"
)

// Service is the part of the pascal service the handlers use
type Service interface {
	Evaluate(ctx context.Context, source string) (*service.Evaluation, error)
	Tokenize(source string) ([]scanner.Token, error)
	History(ctx context.Context, filter store.RunFilter) ([]*store.Run, error)
	Run(ctx context.Context, id string) (*store.Run, error)
}

// SourceRequest is the body of eval and tokens requests
type SourceRequest struct {
	Source string `json:"source"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// HealthResponse represents the health endpoint response
type HealthResponse struct {
	Status  string               `json:"status"`
	Version string               `json:"version"`
	Uptime  string               `json:"uptime"`
	Checks  []health.CheckResult `json:"checks"`
}

// Options configures the HTTP handler
type Options struct {
	Version        string
	CORSEnabled    bool
	AllowedOrigins []string
	// MaxBodyBytes limits request bodies, 1MB when zero
	MaxBodyBytes int64
}

// Handler handles the pascal HTTP API
type Handler struct {
	svc       Service
	health    *health.Registry
	logger    *logging.Logger
	options   Options
	startTime time.Time
}

// NewHandler creates a new API handler. registry may be nil.
func NewHandler(svc Service, registry *health.Registry, opts Options) *Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	return &Handler{
		svc:       svc,
		health:    registry,
		logger:    logging.New("pascal-handler"),
		options:   opts,
		startTime: time.Now(),
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.setCORSHeaders(w, r)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	path = strings.Trim(path, "/")

	switch {
	case path == "":
		h.handleRoot(w, r)
	case path == "health":
		h.handleHealth(w, r)
	case path == "eval":
		h.handleEval(w, r)
	case path == "tokens":
		h.handleTokens(w, r)
	case path == "history":
		h.handleHistory(w, r)
	case strings.HasPrefix(path, "runs/"):
		h.handleRun(w, r, strings.TrimPrefix(path, "runs/"))
	default:
		h.writeError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found", nil)
	}
}

func (h *Handler) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	if !h.options.CORSEnabled {
		return
	}

	origin := r.Header.Get("Origin")
	for _, allowed := range h.options.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			if allowed == "*" {
				origin = "*"
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			return
		}
	}
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "pascal",
		"version": h.options.Version,
		"endpoints": []string{
			"POST /api/v1/eval",
			"POST /api/v1/tokens",
			"GET /api/v1/history",
			"GET /api/v1/runs/{id}",
			"GET /api/v1/health",
			"GET /api/v1/ws",
		},
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Use GET", nil)
		return
	}

	resp := HealthResponse{
		Status:  string(health.StatusHealthy),
		Version: h.options.Version,
		Uptime:  time.Since(h.startTime).Truncate(time.Second).String(),
		Checks:  []health.CheckResult{},
	}

	statusCode := http.StatusOK
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		report := h.health.Check(ctx)
		cancel()

		resp.Status = string(report.Status)
		resp.Checks = report.Checks
		if report.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
	}
	h.writeJSON(w, statusCode, resp)
}

func (h *Handler) handleEval(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Use POST", nil)
		return
	}

	var req SourceRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, mdwerror.CodeInvalidFormat.String(), "Invalid request body", err.Error())
		return
	}

	eval, err := h.svc.Evaluate(r.Context(), req.Source)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, eval.Response())
	case service.IsEvaluationFailure(err):
		h.writeJSON(w, http.StatusUnprocessableEntity, eval.Response())
	default:
		h.writeServiceError(w, err)
	}
}

func (h *Handler) handleTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Use POST", nil)
		return
	}

	var req SourceRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, mdwerror.CodeInvalidFormat.String(), "Invalid request body", err.Error())
		return
	}

	tokens, err := h.svc.Tokenize(req.Source)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, pb.TokenizeResponse{Tokens: service.TokenInfos(tokens)})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Use GET", nil)
		return
	}

	req := pb.HistoryRequest{Limit: 20}
	query := r.URL.Query()
	for _, param := range []struct {
		name string
		dst  *int
	}{{"limit", &req.Limit}, {"offset", &req.Offset}} {
		raw := query.Get(param.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, mdwerror.CodeInvalidInput.String(), "Invalid "+param.name, raw)
			return
		}
		*param.dst = n
	}
	req.FailedOnly = query.Get("failed") == "true"
	if err := service.ValidateHistoryRequest(req); err != nil {
		h.writeServiceError(w, err)
		return
	}

	runs, err := h.svc.History(r.Context(), service.HistoryFilter(req))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := pb.HistoryResponse{Runs: make([]pb.RunInfo, len(runs))}
	for i, run := range runs {
		resp.Runs[i] = service.RunInfo(run)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Use GET", nil)
		return
	}
	if id == "" || strings.Contains(id, "/") {
		h.writeError(w, http.StatusNotFound, mdwerror.CodeNotFound.String(), "Run not found", id)
		return
	}

	run, err := h.svc.Run(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, service.RunInfo(run))
}

// Helper methods

func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.options.MaxBodyBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Failed to write response", "error", err.Error())
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	h.writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var mdwErr *mdwerror.Error
	if !errors.As(err, &mdwErr) {
		h.logger.Error("Request failed", "error", err.Error())
		h.writeError(w, http.StatusInternalServerError, mdwerror.CodeInternal.String(), "Internal server error", nil)
		return
	}

	status := mdwErr.Code().HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.logger.Foundation().LogError(err)
	}
	h.writeError(w, status, mdwErr.Code().String(), mdwErr.Message(), mdwErr.Details())
}
