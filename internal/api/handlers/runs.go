package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/loancore/internal/contracts"
	"github.com/wonny/loancore/internal/pipeline"
	"github.com/wonny/loancore/pkg/logger"
)

// RunHandler handles pipeline run API endpoints
// ⭐ SSOT: run API 핸들러는 여기서만
type RunHandler struct {
	service *pipeline.Service
	logger  *logger.Logger
}

// NewRunHandler creates a new run handler
func NewRunHandler(service *pipeline.Service, log *logger.Logger) *RunHandler {
	return &RunHandler{
		service: service,
		logger:  log,
	}
}

// StartRequest is the POST /api/runs request body
type StartRequest struct {
	PurchaseDate string  `json:"purchaseDate"` // YYYY-MM-DD, default next Tuesday
	TargetYield  float64 `json:"targetYield"`  // default 8.05
	TenantID     int64   `json:"tenantId"`
	InputPath    string  `json:"inputPath"` // input folder override, default files_required
}

// RunResponse is the API shape of one pipeline run
type RunResponse struct {
	RunID          string   `json:"runId"`
	Status         string   `json:"status"`
	PurchaseDate   string   `json:"purchaseDate"`
	WeekdayName    string   `json:"weekdayName"`
	TargetYield    float64  `json:"targetYield"`
	LastPhase      string   `json:"lastPhase,omitempty"`
	TotalLoans     int      `json:"totalLoans"`
	TotalBalance   float64  `json:"totalBalance"`
	ExceptionCount int      `json:"exceptionCount"`
	Errors         []string `json:"errors,omitempty"`
	StartedAt      string   `json:"startedAt,omitempty"`
	CompletedAt    string   `json:"completedAt,omitempty"`
	CreatedAt      string   `json:"createdAt"`
}

func toRunResponse(run *contracts.PipelineRun) RunResponse {
	resp := RunResponse{
		RunID:          run.RunID,
		Status:         string(run.Status),
		PurchaseDate:   run.PurchaseDate.Format("2006-01-02"),
		WeekdayName:    run.WeekdayName,
		TargetYield:    run.TargetYield,
		LastPhase:      run.LastPhase,
		TotalLoans:     run.TotalLoans,
		TotalBalance:   run.TotalBalance,
		ExceptionCount: run.ExceptionCount,
		Errors:         run.Errors,
		CreatedAt:      run.CreatedAt.Format(time.RFC3339),
	}
	if run.StartedAt != nil {
		resp.StartedAt = run.StartedAt.Format(time.RFC3339)
	}
	if run.CompletedAt != nil {
		resp.CompletedAt = run.CompletedAt.Format(time.RFC3339)
	}
	return resp
}

// Start triggers a pipeline run
// POST /api/runs
func (h *RunHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	// empty body → all defaults
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	params := pipeline.RunParams{
		TenantID:    req.TenantID,
		TargetYield: req.TargetYield,
		InputPath:   req.InputPath,
	}
	if req.PurchaseDate != "" {
		date, err := time.Parse("2006-01-02", req.PurchaseDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'purchaseDate' format (expected YYYY-MM-DD)")
			return
		}
		params.PurchaseDate = date
	}

	runID, err := h.service.StartRunAsync(r.Context(), params)
	if errors.Is(err, contracts.ErrRunConflict) {
		respondError(w, http.StatusConflict, "Another pipeline run is already running")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("failed to start run")
		respondError(w, http.StatusInternalServerError, "Failed to start run")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"runId": runID})
}

// List returns recent runs
// GET /api/runs?limit=N
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	runs, err := h.service.List(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to list runs")
		respondError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	responses := make([]RunResponse, 0, len(runs))
	for _, run := range runs {
		responses = append(responses, toRunResponse(run))
	}
	respondJSON(w, http.StatusOK, responses)
}

// Get returns one run by its id
// GET /api/runs/{runID}
func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["runID"]

	run, err := h.service.Get(r.Context(), runID)
	if errors.Is(err, contracts.ErrRunNotFound) {
		respondError(w, http.StatusNotFound, "Run not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("failed to get run")
		respondError(w, http.StatusInternalServerError, "Failed to get run")
		return
	}

	respondJSON(w, http.StatusOK, toRunResponse(run))
}

// Cancel requests label-only cancellation of a run
// POST /api/runs/{runID}/cancel
func (h *RunHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["runID"]

	err := h.service.Cancel(r.Context(), runID)
	switch {
	case errors.Is(err, contracts.ErrRunNotFound):
		respondError(w, http.StatusNotFound, "Run not found")
	case errors.Is(err, contracts.ErrRunTerminal):
		respondError(w, http.StatusConflict, "Run is already in a terminal state")
	case err != nil:
		h.logger.WithError(err).Error("failed to cancel run")
		respondError(w, http.StatusInternalServerError, "Failed to cancel run")
	default:
		respondJSON(w, http.StatusAccepted, map[string]string{"runId": runID, "status": "cancel_requested"})
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
