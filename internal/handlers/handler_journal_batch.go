package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	portssvc "github.com/SscSPs/ledger_sync/internal/core/ports/services"
	"github.com/SscSPs/ledger_sync/internal/dto"
	"github.com/SscSPs/ledger_sync/internal/middleware"
)

// journalBatchHandler handles HTTP requests related to journal batch submission.
type journalBatchHandler struct {
	journalBatchService portssvc.JournalBatchSvcFacade
}

func newJournalBatchHandler(svc portssvc.JournalBatchSvcFacade) *journalBatchHandler {
	return &journalBatchHandler{journalBatchService: svc}
}

// RegisterJournalBatchRoutes registers the journal batch routes on rg.
func RegisterJournalBatchRoutes(rg *gin.RouterGroup, svc portssvc.JournalBatchSvcFacade) {
	h := newJournalBatchHandler(svc)

	batches := rg.Group("/journal-batches")
	{
		batches.POST("", h.submitJournalBatch)
		batches.GET("", h.listBatchRuns)
		batches.GET("/:runID", h.getBatchRun)
	}
}

// submitJournalBatch godoc
// @Summary Submit journal entries to the remote ledger
// @Description Resolves references through the reference cache, verifies every referenced entity remotely and creates the consistent entries in one batch. Inconsistent entries are reported, not submitted.
// @Tags journal-batches
// @Accept  json
// @Produce  json
// @Param   batch body dto.SubmitJournalBatchRequest true "Journal entries"
// @Success 200 {object} dto.BatchRunResponse "Outcome of the run"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Reference cache not loaded"
// @Failure 422 {object} map[string]string "Entry rejected by accounting rules or batch capacity"
// @Failure 502 {object} map[string]interface{} "Remote ledger failure, with the aborted run"
// @Failure 504 {object} map[string]interface{} "Remote ledger timeout, with the aborted run"
// @Security BearerAuth
// @Router /journal-batches [post]
func (h *journalBatchHandler) submitJournalBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SubmitJournalBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SubmitJournalBatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	run, err := h.journalBatchService.SubmitJournalEntries(c.Request.Context(), req)
	if err != nil {
		// An unknown reference name is a problem with the submitted entry, not a missing route.
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Journal entry references an unknown entity", slog.String("error", err.Error()))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		var extra gin.H
		if run != nil {
			extra = gin.H{"run": dto.ToBatchRunResponse(run)}
		}
		respondWithError(c, logger, err, "Failed to submit journal batch", extra)
		return
	}

	logger.Info("Journal batch processed",
		slog.String("run_id", run.RunID),
		slog.String("status", string(run.Status)),
		slog.Int("added", run.Added),
		slog.Int("failed", run.Failed),
		slog.Int("inconsistent", run.Inconsistent))
	c.JSON(http.StatusOK, dto.ToBatchRunResponse(run))
}

// getBatchRun godoc
// @Summary Get a batch run
// @Description Retrieves a persisted run with the outcome of each entry
// @Tags journal-batches
// @Produce  json
// @Param   runID path string true "Run ID"
// @Success 200 {object} dto.BatchRunResponse
// @Failure 400 {object} map[string]string "Invalid run ID"
// @Failure 404 {object} map[string]string "Run not found"
// @Failure 500 {object} map[string]string "Failed to retrieve run"
// @Security BearerAuth
// @Router /journal-batches/{runID} [get]
func (h *journalBatchHandler) getBatchRun(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	runID := c.Param("runID")

	run, err := h.journalBatchService.GetBatchRun(c.Request.Context(), runID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("run_id", runID)), err, "Failed to retrieve batch run", nil)
		return
	}

	c.JSON(http.StatusOK, dto.ToBatchRunResponse(run))
}

// listBatchRuns godoc
// @Summary List batch runs
// @Description Lists the most recent runs of the configured realm, newest first, without their entries
// @Tags journal-batches
// @Produce  json
// @Param   limit query int false "Maximum number of runs (default 20, max 100)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListBatchRunsResponse
// @Failure 400 {object} map[string]string "Invalid limit or token"
// @Failure 500 {object} map[string]string "Failed to list runs"
// @Security BearerAuth
// @Router /journal-batches [get]
func (h *journalBatchHandler) listBatchRuns(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	var nextToken *string
	if raw := c.Query("nextToken"); raw != "" {
		nextToken = &raw
	}

	runs, next, err := h.journalBatchService.ListBatchRuns(c.Request.Context(), limit, nextToken)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list batch runs", nil)
		return
	}

	c.JSON(http.StatusOK, dto.ToListBatchRunsResponse(runs, next))
}
