package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	v1 "github.com/kubev2v/virt-harness/api/v1"
	"github.com/kubev2v/virt-harness/internal/services"
	srvErrors "github.com/kubev2v/virt-harness/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// GetRuns returns recorded runs, most recent first, with filtering and
// pagination
// (GET /runs)
func (h *Handler) GetRuns(c *gin.Context) {
	svcParams, err := listParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: err.Error()})
		return
	}

	page, err := positiveQuery(c, "page", 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: err.Error()})
		return
	}
	pageSize, err := positiveQuery(c, "pageSize", defaultPageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: err.Error()})
		return
	}
	pageSize = min(pageSize, maxPageSize)

	svcParams.Limit = uint64(pageSize)
	svcParams.Offset = uint64((page - 1) * pageSize)

	result, err := h.reports.List(c.Request.Context(), svcParams)
	if err != nil {
		zap.S().Named("runs_handler").Errorw("failed to list runs", "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to list runs"})
		return
	}

	pageCount := (result.Total + pageSize - 1) / pageSize
	if pageCount == 0 {
		pageCount = 1
	}

	runs := make([]v1.Run, 0, len(result.Runs))
	for _, r := range result.Runs {
		runs = append(runs, v1.NewRunFromModel(r))
	}

	c.JSON(http.StatusOK, v1.RunListResponse{
		Page:      page,
		PageCount: pageCount,
		Total:     result.Total,
		Runs:      runs,
	})
}

// GetRun returns one run
// (GET /runs/{id})
func (h *Handler) GetRun(c *gin.Context) {
	id, ok := runID(c)
	if !ok {
		return
	}

	run, err := h.reports.Get(c.Request.Context(), id)
	if err != nil {
		h.runError(c, id, err)
		return
	}

	c.JSON(http.StatusOK, v1.NewRunFromModel(*run))
}

// GetRunLog returns the commands and assertions of a run in order
// (GET /runs/{id}/log)
func (h *Handler) GetRunLog(c *gin.Context) {
	id, ok := runID(c)
	if !ok {
		return
	}

	entries, err := h.reports.Entries(c.Request.Context(), id)
	if err != nil {
		h.runError(c, id, err)
		return
	}

	resp := v1.RunLogResponse{RunId: id.String(), Entries: make([]v1.LogEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, v1.NewLogEntryFromModel(e))
	}
	c.JSON(http.StatusOK, resp)
}

// GetSummary counts verdicts of the runs matching the filters
// (GET /summary)
func (h *Handler) GetSummary(c *gin.Context) {
	svcParams, err := listParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: err.Error()})
		return
	}

	summary, err := h.reports.Summary(c.Request.Context(), svcParams)
	if err != nil {
		zap.S().Named("runs_handler").Errorw("failed to summarize runs", "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to summarize runs"})
		return
	}

	var resp v1.Summary
	resp.FromModel(summary)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) runError(c *gin.Context, id uuid.UUID, err error) {
	if srvErrors.IsResourceNotFoundError(err) {
		c.JSON(http.StatusNotFound, v1.Error{Error: err.Error()})
		return
	}
	zap.S().Named("runs_handler").Errorw("failed to get run", "id", id, "error", err)
	c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to get run"})
}

func runID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: "invalid run id: " + c.Param("id")})
		return uuid.Nil, false
	}
	return id, true
}

func listParams(c *gin.Context) (services.RunListParams, error) {
	verdicts, err := v1.ParseVerdicts(c.QueryArray("verdict"))
	if err != nil {
		return services.RunListParams{}, err
	}
	return services.RunListParams{
		Scenarios:   v1.SplitValues(c.QueryArray("scenario")),
		Modules:     v1.SplitValues(c.QueryArray("module")),
		Checkpoints: v1.SplitValues(c.QueryArray("checkpoint")),
		Verdicts:    verdicts,
	}, nil
}

func positiveQuery(c *gin.Context, key string, def int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, raw)
	}
	return n, nil
}
