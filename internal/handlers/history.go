package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/kubev2v/task-scheduler/api/v1"
	"github.com/kubev2v/task-scheduler/internal/services"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// GetHistory returns stored statistics snapshots with filtering and pagination
// (GET /history)
func (h *Handler) GetHistory(c *gin.Context, params v1.GetHistoryParams) {
	page := 1
	if params.Page != nil && *params.Page > 0 {
		page = *params.Page
	}
	pageSize := defaultPageSize
	if params.PageSize != nil && *params.PageSize > 0 {
		pageSize = min(*params.PageSize, maxPageSize)
	}

	svcParams := services.HistoryListParams{
		Limit:  uint64(pageSize),
		Offset: uint64((page - 1) * pageSize),
	}
	if params.Pool != nil {
		svcParams.Pools = *params.Pool
	}
	if params.Since != nil {
		svcParams.Since = *params.Since
	}
	if params.Until != nil {
		svcParams.Until = *params.Until
	}

	result, err := h.historySrv.List(c.Request.Context(), svcParams)
	if err != nil {
		writeError(c, "history_handler", "failed to list history", err)
		return
	}

	pageCount := (result.Total + pageSize - 1) / pageSize
	if pageCount == 0 {
		pageCount = 1
	}

	records := make([]v1.HistoryRecord, 0, len(result.Records))
	for _, r := range result.Records {
		records = append(records, v1.NewHistoryRecordFromModel(r))
	}

	c.JSON(http.StatusOK, v1.HistoryListResponse{
		Page:      page,
		PageCount: pageCount,
		Total:     result.Total,
		Records:   records,
	})
}

// GetRecorderStatus returns the state of the statistics recorder
// (GET /recorder)
func (h *Handler) GetRecorderStatus(c *gin.Context) {
	c.JSON(http.StatusOK, v1.NewRecorderStatus(h.recorder.Status()))
}
