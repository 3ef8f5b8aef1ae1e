package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/kubev2v/task-scheduler/api/v1"
	"github.com/kubev2v/task-scheduler/internal/services"
	srvErrors "github.com/kubev2v/task-scheduler/pkg/errors"
)

type Handler struct {
	poolSrv    *services.PoolService
	historySrv *services.HistoryService
	recorder   *services.StatsRecorder
}

var _ v1.ServerInterface = (*Handler)(nil)

func New(poolSrv *services.PoolService, historySrv *services.HistoryService, recorder *services.StatsRecorder) *Handler {
	return &Handler{
		poolSrv:    poolSrv,
		historySrv: historySrv,
		recorder:   recorder,
	}
}

// writeError maps scheduler errors to status codes.
func writeError(c *gin.Context, logger string, msg string, err error) {
	switch {
	case srvErrors.IsResourceNotFoundError(err):
		c.JSON(http.StatusNotFound, v1.Error{Error: err.Error()})
	case srvErrors.IsPoolExistsError(err):
		c.JSON(http.StatusConflict, v1.Error{Error: err.Error()})
	case srvErrors.IsInvalidPoolSizeError(err):
		c.JSON(http.StatusBadRequest, v1.Error{Error: err.Error()})
	case srvErrors.IsThreadLimitError(err):
		c.JSON(http.StatusUnprocessableEntity, v1.Error{Error: err.Error()})
	case srvErrors.IsSchedulerClosedError(err):
		c.JSON(http.StatusServiceUnavailable, v1.Error{Error: err.Error()})
	default:
		zap.S().Named(logger).Errorw(msg, "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: msg})
	}
}
