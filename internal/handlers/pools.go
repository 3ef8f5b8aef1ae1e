package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/kubev2v/task-scheduler/api/v1"
)

// ListPools returns every pool with its statistics
// (GET /pools)
func (h *Handler) ListPools(c *gin.Context) {
	views, err := h.poolSrv.List()
	if err != nil {
		writeError(c, "pool_handler", "failed to list pools", err)
		return
	}

	pools := make([]v1.Pool, 0, len(views))
	for _, v := range views {
		pools = append(pools, v1.NewPoolFromView(v))
	}
	c.JSON(http.StatusOK, v1.PoolList{Pools: pools})
}

// CreatePool creates and persists a pool
// (POST /pools)
func (h *Handler) CreatePool(c *gin.Context) {
	var req v1.CreatePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: err.Error()})
		return
	}
	ordering, err := v1.ParseOrdering(req.Ordering)
	if err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: err.Error()})
		return
	}

	if err := h.poolSrv.Create(c.Request.Context(), req.Name, *req.Workers, ordering); err != nil {
		writeError(c, "pool_handler", "failed to create pool", err)
		return
	}
	h.respondPool(c, http.StatusCreated, req.Name)
}

// GetPool returns one pool
// (GET /pools/{name})
func (h *Handler) GetPool(c *gin.Context, name string) {
	h.respondPool(c, http.StatusOK, name)
}

// DeletePool destroys a pool, failing its queued tasks
// (DELETE /pools/{name})
func (h *Handler) DeletePool(c *gin.Context, name string) {
	if err := h.poolSrv.Delete(c.Request.Context(), name); err != nil {
		writeError(c, "pool_handler", "failed to delete pool", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResizePool sets the number of workers
// (PUT /pools/{name}/size)
func (h *Handler) ResizePool(c *gin.Context, name string) {
	var req v1.ResizePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: err.Error()})
		return
	}
	if err := h.poolSrv.Resize(c.Request.Context(), name, *req.Workers); err != nil {
		writeError(c, "pool_handler", "failed to resize pool", err)
		return
	}
	h.respondPool(c, http.StatusOK, name)
}

// (POST /pools/{name}/pause)
func (h *Handler) PausePool(c *gin.Context, name string) {
	if err := h.poolSrv.Pause(name); err != nil {
		writeError(c, "pool_handler", "failed to pause pool", err)
		return
	}
	h.respondPool(c, http.StatusOK, name)
}

// (POST /pools/{name}/resume)
func (h *Handler) ResumePool(c *gin.Context, name string) {
	if err := h.poolSrv.Resume(name); err != nil {
		writeError(c, "pool_handler", "failed to resume pool", err)
		return
	}
	h.respondPool(c, http.StatusOK, name)
}

// GetEfficiency returns completed over submitted across all pools
// (GET /efficiency)
func (h *Handler) GetEfficiency(c *gin.Context) {
	eff, submitted, active := h.poolSrv.Efficiency()
	c.JSON(http.StatusOK, v1.Efficiency{
		Efficiency: eff,
		Submitted:  submitted,
		Active:     active,
	})
}

func (h *Handler) respondPool(c *gin.Context, status int, name string) {
	view, err := h.poolSrv.Get(name)
	if err != nil {
		writeError(c, "pool_handler", "failed to get pool", err)
		return
	}
	c.JSON(status, v1.NewPoolFromView(*view))
}
