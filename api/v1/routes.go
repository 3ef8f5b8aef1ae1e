package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServerInterface is implemented by the API handler.
type ServerInterface interface {
	// (GET /pools)
	ListPools(c *gin.Context)
	// (POST /pools)
	CreatePool(c *gin.Context)
	// (GET /pools/{name})
	GetPool(c *gin.Context, name string)
	// (DELETE /pools/{name})
	DeletePool(c *gin.Context, name string)
	// (PUT /pools/{name}/size)
	ResizePool(c *gin.Context, name string)
	// (POST /pools/{name}/pause)
	PausePool(c *gin.Context, name string)
	// (POST /pools/{name}/resume)
	ResumePool(c *gin.Context, name string)
	// (GET /efficiency)
	GetEfficiency(c *gin.Context)
	// (GET /history)
	GetHistory(c *gin.Context, params GetHistoryParams)
	// (GET /recorder)
	GetRecorderStatus(c *gin.Context)
}

// RegisterHandlers binds every route of ServerInterface on router.
func RegisterHandlers(router gin.IRouter, si ServerInterface) {
	router.GET("/pools", si.ListPools)
	router.POST("/pools", si.CreatePool)
	router.GET("/pools/:name", func(c *gin.Context) { si.GetPool(c, c.Param("name")) })
	router.DELETE("/pools/:name", func(c *gin.Context) { si.DeletePool(c, c.Param("name")) })
	router.PUT("/pools/:name/size", func(c *gin.Context) { si.ResizePool(c, c.Param("name")) })
	router.POST("/pools/:name/pause", func(c *gin.Context) { si.PausePool(c, c.Param("name")) })
	router.POST("/pools/:name/resume", func(c *gin.Context) { si.ResumePool(c, c.Param("name")) })
	router.GET("/efficiency", si.GetEfficiency)
	router.GET("/history", func(c *gin.Context) {
		var params GetHistoryParams
		if err := c.ShouldBindQuery(&params); err != nil {
			c.JSON(http.StatusBadRequest, Error{Error: err.Error()})
			return
		}
		si.GetHistory(c, params)
	})
	router.GET("/recorder", si.GetRecorderStatus)
}
