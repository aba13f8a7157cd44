package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router. The optional metrics
// handler is mounted at /metrics when non-nil.
func SetupRouter(api *API, metricsHandler http.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/status", api.Status)
		v1.GET("/files", api.Files)
		v1.PUT("/volume", api.SetVolume)
		v1.POST("/play", api.Play)
		v1.POST("/stop", api.Stop)
		v1.POST("/mute", api.Mute)
		v1.POST("/unmute", api.Unmute)
	}

	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
