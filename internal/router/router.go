package router

import (
	"dining-bench/internal/config"
	"dining-bench/internal/handler"
	"dining-bench/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(svc *service.ServiceContext, defaults config.BenchConfig) *gin.Engine {
	r := gin.Default()

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Origin")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	sweepHandler := handler.NewSweepHandler(svc.Tracker, defaults, svc.DB)

	api := r.Group("/api")
	{
		sweeps := api.Group("/sweeps")
		{
			sweeps.GET("", sweepHandler.ListSweeps)
			sweeps.POST("/run", sweepHandler.RunSweep)
			sweeps.GET("/current", sweepHandler.CurrentSweep)
			sweeps.GET("/current/summary", sweepHandler.CurrentSummary)
			sweeps.GET("/:id/samples", sweepHandler.ListSamples)
		}
	}

	return r
}
