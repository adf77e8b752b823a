package routes

import (
	"github.com/gin-gonic/gin"
)

func StopRoutes(r *gin.RouterGroup, h Handlers) {
	stops := r.Group("/stops")
	{
		stops.POST("", h.Stops.CreateStop)
		stops.POST("/find-or-create", h.Stops.FindOrCreateStop)
		stops.GET("", h.Stops.ListStops)
		stops.GET("/:id", h.Stops.GetStop)
		stops.PUT("/:id", h.Stops.UpdateStop)
		stops.DELETE("/:id", h.Stops.DeleteStop)
	}
}
