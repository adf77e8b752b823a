package routes

import (
	"github.com/gin-gonic/gin"
)

func TripRoutes(r *gin.RouterGroup, h Handlers) {
	trips := r.Group("/trips")
	{
		trips.POST("", h.Trips.CreateTrip)
		trips.GET("", h.Trips.ListTrips)
		trips.GET("/:id", h.Trips.GetTrip)
		trips.GET("/:id/segments", h.Trips.GetTripSegments)
		trips.PATCH("/:id/visibility", h.Trips.SetTripVisibility)
		trips.DELETE("/:id", h.Trips.DeleteTrip)
	}
}
