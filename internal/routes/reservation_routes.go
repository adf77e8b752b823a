package routes

import (
	"github.com/gin-gonic/gin"
)

func ReservationRoutes(r *gin.RouterGroup, h Handlers) {
	res := r.Group("/reservations")
	{
		// Static paths before /:id.
		res.GET("/search", h.Reservations.SearchSegments)
		res.GET("/origins", h.Reservations.ListOrigins)
		res.GET("/destinations", h.Reservations.ListDestinations)

		res.POST("", h.Reservations.CreateReservation)
		res.GET("", h.Reservations.ListReservations)
		res.GET("/:id", h.Reservations.GetReservation)
		res.POST("/:id/cancel", h.Reservations.CancelReservation)
		res.POST("/:id/check-in", h.Reservations.CheckIn)
		res.POST("/:id/transfer", h.Reservations.Transfer)
		res.POST("/:id/add-payment", h.Reservations.AddPayment)
		res.POST("/:id/modify-trip", h.Reservations.ModifyTrip)
		res.POST("/:id/no-show", h.Reservations.MarkNoShow)
	}
	r.GET("/transactions/cash-balance", h.Reservations.CashBalance)
}
