package routes

import (
	"github.com/gin-gonic/gin"
)

// ResourceRoutes mounts the plain CRUD resources.
func ResourceRoutes(r *gin.RouterGroup, h Handlers) {
	companies := r.Group("/companies")
	{
		companies.POST("", h.Companies.CreateCompany)
		companies.GET("", h.Companies.ListCompanies)
		companies.GET("/:id", h.Companies.GetCompany)
		companies.PUT("/:id", h.Companies.UpdateCompany)
	}

	clients := r.Group("/clients")
	{
		clients.POST("", h.Clients.CreateClient)
		clients.GET("", h.Clients.ListClients)
		clients.GET("/:id", h.Clients.GetClient)
		clients.PUT("/:id", h.Clients.UpdateClient)
		clients.DELETE("/:id", h.Clients.DeleteClient)
	}

	vehicles := r.Group("/vehicles")
	{
		vehicles.POST("", h.Vehicles.CreateVehicle)
		vehicles.GET("", h.Vehicles.ListVehicles)
		vehicles.GET("/:id", h.Vehicles.GetVehicle)
		vehicles.PUT("/:id", h.Vehicles.UpdateVehicle)
		vehicles.DELETE("/:id", h.Vehicles.DeleteVehicle)
	}

	r.GET("/transactions", h.Ledger.ListTransactions)
	r.GET("/audit-logs", h.Ledger.ListAuditLogs)
	r.POST("/invitations", h.Invitations.CreateInvitation)
}

// PublicRoutes need no bearer token.
func PublicRoutes(r *gin.RouterGroup, h Handlers) {
	r.GET("/invitations/validate/:token", h.Invitations.ValidateInvitation)
}
