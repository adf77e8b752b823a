package routes

import (
	"github.com/gin-gonic/gin"
)

func RouteRoutes(r *gin.RouterGroup, h Handlers) {
	routes := r.Group("/routes")
	{
		routes.POST("", h.Routes.CreateRoute)
		routes.GET("", h.Routes.ListRoutes)
		routes.GET("/:id", h.Routes.GetRoute)
		routes.GET("/:id/combinations", h.Routes.GetRouteCombinations)
		routes.PUT("/:id", h.Routes.UpdateRoute)
		routes.DELETE("/:id", h.Routes.DeleteRoute)
	}

	templates := r.Group("/route-templates")
	{
		templates.POST("", h.Templates.CreateTemplate)
		templates.GET("", h.Templates.ListTemplates)
		templates.GET("/:id", h.Templates.GetTemplate)
		templates.PATCH("/:id", h.Templates.UpdateTemplate)
		templates.DELETE("/:id", h.Templates.DeleteTemplate)
	}
}
