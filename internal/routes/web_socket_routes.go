package routes

import (
	"github.com/gin-gonic/gin"
)

// WebSocketRoutes authenticates through the token query parameter instead
// of the bearer header.
func WebSocketRoutes(api *gin.RouterGroup, opts Options, h Handlers) {
	if h.Hub == nil {
		return
	}
	api.GET("/notifications/ws", h.Hub.Handler(opts.JWTSecret))
}
