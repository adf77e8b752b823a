package routes

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"transroute/internal/controllers"
	"transroute/internal/middleware"
	"transroute/internal/notifications"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Stops        *controllers.StopController
	Routes       *controllers.RouteController
	Templates    *controllers.TemplateController
	Trips        *controllers.TripController
	Reservations *controllers.ReservationController
	Clients      *controllers.ClientController
	Companies    *controllers.CompanyController
	Vehicles     *controllers.VehicleController
	Ledger       *controllers.LedgerController
	Invitations  *controllers.InvitationController
	Hub          *notifications.Hub
	Health       gin.HandlerFunc
}

type Options struct {
	APIPrefix   string
	JWTSecret   string
	CORSOrigins []string
}

func SetupRouter(opts Options, h Handlers) *gin.Engine {
	if err := controllers.RegisterValidators(); err != nil {
		logrus.WithError(err).Fatal("SetupRouter: could not register validators")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(accessLog(defaultAccessWriter()))
	r.Use(middleware.CORS(opts.CORSOrigins))

	if h.Health != nil {
		r.GET("/health", h.Health)
	}

	api := r.Group("/" + strings.Trim(opts.APIPrefix, "/"))
	PublicRoutes(api, h)

	secured := api.Group("")
	secured.Use(middleware.RequireAuth(opts.JWTSecret))
	StopRoutes(secured, h)
	RouteRoutes(secured, h)
	TripRoutes(secured, h)
	ReservationRoutes(secured, h)
	ResourceRoutes(secured, h)
	WebSocketRoutes(api, opts, h)

	return r
}
