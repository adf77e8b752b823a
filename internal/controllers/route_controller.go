package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"transroute/internal/geo"
	"transroute/internal/models"
	"transroute/internal/services"
)

// RouteResponse mirrors models.Route with the geometry rendered as GeoJSON.
type RouteResponse struct {
	ID                       uint      `json:"id"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
	CompanyID                uint      `json:"company_id"`
	Name                     string    `json:"name"`
	Origin                   string    `json:"origin"`
	OriginStopID             *uint     `json:"origin_stop_id"`
	Destination              string    `json:"destination"`
	DestinationStopID        *uint     `json:"destination_stop_id"`
	Stops                    []string  `json:"stops"`
	StopIDs                  []int64   `json:"stop_ids"`
	DistanceKm               float64   `json:"distance_km"`
	EstimatedDurationMinutes int       `json:"estimated_duration_minutes"`
	IsActive                 bool      `json:"is_active"`
	Geometry                 string    `json:"geometry,omitempty"`
}

func toRouteResponse(route models.Route) RouteResponse {
	geometry, err := geo.ToGeoJSON(route.Geometry)
	if err != nil {
		logrus.WithError(err).WithField("route_id", route.ID).Warn("toRouteResponse: stored geometry is unreadable")
	}
	stops := []string(route.Stops)
	if stops == nil {
		stops = []string{}
	}
	stopIDs := []int64(route.StopIDs)
	if stopIDs == nil {
		stopIDs = []int64{}
	}
	return RouteResponse{
		ID:                       route.ID,
		CreatedAt:                route.CreatedAt,
		UpdatedAt:                route.UpdatedAt,
		CompanyID:                route.CompanyID,
		Name:                     route.Name,
		Origin:                   route.Origin,
		OriginStopID:             route.OriginStopID,
		Destination:              route.Destination,
		DestinationStopID:        route.DestinationStopID,
		Stops:                    stops,
		StopIDs:                  stopIDs,
		DistanceKm:               route.DistanceKm,
		EstimatedDurationMinutes: route.EstimatedDurationMinutes,
		IsActive:                 route.IsActive,
		Geometry:                 geometry,
	}
}

type RouteController struct {
	routes *services.RouteService
}

func NewRouteController(routes *services.RouteService) *RouteController {
	return &RouteController{routes: routes}
}

// CreateRoute stores a route, resolving every location to a stop.
func (h *RouteController) CreateRoute(c *gin.Context) {
	var input services.RouteInput
	if !bindJSON(c, "CreateRoute", &input) {
		return
	}
	route, err := h.routes.Create(c.Request.Context(), companyFrom(c), input)
	if err != nil {
		respondError(c, "CreateRoute", err)
		return
	}
	logrus.WithFields(logrus.Fields{"route_id": route.ID, "stops": len(route.AllStops())}).Info("Route created")
	c.JSON(http.StatusCreated, gin.H{"route": toRouteResponse(*route)})
}

func (h *RouteController) ListRoutes(c *gin.Context) {
	routes, err := h.routes.List(c.Request.Context(), companyFrom(c))
	if err != nil {
		respondError(c, "ListRoutes", err)
		return
	}
	out := make([]RouteResponse, 0, len(routes))
	for _, r := range routes {
		out = append(out, toRouteResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (h *RouteController) GetRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	route, err := h.routes.Get(c.Request.Context(), companyFrom(c), id)
	if err != nil {
		respondError(c, "GetRoute", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": toRouteResponse(*route)})
}

// UpdateRoute replaces the route's stops and metadata.
func (h *RouteController) UpdateRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input services.RouteInput
	if !bindJSON(c, "UpdateRoute", &input) {
		return
	}
	route, err := h.routes.Update(c.Request.Context(), companyFrom(c), id, input)
	if err != nil {
		respondError(c, "UpdateRoute", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": toRouteResponse(*route)})
}

func (h *RouteController) DeleteRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.routes.Delete(c.Request.Context(), companyFrom(c), id); err != nil {
		respondError(c, "DeleteRoute", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route deleted"})
}

// GetRouteCombinations lists every origin/destination pair of the route.
func (h *RouteController) GetRouteCombinations(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	combos, err := h.routes.GenerateCombinations(c.Request.Context(), companyFrom(c), id)
	if err != nil {
		respondError(c, "GetRouteCombinations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": combos})
}
