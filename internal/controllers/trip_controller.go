package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"transroute/internal/repositories"
	"transroute/internal/services"
)

type TripController struct {
	trips *services.TripService
}

func NewTripController(trips *services.TripService) *TripController {
	return &TripController{trips: trips}
}

// CreateTrip stores a trip and generates its segments.
func (h *TripController) CreateTrip(c *gin.Context) {
	var input services.TripInput
	if !bindJSON(c, "CreateTrip", &input) {
		return
	}
	trip, segments, err := h.trips.Create(c.Request.Context(), companyFrom(c), input)
	if errors.Is(err, services.ErrSegmentGeneration) {
		logrus.WithError(err).Error("CreateTrip: segment generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Trip was saved but its segments could not be generated"})
		return
	}
	if err != nil {
		respondError(c, "CreateTrip", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"trip": trip, "segments": segments})
}

// ListTrips accepts route_id, visibility, date_from and date_to filters.
func (h *TripController) ListTrips(c *gin.Context) {
	filter := repositories.TripFilter{CompanyID: companyFrom(c), Visibility: c.Query("visibility")}
	routeID, err := queryUint(c, "route_id")
	if err != nil {
		respondError(c, "ListTrips", err)
		return
	}
	if routeID != nil {
		filter.RouteID = *routeID
	}
	if filter.DateFrom, err = queryTime(c, "date_from", false); err != nil {
		respondError(c, "ListTrips", err)
		return
	}
	if filter.DateTo, err = queryTime(c, "date_to", true); err != nil {
		respondError(c, "ListTrips", err)
		return
	}

	trips, err := h.trips.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "ListTrips", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": trips})
}

func (h *TripController) GetTrip(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	trip, err := h.trips.Get(c.Request.Context(), companyFrom(c), id)
	if err != nil {
		respondError(c, "GetTrip", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

func (h *TripController) GetTripSegments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	segments, err := h.trips.Segments(c.Request.Context(), companyFrom(c), id)
	if err != nil {
		respondError(c, "GetTripSegments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": segments})
}

// SetTripVisibility publishes, cancels or drafts a trip.
func (h *TripController) SetTripVisibility(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input struct {
		Visibility string `json:"visibility" binding:"required,oneof=draft published cancelled"`
	}
	if !bindJSON(c, "SetTripVisibility", &input) {
		return
	}
	trip, err := h.trips.SetVisibility(c.Request.Context(), companyFrom(c), id, input.Visibility)
	if err != nil {
		respondError(c, "SetTripVisibility", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

func (h *TripController) DeleteTrip(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.trips.Delete(c.Request.Context(), companyFrom(c), id); err != nil {
		respondError(c, "DeleteTrip", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trip deleted"})
}
