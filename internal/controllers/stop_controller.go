package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"transroute/internal/services"
)

type StopController struct {
	stops *services.StopService
}

func NewStopController(stops *services.StopService) *StopController {
	return &StopController{stops: stops}
}

// CreateStop registers a stop for the caller's company.
func (h *StopController) CreateStop(c *gin.Context) {
	var input services.StopInput
	if !bindJSON(c, "CreateStop", &input) {
		return
	}
	stop, err := h.stops.Create(c.Request.Context(), companyFrom(c), input)
	if err != nil {
		respondError(c, "CreateStop", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stop": stop})
}

// FindOrCreateStop resolves a legacy "City, State|Name" string to a stop.
func (h *StopController) FindOrCreateStop(c *gin.Context) {
	var input struct {
		FullLocation string `json:"full_location" binding:"required,location"`
	}
	if !bindJSON(c, "FindOrCreateStop", &input) {
		return
	}
	stop, err := h.stops.FindOrCreate(c.Request.Context(), input.FullLocation, companyFrom(c))
	if err != nil {
		respondError(c, "FindOrCreateStop", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stop": stop})
}

// ListStops lists every stop, or searches them when ?q= is given.
func (h *StopController) ListStops(c *gin.Context) {
	ctx := c.Request.Context()
	if q, ok := c.GetQuery("q"); ok {
		stops, err := h.stops.Search(ctx, q, companyFrom(c))
		if err != nil {
			respondError(c, "ListStops", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": stops})
		return
	}
	stops, err := h.stops.List(ctx, companyFrom(c))
	if err != nil {
		respondError(c, "ListStops", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stops})
}

func (h *StopController) GetStop(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	stop, err := h.stops.Get(c.Request.Context(), companyFrom(c), id)
	if err != nil {
		respondError(c, "GetStop", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stop": stop})
}

func (h *StopController) UpdateStop(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input services.StopInput
	if !bindJSON(c, "UpdateStop", &input) {
		return
	}
	stop, err := h.stops.Update(c.Request.Context(), companyFrom(c), id, input)
	if err != nil {
		respondError(c, "UpdateStop", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stop": stop})
}

func (h *StopController) DeleteStop(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.stops.Delete(c.Request.Context(), companyFrom(c), id); err != nil {
		respondError(c, "DeleteStop", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stop deleted"})
}
