package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"transroute/internal/repositories"
	"transroute/internal/services"
)

const defaultSearchWindow = 30 * 24 * time.Hour

type ReservationController struct {
	reservations *services.ReservationService
	search       *services.SearchService
	now          func() time.Time
}

func NewReservationController(reservations *services.ReservationService, search *services.SearchService) *ReservationController {
	return &ReservationController{reservations: reservations, search: search, now: time.Now}
}

// SearchSegments finds bookable segments. The window defaults to today
// through the next 30 days.
func (h *ReservationController) SearchSegments(c *gin.Context) {
	filter, err := h.searchFilter(c)
	if err != nil {
		respondError(c, "SearchSegments", err)
		return
	}
	segments, err := h.search.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "SearchSegments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": segments})
}

func (h *ReservationController) searchFilter(c *gin.Context) (services.SearchFilter, error) {
	f := services.SearchFilter{
		CompanyID:   companyFrom(c),
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
	}
	var err error
	if f.OriginStopID, err = queryUint(c, "origin_stop_id"); err != nil {
		return f, err
	}
	if f.DestinationStopID, err = queryUint(c, "destination_stop_id"); err != nil {
		return f, err
	}
	if f.DateFrom, err = queryTime(c, "date_from", false); err != nil {
		return f, err
	}
	if f.DateTo, err = queryTime(c, "date_to", true); err != nil {
		return f, err
	}
	if raw := c.Query("min_seats"); raw != "" {
		if f.MinSeats, err = strconv.Atoi(raw); err != nil {
			return f, &services.ValidationError{Field: "min_seats", Message: "must be an integer"}
		}
	}

	if f.DateFrom.IsZero() {
		now := h.now()
		f.DateFrom = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
	if f.DateTo.IsZero() {
		f.DateTo = f.DateFrom.Add(defaultSearchWindow)
	}
	return f, nil
}

func (h *ReservationController) ListOrigins(c *gin.Context) {
	origins, err := h.search.Origins(c.Request.Context(), companyFrom(c))
	if err != nil {
		respondError(c, "ListOrigins", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": origins})
}

func (h *ReservationController) ListDestinations(c *gin.Context) {
	destinations, err := h.search.Destinations(c.Request.Context(), companyFrom(c))
	if err != nil {
		respondError(c, "ListDestinations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": destinations})
}

func (h *ReservationController) CreateReservation(c *gin.Context) {
	var input services.CreateReservationInput
	if !bindJSON(c, "CreateReservation", &input) {
		return
	}
	res, err := h.reservations.Create(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		respondError(c, "CreateReservation", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reservation": res})
}

// ListReservations accepts trip_id, client_id and status filters.
func (h *ReservationController) ListReservations(c *gin.Context) {
	filter := repositories.ReservationFilter{CompanyID: companyFrom(c), Status: c.Query("status")}
	tripID, err := queryUint(c, "trip_id")
	if err != nil {
		respondError(c, "ListReservations", err)
		return
	}
	clientID, err := queryUint(c, "client_id")
	if err != nil {
		respondError(c, "ListReservations", err)
		return
	}
	if tripID != nil {
		filter.TripID = *tripID
	}
	if clientID != nil {
		filter.ClientID = *clientID
	}

	list, err := h.reservations.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "ListReservations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *ReservationController) GetReservation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.reservations.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, "GetReservation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": res})
}

func (h *ReservationController) CancelReservation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input services.CancelInput
	if c.Request.ContentLength != 0 && !bindJSON(c, "CancelReservation", &input) {
		return
	}
	res, err := h.reservations.Cancel(c.Request.Context(), actorFrom(c), id, input)
	if err != nil {
		respondError(c, "CancelReservation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": res})
}

func (h *ReservationController) AddPayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input services.PaymentInput
	if !bindJSON(c, "AddPayment", &input) {
		return
	}
	res, err := h.reservations.AddPayment(c.Request.Context(), actorFrom(c), id, input)
	if err != nil {
		respondError(c, "AddPayment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": res})
}

func (h *ReservationController) ModifyTrip(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input services.ModifyTripInput
	if !bindJSON(c, "ModifyTrip", &input) {
		return
	}
	res, err := h.reservations.ModifyTrip(c.Request.Context(), actorFrom(c), id, input)
	if err != nil {
		respondError(c, "ModifyTrip", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": res})
}

func (h *ReservationController) CheckIn(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.reservations.CheckIn(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, "CheckIn", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": res})
}

func (h *ReservationController) Transfer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input services.TransferInput
	if !bindJSON(c, "Transfer", &input) {
		return
	}
	res, err := h.reservations.Transfer(c.Request.Context(), actorFrom(c), id, input)
	if err != nil {
		respondError(c, "Transfer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": res})
}

func (h *ReservationController) MarkNoShow(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.reservations.MarkNoShow(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, "MarkNoShow", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": res})
}

// CashBalance reports the caller's cash on hand.
func (h *ReservationController) CashBalance(c *gin.Context) {
	actor := actorFrom(c)
	balance, err := h.reservations.CashBalance(c.Request.Context(), actor)
	if err != nil {
		respondError(c, "CashBalance", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "balance": balance})
}
