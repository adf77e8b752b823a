package routes

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transroute/internal/controllers"
	"transroute/internal/middleware"
	"transroute/internal/notifications"
	"transroute/internal/repositories/memory"
	"transroute/internal/services"
)

const secret = "routes-test-secret"

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	trips := memory.NewTrips()
	segments := memory.NewSegments(trips)
	stopSvc := services.NewStopService(memory.NewStops(), "Mexico")
	routeSvc := services.NewRouteService(memory.NewRoutes(), stopSvc)
	tplSvc := services.NewTemplateService(memory.NewTemplates(), routeSvc)
	searchSvc := services.NewSearchService(segments)
	tripSvc := services.NewTripService(trips, segments, routeSvc, tplSvc, searchSvc, 100)
	resSvc := services.NewReservationService(memory.NewReservations(segments), &memory.AuditLogs{}, nil)

	hub := notifications.NewHub(nil)
	t.Cleanup(hub.Close)

	return SetupRouter(Options{APIPrefix: "api/v1", JWTSecret: secret}, Handlers{
		Stops:        controllers.NewStopController(stopSvc),
		Routes:       controllers.NewRouteController(routeSvc),
		Templates:    controllers.NewTemplateController(tplSvc),
		Trips:        controllers.NewTripController(tripSvc),
		Reservations: controllers.NewReservationController(resSvc, searchSvc),
		Clients:      controllers.NewClientController(memory.NewClients()),
		Companies:    controllers.NewCompanyController(nil),
		Vehicles:     controllers.NewVehicleController(nil),
		Ledger:       controllers.NewLedgerController(nil),
		Invitations:  controllers.NewInvitationController(nil),
		Hub:          hub,
		Health:       controllers.Health(nil),
	})
}

func serve(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthIsPublic(t *testing.T) {
	r := newRouter(t)

	w := serve(r, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestSecuredRoutesNeedToken(t *testing.T) {
	r := newRouter(t)
	token, err := middleware.GenerateToken(secret, 7, 1, time.Hour)
	require.NoError(t, err)

	for _, path := range []string{"/api/v1/stops", "/api/v1/routes", "/api/v1/trips", "/api/v1/reservations/origins"} {
		assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, path, "", "").Code, path)
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, path, token, "").Code, path)
	}

	w := serve(r, http.MethodPost, "/api/v1/stops/find-or-create", token, `{"full_location":"Taxco, Guerrero|Centro"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestInvitationValidationIsPublic(t *testing.T) {
	r := newRouter(t)

	w := serve(r, http.MethodGet, "/api/v1/invitations/validate/not-a-token", "", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "malformed")
}

func TestWebSocketNeedsQueryToken(t *testing.T) {
	r := newRouter(t)

	w := serve(r, http.MethodGet, "/api/v1/notifications/ws", "", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPreflightShortCircuits(t *testing.T) {
	r := newRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/stops", nil)
	req.Header.Set("Origin", "https://backoffice.example.com")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://backoffice.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAccessLogCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	r := gin.New()
	r.Use(middleware.RequestID(), accessLog(&buf))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	out := buf.String()
	assert.Contains(t, out, "req-123")
	assert.Contains(t, out, "/ping")
	assert.NotContains(t, out, "/health")
}
