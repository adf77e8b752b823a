package notifications

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transroute/internal/middleware"
)

const secret = "hub-secret"

func startServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", h.Handler(secret))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, companyID uint) *websocket.Conn {
	t.Helper()
	token, err := middleware.GenerateToken(secret, 1, companyID, time.Hour)
	require.NoError(t, err)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubDeliversOnlyToCompany(t *testing.T) {
	h := NewHub(nil)
	defer h.Close()
	srv := startServer(t, h)

	mine := dial(t, srv, 1)
	other := dial(t, srv, 2)
	require.Eventually(t, func() bool {
		return h.Subscribers(1) == 1 && h.Subscribers(2) == 1
	}, time.Second, 10*time.Millisecond)

	h.Publish(1, "trip.created", map[string]uint{"trip_id": 5})

	var msg Message
	require.NoError(t, mine.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, mine.ReadJSON(&msg))
	assert.Equal(t, "trip.created", msg.Event)
	assert.Equal(t, uint(1), msg.CompanyID)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestHubRejectsMissingToken(t *testing.T) {
	h := NewHub(nil)
	defer h.Close()
	srv := startServer(t, h)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	h := NewHub(nil)
	defer h.Close()
	srv := startServer(t, h)

	conn := dial(t, srv, 3)
	require.Eventually(t, func() bool { return h.Subscribers(3) == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return h.Subscribers(3) == 0 }, time.Second, 10*time.Millisecond)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example.com"})

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Origin", "https://app.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))
}
