package feed

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thallipoli/internal/kitchen"
	"thallipoli/internal/models"
)

var _ kitchen.Observer = (*Hub)(nil)

func newTestHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	hub := NewHub(logger)

	router := gin.New()
	router.GET("/ws", hub.ServeWS)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)
	return hub, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]json.RawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHubBroadcastsLogEntries(t *testing.T) {
	hub, conn := newTestHub(t)

	hub.OnLog(models.LogEntry{ID: "l1", Type: "sale", Message: "Order #1: 1x Cheeseburger for Walk-in", Amount: 14.99})

	msg := readMessage(t, conn)
	assert.JSONEq(t, `"log"`, string(msg["event"]))

	var entry models.LogEntry
	require.NoError(t, json.Unmarshal(msg["data"], &entry))
	assert.Equal(t, "l1", entry.ID)
	assert.Equal(t, 14.99, entry.Amount)
}

func TestHubBroadcastsInsights(t *testing.T) {
	hub, conn := newTestHub(t)

	hub.OnInsight("CRITICAL: Operating funds low (<$1000). Restock carefully.")

	msg := readMessage(t, conn)
	assert.JSONEq(t, `"insight"`, string(msg["event"]))
	assert.JSONEq(t, `"CRITICAL: Operating funds low (<$1000). Restock carefully."`, string(msg["data"]))
}

func TestHubDropsClosedClients(t *testing.T) {
	hub, conn := newTestHub(t)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

	// broadcasting with nobody connected is a no-op
	hub.OnInsight("ignored")
}
