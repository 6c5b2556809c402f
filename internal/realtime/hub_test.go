package realtime

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseguard-risk-server/internal/domain"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	hub := NewHub(logger)
	go hub.Run()
	t.Cleanup(hub.Close)
	return hub
}

func dialTestHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(hub)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_BroadcastAlertReachesClient(t *testing.T) {
	hub := newTestHub(t)
	conn := dialTestHub(t, hub)

	// Give the hub a moment to register the client
	time.Sleep(50 * time.Millisecond)

	alert := &domain.Alert{
		ID:         "a1",
		PatientID:  "p1",
		Level:      domain.AlertHigh,
		Message:    "Risk drift detected",
		RiskScore:  74,
		StageLabel: "Stage 2",
		CreatedAt:  time.Now().UTC(),
	}
	hub.BroadcastAlert(alert)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(msg, &event))
	assert.Equal(t, "drift_alert", event.Event)

	payload, err := json.Marshal(event.Payload)
	require.NoError(t, err)
	var received domain.Alert
	require.NoError(t, json.Unmarshal(payload, &received))
	assert.Equal(t, "a1", received.ID)
	assert.Equal(t, domain.AlertHigh, received.Level)
}

func TestHub_MultipleClientsReceiveBroadcast(t *testing.T) {
	hub := newTestHub(t)
	first := dialTestHub(t, hub)
	second := dialTestHub(t, hub)

	time.Sleep(50 * time.Millisecond)

	hub.BroadcastAlert(&domain.Alert{ID: "a2", PatientID: "p1", Level: domain.AlertModerate})

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, string(msg), "a2")
	}
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	hub := NewHub(logger)
	go hub.Run()

	conn := dialTestHub(t, hub)
	time.Sleep(50 * time.Millisecond)

	hub.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "Connection should be closed by the hub")
}
