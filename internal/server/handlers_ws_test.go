package server

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/domain"
	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/realtime"
)

func (ts *testServer) dialWS(t *testing.T, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// awaitRegistration blocks until the first heartbeat probe arrives,
// which proves the session is registered and can receive broadcasts.
func awaitRegistration(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var env realtime.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	require.Equal(t, realtime.TypePing, env.Type)
	require.NoError(t, conn.WriteJSON(realtime.NewEnvelope(realtime.TypePong, nil)))
}

// readDataEnvelope reads frames until one that is not a server ping
// arrives, answering pings on the way so the liveness monitor stays happy.
func readDataEnvelope(t *testing.T, conn *websocket.Conn) realtime.Envelope {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))

	for {
		var env realtime.Envelope
		require.NoError(t, conn.ReadJSON(&env))
		if env.Type == realtime.TypePing {
			require.NoError(t, conn.WriteJSON(realtime.NewEnvelope(realtime.TypePong, nil)))
			continue
		}
		return env
	}
}

func TestWebSocketRejectsBadToken(t *testing.T) {
	ts := newTestServer(t)

	conn := ts.dialWS(t, "not-a-real-token")
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	ts := newTestServer(t)

	conn := ts.dialWS(t, "")
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
}

func TestWebSocketEchoesAck(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerAndLogin(t, "alice")

	conn := ts.dialWS(t, token)
	require.NoError(t, conn.WriteJSON(realtime.NewEnvelope(realtime.TypeEventUpdate, map[string]any{"hint": "refresh"})))

	env := readDataEnvelope(t, conn)
	require.Equal(t, realtime.TypeAck, env.Type)
	assert.Equal(t, realtime.TypeEventUpdate, env.Payload["received_type"])
	assert.Equal(t, "ok", env.Payload["status"])
}

func TestWebSocketReceivesChangeNotifications(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerAndLogin(t, "alice")

	conn := ts.dialWS(t, token)
	awaitRegistration(t, conn)
	now := time.Now().UTC().Truncate(time.Second)

	status, _ := ts.request(t, http.MethodPost, "/api/events", token, map[string]any{
		"title":      "focus block",
		"start_time": now.Format(time.RFC3339),
		"end_time":   now.Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, status)

	env := readDataEnvelope(t, conn)
	require.Equal(t, domain.NotifyEventCreated, env.Type)
	assert.Equal(t, "focus block", env.Payload["title"])
}

func TestWebSocketNotificationsAreScopedToUser(t *testing.T) {
	ts := newTestServer(t)
	_, aliceToken := ts.registerAndLogin(t, "alice")
	_, bobToken := ts.registerAndLogin(t, "bob")

	bobConn := ts.dialWS(t, bobToken)
	awaitRegistration(t, bobConn)
	now := time.Now().UTC().Truncate(time.Second)

	status, _ := ts.request(t, http.MethodPost, "/api/events", aliceToken, map[string]any{
		"title":      "private event",
		"start_time": now.Format(time.RFC3339),
		"end_time":   now.Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, status)

	// Bob must only ever see heartbeat probes.
	require.NoError(t, bobConn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	for {
		var env realtime.Envelope
		if err := bobConn.ReadJSON(&env); err != nil {
			break // deadline hit, nothing but pings arrived
		}
		require.Equal(t, realtime.TypePing, env.Type, "unexpected envelope for another user")
	}
}
