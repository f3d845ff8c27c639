package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

var testUpgrader = ws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// wsPair opens a real websocket connection through an httptest server and
// returns both ends.
func wsPair(t *testing.T) (client *ws.Conn, server *ws.Conn) {
	t.Helper()

	serverCh := make(chan *ws.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverCh <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case server = <-serverCh:
	case <-time.After(time.Second):
		t.Fatal("server side of websocket pair never arrived")
	}
	t.Cleanup(func() { server.Close() })
	return client, server
}

// newTestConn builds a registered-style Conn over a real socket pair.
func newTestConn(t *testing.T, userID uuid.UUID) (*Conn, *ws.Conn) {
	t.Helper()
	client, server := wsPair(t)
	conn := NewConn(userID, server, clockwork.NewRealClock())
	t.Cleanup(conn.Stop)
	return conn, client
}

// readEnvelope reads one frame from the client side with a deadline.
func readEnvelope(t *testing.T, client *ws.Conn) Envelope {
	t.Helper()
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	env, err := DecodeEnvelope(data)
	require.NoError(t, err)
	return env
}

// expectNoFrame asserts nothing arrives on the client side within wait.
func expectNoFrame(t *testing.T, client *ws.Conn, wait time.Duration) {
	t.Helper()
	require.NoError(t, client.SetReadDeadline(time.Now().Add(wait)))
	_, _, err := client.ReadMessage()
	require.Error(t, err)
	netErr, ok := err.(interface{ Timeout() bool })
	require.True(t, ok && netErr.Timeout(), "expected read timeout, got: %v", err)
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	for i := 0; i < 200; i++ {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}
