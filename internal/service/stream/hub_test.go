package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"FraudSight/internal/domain/models"
	xlogger "FraudSight/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHub(t *testing.T) *Hub {
	t.Helper()
	logger, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return NewHub(logger, 16)
}

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.ServeWS(w, r)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	// registration happens just after the handshake; give it a beat
	time.Sleep(50 * time.Millisecond)
	return conn
}

func TestHubDeliversBroadcast(t *testing.T) {
	h := testHub(t)
	go h.Run()
	defer h.Close()

	conn := dialHub(t, h)

	h.Broadcast(&models.ScoredTransaction{
		TransNum:         "t-1",
		Classification:   models.LabelFraud,
		FraudProbability: 0.97,
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var st models.ScoredTransaction
	require.NoError(t, conn.ReadJSON(&st))
	assert.Equal(t, "t-1", st.TransNum)
	assert.Equal(t, models.LabelFraud, st.Classification)
}

func TestHubBroadcastWithoutClients(t *testing.T) {
	h := testHub(t)
	go h.Run()
	defer h.Close()

	// must not block or panic with nobody listening
	for i := 0; i < 100; i++ {
		h.Broadcast(&models.ScoredTransaction{TransNum: "noop"})
	}
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	h := testHub(t)
	go h.Run()

	conn := dialHub(t, h)
	h.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}

func TestHubCloseIdempotent(t *testing.T) {
	h := testHub(t)
	go h.Run()
	h.Close()
	h.Close()
}
