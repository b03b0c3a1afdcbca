package ws

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dealradar/internal/domain/service"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func newTestHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()

	hub := NewHub(HubParams{
		Lifecycle: fxtest.NewLifecycle(t),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = hub.Serve(ctx)
	}()

	return hub, cancel
}

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.HandleConnection(w, r)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestHubBroadcastReachesConnectedClient(t *testing.T) {
	hub, cancel := newTestHub(t)
	defer cancel()

	conn := dialHub(t, hub)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	sent := service.BroadcastEvent{
		Type:      service.BroadcastTypeNewDeals,
		Count:     3,
		Message:   "3 new deals found!",
		Timestamp: time.Now().UTC(),
	}
	hub.Broadcast(sent)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var got service.BroadcastEvent
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, service.BroadcastTypeNewDeals, got.Type)
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, "3 new deals found!", got.Message)
}

func TestHubBroadcastWithoutClientsNeverBlocks(t *testing.T) {
	hub, cancel := newTestHub(t)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			hub.Broadcast(service.BroadcastEvent{Type: service.BroadcastTypeNewDeals, Count: i})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked with no connected clients")
	}
}

func TestHubDisconnectLowersClientCount(t *testing.T) {
	hub, cancel := newTestHub(t)
	defer cancel()

	conn := dialHub(t, hub)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 10*time.Millisecond)
}
