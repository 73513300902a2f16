package live

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"photodrop/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWatcher(t *testing.T, server *httptest.Server, eventID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/events/" + eventID + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForWatchers(t *testing.T, hub *Hub, eventID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.WatcherCount(eventID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("watcher count for %s never reached %d", eventID, want)
}

func TestBroadcastReachesWatchersOfOneEvent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	defer hub.Close()

	router := gin.New()
	NewHandler(hub).RegisterRoutes(&router.RouterGroup)
	server := httptest.NewServer(router)
	defer server.Close()

	watcher := dialWatcher(t, server, "evt-1")
	other := dialWatcher(t, server, "evt-2")
	waitForWatchers(t, hub, "evt-1", 1)
	waitForWatchers(t, hub, "evt-2", 1)

	notifier := NewNotifier(hub)
	notifier.UploadCommitted("evt-1", &domain.Upload{
		ID:           "up-1",
		EventID:      "evt-1",
		OriginalName: "beach.jpg",
		MimeType:     "image/jpeg",
	})

	require.NoError(t, watcher.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := watcher.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type   string        `json:"type"`
		Upload domain.Upload `json:"upload"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "upload.committed", msg.Type)
	assert.Equal(t, "up-1", msg.Upload.ID)
	assert.Equal(t, "beach.jpg", msg.Upload.OriginalName)

	// the other event's watcher must stay silent
	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err)
}

func TestUnsubscribeDropsWatcher(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(hub).RegisterRoutes(&router.RouterGroup)
	server := httptest.NewServer(router)
	defer server.Close()

	conn := dialWatcher(t, server, "evt-1")
	waitForWatchers(t, hub, "evt-1", 1)

	require.NoError(t, conn.Close())
	waitForWatchers(t, hub, "evt-1", 0)
}

func TestBroadcastWithNoWatchers(t *testing.T) {
	hub := NewHub()
	// must not panic or block
	hub.Broadcast("evt-none", gin.H{"type": "noop"})
	assert.Zero(t, hub.WatcherCount("evt-none"))
}
