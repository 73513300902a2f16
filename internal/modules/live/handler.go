package live

import (
	"log"
	"net/http"

	"photodrop/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// admin endpoint behind token auth; CORS is handled at the HTTP layer
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/events/:id/live", h.Watch)
}

// Watch upgrades the connection and streams committed uploads of the event
// until the client goes away.
func (h *Handler) Watch(c *gin.Context) {
	eventID := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("live_upgrade_failed event_id=%s error=%q", eventID, err)
		return
	}

	h.hub.Subscribe(eventID, conn)
	defer h.hub.Unsubscribe(eventID, conn)

	// watchers only listen; the read loop just detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Notifier adapts the hub to the ingest pipeline's notification hook.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

type uploadEvent struct {
	Type   string         `json:"type"`
	Upload *domain.Upload `json:"upload"`
}

func (n *Notifier) UploadCommitted(eventID string, u *domain.Upload) {
	n.hub.Broadcast(eventID, uploadEvent{Type: "upload.committed", Upload: u})
}
