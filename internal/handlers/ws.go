package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/alfagnish/usuarios/internal/feed"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins (CORS is handled at the middleware level).
	CheckOrigin: func(r *http.Request) bool { return true },
}

const wsWriteTimeout = 10 * time.Second

// EventsHandler streams user change events to WebSocket clients.
type EventsHandler struct {
	hub *feed.Hub
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(hub *feed.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Routes registers the WebSocket endpoint.
func (h *EventsHandler) Routes(r chi.Router) {
	r.Get("/", h.HandleWS)
}

// HandleWS upgrades the connection and writes every published event as a
// JSON text frame. Messages from the client are read and discarded; the
// stream ends when the client disconnects.
func (h *EventsHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe()
	defer sub.Close()

	// The read loop is needed to observe close frames from the client.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("websocket read error: %v", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case e, ok := <-sub.Events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(e); err != nil {
				log.Printf("websocket write error: %v", err)
				return
			}
		}
	}
}
