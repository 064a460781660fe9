package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// client is one connected window.
type client struct {
	id   string
	send chan []byte
}

// Hub is the real multi-window transport. Each open window holds a WebSocket
// connection; Publish fans the event out to every connection and to every
// in-process subscriber. Delivery is best-effort and unordered with respect
// to the writes that triggered it: a window whose buffer is full is skipped
// rather than blocked on.
type Hub struct {
	logger zerolog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	subs    map[int]func(Event)
	nextSub int
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*client]struct{}),
		subs:    make(map[int]func(Event)),
	}
}

// Publish implements Bridge.
func (h *Hub) Publish(_ context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Window buffer full; skip to avoid blocking the writer.
		}
	}
	subs := make([]func(Event), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}
	return nil
}

// Subscribe implements Bridge for in-process receivers.
func (h *Hub) Subscribe(fn func(Event)) (cancel func()) {
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// ClientCount returns the number of connected windows.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Single-user deployment; tighten if that ever changes.
	},
}

// RegisterRoutes exposes the WebSocket attach point.
func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.HandleConnect)
}

// HandleConnect upgrades the HTTP connection, registers the window, and
// starts the read/write pumps.
func (h *Hub) HandleConnect(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &client{
		id:   uuid.New().String(),
		send: make(chan []byte, 16),
	}
	h.register(cl)
	h.logger.Debug().Str("client_id", cl.id).Msg("bridge client connected")

	go h.writePump(cl, ws)
	go h.readPump(cl, ws)

	return nil
}

// readPump drains inbound frames until the window goes away. Clients send
// nothing meaningful; reads exist only to detect disconnects.
func (h *Hub) readPump(cl *client, ws *gorillawebsocket.Conn) {
	defer func() {
		h.unregister(cl)
		ws.Close()
		h.logger.Debug().Str("client_id", cl.id).Msg("bridge client disconnected")
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) writePump(cl *client, ws *gorillawebsocket.Conn) {
	defer ws.Close()

	for message := range cl.send {
		if err := ws.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			break
		}
	}
}
