package progress

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"peopledetect/internal/classify"
	"peopledetect/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans progress events out to WebSocket viewers.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	quit       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger
}

// NewHub creates a Hub. Call Run before serving clients.
func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		quit:       make(chan struct{}),
		logger:     logger,
	}
}

// Run dispatches registrations and broadcasts until ctx is done, then sends
// whatever is still queued and closes every client.
func (h *Hub) Run(ctx context.Context) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			h.flush()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.logger.Info("Progress viewer connected. Total: %d", h.ClientCount())

		case client := <-h.unregister:
			h.drop(client)
			h.logger.Info("Progress viewer disconnected. Total: %d", h.ClientCount())

		case message := <-h.broadcast:
			h.send(websocket.TextMessage, message)

		case <-ping.C:
			h.send(websocket.PingMessage, nil)
		}
	}
}

func (h *Hub) flush() {
	for {
		select {
		case message := <-h.broadcast:
			h.send(websocket.TextMessage, message)
		default:
			return
		}
	}
}

func (h *Hub) send(kind int, message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteMessage(kind, message); err != nil {
			h.logger.Error("Error sending progress message: %v", err)
			delete(h.clients, client)
			client.Close()
		}
	}
}

func (h *Hub) drop(client *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.Close()
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	close(h.quit)
	for client := range h.clients {
		client.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "scan finished"),
			time.Now().Add(time.Second))
		client.Close()
		delete(h.clients, client)
	}
}

// Broadcast queues message for every client. It never blocks once the hub
// has stopped.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected viewers.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades a viewer connection and keeps it registered until the
// peer goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	connection, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade error: %v", err)
		return
	}
	connection.SetReadLimit(512)
	connection.SetReadDeadline(time.Now().Add(pongWait))
	connection.SetPongHandler(func(string) error {
		connection.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	select {
	case h.register <- connection:
	case <-h.quit:
		connection.Close()
		return
	}
	defer func() {
		select {
		case h.unregister <- connection:
		case <-h.quit:
		}
	}()

	for {
		if _, _, err := connection.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) publish(e Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		h.logger.Error("Error encoding progress event: %v", err)
		return
	}
	h.Broadcast(msg)
}

// OnStart implements Observer.
func (h *Hub) OnStart(runID string, total int) {
	h.publish(Event{Type: EventStart, RunID: runID, Total: total})
}

// OnFile implements Observer.
func (h *Hub) OnFile(ordinal, total int, v classify.FileVerdict) {
	h.publish(FileEvent(ordinal, total, v))
}

// OnDone implements Observer.
func (h *Hub) OnDone(s Summary) {
	h.publish(Event{Type: EventDone, RunID: s.RunID, Summary: &s})
}
