package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/rs/xid"
)

const writeWait = 5 * time.Second

// Origine di un messaggio websocket
const (
	SourceSession = "session"
	SourceWatcher = "watcher"
)

// Message è ciò che riceve ogni display collegato
type Message struct {
	Source string `json:"source"`
	Event  any    `json:"event"`
}

// Hub tiene i display collegati via websocket
type Hub struct {
	mu       sync.Mutex
	clients  map[string]*websocket.Conn
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// NewHub crea un hub vuoto
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Serve aggiorna la connessione e la tiene aperta finché il client non chiude
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("errore upgrade websocket", "err", err)
		return
	}

	id := xid.New().String()
	h.mu.Lock()
	h.clients[id] = conn
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("display collegato", "id", id, "total", total)

	defer h.remove(id)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	conn, ok := h.clients[id]
	delete(h.clients, id)
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		conn.Close()
		h.logger.Info("display scollegato", "id", id, "total", total)
	}
}

// Broadcast invia il messaggio a tutti i display; chi fallisce viene scollegato
func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Warn("errore invio websocket", "id", id, "err", err)
			conn.Close()
			delete(h.clients, id)
		}
	}
}

// Len restituisce il numero di display collegati
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll scollega tutti i display
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.clients {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
		conn.Close()
		delete(h.clients, id)
	}
}
