package events

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/restaurant-pos/utils"
)

// Topik event yang dipublikasikan engine setelah transisi commit.
const (
	TopicTableOpened      = "table:opened"
	TopicTableClosed      = "table:closed"
	TopicTableTransferred = "table:transferred"
	TopicTableMerged      = "table:merged"
	TopicOrderCreated     = "order:created"
	TopicOrderUpdated     = "order:updated"
)

// Message -> frame JSON yang dikirim ke semua client websocket
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Publisher adalah kontrak event bus yang di-inject ke lifecycle.Manager,
// supaya engine tidak terikat ke transport tertentu. Jaminan delivery
// sepenuhnya urusan transport; engine memperlakukan publish sebagai
// best-effort.
type Publisher interface {
	Publish(topic string, payload interface{}) error
}

// Hub menampung semua client terhubung (staff terminal, kitchen display,
// tablet customer) dan menyiarkan setiap event ke semuanya tanpa filtering
// per-subscriber.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]string // conn -> role
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]string),
	}
}

// Register -> menambahkan connection ke set dengan role
func (h *Hub) Register(conn *websocket.Conn, role string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = role
}

// Unregister -> melepaskan connection dan menutupnya
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

// ClientCount -> jumlah client yang sedang terhubung
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish menyiarkan satu event ke semua client. Client yang gagal ditulis
// hanya dicatat di log; kegagalan kirim tidak pernah membatalkan transisi
// yang sudah commit.
func (h *Hub) Publish(topic string, payload interface{}) error {
	data, err := json.Marshal(Message{Event: topic, Data: payload})
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", topic, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, role := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to %s client: %v", topic, role, err)
			continue
		}
	}
	return nil
}
